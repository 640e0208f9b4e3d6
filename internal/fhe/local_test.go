package fhe

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decryptNow(t *testing.T, s *LocalService, handles ...Handle) []uint64 {
	t.Helper()
	ctx := context.Background()
	token, err := s.RequestDecrypt(ctx, handles...)
	require.NoError(t, err)
	require.NoError(t, s.Release(token))
	values, ready, err := s.PollDecrypt(ctx, token)
	require.NoError(t, err)
	require.True(t, ready)
	return values
}

func TestLocalService_AddAndSelect(t *testing.T) {
	ctx := context.Background()
	s := NewLocalService(LocalOptions{Manual: true})

	stake, err := s.EncryptUint64(ctx, 100)
	require.NoError(t, err)
	zero, err := s.Zero(ctx)
	require.NoError(t, err)
	yes, err := s.EncryptBool(ctx, true)
	require.NoError(t, err)
	no, err := s.EncryptBool(ctx, false)
	require.NoError(t, err)

	t.Run("select picks the true branch", func(t *testing.T) {
		h, err := s.Select(ctx, yes, stake, zero)
		require.NoError(t, err)
		assert.Equal(t, []uint64{100}, decryptNow(t, s, h))
	})

	t.Run("select picks the false branch", func(t *testing.T) {
		h, err := s.Select(ctx, no, stake, zero)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0}, decryptNow(t, s, h))
	})

	t.Run("add accumulates", func(t *testing.T) {
		h, err := s.Add(ctx, stake, stake)
		require.NoError(t, err)
		assert.Equal(t, []uint64{200}, decryptNow(t, s, h))
	})

	t.Run("every operation yields a fresh handle", func(t *testing.T) {
		a, err := s.Add(ctx, stake, zero)
		require.NoError(t, err)
		b, err := s.Add(ctx, stake, zero)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, stake, a)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := s.Select(ctx, stake, stake, zero)
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, err = s.Add(ctx, yes, stake)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, err := s.Add(ctx, stake, Handle{0x01})
		assert.ErrorIs(t, err, ErrUnknownHandle)
	})
}

func TestLocalService_DecryptLatency(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewLocalService(LocalOptions{Latency: time.Minute, Now: func() time.Time { return now }})

	h, err := s.EncryptUint64(ctx, 7)
	require.NoError(t, err)
	token, err := s.RequestDecrypt(ctx, h)
	require.NoError(t, err)

	values, ready, err := s.PollDecrypt(ctx, token)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Nil(t, values)

	now = now.Add(time.Minute)
	values, ready, err = s.PollDecrypt(ctx, token)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, []uint64{7}, values)
	assert.Equal(t, 2, s.PollCount(token))
	assert.Equal(t, 1, s.RequestCount())
}

func TestLocalService_ManualRelease(t *testing.T) {
	ctx := context.Background()
	s := NewLocalService(LocalOptions{Manual: true})

	h, err := s.EncryptUint64(ctx, 3)
	require.NoError(t, err)
	token, err := s.RequestDecrypt(ctx, h)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ready, err := s.PollDecrypt(ctx, token)
		require.NoError(t, err)
		assert.False(t, ready)
	}

	s.ReleaseAll()
	values, ready, err := s.PollDecrypt(ctx, token)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, []uint64{3}, values)

	_, _, err = s.PollDecrypt(ctx, RequestToken("missing"))
	assert.ErrorIs(t, err, ErrUnknownRequest)
	assert.ErrorIs(t, s.Release(RequestToken("missing")), ErrUnknownRequest)
}

func TestHandle_Encoding(t *testing.T) {
	ctx := context.Background()
	s := NewLocalService(LocalOptions{})
	h, err := s.EncryptUint64(ctx, 1)
	require.NoError(t, err)

	parsed, err := ParseHandle(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	raw, err := json.Marshal(struct {
		H Handle `json:"h"`
	}{H: h})
	require.NoError(t, err)
	assert.Contains(t, string(raw), h.Hex())

	v, err := h.Value()
	require.NoError(t, err)
	var scanned Handle
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, h, scanned)
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	_, err = ParseHandle("0x1234")
	assert.ErrorIs(t, err, ErrMalformedHandle)
	_, err = ParseHandle("not-hex")
	assert.ErrorIs(t, err, ErrMalformedHandle)
	assert.ErrorIs(t, scanned.Scan(42), ErrMalformedHandle)
}

func TestLocalService_Consume(t *testing.T) {
	ctx := context.Background()
	s := NewLocalService(LocalOptions{Manual: true})

	stake, err := s.EncryptUint64(ctx, 5)
	require.NoError(t, err)
	side, err := s.EncryptBool(ctx, true)
	require.NoError(t, err)
	zero, err := s.Zero(ctx)
	require.NoError(t, err)
	sum, err := s.Add(ctx, stake, zero)
	require.NoError(t, err)

	t.Run("derived handles are not inputs", func(t *testing.T) {
		assert.ErrorIs(t, s.Consume(ctx, zero), ErrNotClientInput)
		assert.ErrorIs(t, s.Consume(ctx, sum), ErrNotClientInput)
	})

	t.Run("a failed consume leaves every handle usable", func(t *testing.T) {
		assert.ErrorIs(t, s.Consume(ctx, stake, sum), ErrNotClientInput)
		assert.ErrorIs(t, s.Consume(ctx, stake, stake), ErrHandleConsumed)
		assert.ErrorIs(t, s.Consume(ctx, side, Handle{0x09}), ErrUnknownHandle)
	})

	t.Run("inputs are single use", func(t *testing.T) {
		require.NoError(t, s.Consume(ctx, stake, side))
		assert.ErrorIs(t, s.Consume(ctx, stake), ErrHandleConsumed)
		assert.ErrorIs(t, s.Consume(ctx, side), ErrHandleConsumed)
	})

	t.Run("consumed handles still compute", func(t *testing.T) {
		h, err := s.Select(ctx, side, stake, zero)
		require.NoError(t, err)
		assert.Equal(t, []uint64{5}, decryptNow(t, s, h))
	})
}

func TestLocalService_AddSaturates(t *testing.T) {
	ctx := context.Background()
	s := NewLocalService(LocalOptions{Manual: true})

	big, err := s.EncryptUint64(ctx, 10_000_000_000_000_000_000)
	require.NoError(t, err)
	one, err := s.EncryptUint64(ctx, 1)
	require.NoError(t, err)

	h, err := s.Add(ctx, big, big)
	require.NoError(t, err)
	assert.Equal(t, []uint64{math.MaxUint64}, decryptNow(t, s, h))

	h, err = s.Add(ctx, h, one)
	require.NoError(t, err)
	assert.Equal(t, []uint64{math.MaxUint64}, decryptNow(t, s, h))
}
