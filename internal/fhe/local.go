package fhe

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

type valueKind uint8

const (
	kindUint64 valueKind = iota + 1
	kindBool
)

type ciphertext struct {
	kind     valueKind
	value    uint64
	input    bool
	consumed bool
}

type decryptRequest struct {
	values   []uint64
	readyAt  time.Time
	released bool
	polls    int
}

// LocalOptions tunes the simulated threshold network.
type LocalOptions struct {
	// Latency is how long a decryption request stays pending.
	Latency time.Duration
	// Manual keeps every request pending until Release is called.
	Manual bool
	// Now overrides the clock.
	Now func() time.Time
}

// LocalService is an in-process stand-in for the confidential-compute network. Plaintexts
// live only inside this struct and handles are keccak digests of a secret salt and counter.
type LocalService struct {
	mu       sync.Mutex
	salt     [32]byte
	counter  uint64
	store    map[Handle]ciphertext
	requests map[RequestToken]*decryptRequest
	opts     LocalOptions
}

var _ Service = (*LocalService)(nil)

// NewLocalService returns a simulated service.
func NewLocalService(opts LocalOptions) *LocalService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &LocalService{
		store:    make(map[Handle]ciphertext),
		requests: make(map[RequestToken]*decryptRequest),
		opts:     opts,
	}
	if _, err := rand.Read(s.salt[:]); err != nil {
		panic(fmt.Sprintf("fhe: read salt: %v", err))
	}
	return s
}

func (s *LocalService) put(ct ciphertext) Handle {
	s.counter++
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], s.counter)
	h := Handle(crypto.Keccak256Hash(s.salt[:], n[:]))
	s.store[h] = ct
	return h
}

func (s *LocalService) get(h Handle) (ciphertext, error) {
	ct, ok := s.store[h]
	if !ok {
		return ciphertext{}, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return ct, nil
}

func (s *LocalService) EncryptUint64(_ context.Context, v uint64) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ciphertext{kind: kindUint64, value: v, input: true}), nil
}

func (s *LocalService) EncryptBool(_ context.Context, v bool) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bit uint64
	if v {
		bit = 1
	}
	return s.put(ciphertext{kind: kindBool, value: bit, input: true}), nil
}

func (s *LocalService) Consume(_ context.Context, handles ...Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[Handle]bool, len(handles))
	for _, h := range handles {
		ct, err := s.get(h)
		if err != nil {
			return err
		}
		if !ct.input {
			return fmt.Errorf("%w: %s", ErrNotClientInput, h)
		}
		if ct.consumed || seen[h] {
			return fmt.Errorf("%w: %s", ErrHandleConsumed, h)
		}
		seen[h] = true
	}
	for _, h := range handles {
		ct := s.store[h]
		ct.consumed = true
		s.store[h] = ct
	}
	return nil
}

func (s *LocalService) Zero(_ context.Context) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ciphertext{kind: kindUint64}), nil
}

func (s *LocalService) Add(_ context.Context, a, b Handle) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, err := s.get(a)
	if err != nil {
		return ZeroHandle, err
	}
	y, err := s.get(b)
	if err != nil {
		return ZeroHandle, err
	}
	if x.kind != kindUint64 || y.kind != kindUint64 {
		return ZeroHandle, fmt.Errorf("%w: add expects uint64 operands", ErrTypeMismatch)
	}
	sum := x.value + y.value
	if sum < x.value {
		sum = math.MaxUint64
	}
	return s.put(ciphertext{kind: kindUint64, value: sum}), nil
}

func (s *LocalService) Select(_ context.Context, cond, ifTrue, ifFalse Handle) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(cond)
	if err != nil {
		return ZeroHandle, err
	}
	t, err := s.get(ifTrue)
	if err != nil {
		return ZeroHandle, err
	}
	f, err := s.get(ifFalse)
	if err != nil {
		return ZeroHandle, err
	}
	if c.kind != kindBool {
		return ZeroHandle, fmt.Errorf("%w: select condition must be bool", ErrTypeMismatch)
	}
	if t.kind != f.kind {
		return ZeroHandle, fmt.Errorf("%w: select branches differ", ErrTypeMismatch)
	}
	// f + c*(t-f) in wrapping arithmetic, no branch on the condition
	v := f.value + c.value*(t.value-f.value)
	return s.put(ciphertext{kind: t.kind, value: v}), nil
}

func (s *LocalService) RequestDecrypt(_ context.Context, handles ...Handle) (RequestToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]uint64, len(handles))
	for i, h := range handles {
		ct, err := s.get(h)
		if err != nil {
			return "", err
		}
		values[i] = ct.value
	}
	token := RequestToken(uuid.NewString())
	s.requests[token] = &decryptRequest{
		values:  values,
		readyAt: s.opts.Now().Add(s.opts.Latency),
	}
	return token, nil
}

func (s *LocalService) PollDecrypt(_ context.Context, token RequestToken) ([]uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[token]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRequest, token)
	}
	req.polls++
	if !req.released && (s.opts.Manual || s.opts.Now().Before(req.readyAt)) {
		return nil, false, nil
	}
	out := make([]uint64, len(req.values))
	copy(out, req.values)
	return out, true, nil
}

// Release completes a pending request immediately.
func (s *LocalService) Release(token RequestToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, token)
	}
	req.released = true
	return nil
}

// ReleaseAll completes every request submitted so far.
func (s *LocalService) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		req.released = true
	}
}

// RequestCount reports how many decryption requests were submitted.
func (s *LocalService) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// PollCount reports how many times a request was polled.
func (s *LocalService) PollCount(token RequestToken) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.requests[token]; ok {
		return req.polls
	}
	return 0
}
