package validator

import (
	"testing"

	playground "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotBlank(t *testing.T) {
	validator := New()
	validator.Check(NotBlank("  "), "question", "Question is required")
	if validator.Valid() {
		t.Error("validator.Valid() should return false")
	}
	if validator.Errors["question"] != "Question is required" {
		t.Error("validator.Errors[question] should contain the correct error message")
	}
}

func TestRuneLimits(t *testing.T) {
	assert.True(t, MinRunes("héllo", 5))
	assert.False(t, MinRunes("hé", 3))
	assert.True(t, MaxRunes("héllo", 5))
	assert.False(t, MaxRunes("héllo!", 5))
	assert.True(t, In("yes", "yes", "no"))
	assert.False(t, In("maybe", "yes", "no"))
}

func TestDomainRules(t *testing.T) {
	assert.True(t, IsHexAddress("0x00000000000000000000000000000000000000a1"))
	assert.False(t, IsHexAddress("0x1234"))

	assert.True(t, IsWeiAmount("1000000000000000000"))
	assert.False(t, IsWeiAmount("0"))
	assert.False(t, IsWeiAmount("-5"))
	assert.False(t, IsWeiAmount("1.5"))
	assert.False(t, IsWeiAmount("abc"))

	assert.True(t, IsHandle("0x"+repeat("ab", 32)))
	assert.False(t, IsHandle("0x"+repeat("ab", 31)))
	assert.False(t, IsHandle(repeat("ab", 32)))
}

func TestRegisterRules(t *testing.T) {
	v := playground.New()
	require.NoError(t, RegisterRules(v))

	type req struct {
		Bettor string `validate:"required,eth_addr"`
		Amount string `validate:"required,wei"`
		Stake  string `validate:"required,fhe_handle"`
	}

	ok := req{
		Bettor: "0x00000000000000000000000000000000000000a1",
		Amount: "10",
		Stake:  "0x" + repeat("01", 32),
	}
	assert.NoError(t, v.Struct(ok))

	bad := req{Bettor: "nope", Amount: "0.1", Stake: "0x01"}
	err := v.Struct(bad)
	require.Error(t, err)

	fields := BindingErrors(err)
	assert.Len(t, fields, 3)
	assert.Contains(t, fields["Bettor"], "eth_addr")
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
