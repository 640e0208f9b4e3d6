package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsFieldErrors(t *testing.T) {
	v := New()
	require.NotNil(t, v.Errors)
	assert.True(t, v.Valid())

	v.Check(true, "question", "Question is required")
	assert.True(t, v.Valid())

	v.Check(false, "question", "Question is required")
	v.Check(false, "question", "Question is too short")
	v.Check(false, "fee_bps", "Fee is above the market maximum")

	assert.False(t, v.Valid())
	assert.Len(t, v.Errors, 2)
	assert.Equal(t, "Question is required", v.Errors["question"])
	assert.Equal(t, "Fee is above the market maximum", v.Errors["fee_bps"])
}
