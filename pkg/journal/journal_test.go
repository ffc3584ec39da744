package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqNumFromRaw(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		raw := []byte("8=FIX.4.4\x019=20\x0135=0\x0134=953\x0149=A\x0110=000\x01")
		n, err := SeqNumFromRaw(raw)
		require.NoError(t, err)
		assert.Equal(t, 953, n)
	})

	t.Run("Missing", func(t *testing.T) {
		raw := []byte("8=FIX.4.4\x019=20\x0135=0\x0149=A\x0110=000\x01")
		_, err := SeqNumFromRaw(raw)
		assert.ErrorIs(t, err, ErrMissingSeqNum)
	})

	t.Run("Unterminated", func(t *testing.T) {
		raw := []byte("8=FIX.4.4\x0134=95")
		_, err := SeqNumFromRaw(raw)
		assert.ErrorIs(t, err, ErrMissingSeqNum)
	})

	t.Run("NonNumeric", func(t *testing.T) {
		raw := []byte("8=FIX.4.4\x0134=abc\x01")
		_, err := SeqNumFromRaw(raw)
		assert.ErrorIs(t, err, ErrMissingSeqNum)
	})

	t.Run("NotFooledByTagSuffix", func(t *testing.T) {
		// Tag 134 must not match as tag 34.
		raw := []byte("8=FIX.4.4\x01134=7\x0134=9\x0110=000\x01")
		n, err := SeqNumFromRaw(raw)
		require.NoError(t, err)
		assert.Equal(t, 9, n)
	})
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "inbound", Inbound.String())
	assert.Equal(t, "outbound", Outbound.String())
}
