package refgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	date := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	ref, err := New(PrefixDeposit, date)
	require.NoError(t, err)

	parts := strings.Split(ref, "-")
	require.Len(t, parts, 3, "Reference should have three dash-separated parts")
	assert.Equal(t, "DEP", parts[0])
	assert.Equal(t, "240310", parts[1])
	assert.Len(t, parts[2], suffixLength)

	for _, c := range parts[2] {
		assert.Contains(t, suffixAlphabet, string(c), "Suffix should only use the unambiguous alphabet")
	}
}

func TestNewExcludesAmbiguousCharacters(t *testing.T) {
	assert.NotContains(t, suffixAlphabet, "0")
	assert.NotContains(t, suffixAlphabet, "O")
	assert.NotContains(t, suffixAlphabet, "1")
	assert.NotContains(t, suffixAlphabet, "I")
}

func TestNewUniqueness(t *testing.T) {
	date := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := New(PrefixRepayment, date)
		require.NoError(t, err)
		seen[ref] = true
	}
	// 32^4 possible suffixes; 100 draws colliding down to a handful would
	// indicate a broken random source.
	assert.Greater(t, len(seen), 90)
}
