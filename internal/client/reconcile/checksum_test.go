package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_StableAcrossMapOrder(t *testing.T) {
	a := map[string]float64{"EUR": 0.9, "GBP": 0.8, "JPY": 150}
	b := map[string]float64{"JPY": 150, "GBP": 0.8, "EUR": 0.9}

	// Go's JSON encoder sorts map keys, so insertion order can't change the
	// fingerprint.
	assert.Equal(t, Checksum(a), Checksum(b))
}

func TestChecksum_DetectsChange(t *testing.T) {
	a := map[string]float64{"EUR": 0.9}
	b := map[string]float64{"EUR": 0.91}

	assert.NotEqual(t, Checksum(a), Checksum(b))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]string{"a"}, []string{"a"}))
	assert.False(t, Equal([]string{"a"}, []string{"b"}))
	assert.True(t, Equal(nil, nil))
}
