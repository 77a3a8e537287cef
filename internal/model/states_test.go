package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeState_Code(t *testing.T) {
	code, ok := NormalizeState("ca")
	assert.True(t, ok)
	assert.Equal(t, "CA", code)
}

func TestNormalizeState_FullName(t *testing.T) {
	code, ok := NormalizeState("California")
	assert.True(t, ok)
	assert.Equal(t, "CA", code)

	code, ok = NormalizeState("district of columbia")
	assert.True(t, ok)
	assert.Equal(t, "DC", code)
}

func TestNormalizeState_Territories(t *testing.T) {
	for name, want := range map[string]string{
		"Puerto Rico":              "PR",
		"Guam":                     "GU",
		"Virgin Islands":           "VI",
		"American Samoa":           "AS",
		"Northern Mariana Islands": "MP",
	} {
		code, ok := NormalizeState(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, code, name)
	}
}

func TestNormalizeState_UnknownCodePassesThrough(t *testing.T) {
	// Military postal states appear in the geocode dataset.
	code, ok := NormalizeState("AE")
	assert.True(t, ok)
	assert.Equal(t, "AE", code)
}

func TestNormalizeState_UnknownName(t *testing.T) {
	_, ok := NormalizeState("Unknown")
	assert.False(t, ok)
	_, ok = NormalizeState("Atlantis")
	assert.False(t, ok)
}

func TestNormalizeState_Empty(t *testing.T) {
	_, ok := NormalizeState("")
	assert.False(t, ok)
	_, ok = NormalizeState("   ")
	assert.False(t, ok)
}
