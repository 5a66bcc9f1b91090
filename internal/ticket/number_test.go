package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "TKT-20260314-000042", Normalize("  tkt-20260314-000042\n"))
	assert.Equal(t, "TKT-20260314-000042", Normalize("TKT-20260314-000042"))
}

func TestValidNumber(t *testing.T) {
	valid := []string{
		"TKT-20260314-000001",
		"CINE-20251108-999999",
	}
	for _, n := range valid {
		assert.True(t, ValidNumber(n), n)
	}

	invalid := []string{
		"",
		"TKT-20260314-1",          // sequence too short
		"TKT-2026031-000001",      // date too short
		"T-20260314-000001",       // prefix too short
		"TICKT-20260314-000001",   // prefix too long
		"tkt-20260314-000001",     // lowercase, must be normalized first
		"TKT_20260314_000001",     // wrong separators
		"TKT-20260314-000001 ",    // trailing whitespace
		"TKT-20260314-0000011",    // sequence too long
		"XX1-20260314-000001",     // digit in prefix
		"TKT-20260314-000001-EXT", // trailing garbage
	}
	for _, n := range invalid {
		assert.False(t, ValidNumber(n), n)
	}
}
