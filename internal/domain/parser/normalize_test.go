package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantCleaned string
		wantRaw     string
	}{
		{
			name:        "strips trailing country code",
			input:       "WATSON'S PERSONAL CARE STORE KUALA LUMPUR MY",
			wantCleaned: "WATSON'S PERSONAL CARE STORE KUALA LUMPUR",
			wantRaw:     "WATSON'S PERSONAL CARE STORE KUALA LUMPUR MY",
		},
		{
			name:        "collapses whitespace runs",
			input:       "SETEL   FUEL    STATION",
			wantCleaned: "SETEL FUEL STATION",
			wantRaw:     "SETEL   FUEL    STATION",
		},
		{
			name:        "only one trailing code removed",
			input:       "APPLE.COM/BILL ITUNES.COM IE",
			wantCleaned: "APPLE.COM/BILL ITUNES.COM",
			wantRaw:     "APPLE.COM/BILL ITUNES.COM IE",
		},
		{
			name:        "no trailing code",
			input:       "CASH REBATE",
			wantCleaned: "CASH REBATE",
			wantRaw:     "CASH REBATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, raw := normalizeDescription(tt.input)
			assert.Equal(t, tt.wantCleaned, cleaned)
			assert.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestInferDate(t *testing.T) {
	t.Run("same month keeps statement year", func(t *testing.T) {
		d := inferDate("01/07", 2025, 7)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("earlier month keeps statement year", func(t *testing.T) {
		d := inferDate("30/06", 2025, 7)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("later month rolls year back", func(t *testing.T) {
		d := inferDate("28/12", 2025, 1)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, time.December, 28, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("invalid calendar date yields nil", func(t *testing.T) {
		assert.Nil(t, inferDate("31/04", 2025, 7))
		assert.Nil(t, inferDate("30/02", 2025, 7))
	})

	t.Run("malformed token yields nil", func(t *testing.T) {
		assert.Nil(t, inferDate("0107", 2025, 7))
		assert.Nil(t, inferDate("aa/bb", 2025, 7))
		assert.Nil(t, inferDate("01/13", 2025, 12))
	})
}
