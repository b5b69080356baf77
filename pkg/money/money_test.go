package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementAmount(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		explicitCredit bool
		want           int64
	}{
		{"plain debit", "30.40", false, 3040},
		{"explicit credit flag", "9.52", true, -952},
		{"inline CR suffix", "9.52CR", false, -952},
		{"thousands separator with CR", "3,198.71CR", false, -319871},
		{"parenthesized credit", "(12.00)", false, -1200},
		{"leading minus", "-45.00", false, -4500},
		{"currency prefix", "RM 1,250.00", false, 125000},
		{"lowercase cr", "7.10cr", false, -710},
		{"whole number", "100", false, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatementAmount(tt.token, tt.explicitCredit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatementAmount_Unparsable(t *testing.T) {
	for _, token := range []string{"", "abc", "12.3.4"} {
		t.Run(token, func(t *testing.T) {
			_, err := ParseStatementAmount(token, false)
			assert.ErrorIs(t, err, ErrNoAmount)
		})
	}
}

func TestFromMinor(t *testing.T) {
	assert.Equal(t, "30.4", FromMinor(3040).String())
	assert.Equal(t, "-3198.71", FromMinor(-319871).String())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "RM30.40", Display(3040, MYR))
}
