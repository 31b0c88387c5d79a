package amount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-65,66", "-65.66"},
		{"100", "100"},
		{"0,5", "0.5"},
		{"1.234,50", "1234.5"},
		{"-12.345.678,01", "-12345678.01"},
		{" 42,00 ", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"abc", "12.50", "1,2,3", "1,", "1.23,00", "--5"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "-65,66", Format(decimal.RequireFromString("-65.66")))
	assert.Equal(t, "1234,50", Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "0,00", Format(decimal.Zero))
}
