package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWei(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{name: "whole ether", amount: "1", want: "1000000000000000000"},
		{name: "fractional", amount: "1.5", want: "1500000000000000000"},
		{name: "small fraction", amount: "0.000000001", want: "1000000000"},
		{name: "zero", amount: "0", want: "0"},
		{name: "negative", amount: "-1", wantErr: true},
		{name: "sub-wei precision", amount: "0.0000000000000000001", wantErr: true},
		{name: "not a number", amount: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToWei(tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromWei(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", FromWei(wei))
	assert.Equal(t, "0", FromWei(big.NewInt(0)))
	assert.Equal(t, "0", FromWei(nil))
}

func TestWeiRoundTrip(t *testing.T) {
	for _, amount := range []string{"1.5", "0.25", "100", "0.000000000000000001"} {
		wei, err := ToWei(amount)
		require.NoError(t, err)
		assert.Equal(t, amount, FromWei(wei))
	}
}
