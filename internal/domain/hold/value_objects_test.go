//go:build unit

package hold_test

import (
	"testing"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		provider string
		errIs    error
	}{
		{in: "wallet", want: "wallet"},
		{in: "cash", want: "cash"},
		{in: "gateway:momo", want: "gateway:momo", provider: "momo"},
		{in: "gateway:VNPay", want: "gateway:vnpay", provider: "vnpay"},
		{in: "gateway:", errIs: hold.ErrInvalidChannel},
		{in: "gateway:a_b", errIs: hold.ErrInvalidChannel},
		{in: "card", errIs: hold.ErrInvalidChannel},
		{in: "", errIs: hold.ErrInvalidChannel},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := hold.ParseChannel(tc.in)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.String())
			assert.Equal(t, tc.provider, c.Provider())
		})
	}
}

func TestQuoteAmount(t *testing.T) {
	court := uuid.New()
	a, err := hold.NewSlotRef(court, "2030-06-01", "18:00", "19:30")
	require.NoError(t, err)

	amount, err := hold.QuoteAmount(map[uuid.UUID]int64{court: 200000}, []hold.SlotRef{a})
	require.NoError(t, err)
	assert.Equal(t, int64(300000), amount.Amount())

	_, err = hold.QuoteAmount(map[uuid.UUID]int64{}, []hold.SlotRef{a})
	assert.ErrorIs(t, err, hold.ErrInvalidSlot)
}

func TestNewMoney(t *testing.T) {
	_, err := hold.NewMoney(-1)
	assert.ErrorIs(t, err, hold.ErrNegativeAmount)

	m, err := hold.NewMoney(0)
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}
