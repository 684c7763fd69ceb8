package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPackaging, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusPackaging, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusReturned, true},

		//飛ばし・逆行は不可
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusReturned, OrderStatusPending, false},

		//決済検証待ちからは管理者は動かせない
		{OrderStatusPendingVerification, OrderStatusProcessing, false},
		{OrderStatusPaymentFailed, OrderStatusProcessing, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTaxFor(t *testing.T) {
	assert.Equal(t, int64(200), TaxFor(2000))
	assert.Equal(t, int64(0), TaxFor(0))
	//整数演算なので端数は切り捨て
	assert.Equal(t, int64(10), TaxFor(105))
}
