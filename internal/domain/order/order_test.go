package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onieto/order-service/internal/domain/coupon"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PAID", "SHIPPED", "CANCELLED"} {
		st, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), st)
	}

	_, err := ParseStatus("DELIVERED")
	var isErr *InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "DELIVERED", isErr.Value)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPaid, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusPaid.Terminal())
	assert.True(t, StatusShipped.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestLineItemSetQuantity(t *testing.T) {
	item := LineItem{
		ProductID: "p1",
		UnitPrice: decimal.RequireFromString("9.99"),
	}

	item.SetQuantity(3)

	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("29.97")),
		"subtotal = %s", item.Subtotal)
}

func TestRecalculate_NoCoupon(t *testing.T) {
	o := &Order{Items: []LineItem{
		itemWithSubtotal("p1", "10.00"),
		itemWithSubtotal("p2", "25.50"),
	}}

	o.Recalculate()

	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("35.50")))
	assert.True(t, o.DiscountApplied.IsZero())
	assert.True(t, o.FinalPrice.Equal(o.Subtotal))
}

func TestRecalculate_CouponDiscount(t *testing.T) {
	o := &Order{
		Coupon: &coupon.Coupon{Code: "TEN", DiscountAmount: decimal.NewFromInt(10)},
		Items:  []LineItem{itemWithSubtotal("p1", "30.00")},
	}

	o.Recalculate()

	assert.True(t, o.DiscountApplied.Equal(decimal.NewFromInt(10)))
	assert.True(t, o.FinalPrice.Equal(decimal.NewFromInt(20)))
}

func TestRecalculate_DiscountClampedToSubtotal(t *testing.T) {
	o := &Order{
		Coupon: &coupon.Coupon{Code: "BIG", DiscountAmount: decimal.NewFromInt(100)},
		Items:  []LineItem{itemWithSubtotal("p1", "15.00")},
	}

	o.Recalculate()

	assert.True(t, o.DiscountApplied.Equal(decimal.NewFromInt(15)),
		"discount = %s", o.DiscountApplied)
	assert.True(t, o.FinalPrice.IsZero(), "final price = %s", o.FinalPrice)
}

func TestRecalculate_EmptyItems(t *testing.T) {
	o := &Order{
		Coupon: &coupon.Coupon{Code: "TEN", DiscountAmount: decimal.NewFromInt(10)},
	}

	o.Recalculate()

	assert.True(t, o.Subtotal.IsZero())
	assert.True(t, o.DiscountApplied.IsZero())
	assert.True(t, o.FinalPrice.IsZero())
}

func TestFindItem(t *testing.T) {
	o := &Order{Items: []LineItem{
		itemWithSubtotal("p1", "10.00"),
		itemWithSubtotal("p2", "20.00"),
	}}

	require.NotNil(t, o.FindItem("p2"))
	assert.Equal(t, "p2", o.FindItem("p2").ProductID)
	assert.Nil(t, o.FindItem("p3"))

	// Must return a pointer into the slice so mutations stick.
	o.FindItem("p1").SetQuantity(5)
	assert.Equal(t, 5, o.Items[0].Quantity)
}

func itemWithSubtotal(productID, subtotal string) LineItem {
	return LineItem{
		ProductID: productID,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString(subtotal),
		Subtotal:  decimal.RequireFromString(subtotal),
	}
}
