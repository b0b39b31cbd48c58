package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func params() CouponParams {
	return CouponParams{
		Name:          "WELCOME10",
		Description:   "first order discount",
		DiscountType:  DiscountTypePercent,
		DiscountValue: decimal.RequireFromString("10.5"),
		Quantity:      3,
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
	}
}

func TestNewCoupon(t *testing.T) {
	c := NewCoupon(params())

	assert.Equal(t, CouponStatusActive, c.Status)
	assert.Equal(t, 0, c.IssuedCount)
	assert.Equal(t, "WELCOME10", c.Name)
	assert.True(t, decimal.RequireFromString("10.5").Equal(c.DiscountValue))
	assert.Nil(t, c.DeletedAt)
}

func TestCoupon_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Coupon)
		at      time.Time
		wantErr error
	}{
		{name: "issuable", mutate: func(c *Coupon) {}, at: now},
		{name: "at valid_from", mutate: func(c *Coupon) {}, at: now.Add(-time.Hour)},
		{name: "before valid_from", mutate: func(c *Coupon) {}, at: now.Add(-2 * time.Hour), wantErr: ErrCouponNotStarted},
		{name: "at valid_to", mutate: func(c *Coupon) {}, at: now.Add(time.Hour), wantErr: ErrCouponExpired},
		{name: "exhausted", mutate: func(c *Coupon) { c.IssuedCount = 3 }, at: now, wantErr: ErrCouponExhausted},
		{name: "last one left", mutate: func(c *Coupon) { c.IssuedCount = 2 }, at: now},
		{name: "deleted", mutate: func(c *Coupon) { c.Delete(now) }, at: now, wantErr: ErrCouponDeleted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCoupon(params())
			tc.mutate(c)

			err := c.Validate(tc.at)

			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCoupon_Modify(t *testing.T) {
	c := NewCoupon(params())
	c.ID = 7
	c.IssuedCount = 2

	p := params()
	p.Name = "WELCOME20"
	p.Quantity = 2
	require.NoError(t, c.Modify(p))

	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "WELCOME20", c.Name)
	assert.Equal(t, 2, c.Quantity)
	assert.Equal(t, 2, c.IssuedCount, "issued count is not a modifiable attribute")
}

func TestCoupon_Modify_QuantityBelowIssued(t *testing.T) {
	c := NewCoupon(params())
	c.IssuedCount = 2

	p := params()
	p.Name = "CHANGED"
	p.Quantity = 1
	err := c.Modify(p)

	assert.ErrorIs(t, err, ErrQuantityBelowIssued)
	assert.Equal(t, "WELCOME10", c.Name, "a rejected modification leaves the coupon untouched")
}

func TestCoupon_Delete_Idempotent(t *testing.T) {
	c := NewCoupon(params())

	c.Delete(now)
	c.Delete(now.Add(time.Hour))

	assert.True(t, c.IsDeleted())
	require.NotNil(t, c.DeletedAt)
	assert.Equal(t, now, *c.DeletedAt)
}

func TestCoupon_Detail(t *testing.T) {
	c := NewCoupon(params())
	c.ID = 7
	c.IssuedCount = 1

	d := c.Detail()

	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, "first order discount", d.Description)
	assert.Equal(t, 2, d.RemainingAmount)
	assert.Equal(t, c.Display(), d.CouponForm)
}

func TestCoupon_Detail_RemainingNeverNegative(t *testing.T) {
	c := NewCoupon(params())
	c.IssuedCount = 5

	assert.Equal(t, 0, c.Detail().RemainingAmount)
}

func TestCouponForm_JSON(t *testing.T) {
	c := NewCoupon(params())
	c.ID = 7

	body, err := json.Marshal(c.Display())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "WELCOME10", got["name"])
	assert.Equal(t, "PERCENT", got["discount_type"])
	assert.Equal(t, "10.5", got["discount_value"])
	assert.Equal(t, "ACTIVE", got["status"])
	assert.NotContains(t, got, "description")
}

func TestCouponDetail_JSON_OmitsDeletedAtWhenActive(t *testing.T) {
	body, err := json.Marshal(NewCoupon(params()).Detail())
	require.NoError(t, err)

	assert.NotContains(t, string(body), "deleted_at")
	assert.Contains(t, string(body), `"remaining_amount":3`)
}

func TestCreateCouponRequest_DecodesDiscountValue(t *testing.T) {
	body := `{"name":"WELCOME10","discount_type":"FIXED","discount_value":"5000","quantity":10,` +
		`"valid_from":"2026-03-01T00:00:00Z","valid_to":"2026-04-01T00:00:00Z"}`

	var req CreateCouponRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "WELCOME10", req.Name)
	assert.Equal(t, DiscountTypeFixed, req.DiscountType)
	assert.True(t, decimal.NewFromInt(5000).Equal(req.DiscountValue))
	assert.Equal(t, 10, req.Quantity)
}
