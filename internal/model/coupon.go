package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CouponStatus is the lifecycle state of a coupon. The only transition is ACTIVE -> DELETED.
type CouponStatus string

const (
	CouponStatusActive  CouponStatus = "ACTIVE"
	CouponStatusDeleted CouponStatus = "DELETED"
)

// DiscountType selects how DiscountValue is applied.
type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "FIXED"
	DiscountTypePercent DiscountType = "PERCENT"
)

// Reasons a coupon fails its validity check at issuance time.
var (
	ErrCouponDeleted       = errors.New("coupon is deleted")
	ErrCouponNotStarted    = errors.New("coupon issuance period has not started")
	ErrCouponExpired       = errors.New("coupon issuance period has ended")
	ErrCouponExhausted     = errors.New("coupon issuance limit reached")
	ErrQuantityBelowIssued = errors.New("quantity is lower than the number already issued")
)

// Coupon represents a centrally managed coupon definition.
type Coupon struct {
	ID            int64
	Name          string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Quantity      int
	IssuedCount   int
	ValidFrom     time.Time
	ValidTo       time.Time
	Status        CouponStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// NewCoupon builds an active coupon from creation parameters. Nothing has been issued yet.
func NewCoupon(p CouponParams) *Coupon {
	c := &Coupon{Status: CouponStatusActive}
	c.apply(p)
	return c
}

// Modify replaces the mutable attributes of the coupon.
// The issuance limit cannot be lowered below what was already issued.
func (c *Coupon) Modify(p CouponParams) error {
	if p.Quantity < c.IssuedCount {
		return ErrQuantityBelowIssued
	}
	c.apply(p)
	return nil
}

func (c *Coupon) apply(p CouponParams) {
	c.Name = p.Name
	c.Description = p.Description
	c.DiscountType = p.DiscountType
	c.DiscountValue = p.DiscountValue
	c.Quantity = p.Quantity
	c.ValidFrom = p.ValidFrom
	c.ValidTo = p.ValidTo
}

// Delete marks the coupon deleted. Deleting twice keeps the first DeletedAt.
func (c *Coupon) Delete(now time.Time) {
	if c.IsDeleted() {
		return
	}
	c.Status = CouponStatusDeleted
	c.DeletedAt = &now
}

// IsDeleted reports whether the coupon was soft-deleted.
func (c *Coupon) IsDeleted() bool {
	return c.Status == CouponStatusDeleted
}

// Validate checks whether the coupon may be issued at the given instant.
func (c *Coupon) Validate(now time.Time) error {
	switch {
	case c.IsDeleted():
		return ErrCouponDeleted
	case now.Before(c.ValidFrom):
		return ErrCouponNotStarted
	case !now.Before(c.ValidTo):
		return ErrCouponExpired
	case c.IssuedCount >= c.Quantity:
		return ErrCouponExhausted
	}
	return nil
}

// Display maps the coupon to its list form.
func (c *Coupon) Display() CouponForm {
	return CouponForm{
		ID:            c.ID,
		Name:          c.Name,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		ValidFrom:     c.ValidFrom,
		ValidTo:       c.ValidTo,
		Status:        c.Status,
	}
}

// Detail maps the coupon to its full detail form.
func (c *Coupon) Detail() *CouponDetail {
	return &CouponDetail{
		CouponForm:      c.Display(),
		Description:     c.Description,
		Quantity:        c.Quantity,
		IssuedCount:     c.IssuedCount,
		RemainingAmount: max(c.Quantity-c.IssuedCount, 0),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		DeletedAt:       c.DeletedAt,
	}
}

// CouponParams carries the attributes shared by creation and modification.
type CouponParams struct {
	Name          string          `json:"name" validate:"required,notblank,max=255"`
	Description   string          `json:"description" validate:"max=1000"`
	DiscountType  DiscountType    `json:"discount_type" validate:"required,oneof=FIXED PERCENT"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Quantity      int             `json:"quantity" validate:"required,gte=1"`
	ValidFrom     time.Time       `json:"valid_from" validate:"required"`
	ValidTo       time.Time       `json:"valid_to" validate:"required,gtfield=ValidFrom"`
}

// CreateCouponRequest is the DTO for creating a coupon
type CreateCouponRequest struct {
	CouponParams
}

// ModifyCouponRequest is the DTO for modifying a coupon
type ModifyCouponRequest struct {
	CouponParams
}

// IssueCouponRequest is the DTO for issuing a coupon to the calling user
type IssueCouponRequest struct {
	CouponID int64 `json:"coupon_id" validate:"required,gte=1"`
}

// CouponForm is the list display form of a coupon.
type CouponForm struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidTo       time.Time       `json:"valid_to"`
	Status        CouponStatus    `json:"status"`
}

// CouponDetail is the API response DTO for GET /api/coupons/:id
type CouponDetail struct {
	CouponForm
	Description     string     `json:"description"`
	Quantity        int        `json:"quantity"`
	IssuedCount     int        `json:"issued_count"`
	RemainingAmount int        `json:"remaining_amount"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}
