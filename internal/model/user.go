package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the role an upstream gateway attaches to a request.
type UserRole string

const (
	RoleGuest UserRole = "ROLE_GUEST"
	RoleUser  UserRole = "ROLE_USER"
	RoleAdmin UserRole = "ROLE_ADMIN"
)

// ParseUserRole maps a header value to a role. Unknown values are treated as guests.
func ParseUserRole(s string) UserRole {
	switch UserRole(s) {
	case RoleUser, RoleAdmin:
		return UserRole(s)
	}
	return RoleGuest
}

// UserCoupon records that one coupon instance was issued to one user.
type UserCoupon struct {
	ID       int64
	UserID   int64
	CouponID int64
	Code     string
	IssuedAt time.Time
}

// NewUserCoupon creates an issuance record with a fresh redemption code.
func NewUserCoupon(userID int64, coupon *Coupon) *UserCoupon {
	return &UserCoupon{
		UserID:   userID,
		CouponID: coupon.ID,
		Code:     uuid.NewString(),
	}
}

// UserCouponResponse is returned after a successful issuance.
type UserCouponResponse struct {
	ID       int64     `json:"id"`
	CouponID int64     `json:"coupon_id"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}
