package service

import "errors"

var (
	// ErrDuplicateName is returned when another active coupon already uses the name
	ErrDuplicateName = errors.New("coupon name already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidCoupon is returned when a coupon fails its validity check at issuance
	ErrInvalidCoupon = errors.New("coupon cannot be issued")

	// ErrCouponDeleted is returned when modifying a coupon that was already deleted
	ErrCouponDeleted = errors.New("coupon is deleted")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
