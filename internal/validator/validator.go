package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
)

var hundred = decimal.NewFromInt(100)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like coupon names that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	v.RegisterStructValidation(couponParamsValidation, model.CouponParams{})

	return v
}

// couponParamsValidation checks the discount value against its type.
// decimal.Decimal is a struct, so field tags cannot compare it.
func couponParamsValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.CouponParams)

	if !p.DiscountValue.IsPositive() {
		sl.ReportError(p.DiscountValue, "DiscountValue", "DiscountValue", "positive", "")
		return
	}
	if p.DiscountType == model.DiscountTypePercent && p.DiscountValue.GreaterThan(hundred) {
		sl.ReportError(p.DiscountValue, "DiscountValue", "DiscountValue", "maxpercent", "100")
	}
}
