package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/issue-coupon-service/internal/service"
)

// fieldNames maps request struct fields to their JSON names.
var fieldNames = map[string]string{
	"Name":          "name",
	"Description":   "description",
	"DiscountType":  "discount_type",
	"DiscountValue": "discount_value",
	"Quantity":      "quantity",
	"ValidFrom":     "valid_from",
	"ValidTo":       "valid_to",
	"CouponID":      "coupon_id",
}

// formatValidationError converts validator errors to client-facing messages.
// Only the first failing field is reported.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field, ok := fieldNames[fe.Field()]
	if !ok {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "oneof":
		return "invalid request: " + field + " must be one of " + fe.Param()
	case "gtfield":
		return "invalid request: " + field + " must be after valid_from"
	case "positive":
		return "invalid request: " + field + " must be greater than 0"
	case "maxpercent":
		return "invalid request: " + field + " must not exceed 100 for PERCENT coupons"
	default:
		return "invalid request: " + field + " is invalid"
	}
}

// respondServiceError maps a service error to its HTTP status.
// Unexpected errors are logged with the request context and answered with 500.
func respondServiceError(c *fiber.Ctx, err error, msg string, fields func(e *zerolog.Event)) error {
	status, body := fiber.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidCoupon):
		status, body = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrCouponNotFound):
		status, body = fiber.StatusNotFound, "coupon not found"
	case errors.Is(err, service.ErrDuplicateName):
		status, body = fiber.StatusConflict, "coupon name already exists"
	case errors.Is(err, service.ErrCouponDeleted):
		status, body = fiber.StatusConflict, "coupon is deleted"
	case errors.Is(err, service.ErrInvalidRequest):
		status, body = fiber.StatusBadRequest, err.Error()
	}

	if status == fiber.StatusInternalServerError {
		event := log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path())
		if fields != nil {
			fields(event)
		}
		event.Msg(msg)
	}

	return c.Status(status).JSON(fiber.Map{"error": body})
}
