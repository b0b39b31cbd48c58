package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
)

// CouponServiceInterface defines the interface for coupon management logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) error
	List(ctx context.Context) ([]model.CouponForm, error)
	Get(ctx context.Context, id int64) (*model.CouponDetail, error)
	Modify(ctx context.Context, id int64, req *model.ModifyCouponRequest) error
	Delete(ctx context.Context, id int64) error
}

// CouponHandler handles HTTP requests for coupon management.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// couponID parses the :id route parameter.
func couponID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a positive integer"})
}

// CreateCoupon handles POST /api/coupons requests to create a new coupon.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Create(c.Context(), &req); err != nil {
		return respondServiceError(c, err, "failed to create coupon", func(e *zerolog.Event) {
			e.Str("coupon_name", req.Name)
		})
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("coupon_name", req.Name).
		Int("quantity", req.Quantity).
		Msg("coupon created")

	return c.Status(fiber.StatusCreated).Send(nil)
}

// ListCoupons handles GET /api/coupons requests.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	forms, err := h.service.List(c.Context())
	if err != nil {
		return respondServiceError(c, err, "failed to list coupons", nil)
	}
	return c.JSON(forms)
}

// GetCoupon handles GET /api/coupons/:id requests to retrieve coupon details.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	id, ok := couponID(c)
	if !ok {
		return invalidID(c)
	}

	detail, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err, "failed to get coupon", func(e *zerolog.Event) {
			e.Int64("coupon_id", id)
		})
	}

	return c.JSON(detail)
}

// ModifyCoupon handles PUT /api/coupons/:id requests.
func (h *CouponHandler) ModifyCoupon(c *fiber.Ctx) error {
	id, ok := couponID(c)
	if !ok {
		return invalidID(c)
	}

	var req model.ModifyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Modify(c.Context(), id, &req); err != nil {
		return respondServiceError(c, err, "failed to modify coupon", func(e *zerolog.Event) {
			e.Int64("coupon_id", id).Str("coupon_name", req.Name)
		})
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("coupon_id", id).
		Msg("coupon modified")

	return c.Status(fiber.StatusOK).Send(nil)
}

// DeleteCoupon handles DELETE /api/coupons/:id requests.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, ok := couponID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err, "failed to delete coupon", func(e *zerolog.Event) {
			e.Int64("coupon_id", id)
		})
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("coupon_id", id).
		Msg("coupon deleted")

	return c.Status(fiber.StatusOK).Send(nil)
}
