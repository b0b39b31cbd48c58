package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/issue-coupon-service/internal/metrics"
	"github.com/fairyhunter13/issue-coupon-service/internal/model"
	"github.com/fairyhunter13/issue-coupon-service/internal/service"
)

// IssueServiceInterface defines the interface for coupon issuance logic.
type IssueServiceInterface interface {
	Issue(ctx context.Context, req *model.IssueCouponRequest, userID int64) (*model.UserCouponResponse, error)
	ListUserCoupons(ctx context.Context, userID int64) ([]model.CouponForm, error)
}

// IssueMetrics records the outcome of every issuance attempt.
type IssueMetrics interface {
	ObserveIssue(outcome string)
}

type noopIssueMetrics struct{}

func (noopIssueMetrics) ObserveIssue(string) {}

// IssueHandler handles HTTP requests for issuing coupons to the calling user.
type IssueHandler struct {
	service   IssueServiceInterface
	validator *validator.Validate
	metrics   IssueMetrics
}

// NewIssueHandler creates a new IssueHandler. A nil m disables issuance metrics.
func NewIssueHandler(svc IssueServiceInterface, v *validator.Validate, m IssueMetrics) *IssueHandler {
	if m == nil {
		m = noopIssueMetrics{}
	}
	return &IssueHandler{service: svc, validator: v, metrics: m}
}

func issueOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeIssued
	case errors.Is(err, service.ErrCouponNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, service.ErrInvalidCoupon):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// IssueCoupon handles POST /api/coupons/issue requests.
func (h *IssueHandler) IssueCoupon(c *fiber.Ctx) error {
	var req model.IssueCouponRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		h.metrics.ObserveIssue(metrics.OutcomeRejected)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		h.metrics.ObserveIssue(metrics.OutcomeRejected)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	uid := userID(c)
	resp, err := h.service.Issue(c.Context(), &req, uid)
	h.metrics.ObserveIssue(issueOutcome(err))
	if err != nil {
		return respondServiceError(c, err, "failed to issue coupon", func(e *zerolog.Event) {
			e.Int64("user_id", uid).Int64("coupon_id", req.CouponID)
		})
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int64("user_id", uid).
		Int64("coupon_id", req.CouponID).
		Msg("coupon issued successfully")

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListMyCoupons handles GET /api/users/me/coupons requests.
func (h *IssueHandler) ListMyCoupons(c *fiber.Ctx) error {
	uid := userID(c)
	forms, err := h.service.ListUserCoupons(c.Context(), uid)
	if err != nil {
		return respondServiceError(c, err, "failed to list user coupons", func(e *zerolog.Event) {
			e.Int64("user_id", uid)
		})
	}
	return c.JSON(forms)
}
