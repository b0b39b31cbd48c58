package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
)

// RegisterRoutes mounts the health check and the authenticated API on app.
func RegisterRoutes(app *fiber.App, health *HealthHandler, coupons *CouponHandler, issues *IssueHandler) {
	app.Get("/health", health.Check)

	admin := RequireRole(model.RoleAdmin)
	member := RequireRole(model.RoleUser, model.RoleAdmin)

	api := app.Group("/api", Authenticate())
	api.Post("/coupons/issue", member, issues.IssueCoupon)
	api.Post("/coupons", admin, coupons.CreateCoupon)
	api.Get("/coupons", coupons.ListCoupons)
	api.Get("/coupons/:id", coupons.GetCoupon)
	api.Put("/coupons/:id", admin, coupons.ModifyCoupon)
	api.Delete("/coupons/:id", admin, coupons.DeleteCoupon)
	api.Get("/users/me/coupons", member, issues.ListMyCoupons)
}
