package repository

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
	"github.com/fairyhunter13/issue-coupon-service/pkg/database"
)

// UserCouponRepository provides data access for issued coupons using pgx.
type UserCouponRepository struct{}

// NewUserCouponRepository creates a new UserCouponRepository.
func NewUserCouponRepository() *UserCouponRepository {
	return &UserCouponRepository{}
}

// Insert records an issuance and fills in its generated id and issued_at.
func (r *UserCouponRepository) Insert(ctx context.Context, q database.TxQuerier, uc *model.UserCoupon) error {
	query := `INSERT INTO user_coupons (user_id, coupon_id, code) VALUES ($1, $2, $3) RETURNING id, issued_at`

	err := q.QueryRow(ctx, query, uc.UserID, uc.CouponID, uc.Code).Scan(&uc.ID, &uc.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert user coupon: %w", err)
	}
	return nil
}

// ListByUserID retrieves every coupon issued to a user, oldest first.
// On success, returns an empty slice (not nil) when nothing was issued.
// On error, returns nil and the wrapped error.
func (r *UserCouponRepository) ListByUserID(ctx context.Context, q database.TxQuerier, userID int64) ([]*model.UserCoupon, error) {
	query := `SELECT id, user_id, coupon_id, code::text, issued_at FROM user_coupons WHERE user_id = $1 ORDER BY id`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get user coupons for user %d: %w", userID, err)
	}
	defer rows.Close()

	userCoupons := []*model.UserCoupon{}
	for rows.Next() {
		var uc model.UserCoupon
		if err := rows.Scan(&uc.ID, &uc.UserID, &uc.CouponID, &uc.Code, &uc.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan user coupon: %w", err)
		}
		userCoupons = append(userCoupons, &uc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user coupon rows: %w", err)
	}

	return userCoupons, nil
}
