package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
	"github.com/fairyhunter13/issue-coupon-service/internal/service"
	"github.com/fairyhunter13/issue-coupon-service/pkg/database"
)

const uniqueViolation = "23505"

const couponColumns = `id, name, description, discount_type, discount_value, quantity, issued_count,
	valid_from, valid_to, status, created_at, updated_at, deleted_at`

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CouponRepository provides data access for coupons using pgx.
// Every method runs on the querier it is given, usually the caller's transaction.
type CouponRepository struct{}

// NewCouponRepository creates a new CouponRepository.
func NewCouponRepository() *CouponRepository {
	return &CouponRepository{}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.Quantity,
		&c.IssuedCount,
		&c.ValidFrom,
		&c.ValidTo,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCoupons(rows pgx.Rows) ([]*model.Coupon, error) {
	defer rows.Close()

	coupons := []*model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// Insert inserts a new coupon and fills in its generated id and timestamps.
// Returns service.ErrDuplicateName if an active coupon with the same name already exists.
func (r *CouponRepository) Insert(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error {
	query := `INSERT INTO coupons
		(name, description, discount_type, discount_value, quantity, issued_count, valid_from, valid_to, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		coupon.Name,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.Quantity,
		coupon.IssuedCount,
		coupon.ValidFrom,
		coupon.ValidTo,
		coupon.Status,
	).Scan(&coupon.ID, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrDuplicateName
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon by id regardless of status.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by id %d: %w", id, err)
	}
	return coupon, nil
}

// GetByIDForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByIDForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`

	coupon, err := scanCoupon(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %d: %w", id, err)
	}
	return coupon, nil
}

// ExistsActiveByName reports whether an active coupon other than excludeID uses the name.
// Pass 0 as excludeID to check against every active coupon.
func (r *CouponRepository) ExistsActiveByName(ctx context.Context, q database.TxQuerier, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM coupons WHERE name = $1 AND status = 'ACTIVE' AND id <> $2)`

	var exists bool
	if err := q.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check coupon name %s: %w", name, err)
	}
	return exists, nil
}

// ListActive returns all active coupons ordered by id.
// Returns an empty slice (not nil) when there are none.
func (r *CouponRepository) ListActive(ctx context.Context, q database.TxQuerier) ([]*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE status = 'ACTIVE' ORDER BY id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}
	return collectCoupons(rows)
}

// ListByIDs fetches the given coupons with a single query, whatever their status.
func (r *CouponRepository) ListByIDs(ctx context.Context, q database.TxQuerier, ids []int64) ([]*model.Coupon, error) {
	if len(ids) == 0 {
		return []*model.Coupon{}, nil
	}

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = ANY($1) ORDER BY id`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list coupons by ids: %w", err)
	}
	return collectCoupons(rows)
}

// Update writes every mutable column of the coupon, including status and deleted_at.
// Returns service.ErrDuplicateName on a name collision and service.ErrCouponNotFound
// if the row no longer exists.
func (r *CouponRepository) Update(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error {
	query := `UPDATE coupons SET
		name = $2, description = $3, discount_type = $4, discount_value = $5, quantity = $6,
		valid_from = $7, valid_to = $8, status = $9, deleted_at = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := q.QueryRow(ctx, query,
		coupon.ID,
		coupon.Name,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.Quantity,
		coupon.ValidFrom,
		coupon.ValidTo,
		coupon.Status,
		coupon.DeletedAt,
	).Scan(&coupon.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrCouponNotFound
		}
		if isUniqueViolation(err) {
			return service.ErrDuplicateName
		}
		return fmt.Errorf("update coupon %d: %w", coupon.ID, err)
	}
	return nil
}

// IncrementIssued increments the issued_count of a coupon by 1.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) IncrementIssued(ctx context.Context, q database.TxQuerier, id int64) error {
	query := `UPDATE coupons SET issued_count = issued_count + 1, updated_at = NOW() WHERE id = $1`

	_, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment issued for %d: %w", id, err)
	}
	return nil
}
