package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
	"github.com/fairyhunter13/issue-coupon-service/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error
	GetByID(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error)
	GetByIDForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error)
	ExistsActiveByName(ctx context.Context, q database.TxQuerier, name string, excludeID int64) (bool, error)
	ListActive(ctx context.Context, q database.TxQuerier) ([]*model.Coupon, error)
	ListByIDs(ctx context.Context, q database.TxQuerier, ids []int64) ([]*model.Coupon, error)
	Update(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error
	IncrementIssued(ctx context.Context, q database.TxQuerier, id int64) error
}

// UserCouponRepositoryInterface defines the interface for issued coupon data access.
type UserCouponRepositoryInterface interface {
	Insert(ctx context.Context, q database.TxQuerier, uc *model.UserCoupon) error
	ListByUserID(ctx context.Context, q database.TxQuerier, userID int64) ([]*model.UserCoupon, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var (
	readWrite = pgx.TxOptions{}
	readOnly  = pgx.TxOptions{AccessMode: pgx.ReadOnly}
)

// CouponService provides business logic for coupon management and issuance.
// Every public method runs in a single transaction.
type CouponService struct {
	pool           TxBeginner
	couponRepo     CouponRepositoryInterface
	userCouponRepo UserCouponRepositoryInterface
	now            func() time.Time
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, userCouponRepo UserCouponRepositoryInterface) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, couponRepo, userCouponRepo)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, userCouponRepo UserCouponRepositoryInterface) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		userCouponRepo: userCouponRepo,
		now:            time.Now,
	}
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (s *CouponService) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Create creates a new coupon from the request.
// Returns ErrDuplicateName if an active coupon already has the same name.
// Returns ErrInvalidRequest if request data is nil.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	if req == nil {
		return ErrInvalidRequest
	}

	return s.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		if err := s.checkDuplicateName(ctx, tx, req.Name, 0); err != nil {
			return err
		}

		coupon := model.NewCoupon(req.CouponParams)
		if err := s.couponRepo.Insert(ctx, tx, coupon); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				return ErrDuplicateName
			}
			return fmt.Errorf("create coupon: %w", err)
		}
		return nil
	})
}

// List returns every active coupon in display form.
func (s *CouponService) List(ctx context.Context) ([]model.CouponForm, error) {
	var forms []model.CouponForm
	err := s.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		coupons, err := s.couponRepo.ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("list coupons: %w", err)
		}
		forms = toForms(coupons)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

// Get returns the full detail form of a coupon. Deleted coupons are still returned.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Get(ctx context.Context, id int64) (*model.CouponDetail, error) {
	var detail *model.CouponDetail
	err := s.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		coupon, err := s.getCoupon(ctx, tx, id)
		if err != nil {
			return err
		}
		detail = coupon.Detail()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Modify applies the modification parameters to an existing coupon.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponDeleted if the coupon was deleted
//   - ErrDuplicateName if another active coupon uses the new name
//   - ErrInvalidRequest if the new quantity is below the issued count
func (s *CouponService) Modify(ctx context.Context, id int64, req *model.ModifyCouponRequest) error {
	if req == nil {
		return ErrInvalidRequest
	}

	return s.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		coupon, err := s.lockCoupon(ctx, tx, id)
		if err != nil {
			return err
		}
		if coupon.IsDeleted() {
			return ErrCouponDeleted
		}
		if err := s.checkDuplicateName(ctx, tx, req.Name, id); err != nil {
			return err
		}

		if err := coupon.Modify(req.CouponParams); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if err := s.couponRepo.Update(ctx, tx, coupon); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				return ErrDuplicateName
			}
			return fmt.Errorf("modify coupon: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a coupon. Coupons already issued to users are kept.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		coupon, err := s.lockCoupon(ctx, tx, id)
		if err != nil {
			return err
		}
		if coupon.IsDeleted() {
			return nil
		}

		coupon.Delete(s.now())
		if err := s.couponRepo.Update(ctx, tx, coupon); err != nil {
			return fmt.Errorf("delete coupon: %w", err)
		}
		return nil
	})
}

// Issue issues a coupon to a user.
// Uses SELECT FOR UPDATE so the issued count cannot overshoot the quantity.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrInvalidCoupon (wrapping the model reason) if the coupon fails validation
func (s *CouponService) Issue(ctx context.Context, req *model.IssueCouponRequest, userID int64) (*model.UserCouponResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	var issued *model.UserCoupon
	err := s.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		// 1. Lock the coupon row
		coupon, err := s.lockCoupon(ctx, tx, req.CouponID)
		if err != nil {
			return err
		}

		// 2. Validate
		if err := coupon.Validate(s.now()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
		}

		// 3. Record issuance (no per-user uniqueness)
		uc := model.NewUserCoupon(userID, coupon)
		if err := s.userCouponRepo.Insert(ctx, tx, uc); err != nil {
			return fmt.Errorf("insert user coupon: %w", err)
		}

		// 4. Count it against the limit
		if err := s.couponRepo.IncrementIssued(ctx, tx, coupon.ID); err != nil {
			return fmt.Errorf("increment issued: %w", err)
		}

		issued = uc
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("user_id", userID).
		Int64("coupon_id", issued.CouponID).
		Str("code", issued.Code).
		Msg("coupon issued")

	return &model.UserCouponResponse{
		ID:       issued.ID,
		CouponID: issued.CouponID,
		Code:     issued.Code,
		IssuedAt: issued.IssuedAt,
	}, nil
}

// ListUserCoupons returns the coupons issued to a user.
// Coupon ids are collected first and fetched with one batched query.
func (s *CouponService) ListUserCoupons(ctx context.Context, userID int64) ([]model.CouponForm, error) {
	var forms []model.CouponForm
	err := s.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		userCoupons, err := s.userCouponRepo.ListByUserID(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("list user coupons: %w", err)
		}
		if len(userCoupons) == 0 {
			forms = []model.CouponForm{}
			return nil
		}

		coupons, err := s.couponRepo.ListByIDs(ctx, tx, couponIDs(userCoupons))
		if err != nil {
			return fmt.Errorf("list coupons by ids: %w", err)
		}
		forms = toForms(coupons)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func (s *CouponService) getCoupon(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// lockCoupon reads a coupon with a row lock held until the transaction ends.
// Writers go through it so an Update never persists a stale status or issued count.
func (s *CouponService) lockCoupon(ctx context.Context, q database.TxQuerier, id int64) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByIDForUpdate(ctx, q, id)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}
	return coupon, nil
}

func (s *CouponService) checkDuplicateName(ctx context.Context, q database.TxQuerier, name string, excludeID int64) error {
	exists, err := s.couponRepo.ExistsActiveByName(ctx, q, name, excludeID)
	if err != nil {
		return fmt.Errorf("check coupon name: %w", err)
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

// couponIDs returns the distinct coupon ids in first-seen order.
func couponIDs(userCoupons []*model.UserCoupon) []int64 {
	seen := make(map[int64]struct{}, len(userCoupons))
	ids := make([]int64, 0, len(userCoupons))
	for _, uc := range userCoupons {
		if _, ok := seen[uc.CouponID]; ok {
			continue
		}
		seen[uc.CouponID] = struct{}{}
		ids = append(ids, uc.CouponID)
	}
	return ids
}

func toForms(coupons []*model.Coupon) []model.CouponForm {
	forms := make([]model.CouponForm, 0, len(coupons))
	for _, c := range coupons {
		forms = append(forms, c.Display())
	}
	return forms
}
