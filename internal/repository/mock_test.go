package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
)

// mockRow implements pgx.Row for testing single-row queries.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockRows implements pgx.Rows, handing each record to fill on Scan.
type mockRows struct {
	count     int
	fill      func(i int, dest ...any)
	index     int
	errOnScan error
	errOnRows error
	closed    bool
}

func (m *mockRows) Close() { m.closed = true }

func (m *mockRows) Err() error {
	return m.errOnRows
}

func (m *mockRows) Next() bool {
	if m.index < m.count {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	if m.errOnScan != nil {
		return m.errOnScan
	}
	if m.fill != nil {
		m.fill(m.index-1, dest...)
	}
	return nil
}

func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockQuerier implements database.TxQuerier for testing.
type mockQuerier struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func testCoupon(id int64, name string) *model.Coupon {
	now := time.Now()
	return &model.Coupon{
		ID:            id,
		Name:          name,
		Description:   "spring sale",
		DiscountType:  model.DiscountTypePercent,
		DiscountValue: decimal.NewFromInt(15),
		Quantity:      100,
		IssuedCount:   3,
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
		Status:        model.CouponStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// fillCoupon writes c into the destinations in couponColumns order.
func fillCoupon(c *model.Coupon, dest ...any) {
	*(dest[0].(*int64)) = c.ID
	*(dest[1].(*string)) = c.Name
	*(dest[2].(*string)) = c.Description
	*(dest[3].(*model.DiscountType)) = c.DiscountType
	*(dest[4].(*decimal.Decimal)) = c.DiscountValue
	*(dest[5].(*int)) = c.Quantity
	*(dest[6].(*int)) = c.IssuedCount
	*(dest[7].(*time.Time)) = c.ValidFrom
	*(dest[8].(*time.Time)) = c.ValidTo
	*(dest[9].(*model.CouponStatus)) = c.Status
	*(dest[10].(*time.Time)) = c.CreatedAt
	*(dest[11].(*time.Time)) = c.UpdatedAt
	*(dest[12].(**time.Time)) = c.DeletedAt
}

func couponRows(coupons ...*model.Coupon) *mockRows {
	return &mockRows{
		count: len(coupons),
		fill: func(i int, dest ...any) {
			fillCoupon(coupons[i], dest...)
		},
	}
}
