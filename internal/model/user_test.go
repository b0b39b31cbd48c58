package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserRole(t *testing.T) {
	tests := []struct {
		in   string
		want UserRole
	}{
		{"ROLE_ADMIN", RoleAdmin},
		{"ROLE_USER", RoleUser},
		{"ROLE_GUEST", RoleGuest},
		{"", RoleGuest},
		{"ADMIN", RoleGuest},
		{"role_admin", RoleGuest},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseUserRole(tc.in))
		})
	}
}

func TestNewUserCoupon(t *testing.T) {
	c := NewCoupon(params())
	c.ID = 7

	first := NewUserCoupon(1001, c)
	second := NewUserCoupon(1001, c)

	assert.Equal(t, int64(1001), first.UserID)
	assert.Equal(t, int64(7), first.CouponID)
	_, err := uuid.Parse(first.Code)
	require.NoError(t, err, "code should be a UUID")
	assert.NotEqual(t, first.Code, second.Code)
}
