package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "referrals_inviter_id_fkey",
	}

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Inviter FK violation",
			err:      fkErr,
			expected: true,
		},
		{
			name:     "Wrapped FK violation",
			err:      fmt.Errorf("failed to insert referral: %w", fkErr),
			expected: true,
		},
		{
			name:     "Unique violation is not a FK violation",
			err:      &pgconn.PgError{Code: "23505"},
			expected: false,
		},
		{
			name:     "Plain error",
			err:      errors.New("connection reset"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isForeignKeyViolation(tt.err))
		})
	}
}
