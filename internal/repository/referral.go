package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// Postgres SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// isForeignKeyViolation reports whether err is a foreign key violation,
// raised by the referral insert when the inviter row does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// CreateReferral records the inviter/invited edge and credits the bonus to
// the inviter in one transaction. Uniqueness of invited_id is enforced by
// the table constraint rather than a pre-check; a conflicting insert
// affects zero rows and the whole transaction becomes a no-op.
func (r *Repository) CreateReferral(ctx context.Context, inviterID, invitedID int64, bonus float64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("referrals").
			SetMap(map[string]interface{}{
				"inviter_id": inviterID,
				"invited_id": invitedID,
			}).
			Suffix("ON CONFLICT (invited_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			// A code can name an inviter that was never registered; the FK
			// rejects it and the referral is reported as not found rather
			// than as a storage failure.
			if isForeignKeyViolation(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyReferred
		}

		updateQuery, updateArgs, err := squirrel.
			Update("users").
			Set("invited_by", inviterID).
			Where(squirrel.Eq{"user_id": invitedID, "invited_by": nil}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build invited_by update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update invited_by: %w", err)
		}

		return adjustBalanceWithTx(ctx, tx, inviterID, bonus)
	})
}

func (r *Repository) CountReferrals(ctx context.Context, telegramID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"inviter_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}
