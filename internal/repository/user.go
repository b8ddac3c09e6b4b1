package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TG_adrewards/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Balance   float64   `db:"balance"`
	InvitedBy *int64    `db:"invited_by"`
	JoinDate  time.Time `db:"join_date"`
}

// CreateUser inserts the user row, doing nothing when it already exists.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":    user.TelegramID,
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"invited_by": user.InvitedBy,
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"user_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.User{
		TelegramID: user.UserID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Balance:    user.Balance,
		InvitedBy:  user.InvitedBy,
		JoinDate:   user.JoinDate,
	}, nil
}

// GetUserBalance returns 0 for a user that has never registered.
func (r *Repository) GetUserBalance(ctx context.Context, telegramID int64) (float64, error) {
	var balance float64
	query, args, err := squirrel.
		Select("balance").
		From("users").
		Where(squirrel.Eq{"user_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	err = r.db.GetContext(ctx, &balance, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return balance, nil
}

// AdjustBalance applies an additive balance change as a single atomic
// increment against the stored value.
func (r *Repository) AdjustBalance(ctx context.Context, telegramID int64, delta float64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return adjustBalanceWithTx(ctx, tx, telegramID, delta)
	})
}

func adjustBalanceWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64, delta float64) error {
	query, args, err := squirrel.
		Update("users").
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Where(squirrel.Eq{"user_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// lockUserWithTx takes a row lock on the user for the lifetime of the
// transaction, serialising concurrent check-then-write sequences for the
// same user.
func lockUserWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) error {
	query, args, err := squirrel.
		Select("user_id").
		From("users").
		Where(squirrel.Eq{"user_id": telegramID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	err = tx.GetContext(ctx, &id, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}
