package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// CreateAdView inserts a pending view for the user after the ad and
// cooldown checks pass. The whole check-then-insert sequence runs under a
// row lock on the user, so two concurrent attempts for the same user
// cannot both pass the check. The checkCooldown callback receives the
// user's most recent view date for this ad (nil when none) and the ad's
// cooldown; any error it returns aborts the transaction.
func (r *Repository) CreateAdView(ctx context.Context, telegramID, adID int64,
	checkCooldown func(lastView *time.Time, cooldownHours int) error) (int64, error) {

	var viewID int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := lockUserWithTx(ctx, tx, telegramID); err != nil {
			return err
		}

		ad, err := getAdWithTx(ctx, tx, adID)
		if err != nil {
			return err
		}
		if !ad.IsActive {
			return ErrAdInactive
		}

		lastView, err := getLastViewDateWithTx(ctx, tx, telegramID, adID)
		if err != nil {
			return err
		}

		if err := checkCooldown(lastView, ad.CooldownHours); err != nil {
			return err
		}

		query, args, err := squirrel.
			Insert("ad_views").
			SetMap(map[string]interface{}{
				"user_id":      telegramID,
				"ad_id":        adID,
				"is_confirmed": false,
			}).
			Suffix("RETURNING view_id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build ad view insert query: %w", err)
		}

		err = tx.GetContext(ctx, &viewID, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert ad view: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return viewID, nil
}

// ConfirmAdView flips the view to confirmed and credits the ad's reward to
// the user in one transaction. The flip is a conditional update: it only
// succeeds while the row is still pending and owned by the user, so racing
// confirmations of the same view produce exactly one credit. Returns the
// credited reward.
func (r *Repository) ConfirmAdView(ctx context.Context, viewID, telegramID int64) (float64, error) {
	var reward float64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("ad_views").
			Set("is_confirmed", true).
			Where(squirrel.Eq{
				"view_id":      viewID,
				"user_id":      telegramID,
				"is_confirmed": false,
			}).
			Suffix("RETURNING ad_id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build view confirm query: %w", err)
		}

		var adID int64
		err = tx.GetContext(ctx, &adID, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		// Reward is read from the ad at confirmation time, not snapshotted
		// at view creation.
		ad, err := getAdWithTx(ctx, tx, adID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrAdRemoved
			}
			return err
		}
		reward = ad.Reward

		return adjustBalanceWithTx(ctx, tx, telegramID, reward)
	})
	if err != nil {
		return 0, err
	}

	return reward, nil
}

func getAdWithTx(ctx context.Context, tx *sqlx.Tx, adID int64) (*Advertisement, error) {
	var ad Advertisement
	query, args, err := squirrel.
		Select("*").
		From("ads").
		Where(squirrel.Eq{"ad_id": adID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &ad, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &ad, nil
}

func getLastViewDateWithTx(ctx context.Context, tx *sqlx.Tx, telegramID, adID int64) (*time.Time, error) {
	query, args, err := squirrel.
		Select("view_date").
		From("ad_views").
		Where(squirrel.Eq{"user_id": telegramID, "ad_id": adID}).
		OrderBy("view_date DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var viewDate time.Time
	err = tx.GetContext(ctx, &viewDate, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &viewDate, nil
}
