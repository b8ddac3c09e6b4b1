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
	"github.com/lib/pq"
)

type Advertisement struct {
	AdID          int64     `db:"ad_id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	URL           string    `db:"url"`
	Reward        float64   `db:"reward"`
	CooldownHours int       `db:"cooldown_hours"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}

type adWithLastView struct {
	Advertisement
	LastViewDate *time.Time `db:"last_view_date"`
}

type adStats struct {
	TotalViews     int           `db:"total_views"`
	ConfirmedViews int           `db:"confirmed_views"`
	ViewerIDs      pq.Int64Array `db:"viewer_ids"`
}

func (r *Repository) CreateAd(ctx context.Context, ad *model.Advertisement) (int64, error) {
	query, args, err := squirrel.
		Insert("ads").
		SetMap(map[string]interface{}{
			"title":          ad.Title,
			"description":    ad.Description,
			"url":            ad.URL,
			"reward":         ad.Reward,
			"cooldown_hours": ad.CooldownHours,
		}).
		Suffix("RETURNING ad_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build ad insert query: %w", err)
	}

	var adID int64
	err = r.db.GetContext(ctx, &adID, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ad: %w", err)
	}

	return adID, nil
}

// SeedAds loads the configured ad catalog, skipping ads whose url is
// already present.
func (r *Repository) SeedAds(ctx context.Context, ads []model.Advertisement) error {
	if len(ads) == 0 {
		return nil
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, ad := range ads {
			query, args, err := squirrel.
				Insert("ads").
				SetMap(map[string]interface{}{
					"title":          ad.Title,
					"description":    ad.Description,
					"url":            ad.URL,
					"reward":         ad.Reward,
					"cooldown_hours": ad.CooldownHours,
				}).
				Suffix("ON CONFLICT (url) DO NOTHING").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build ad seed query: %w", err)
			}

			_, err = tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("failed to seed ad %q: %w", ad.Title, err)
			}
		}
		return nil
	})
}

func (r *Repository) GetAdByID(ctx context.Context, adID int64) (*model.Advertisement, error) {
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

	err = r.db.GetContext(ctx, &ad, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := ad.toModel()
	return &out, nil
}

func (r *Repository) ToggleAdActive(ctx context.Context, adID int64) error {
	query, args, err := squirrel.
		Update("ads").
		Set("is_active", squirrel.Expr("NOT is_active")).
		Where(squirrel.Eq{"ad_id": adID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
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

// ListActiveAdsWithLastView returns every active ad together with the
// user's most recent view date for it.
func (r *Repository) ListActiveAdsWithLastView(ctx context.Context, telegramID int64) ([]*model.AdLastView, error) {
	query := squirrel.Select(
		"a.ad_id",
		"a.title",
		"a.description",
		"a.url",
		"a.reward",
		"a.cooldown_hours",
		"a.is_active",
		"a.created_at",
		"MAX(v.view_date) AS last_view_date",
	).
		From("ads a").
		LeftJoin("ad_views v ON v.ad_id = a.ad_id AND v.user_id = ?", telegramID).
		Where(squirrel.Eq{"a.is_active": true}).
		GroupBy("a.ad_id").
		OrderBy("a.ad_id").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*adWithLastView
	err = r.db.SelectContext(ctx, &rows, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}

	ads := make([]*model.AdLastView, len(rows))
	for i, row := range rows {
		ads[i] = &model.AdLastView{
			Ad:           row.Advertisement.toModel(),
			LastViewDate: row.LastViewDate,
		}
	}

	return ads, nil
}

// GetAdStats aggregates view counts and distinct viewer ids for an ad.
func (r *Repository) GetAdStats(ctx context.Context, adID int64) (*model.AdStats, error) {
	if _, err := r.GetAdByID(ctx, adID); err != nil {
		return nil, err
	}

	query := squirrel.Select(
		"COUNT(*) AS total_views",
		"COUNT(*) FILTER (WHERE is_confirmed) AS confirmed_views",
		"COALESCE(array_agg(DISTINCT user_id) FILTER (WHERE user_id IS NOT NULL), '{}'::bigint[]) AS viewer_ids",
	).
		From("ad_views").
		Where(squirrel.Eq{"ad_id": adID}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var stats adStats
	err = r.db.GetContext(ctx, &stats, sqlQuery, args...)
	if err != nil {
		return nil, err
	}

	return &model.AdStats{
		AdID:           adID,
		TotalViews:     stats.TotalViews,
		ConfirmedViews: stats.ConfirmedViews,
		ViewerIDs:      stats.ViewerIDs,
	}, nil
}

func (a Advertisement) toModel() model.Advertisement {
	return model.Advertisement{
		AdID:          a.AdID,
		Title:         a.Title,
		Description:   a.Description,
		URL:           a.URL,
		Reward:        a.Reward,
		CooldownHours: a.CooldownHours,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}
