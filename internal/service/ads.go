package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TG_adrewards/internal/model"
	"TG_adrewards/internal/repository"
)

const DefaultCooldownHours = 24

type AdService struct {
	repo  AdRepository
	clock Clock
}

func NewAdService(repo AdRepository, clock Clock) *AdService {
	if clock == nil {
		clock = systemClock{}
	}
	return &AdService{
		repo:  repo,
		clock: clock,
	}
}

// ListAdsWithEligibility returns every active ad with the user's current
// eligibility and, when still cooling down, the hours left to wait.
func (s *AdService) ListAdsWithEligibility(ctx context.Context, telegramID int64) ([]*model.AdEligibility, error) {
	ads, err := s.repo.ListActiveAdsWithLastView(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}

	now := s.clock.Now()
	out := make([]*model.AdEligibility, len(ads))
	for i, ad := range ads {
		remaining := RemainingHours(ad.LastViewDate, ad.Ad.CooldownHours, now)
		out[i] = &model.AdEligibility{
			AdID:           ad.Ad.AdID,
			Title:          ad.Ad.Title,
			Reward:         ad.Ad.Reward,
			Eligible:       remaining == 0,
			RemainingHours: remaining,
		}
	}

	return out, nil
}

// StartView creates a pending view of the ad for the user, provided the ad
// is active and the cooldown window from the user's previous view has
// elapsed. Returns the new view id.
func (s *AdService) StartView(ctx context.Context, telegramID, adID int64) (int64, error) {
	viewID, err := s.repo.CreateAdView(ctx, telegramID, adID,
		func(lastView *time.Time, cooldownHours int) error {
			if remaining := RemainingHours(lastView, cooldownHours, s.clock.Now()); remaining > 0 {
				return &CooldownActiveError{RemainingHours: remaining}
			}
			return nil
		})
	if err != nil {
		var cooldownErr *CooldownActiveError
		switch {
		case errors.As(err, &cooldownErr):
			return 0, err
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrAdInactive):
			return 0, ErrAdUnavailable
		case errors.Is(err, repository.ErrUserNotFound):
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to start ad view: %w", err)
	}

	return viewID, nil
}

// ConfirmView transitions the pending view to confirmed and credits the
// ad's reward to the user, exactly once per view id. A second confirmation
// of the same view is indistinguishable from a missing one.
func (s *AdService) ConfirmView(ctx context.Context, viewID, telegramID int64) (float64, error) {
	reward, err := s.repo.ConfirmAdView(ctx, viewID, telegramID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrViewNotFound
		case errors.Is(err, repository.ErrAdRemoved):
			return 0, ErrAdRemoved
		}
		return 0, fmt.Errorf("failed to confirm ad view: %w", err)
	}

	return reward, nil
}

func (s *AdService) CreateAd(ctx context.Context, ad *model.Advertisement) (int64, error) {
	if ad.CooldownHours <= 0 {
		ad.CooldownHours = DefaultCooldownHours
	}

	adID, err := s.repo.CreateAd(ctx, ad)
	if err != nil {
		return 0, fmt.Errorf("failed to create ad: %w", err)
	}
	return adID, nil
}

func (s *AdService) ToggleAdActive(ctx context.Context, adID int64) error {
	err := s.repo.ToggleAdActive(ctx, adID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdUnavailable
		}
		return fmt.Errorf("failed to toggle ad: %w", err)
	}
	return nil
}

func (s *AdService) GetAdStats(ctx context.Context, adID int64) (*model.AdStats, error) {
	stats, err := s.repo.GetAdStats(ctx, adID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdUnavailable
		}
		return nil, fmt.Errorf("failed to get ad stats: %w", err)
	}
	return stats, nil
}

// SeedCatalog loads the configured ad catalog into the store at startup.
// Already-known ads are left untouched.
func (s *AdService) SeedCatalog(ctx context.Context, ads []model.Advertisement) error {
	for i := range ads {
		if ads[i].CooldownHours <= 0 {
			ads[i].CooldownHours = DefaultCooldownHours
		}
	}

	err := s.repo.SeedAds(ctx, ads)
	if err != nil {
		return fmt.Errorf("failed to seed ad catalog: %w", err)
	}
	return nil
}
