package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TG_adrewards/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAdUnavailable   = errors.New("ad does not exist or is not active")
	ErrViewNotFound    = errors.New("no pending view found for this user")
	ErrAdRemoved       = errors.New("ad no longer exists")
	ErrInvalidReferral = errors.New("invalid referral code")
)

// CooldownActiveError reports how long a user must wait before viewing the
// same ad again.
type CooldownActiveError struct {
	RemainingHours int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %d hour(s) remaining", e.RemainingHours)
}

// Clock supplies the current time so cooldown math stays deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

type Service struct {
	*UserService
	*AdService
}

func NewService(userService *UserService, adService *AdService) *Service {
	return &Service{
		UserService: userService,
		AdService:   adService,
	}
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, user *model.User, referralCode string) error
	GetUserInfo(ctx context.Context, telegramID int64) (*model.UserInfo, error)
	GetBalance(ctx context.Context, telegramID int64) (float64, error)
	CountReferrals(ctx context.Context, telegramID int64) (int, error)
}

type AdServiceI interface {
	ListAdsWithEligibility(ctx context.Context, telegramID int64) ([]*model.AdEligibility, error)
	StartView(ctx context.Context, telegramID, adID int64) (int64, error)
	ConfirmView(ctx context.Context, viewID, telegramID int64) (float64, error)
	CreateAd(ctx context.Context, ad *model.Advertisement) (int64, error)
	ToggleAdActive(ctx context.Context, adID int64) error
	GetAdStats(ctx context.Context, adID int64) (*model.AdStats, error)
	SeedCatalog(ctx context.Context, ads []model.Advertisement) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetUserBalance(ctx context.Context, telegramID int64) (float64, error)
	AdjustBalance(ctx context.Context, telegramID int64, delta float64) error
	CreateReferral(ctx context.Context, inviterID, invitedID int64, bonus float64) error
	CountReferrals(ctx context.Context, telegramID int64) (int, error)
}

type AdRepository interface {
	CreateAd(ctx context.Context, ad *model.Advertisement) (int64, error)
	SeedAds(ctx context.Context, ads []model.Advertisement) error
	GetAdByID(ctx context.Context, adID int64) (*model.Advertisement, error)
	ToggleAdActive(ctx context.Context, adID int64) error
	ListActiveAdsWithLastView(ctx context.Context, telegramID int64) ([]*model.AdLastView, error)
	GetAdStats(ctx context.Context, adID int64) (*model.AdStats, error)
	CreateAdView(ctx context.Context, telegramID, adID int64,
		checkCooldown func(lastView *time.Time, cooldownHours int) error) (int64, error)
	ConfirmAdView(ctx context.Context, viewID, telegramID int64) (float64, error)
}
