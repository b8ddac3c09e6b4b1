package mocks

import (
	"context"
	"time"

	"TG_adrewards/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserBalance(ctx context.Context, telegramID int64) (float64, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockUserRepository) AdjustBalance(ctx context.Context, telegramID int64, delta float64) error {
	args := m.Called(ctx, telegramID, delta)
	return args.Error(0)
}

func (m *MockUserRepository) CreateReferral(ctx context.Context, inviterID, invitedID int64, bonus float64) error {
	args := m.Called(ctx, inviterID, invitedID, bonus)
	return args.Error(0)
}

func (m *MockUserRepository) CountReferrals(ctx context.Context, telegramID int64) (int, error) {
	args := m.Called(ctx, telegramID)
	return args.Int(0), args.Error(1)
}

type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) CreateAd(ctx context.Context, ad *model.Advertisement) (int64, error) {
	args := m.Called(ctx, ad)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdRepository) SeedAds(ctx context.Context, ads []model.Advertisement) error {
	args := m.Called(ctx, ads)
	return args.Error(0)
}

func (m *MockAdRepository) GetAdByID(ctx context.Context, adID int64) (*model.Advertisement, error) {
	args := m.Called(ctx, adID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Advertisement), args.Error(1)
}

func (m *MockAdRepository) ToggleAdActive(ctx context.Context, adID int64) error {
	args := m.Called(ctx, adID)
	return args.Error(0)
}

func (m *MockAdRepository) ListActiveAdsWithLastView(ctx context.Context, telegramID int64) ([]*model.AdLastView, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AdLastView), args.Error(1)
}

func (m *MockAdRepository) GetAdStats(ctx context.Context, adID int64) (*model.AdStats, error) {
	args := m.Called(ctx, adID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdStats), args.Error(1)
}

func (m *MockAdRepository) CreateAdView(ctx context.Context, telegramID, adID int64,
	checkCooldown func(lastView *time.Time, cooldownHours int) error) (int64, error) {
	args := m.Called(ctx, telegramID, adID, checkCooldown)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdRepository) ConfirmAdView(ctx context.Context, viewID, telegramID int64) (float64, error) {
	args := m.Called(ctx, viewID, telegramID)
	return args.Get(0).(float64), args.Error(1)
}
