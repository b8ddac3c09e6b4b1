package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"TG_adrewards/internal/model"
	"TG_adrewards/internal/repository"
	"TG_adrewards/pkg/logger"

	"go.uber.org/zap"
)

const referralCodePrefix = "ref_"

type UserService struct {
	repo          UserRepository
	referralBonus float64
}

func NewUserService(repo UserRepository, referralBonus float64) *UserService {
	return &UserService{
		repo:          repo,
		referralBonus: referralBonus,
	}
}

// RegisterUser creates the user row if it does not exist yet and, when a
// referral code accompanies the request, records the referral and credits
// the inviter. A malformed, self-referential or duplicate referral is
// logged and swallowed: registration itself must still succeed.
func (s *UserService) RegisterUser(ctx context.Context, user *model.User, referralCode string) error {
	err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if referralCode == "" {
		return nil
	}

	log := logger.Logger()

	inviterID, err := parseReferralCode(referralCode)
	if err != nil || inviterID == user.TelegramID {
		log.Info("ignoring invalid referral code",
			zap.String("referral_code", referralCode),
			zap.Int64("user_id", user.TelegramID))
		return nil
	}

	err = s.repo.CreateReferral(ctx, inviterID, user.TelegramID, s.referralBonus)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReferred) || errors.Is(err, repository.ErrNotFound) {
			log.Info("ignoring referral",
				zap.Int64("inviter_id", inviterID),
				zap.Int64("user_id", user.TelegramID),
				zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to record referral: %w", err)
	}

	return nil
}

func (s *UserService) GetUserInfo(ctx context.Context, telegramID int64) (*model.UserInfo, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	referrals, err := s.repo.CountReferrals(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	return &model.UserInfo{
		User:      *user,
		Referrals: referrals,
	}, nil
}

// GetBalance returns 0 for a user that has never registered.
func (s *UserService) GetBalance(ctx context.Context, telegramID int64) (float64, error) {
	balance, err := s.repo.GetUserBalance(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *UserService) CountReferrals(ctx context.Context, telegramID int64) (int, error) {
	count, err := s.repo.CountReferrals(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

// parseReferralCode extracts the inviter id from a "ref_<id>" code.
func parseReferralCode(code string) (int64, error) {
	if !strings.HasPrefix(code, referralCodePrefix) {
		return 0, ErrInvalidReferral
	}

	inviterID, err := strconv.ParseInt(strings.TrimPrefix(code, referralCodePrefix), 10, 64)
	if err != nil || inviterID <= 0 {
		return 0, ErrInvalidReferral
	}

	return inviterID, nil
}
