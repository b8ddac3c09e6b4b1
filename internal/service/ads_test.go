package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TG_adrewards/internal/model"
	"TG_adrewards/internal/repository"
	"TG_adrewards/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeAdRepo is an in-memory stand-in for the Postgres repository that
// preserves its transactional semantics: the cooldown check-then-insert
// runs under the lock, and confirmation is a conditional state flip.
type fakeAdRepo struct {
	mu         sync.Mutex
	ads        map[int64]*model.Advertisement
	views      map[int64]*model.AdView
	balances   map[int64]float64
	nextViewID int64
	clock      Clock
}

func newFakeAdRepo(clock Clock) *fakeAdRepo {
	return &fakeAdRepo{
		ads:      make(map[int64]*model.Advertisement),
		views:    make(map[int64]*model.AdView),
		balances: make(map[int64]float64),
		clock:    clock,
	}
}

func (f *fakeAdRepo) addAd(ad model.Advertisement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ads[ad.AdID] = &ad
}

func (f *fakeAdRepo) removeAd(adID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ads, adID)
}

func (f *fakeAdRepo) balance(telegramID int64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[telegramID]
}

func (f *fakeAdRepo) CreateAdView(_ context.Context, telegramID, adID int64,
	checkCooldown func(lastView *time.Time, cooldownHours int) error) (int64, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	ad, ok := f.ads[adID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if !ad.IsActive {
		return 0, repository.ErrAdInactive
	}

	var lastView *time.Time
	for _, v := range f.views {
		if v.UserID != telegramID || v.AdID != adID {
			continue
		}
		if lastView == nil || v.ViewDate.After(*lastView) {
			ts := v.ViewDate
			lastView = &ts
		}
	}

	if err := checkCooldown(lastView, ad.CooldownHours); err != nil {
		return 0, err
	}

	f.nextViewID++
	f.views[f.nextViewID] = &model.AdView{
		ViewID:   f.nextViewID,
		UserID:   telegramID,
		AdID:     adID,
		ViewDate: f.clock.Now(),
	}

	return f.nextViewID, nil
}

func (f *fakeAdRepo) ConfirmAdView(_ context.Context, viewID, telegramID int64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	view, ok := f.views[viewID]
	if !ok || view.UserID != telegramID || view.IsConfirmed {
		return 0, repository.ErrNotFound
	}

	ad, ok := f.ads[view.AdID]
	if !ok {
		return 0, repository.ErrAdRemoved
	}

	view.IsConfirmed = true
	f.balances[telegramID] += ad.Reward

	return ad.Reward, nil
}

func (f *fakeAdRepo) ListActiveAdsWithLastView(_ context.Context, telegramID int64) ([]*model.AdLastView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.AdLastView
	for _, ad := range f.ads {
		if !ad.IsActive {
			continue
		}
		var lastView *time.Time
		for _, v := range f.views {
			if v.UserID != telegramID || v.AdID != ad.AdID {
				continue
			}
			if lastView == nil || v.ViewDate.After(*lastView) {
				ts := v.ViewDate
				lastView = &ts
			}
		}
		out = append(out, &model.AdLastView{Ad: *ad, LastViewDate: lastView})
	}

	return out, nil
}

func (f *fakeAdRepo) CreateAd(_ context.Context, ad *model.Advertisement) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.ads) + 1)
	ad.AdID = id
	f.ads[id] = ad
	return id, nil
}

func (f *fakeAdRepo) SeedAds(ctx context.Context, ads []model.Advertisement) error {
	for i := range ads {
		if _, err := f.CreateAd(ctx, &ads[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAdRepo) GetAdByID(_ context.Context, adID int64) (*model.Advertisement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ad, ok := f.ads[adID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ad, nil
}

func (f *fakeAdRepo) ToggleAdActive(_ context.Context, adID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ad, ok := f.ads[adID]
	if !ok {
		return repository.ErrNotFound
	}
	ad.IsActive = !ad.IsActive
	return nil
}

func (f *fakeAdRepo) GetAdStats(_ context.Context, adID int64) (*model.AdStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ads[adID]; !ok {
		return nil, repository.ErrNotFound
	}
	stats := &model.AdStats{AdID: adID}
	seen := make(map[int64]bool)
	for _, v := range f.views {
		if v.AdID != adID {
			continue
		}
		stats.TotalViews++
		if v.IsConfirmed {
			stats.ConfirmedViews++
		}
		if !seen[v.UserID] {
			seen[v.UserID] = true
			stats.ViewerIDs = append(stats.ViewerIDs, v.UserID)
		}
	}
	return stats, nil
}

func TestAdService_ViewLifecycle(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 1, Title: "Featured", Reward: 3, CooldownHours: 24, IsActive: true})

	svc := NewAdService(repo, clock)
	ctx := context.Background()
	const userID = int64(100)

	viewID, err := svc.StartView(ctx, userID, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), viewID)

	reward, err := svc.ConfirmView(ctx, viewID, userID)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, reward)
	assert.Equal(t, 3.0, repo.balance(userID))

	// immediately after the view the full window remains
	_, err = svc.StartView(ctx, userID, 1)
	var cooldownErr *CooldownActiveError
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 24, cooldownErr.RemainingHours)

	clock.Advance(23 * time.Hour)
	_, err = svc.StartView(ctx, userID, 1)
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 1, cooldownErr.RemainingHours)

	clock.Advance(2 * time.Hour)
	newViewID, err := svc.StartView(ctx, userID, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), newViewID)
}

func TestAdService_StartView_AdUnavailable(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 2, Title: "Paused", Reward: 2, CooldownHours: 12, IsActive: false})

	svc := NewAdService(repo, clock)

	_, err := svc.StartView(context.Background(), 100, 99)
	assert.ErrorIs(t, err, ErrAdUnavailable)

	_, err = svc.StartView(context.Background(), 100, 2)
	assert.ErrorIs(t, err, ErrAdUnavailable)
}

func TestAdService_ConfirmView_NotFoundAndDoubleConfirm(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 1, Reward: 3, CooldownHours: 24, IsActive: true})

	svc := NewAdService(repo, clock)
	ctx := context.Background()

	_, err := svc.ConfirmView(ctx, 12345, 100)
	assert.ErrorIs(t, err, ErrViewNotFound)

	viewID, err := svc.StartView(ctx, 100, 1)
	assert.NoError(t, err)

	// a foreign user cannot confirm someone else's view
	_, err = svc.ConfirmView(ctx, viewID, 200)
	assert.ErrorIs(t, err, ErrViewNotFound)

	_, err = svc.ConfirmView(ctx, viewID, 100)
	assert.NoError(t, err)

	// re-confirming looks exactly like a missing view and credits nothing
	_, err = svc.ConfirmView(ctx, viewID, 100)
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.Equal(t, 3.0, repo.balance(100))
}

func TestAdService_ConfirmView_AdRemoved(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 1, Reward: 3, CooldownHours: 24, IsActive: true})

	svc := NewAdService(repo, clock)
	ctx := context.Background()

	viewID, err := svc.StartView(ctx, 100, 1)
	assert.NoError(t, err)

	repo.removeAd(1)

	_, err = svc.ConfirmView(ctx, viewID, 100)
	assert.ErrorIs(t, err, ErrAdRemoved)
	assert.Equal(t, 0.0, repo.balance(100))
}

func TestAdService_ConfirmView_ConcurrentDuplicates(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 1, Reward: 3, CooldownHours: 24, IsActive: true})

	svc := NewAdService(repo, clock)
	ctx := context.Background()

	viewID, err := svc.StartView(ctx, 100, 1)
	assert.NoError(t, err)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.ConfirmView(ctx, viewID, 100)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrViewNotFound):
				notFound++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, notFound)
	assert.Equal(t, 3.0, repo.balance(100))
}

func TestAdService_ListAdsWithEligibility(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeAdRepo(clock)
	repo.addAd(model.Advertisement{AdID: 1, Title: "Featured", Reward: 3, CooldownHours: 24, IsActive: true})
	repo.addAd(model.Advertisement{AdID: 2, Title: "Regular", Reward: 2, CooldownHours: 12, IsActive: true})

	svc := NewAdService(repo, clock)
	ctx := context.Background()
	const userID = int64(100)

	viewID, err := svc.StartView(ctx, userID, 1)
	assert.NoError(t, err)
	_, err = svc.ConfirmView(ctx, viewID, userID)
	assert.NoError(t, err)

	clock.Advance(12 * time.Hour)

	ads, err := svc.ListAdsWithEligibility(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, ads, 2)

	byID := make(map[int64]*model.AdEligibility)
	for _, ad := range ads {
		byID[ad.AdID] = ad
	}

	assert.False(t, byID[1].Eligible)
	assert.Equal(t, 12, byID[1].RemainingHours)
	assert.True(t, byID[2].Eligible)
	assert.Equal(t, 0, byID[2].RemainingHours)
}

func TestAdService_CreateAd_DefaultCooldown(t *testing.T) {
	mockRepo := &mocks.MockAdRepository{}
	mockRepo.On("CreateAd", mock.Anything, mock.MatchedBy(func(ad *model.Advertisement) bool {
		return ad.CooldownHours == DefaultCooldownHours
	})).Return(int64(7), nil)

	svc := NewAdService(mockRepo, nil)

	adID, err := svc.CreateAd(context.Background(), &model.Advertisement{
		Title:  "New ad",
		URL:    "https://example.com/ad",
		Reward: 2,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), adID)

	mockRepo.AssertExpectations(t)
}

func TestAdService_ToggleAdActive_NotFound(t *testing.T) {
	mockRepo := &mocks.MockAdRepository{}
	mockRepo.On("ToggleAdActive", mock.Anything, int64(9)).Return(repository.ErrNotFound)

	svc := NewAdService(mockRepo, nil)

	err := svc.ToggleAdActive(context.Background(), 9)
	assert.ErrorIs(t, err, ErrAdUnavailable)
}

func TestAdService_SeedCatalog_AppliesDefaultCooldown(t *testing.T) {
	mockRepo := &mocks.MockAdRepository{}
	mockRepo.On("SeedAds", mock.Anything, mock.MatchedBy(func(ads []model.Advertisement) bool {
		for _, ad := range ads {
			if ad.CooldownHours <= 0 {
				return false
			}
		}
		return true
	})).Return(nil)

	svc := NewAdService(mockRepo, nil)

	err := svc.SeedCatalog(context.Background(), []model.Advertisement{
		{Title: "Featured", URL: "https://example.com/1", Reward: 3, CooldownHours: 24},
		{Title: "Regular", URL: "https://example.com/2", Reward: 2},
	})
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}
