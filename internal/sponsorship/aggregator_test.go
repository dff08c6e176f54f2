package sponsorship

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListSponsorships(ctx context.Context, brandIDs []string) ([]model.SponsorshipRecord, error) {
	args := m.Called(ctx, brandIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SponsorshipRecord), args.Error(1)
}

func (m *mockSource) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Brand), args.Error(1)
}

func (m *mockSource) ListBrandSponsorships(ctx context.Context, brandID string) ([]model.SponsorshipRecord, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SponsorshipRecord), args.Error(1)
}

func TestAnalyze_EmptyIDs(t *testing.T) {
	src := &mockSource{}
	_, err := NewAggregator(src).Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	src.AssertNotCalled(t, "ListSponsorships", mock.Anything, mock.Anything)
}

func TestAnalyze_NoRows(t *testing.T) {
	src := &mockSource{}
	src.On("ListSponsorships", mock.Anything, []string{"b1"}).Return([]model.SponsorshipRecord{}, nil)

	out, err := NewAggregator(src).Analyze(context.Background(), []string{"b1"})
	require.NoError(t, err)
	assert.Zero(t, out.TotalSponsorships)
	assert.Empty(t, out.Creators)
	assert.Empty(t, out.FollowerDistribution)
}

func TestAnalyze_Rows(t *testing.T) {
	a := creator("A", 20_000, "Tech", "US")
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	src := &mockSource{}
	src.On("ListSponsorships", mock.Anything, []string{"b-Stripe"}).Return([]model.SponsorshipRecord{
		record("1", "Stripe", a, intPtr(100), now),
		record("2", "Stripe", a, intPtr(300), now),
	}, nil)

	out, err := NewAggregator(src).Analyze(context.Background(), []string{"b-Stripe"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.TotalSponsorships)
	assert.Equal(t, []model.TimelinePoint{{Month: "2024-05", Count: 2}}, out.Timeline)
}

func TestAnalyze_StoreFailure(t *testing.T) {
	src := &mockSource{}
	src.On("ListSponsorships", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewAggregator(src).Analyze(context.Background(), []string{"b1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "failed to fetch sponsorships")
}

func TestProfile_EmptyID(t *testing.T) {
	_, err := NewAggregator(&mockSource{}).Profile(context.Background(), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProfile_NotFound(t *testing.T) {
	src := &mockSource{}
	src.On("GetBrand", mock.Anything, "missing").Return(nil, nil)

	_, err := NewAggregator(src).Profile(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	src.AssertNotCalled(t, "ListBrandSponsorships", mock.Anything, mock.Anything)
}

func TestProfile_BrandFetchFailure(t *testing.T) {
	src := &mockSource{}
	src.On("GetBrand", mock.Anything, "b1").Return(nil, errors.New("timeout dialing"))

	_, err := NewAggregator(src).Profile(context.Background(), "b1")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestProfile_Rollup(t *testing.T) {
	a := creator("A", 1_000, "Tech", "")
	b := creator("B", 3_000, "", "GB")
	t1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r1 := record("1", "Stripe", a, intPtr(100), t1)
	r1.MentionType = strPtr("integrated")
	r1.StartSecond = intPtr(30)
	r2 := record("2", "Stripe", a, intPtr(50), t2)
	r3 := record("3", "Stripe", b, nil, t2)
	r4 := record("4", "Stripe", b, intPtr(10), t2)
	r4.Video = nil
	r5 := record("5", "Stripe", b, nil, t2)
	r5.Account.Platform = model.PlatformTikTok

	brand := &model.Brand{ID: "b-Stripe", Name: "Stripe"}
	src := &mockSource{}
	src.On("GetBrand", mock.Anything, "b-Stripe").Return(brand, nil)
	src.On("ListBrandSponsorships", mock.Anything, "b-Stripe").
		Return([]model.SponsorshipRecord{r1, r2, r3, r4, r5}, nil)

	out, err := NewAggregator(src).Profile(context.Background(), "b-Stripe")
	require.NoError(t, err)

	assert.Equal(t, "Stripe", out.Brand.Name)
	require.Len(t, out.Creators, 2)

	cb := out.Creators[0]
	assert.Equal(t, "B", cb.ID)
	assert.Equal(t, 3, cb.SponsorshipCount)
	assert.Len(t, cb.Videos, 2)
	assert.Len(t, cb.Accounts, 2)
	assert.Equal(t, "Unknown", cb.Category)

	ca := out.Creators[1]
	assert.Equal(t, "A", ca.ID)
	assert.Equal(t, "Unknown", ca.CountryCode)
	require.Len(t, ca.Videos, 2)
	assert.Equal(t, "integrated", *ca.Videos[0].MentionType)
	assert.Equal(t, int64(30), *ca.Videos[0].StartSecond)
	assert.Equal(t, t1, *ca.Videos[0].CreatedAt)
	assert.Equal(t, int64(42), *ca.Videos[0].CreatorAccount.Followers)
	assert.Len(t, ca.Accounts, 1)

	assert.Equal(t, model.ProfileSummary{
		TotalSponsorships: 5,
		TotalCreators:     2,
		TotalVideoViews:   150,
		AvgFollowers:      2_000,
	}, out.Summary)
}

func TestProfile_SkipsRowsWithoutCreator(t *testing.T) {
	a := creator("A", 1, "", "")
	r := record("1", "Stripe", a, intPtr(5), time.Now())
	r.Creator = nil

	src := &mockSource{}
	src.On("GetBrand", mock.Anything, "b-Stripe").Return(&model.Brand{ID: "b-Stripe"}, nil)
	src.On("ListBrandSponsorships", mock.Anything, "b-Stripe").Return([]model.SponsorshipRecord{r}, nil)

	out, err := NewAggregator(src).Profile(context.Background(), "b-Stripe")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.TotalSponsorships)
	assert.Empty(t, out.Creators)
}
