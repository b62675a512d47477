package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/subwavelabs/subwave/internal/cache"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/catalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogTest(t *testing.T) (catalogdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.PeriodPrice{},
		&catalogdomain.TrafficTier{},
		&catalogdomain.ServerResource{},
		&catalogdomain.DeviceRate{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Cache: cache.NewCatalogCache(),
	})

	return svc, db, node
}

func TestPeriodPrice_ExactMatchOnly(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 30, AmountCents: 10000})
	require.NoError(t, err)

	price, err := svc.PeriodPrice(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), price.AmountCents)

	// No interpolation between supported lengths
	_, err = svc.PeriodPrice(ctx, 31)
	require.ErrorIs(t, err, catalogdomain.ErrPeriodNotSupported)
}

func TestPeriodPrice_ServedFromCacheAfterFirstHit(t *testing.T) {
	svc, db, _ := setupCatalogTest(t)
	ctx := context.Background()

	created, err := svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 90, AmountCents: 25000})
	require.NoError(t, err)

	first, err := svc.PeriodPrice(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, created.ID, first.ID)

	// Mutate the row behind the service's back; the cached copy wins
	// until invalidation.
	require.NoError(t, db.Exec(`UPDATE period_prices SET amount_cents = 1 WHERE id = ?`, created.ID).Error)

	second, err := svc.PeriodPrice(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), second.AmountCents)
}

func TestCreatePeriodPrice_Validation(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 0, AmountCents: 100})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidDays)

	_, err = svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 30, AmountCents: -1})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidAmount)
}

func TestCreatePeriodPrice_DuplicateDays(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 30, AmountCents: 10000})
	require.NoError(t, err)

	_, err = svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: 30, AmountCents: 9000})
	require.ErrorIs(t, err, catalogdomain.ErrDuplicatePeriod)
}

func TestTrafficTier_SelectsNarrowestBracket(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	hundred := int64(100)
	fiveHundred := int64(500)

	_, err := svc.CreateTrafficTier(ctx, catalogdomain.CreateTrafficTierRequest{UpToGB: &hundred, AmountCents: 1000})
	require.NoError(t, err)
	_, err = svc.CreateTrafficTier(ctx, catalogdomain.CreateTrafficTierRequest{UpToGB: &fiveHundred, AmountCents: 4000})
	require.NoError(t, err)
	_, err = svc.CreateTrafficTier(ctx, catalogdomain.CreateTrafficTierRequest{AmountCents: 9000})
	require.NoError(t, err)

	tier, err := svc.TrafficTier(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), tier.AmountCents)

	tier, err = svc.TrafficTier(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), tier.AmountCents)

	tier, err = svc.TrafficTier(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), tier.AmountCents)

	// Past every bracket the open-ended top tier applies
	tier, err = svc.TrafficTier(ctx, 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), tier.AmountCents)
	assert.Nil(t, tier.UpToGB)
}

func TestTrafficTier_NoBracketCovers(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	hundred := int64(100)
	_, err := svc.CreateTrafficTier(ctx, catalogdomain.CreateTrafficTierRequest{UpToGB: &hundred, AmountCents: 1000})
	require.NoError(t, err)

	_, err = svc.TrafficTier(ctx, 101)
	require.ErrorIs(t, err, catalogdomain.ErrTrafficTierNotFound)
}

func TestTrafficTier_DefaultReferenceDays(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	hundred := int64(100)
	tier, err := svc.CreateTrafficTier(ctx, catalogdomain.CreateTrafficTierRequest{UpToGB: &hundred, AmountCents: 1000})
	require.NoError(t, err)
	assert.Equal(t, 30, tier.ReferenceDays)
}

func TestServerResource_Lifecycle(t *testing.T) {
	svc, _, node := setupCatalogTest(t)
	ctx := context.Background()

	created, err := svc.CreateServerResource(ctx, catalogdomain.CreateServerResourceRequest{
		Name:        "dedicated-ip",
		AmountCents: 3000,
		Metadata:    map[string]any{"region": "eu-west"},
	})
	require.NoError(t, err)

	found, err := svc.ServerResource(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "dedicated-ip", found.Name)
	assert.Equal(t, int64(3000), found.AmountCents)

	_, err = svc.ServerResource(ctx, node.Generate())
	require.ErrorIs(t, err, catalogdomain.ErrServerResourceNotFound)

	_, err = svc.CreateServerResource(ctx, catalogdomain.CreateServerResourceRequest{Name: "   ", AmountCents: 100})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidName)
}

func TestDeviceRate_LatestActiveWins(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	_, err := svc.DeviceRate(ctx)
	require.ErrorIs(t, err, catalogdomain.ErrDeviceRateNotSet)

	_, err = svc.SetDeviceRate(ctx, catalogdomain.SetDeviceRateRequest{PerDeviceCents: 500})
	require.NoError(t, err)

	rate, err := svc.DeviceRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), rate.PerDeviceCents)

	// Replacing the rate retires the old one and drops cached copies
	_, err = svc.SetDeviceRate(ctx, catalogdomain.SetDeviceRateRequest{PerDeviceCents: 750})
	require.NoError(t, err)

	rate, err = svc.DeviceRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(750), rate.PerDeviceCents)
}

func TestListPeriodPrices_OrderedByDays(t *testing.T) {
	svc, _, _ := setupCatalogTest(t)
	ctx := context.Background()

	for _, days := range []int{90, 30, 180} {
		_, err := svc.CreatePeriodPrice(ctx, catalogdomain.CreatePeriodPriceRequest{Days: days, AmountCents: int64(days) * 100})
		require.NoError(t, err)
	}

	items, err := svc.ListPeriodPrices(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 30, items[0].Days)
	assert.Equal(t, 90, items[1].Days)
	assert.Equal(t, 180, items[2].Days)
}
