package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/config"
	pricingdomain "github.com/subwavelabs/subwave/internal/pricing/domain"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type catalogStub struct {
	periods   map[int]*catalogdomain.PeriodPrice
	tiers     []*catalogdomain.TrafficTier
	resources map[snowflake.ID]*catalogdomain.ServerResource
	rate      *catalogdomain.DeviceRate

	mu      sync.Mutex
	lookups int
}

func (c *catalogStub) countLookup() {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
}

func (c *catalogStub) lookupCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups
}

func (c *catalogStub) PeriodPrice(ctx context.Context, days int) (*catalogdomain.PeriodPrice, error) {
	c.countLookup()
	price, ok := c.periods[days]
	if !ok {
		return nil, catalogdomain.ErrPeriodNotSupported
	}
	return price, nil
}

func (c *catalogStub) TrafficTier(ctx context.Context, gb int64) (*catalogdomain.TrafficTier, error) {
	c.countLookup()
	for _, tier := range c.tiers {
		if tier.UpToGB == nil || *tier.UpToGB >= gb {
			return tier, nil
		}
	}
	return nil, catalogdomain.ErrTrafficTierNotFound
}

func (c *catalogStub) ServerResource(ctx context.Context, id snowflake.ID) (*catalogdomain.ServerResource, error) {
	c.countLookup()
	resource, ok := c.resources[id]
	if !ok {
		return nil, catalogdomain.ErrServerResourceNotFound
	}
	return resource, nil
}

func (c *catalogStub) DeviceRate(ctx context.Context) (*catalogdomain.DeviceRate, error) {
	c.countLookup()
	if c.rate == nil {
		return nil, catalogdomain.ErrDeviceRateNotSet
	}
	return c.rate, nil
}

type resolverStub struct {
	discount *promodomain.ResolvedDiscount
	err      error

	calls int
}

func (r *resolverStub) Resolve(ctx context.Context, req promodomain.ResolveRequest) (*promodomain.ResolvedDiscount, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.discount != nil {
		return r.discount, nil
	}
	return &promodomain.ResolvedDiscount{Percent: 0, Origin: promodomain.OriginNone}, nil
}

func setupPricingTest(t *testing.T) (*Service, *catalogStub, *resolverStub, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalog := &catalogStub{
		periods:   map[int]*catalogdomain.PeriodPrice{},
		resources: map[snowflake.ID]*catalogdomain.ServerResource{},
	}
	resolver := &resolverStub{}

	svc := New(Params{
		Log:      zap.NewNop(),
		Catalog:  catalog,
		Resolver: resolver,
		Pricing:  config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	}).(*Service)

	return svc, catalog, resolver, node
}

func upTo(gb int64) *int64 { return &gb }

func TestComputeTotal_SumsDiscountedComponents(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	resourceID := node.Generate()
	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 10000}
	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: upTo(100), AmountCents: 2000, ReferenceDays: 30},
	}
	catalog.resources[resourceID] = &catalogdomain.ServerResource{
		ID: resourceID, Name: "dedicated-ip", AmountCents: 3000, ReferenceDays: 30,
	}
	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 500, ReferenceDays: 30}
	resolver.discount = &promodomain.ResolvedDiscount{Percent: 10, Origin: promodomain.OriginPersonal}

	result, err := svc.ComputeTotal(context.Background(), pricingdomain.QuoteRequest{
		SubscriberID:      node.Generate().String(),
		PeriodDays:        30,
		TrafficGB:         50,
		ServerResourceIDs: []string{resourceID.String()},
		DeviceCount:       2,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.DiscountPercent)
	assert.Equal(t, promodomain.OriginPersonal, result.DiscountOrigin)
	assert.Equal(t, 1, resolver.calls)

	assert.Equal(t, int64(10000), result.Breakdown.Period.OriginalCents)
	assert.Equal(t, int64(9000), result.Breakdown.Period.DiscountedCents)
	assert.Equal(t, int64(2000), result.Breakdown.Traffic.OriginalCents)
	assert.Equal(t, int64(1800), result.Breakdown.Traffic.DiscountedCents)
	assert.Equal(t, int64(3000), result.Breakdown.Servers.OriginalCents)
	assert.Equal(t, int64(2700), result.Breakdown.Servers.DiscountedCents)
	assert.Equal(t, int64(1000), result.Breakdown.Devices.OriginalCents)
	assert.Equal(t, int64(900), result.Breakdown.Devices.DiscountedCents)

	expected := result.Breakdown.Period.DiscountedCents +
		result.Breakdown.Traffic.DiscountedCents +
		result.Breakdown.Servers.DiscountedCents +
		result.Breakdown.Devices.DiscountedCents
	assert.Equal(t, expected, result.TotalCents)
	assert.Equal(t, int64(16000), result.TotalOriginalCents)
	assert.Equal(t, result.TotalOriginalCents-result.TotalCents, result.TotalDiscountCents)
	assert.LessOrEqual(t, result.TotalCents, result.TotalOriginalCents)
}

func TestComputeTotal_PeriodOnlyRequest(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	catalog.periods[90] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 90, AmountCents: 27000}
	resolver.discount = &promodomain.ResolvedDiscount{Percent: 15, Origin: promodomain.OriginPromoGroup}

	result, err := svc.ComputeTotal(context.Background(), pricingdomain.QuoteRequest{
		PromoGroupID: node.Generate().String(),
		PeriodDays:   90,
	})
	require.NoError(t, err)

	// With no traffic, servers, or devices the total is exactly the
	// discounted period price. Only the period lookup happens.
	assert.Equal(t, result.Breakdown.Period.DiscountedCents, result.TotalCents)
	assert.Equal(t, int64(22950), result.TotalCents)
	assert.Equal(t, 1, catalog.lookupCount())
}

func TestComputeTotal_InvalidInputSkipsAllLookups(t *testing.T) {
	svc, catalog, resolver, _ := setupPricingTest(t)

	cases := []pricingdomain.QuoteRequest{
		{PeriodDays: 0, TrafficGB: 10},
		{PeriodDays: -7, TrafficGB: 10},
		{PeriodDays: 30, TrafficGB: -1},
		{PeriodDays: 30, DeviceCount: -2},
		{PeriodDays: 30, ServerResourceIDs: []string{"not-a-snowflake"}},
	}

	for _, req := range cases {
		_, err := svc.ComputeTotal(context.Background(), req)
		require.Error(t, err)
	}

	assert.Zero(t, catalog.lookupCount())
	assert.Zero(t, resolver.calls)
}

func TestComputeTotal_ResolverFailureAbortsQuote(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 10000}
	resolver.err = promodomain.ErrPromoGroupNotFound

	result, err := svc.ComputeTotal(context.Background(), pricingdomain.QuoteRequest{
		PromoGroupID: node.Generate().String(),
		PeriodDays:   30,
	})
	require.ErrorIs(t, err, promodomain.ErrPromoGroupNotFound)
	assert.Nil(t, result)
	assert.Zero(t, catalog.lookupCount())
}

func TestComputeTotal_UnknownPeriodDiscardsWholeQuote(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: nil, AmountCents: 2000, ReferenceDays: 30},
	}
	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 500, ReferenceDays: 30}

	result, err := svc.ComputeTotal(context.Background(), pricingdomain.QuoteRequest{
		PeriodDays: 45,
		TrafficGB:  10,
	})
	require.ErrorIs(t, err, catalogdomain.ErrPeriodNotSupported)
	assert.Nil(t, result)
}

func TestComputeTotal_Idempotent(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 12345}
	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: upTo(500), AmountCents: 6789, ReferenceDays: 30},
	}
	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 321, ReferenceDays: 30}
	resolver.discount = &promodomain.ResolvedDiscount{Percent: 17, Origin: promodomain.OriginPromoGroup}

	req := pricingdomain.QuoteRequest{
		SubscriberID: node.Generate().String(),
		PeriodDays:   30,
		TrafficGB:    200,
		DeviceCount:  3,
	}

	first, err := svc.ComputeTotal(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.ComputeTotal(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPricePeriod_NoDiscountKeepsCatalogPrice(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.periods[90] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 90, AmountCents: 25000}

	price, err := svc.PricePeriod(context.Background(), pricingdomain.PeriodQuoteRequest{PeriodDays: 90})
	require.NoError(t, err)

	assert.Equal(t, int64(25000), price.OriginalCents)
	assert.Equal(t, int64(25000), price.DiscountedCents)
	assert.Zero(t, price.DiscountCents)
}

func TestPricePeriod_DiscountFloors(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	// 1001 - 1001*10/100 = 1001 - 100 = 901, never 900.9 rounded up
	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 1001}
	resolver.discount = &promodomain.ResolvedDiscount{Percent: 10, Origin: promodomain.OriginPersonal}

	price, err := svc.PricePeriod(context.Background(), pricingdomain.PeriodQuoteRequest{
		SubscriberID: node.Generate().String(),
		PeriodDays:   30,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(901), price.DiscountedCents)
	assert.Equal(t, int64(100), price.DiscountCents)
}

func TestPricePeriod_InvalidDaysSkipsResolution(t *testing.T) {
	svc, catalog, resolver, _ := setupPricingTest(t)

	_, err := svc.PricePeriod(context.Background(), pricingdomain.PeriodQuoteRequest{PeriodDays: 0})
	require.ErrorIs(t, err, pricingdomain.ErrInvalidPeriodDays)

	assert.Zero(t, resolver.calls)
	assert.Zero(t, catalog.lookupCount())
}

func TestPricePeriod_UnknownPromoGroupFails(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 10000}
	resolver.err = promodomain.ErrPromoGroupNotFound

	_, err := svc.PricePeriod(context.Background(), pricingdomain.PeriodQuoteRequest{
		PromoGroupID: node.Generate().String(),
		PeriodDays:   30,
	})
	require.ErrorIs(t, err, promodomain.ErrPromoGroupNotFound)
	assert.Zero(t, catalog.lookupCount())
}

func TestPriceTraffic_ZeroVolumeIsFree(t *testing.T) {
	svc, catalog, _, _ := setupPricingTest(t)

	price, err := svc.PriceTraffic(context.Background(), pricingdomain.TrafficQuoteRequest{PeriodDays: 30})
	require.NoError(t, err)

	assert.Zero(t, price.OriginalCents)
	assert.Zero(t, price.DiscountedCents)
	assert.Zero(t, catalog.lookupCount())
}

func TestPriceTraffic_ProratesFromReferencePeriod(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: upTo(100), AmountCents: 1000, ReferenceDays: 30},
	}

	// 1000 * 15 / 30 = 500
	price, err := svc.PriceTraffic(context.Background(), pricingdomain.TrafficQuoteRequest{TrafficGB: 50, PeriodDays: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(500), price.OriginalCents)

	// 1000 * 10 / 30 = 333 floor, not 333.33
	price, err = svc.PriceTraffic(context.Background(), pricingdomain.TrafficQuoteRequest{TrafficGB: 50, PeriodDays: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(333), price.OriginalCents)
}

func TestPriceTraffic_OpenEndedTopTier(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: upTo(100), AmountCents: 1000, ReferenceDays: 30},
		{ID: node.Generate(), UpToGB: nil, AmountCents: 5000, ReferenceDays: 30},
	}

	price, err := svc.PriceTraffic(context.Background(), pricingdomain.TrafficQuoteRequest{TrafficGB: 9999, PeriodDays: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), price.OriginalCents)
}

func TestPriceServers_DiscountAppliedOnceToSum(t *testing.T) {
	svc, catalog, resolver, node := setupPricingTest(t)

	firstID := node.Generate()
	secondID := node.Generate()
	catalog.resources[firstID] = &catalogdomain.ServerResource{
		ID: firstID, Name: "dedicated-ip", AmountCents: 1001, ReferenceDays: 30,
	}
	catalog.resources[secondID] = &catalogdomain.ServerResource{
		ID: secondID, Name: "static-route", AmountCents: 1001, ReferenceDays: 30,
	}
	resolver.discount = &promodomain.ResolvedDiscount{Percent: 10, Origin: promodomain.OriginPromoGroup}

	price, err := svc.PriceServers(context.Background(), pricingdomain.ServersQuoteRequest{
		PromoGroupID:      node.Generate().String(),
		PeriodDays:        30,
		ServerResourceIDs: []string{firstID.String(), secondID.String()},
	})
	require.NoError(t, err)

	// Sum first, discount once: 2002 - 200 = 1802.
	// Per-line discounting would give 901+901 = 1802 here, but the
	// lines stay undiscounted so callers see catalog amounts.
	assert.Equal(t, int64(2002), price.OriginalCents)
	assert.Equal(t, int64(1802), price.DiscountedCents)
	require.Len(t, price.Lines, 2)
	assert.Equal(t, int64(1001), price.Lines[0].AmountCents)
	assert.Equal(t, "dedicated-ip", price.Lines[0].Name)
}

func TestPriceServers_DuplicateIDChargedOnce(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	id := node.Generate()
	catalog.resources[id] = &catalogdomain.ServerResource{
		ID: id, Name: "dedicated-ip", AmountCents: 1000, ReferenceDays: 30,
	}

	price, err := svc.PriceServers(context.Background(), pricingdomain.ServersQuoteRequest{
		PeriodDays:        30,
		ServerResourceIDs: []string{id.String(), id.String(), id.String()},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), price.OriginalCents)
	require.Len(t, price.Lines, 1)
	assert.Equal(t, 1, catalog.lookupCount())
}

func TestPriceServers_EmptySelectionIsFree(t *testing.T) {
	svc, catalog, _, _ := setupPricingTest(t)

	price, err := svc.PriceServers(context.Background(), pricingdomain.ServersQuoteRequest{PeriodDays: 30})
	require.NoError(t, err)

	assert.Zero(t, price.OriginalCents)
	assert.Empty(t, price.Lines)
	assert.Zero(t, catalog.lookupCount())
}

func TestPriceServers_UnknownResourceFailsQuote(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	knownID := node.Generate()
	catalog.resources[knownID] = &catalogdomain.ServerResource{
		ID: knownID, Name: "dedicated-ip", AmountCents: 1000, ReferenceDays: 30,
	}

	_, err := svc.PriceServers(context.Background(), pricingdomain.ServersQuoteRequest{
		PeriodDays:        30,
		ServerResourceIDs: []string{knownID.String(), node.Generate().String()},
	})
	require.ErrorIs(t, err, catalogdomain.ErrServerResourceNotFound)
}

func TestPriceDevices_AllowanceFromConfig(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	svc.pricing = config.NewStaticPricingConfigHolder(config.PricingConfig{
		IncludedDevices:      2,
		DefaultReferenceDays: 30,
		QuoteRateLimit:       50,
		QuoteRateBurst:       100,
	})
	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 500, ReferenceDays: 30}

	// 5 devices, 2 included, 3 billable
	price, err := svc.PriceDevices(context.Background(), pricingdomain.DevicesQuoteRequest{DeviceCount: 5, PeriodDays: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), price.OriginalCents)

	// Within the allowance nothing is billed and the rate is not read
	lookupsBefore := catalog.lookupCount()
	price, err = svc.PriceDevices(context.Background(), pricingdomain.DevicesQuoteRequest{DeviceCount: 2, PeriodDays: 30})
	require.NoError(t, err)
	assert.Zero(t, price.OriginalCents)
	assert.Equal(t, lookupsBefore, catalog.lookupCount())
}

func TestPriceDevices_ProratesPerDeviceRate(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 301, ReferenceDays: 30}

	// floor(301*15/30) = 150 per device, then *2 devices = 300
	price, err := svc.PriceDevices(context.Background(), pricingdomain.DevicesQuoteRequest{DeviceCount: 2, PeriodDays: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(300), price.OriginalCents)
}

func TestPriceDevices_MissingRateFails(t *testing.T) {
	svc, _, _, _ := setupPricingTest(t)

	_, err := svc.PriceDevices(context.Background(), pricingdomain.DevicesQuoteRequest{DeviceCount: 3, PeriodDays: 30})
	require.ErrorIs(t, err, catalogdomain.ErrDeviceRateNotSet)
}

func TestApplyDiscountCents(t *testing.T) {
	cases := []struct {
		amount   int64
		pct      int
		expected int64
	}{
		{1000, 0, 1000},
		{1000, 10, 900},
		{1000, 100, 0},
		{999, 33, 670},
		{1, 50, 1},
		{0, 50, 0},
		{1000, 150, 0},
		{1000, -5, 1000},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, applyDiscountCents(tc.amount, tc.pct))
	}
}

func TestProrateCents(t *testing.T) {
	cases := []struct {
		amount   int64
		days     int
		refDays  int
		expected int64
	}{
		{1000, 30, 30, 1000},
		{1000, 15, 30, 500},
		{1000, 10, 30, 333},
		{1000, 60, 30, 2000},
		{1000, 1, 30, 33},
		{0, 15, 30, 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, prorateCents(tc.amount, tc.days, tc.refDays))
	}
}

func TestComputeTotal_LatencyUnderConcurrentFanOut(t *testing.T) {
	svc, catalog, _, node := setupPricingTest(t)

	catalog.periods[30] = &catalogdomain.PeriodPrice{ID: node.Generate(), Days: 30, AmountCents: 10000}
	catalog.tiers = []*catalogdomain.TrafficTier{
		{ID: node.Generate(), UpToGB: nil, AmountCents: 2000, ReferenceDays: 30},
	}
	catalog.rate = &catalogdomain.DeviceRate{ID: node.Generate(), PerDeviceCents: 500, ReferenceDays: 30}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := svc.ComputeTotal(ctx, pricingdomain.QuoteRequest{
		PeriodDays:  30,
		TrafficGB:   10,
		DeviceCount: 1,
	})
	require.NoError(t, err)
}
