package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/config"
	"github.com/subwavelabs/subwave/internal/observability/metrics"
	pricingdomain "github.com/subwavelabs/subwave/internal/pricing/domain"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Catalog  catalogdomain.Lookup
	Resolver promodomain.Resolver
	Pricing  *config.PricingConfigHolder
	Metrics  *metrics.Metrics
}

type Service struct {
	log      *zap.Logger
	catalog  catalogdomain.Lookup
	resolver promodomain.Resolver
	pricing  *config.PricingConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) pricingdomain.Service {
	return &Service{
		log:      p.Log.Named("pricing.service"),
		catalog:  p.Catalog,
		resolver: p.Resolver,
		pricing:  p.Pricing,
		metrics:  p.Metrics,
	}
}

// ComputeTotal prices a full subscription configuration. Inputs are
// validated before any catalog or promo access, the discount is
// resolved exactly once, and the four components are priced
// concurrently. Any failure discards the whole quote.
func (s *Service) ComputeTotal(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.QuoteResult, error) {
	started := time.Now()

	if err := validateQuoteRequest(req); err != nil {
		s.metrics.RecordQuote(ctx, "total", "invalid", time.Since(started))
		return nil, err
	}

	discount, err := s.resolveDiscount(ctx, req.SubscriberID, req.PromoGroupID)
	if err != nil {
		s.metrics.RecordQuote(ctx, "total", "error", time.Since(started))
		return nil, err
	}

	var (
		period  *pricingdomain.ComponentPrice
		traffic *pricingdomain.ComponentPrice
		servers *pricingdomain.ServersPrice
		devices *pricingdomain.ComponentPrice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		period, err = s.pricePeriod(gctx, req.PeriodDays, discount.Percent)
		return err
	})
	g.Go(func() error {
		var err error
		traffic, err = s.priceTraffic(gctx, req.TrafficGB, req.PeriodDays, discount.Percent)
		return err
	})
	g.Go(func() error {
		var err error
		servers, err = s.priceServers(gctx, req.ServerResourceIDs, req.PeriodDays, discount.Percent)
		return err
	})
	g.Go(func() error {
		var err error
		devices, err = s.priceDevices(gctx, req.DeviceCount, req.PeriodDays, discount.Percent)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.RecordQuote(ctx, "total", "error", time.Since(started))
		return nil, err
	}

	totalOriginal := period.OriginalCents +
		traffic.OriginalCents +
		servers.OriginalCents +
		devices.OriginalCents
	total := period.DiscountedCents +
		traffic.DiscountedCents +
		servers.DiscountedCents +
		devices.DiscountedCents

	result := &pricingdomain.QuoteResult{
		TotalCents:         total,
		TotalOriginalCents: totalOriginal,
		TotalDiscountCents: totalOriginal - total,
		DiscountPercent:    discount.Percent,
		DiscountOrigin:     discount.Origin,
		Breakdown: pricingdomain.Breakdown{
			Period:  *period,
			Traffic: *traffic,
			Servers: *servers,
			Devices: *devices,
		},
	}

	s.metrics.RecordQuote(ctx, "total", "ok", time.Since(started))
	s.log.Debug("quote computed",
		zap.Int("period_days", req.PeriodDays),
		zap.Int("discount_percent", discount.Percent),
		zap.String("discount_origin", string(discount.Origin)),
		zap.Int64("total_cents", result.TotalCents),
	)
	return result, nil
}

func (s *Service) PricePeriod(ctx context.Context, req pricingdomain.PeriodQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	started := time.Now()
	if req.PeriodDays <= 0 {
		return nil, pricingdomain.ErrInvalidPeriodDays
	}

	discount, err := s.resolveDiscount(ctx, req.SubscriberID, req.PromoGroupID)
	if err != nil {
		return nil, err
	}

	price, err := s.pricePeriod(ctx, req.PeriodDays, discount.Percent)
	s.metrics.RecordQuote(ctx, "period", outcome(err), time.Since(started))
	return price, err
}

func (s *Service) PriceTraffic(ctx context.Context, req pricingdomain.TrafficQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	started := time.Now()
	if req.TrafficGB < 0 {
		return nil, pricingdomain.ErrInvalidTraffic
	}
	if req.PeriodDays <= 0 {
		return nil, pricingdomain.ErrInvalidPeriodDays
	}

	discount, err := s.resolveDiscount(ctx, req.SubscriberID, req.PromoGroupID)
	if err != nil {
		return nil, err
	}

	price, err := s.priceTraffic(ctx, req.TrafficGB, req.PeriodDays, discount.Percent)
	s.metrics.RecordQuote(ctx, "traffic", outcome(err), time.Since(started))
	return price, err
}

func (s *Service) PriceServers(ctx context.Context, req pricingdomain.ServersQuoteRequest) (*pricingdomain.ServersPrice, error) {
	started := time.Now()
	if req.PeriodDays <= 0 {
		return nil, pricingdomain.ErrInvalidPeriodDays
	}
	if _, err := parseResourceIDs(req.ServerResourceIDs); err != nil {
		return nil, err
	}

	discount, err := s.resolveDiscount(ctx, req.SubscriberID, req.PromoGroupID)
	if err != nil {
		return nil, err
	}

	price, err := s.priceServers(ctx, req.ServerResourceIDs, req.PeriodDays, discount.Percent)
	s.metrics.RecordQuote(ctx, "servers", outcome(err), time.Since(started))
	return price, err
}

func (s *Service) PriceDevices(ctx context.Context, req pricingdomain.DevicesQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	started := time.Now()
	if req.DeviceCount < 0 {
		return nil, pricingdomain.ErrInvalidDeviceCount
	}
	if req.PeriodDays <= 0 {
		return nil, pricingdomain.ErrInvalidPeriodDays
	}

	discount, err := s.resolveDiscount(ctx, req.SubscriberID, req.PromoGroupID)
	if err != nil {
		return nil, err
	}

	price, err := s.priceDevices(ctx, req.DeviceCount, req.PeriodDays, discount.Percent)
	s.metrics.RecordQuote(ctx, "devices", outcome(err), time.Since(started))
	return price, err
}

func (s *Service) resolveDiscount(ctx context.Context, subscriberID, promoGroupID string) (*promodomain.ResolvedDiscount, error) {
	return s.resolver.Resolve(ctx, promodomain.ResolveRequest{
		SubscriberID: subscriberID,
		PromoGroupID: promoGroupID,
	})
}

func (s *Service) pricePeriod(ctx context.Context, days, pct int) (*pricingdomain.ComponentPrice, error) {
	price, err := s.catalog.PeriodPrice(ctx, days)
	if err != nil {
		return nil, err
	}
	return component(price.AmountCents, pct), nil
}

func (s *Service) priceTraffic(ctx context.Context, gb int64, days, pct int) (*pricingdomain.ComponentPrice, error) {
	if gb == 0 {
		return component(0, pct), nil
	}

	tier, err := s.catalog.TrafficTier(ctx, gb)
	if err != nil {
		return nil, err
	}

	amount := prorateCents(tier.AmountCents, days, s.referenceDays(tier.ReferenceDays))
	return component(amount, pct), nil
}

func (s *Service) priceServers(ctx context.Context, resourceIDs []string, days, pct int) (*pricingdomain.ServersPrice, error) {
	ids, err := parseResourceIDs(resourceIDs)
	if err != nil {
		return nil, err
	}

	price := &pricingdomain.ServersPrice{}
	if len(ids) == 0 {
		price.ComponentPrice = *component(0, pct)
		return price, nil
	}

	var sum int64
	for _, id := range ids {
		resource, err := s.catalog.ServerResource(ctx, id)
		if err != nil {
			return nil, err
		}

		amount := prorateCents(resource.AmountCents, days, s.referenceDays(resource.ReferenceDays))
		sum += amount
		price.Lines = append(price.Lines, pricingdomain.ServerLine{
			ResourceID:  resource.ID.String(),
			Name:        resource.Name,
			AmountCents: amount,
		})
	}

	price.ComponentPrice = *component(sum, pct)
	return price, nil
}

func (s *Service) priceDevices(ctx context.Context, deviceCount, days, pct int) (*pricingdomain.ComponentPrice, error) {
	billable := deviceCount - s.pricing.Get().IncludedDevices
	if billable <= 0 {
		return component(0, pct), nil
	}

	rate, err := s.catalog.DeviceRate(ctx)
	if err != nil {
		return nil, err
	}

	perDevice := prorateCents(rate.PerDeviceCents, days, s.referenceDays(rate.ReferenceDays))
	return component(perDevice*int64(billable), pct), nil
}

func (s *Service) referenceDays(days int) int {
	if days > 0 {
		return days
	}
	return s.pricing.Get().DefaultReferenceDays
}

func component(original int64, pct int) *pricingdomain.ComponentPrice {
	discounted := applyDiscountCents(original, pct)
	return &pricingdomain.ComponentPrice{
		OriginalCents:   original,
		DiscountedCents: discounted,
		DiscountCents:   original - discounted,
		DiscountPercent: pct,
	}
}

func validateQuoteRequest(req pricingdomain.QuoteRequest) error {
	if req.PeriodDays <= 0 {
		return pricingdomain.ErrInvalidPeriodDays
	}
	if req.TrafficGB < 0 {
		return pricingdomain.ErrInvalidTraffic
	}
	if req.DeviceCount < 0 {
		return pricingdomain.ErrInvalidDeviceCount
	}
	if _, err := parseResourceIDs(req.ServerResourceIDs); err != nil {
		return err
	}
	return nil
}

// parseResourceIDs validates and dedupes resource identifiers. A
// duplicate is a single inclusion, order of first occurrence wins.
func parseResourceIDs(values []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(values))
	seen := make(map[snowflake.ID]struct{}, len(values))
	for _, value := range values {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil {
			return nil, pricingdomain.ErrInvalidResourceID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
