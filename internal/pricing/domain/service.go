// Package domain defines the quoting contract: requests, the priced
// breakdown, and the engine interface.
package domain

import (
	"context"
	"errors"

	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
)

// QuoteRequest describes one subscription configuration to price. The
// discount inputs are optional; PromoGroupID overrides SubscriberID
// when both are set.
type QuoteRequest struct {
	SubscriberID      string   `json:"subscriber_id,omitempty"`
	PromoGroupID      string   `json:"promo_group_id,omitempty"`
	PeriodDays        int      `json:"period_days"`
	TrafficGB         int64    `json:"traffic_gb"`
	ServerResourceIDs []string `json:"server_resource_ids,omitempty"`
	DeviceCount       int      `json:"device_count"`
}

// ComponentPrice carries both sides of one component: the catalog
// price and the price after the quote's discount. Amounts are minor
// currency units and never negative.
type ComponentPrice struct {
	OriginalCents   int64 `json:"original_cents"`
	DiscountedCents int64 `json:"discounted_cents"`
	DiscountCents   int64 `json:"discount_cents"`
	DiscountPercent int   `json:"discount_percent"`
}

// ServerLine is the prorated catalog price of one requested resource.
type ServerLine struct {
	ResourceID  string `json:"resource_id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// ServersPrice extends ComponentPrice with per-resource lines. The
// discount applies once to the summed total, not per line.
type ServersPrice struct {
	ComponentPrice
	Lines []ServerLine `json:"lines,omitempty"`
}

type Breakdown struct {
	Period  ComponentPrice `json:"period"`
	Traffic ComponentPrice `json:"traffic"`
	Servers ServersPrice   `json:"servers"`
	Devices ComponentPrice `json:"devices"`
}

// QuoteResult is the complete priced quote. TotalCents is the sum of
// the four discounted component prices; TotalOriginalCents the sum
// before the discount, TotalDiscountCents the difference.
type QuoteResult struct {
	TotalCents         int64                      `json:"total_cents"`
	TotalOriginalCents int64                      `json:"total_original_cents"`
	TotalDiscountCents int64                      `json:"total_discount_cents"`
	DiscountPercent    int                        `json:"discount_percent"`
	DiscountOrigin     promodomain.DiscountOrigin `json:"discount_origin"`
	Breakdown          Breakdown                  `json:"breakdown"`
}

// PeriodQuoteRequest prices the base period alone. The discount
// inputs follow the same precedence as QuoteRequest.
type PeriodQuoteRequest struct {
	SubscriberID string `json:"subscriber_id,omitempty"`
	PromoGroupID string `json:"promo_group_id,omitempty"`
	PeriodDays   int    `json:"period_days"`
}

type TrafficQuoteRequest struct {
	SubscriberID string `json:"subscriber_id,omitempty"`
	PromoGroupID string `json:"promo_group_id,omitempty"`
	PeriodDays   int    `json:"period_days"`
	TrafficGB    int64  `json:"traffic_gb"`
}

type ServersQuoteRequest struct {
	SubscriberID      string   `json:"subscriber_id,omitempty"`
	PromoGroupID      string   `json:"promo_group_id,omitempty"`
	PeriodDays        int      `json:"period_days"`
	ServerResourceIDs []string `json:"server_resource_ids,omitempty"`
}

type DevicesQuoteRequest struct {
	SubscriberID string `json:"subscriber_id,omitempty"`
	PromoGroupID string `json:"promo_group_id,omitempty"`
	PeriodDays   int    `json:"period_days"`
	DeviceCount  int    `json:"device_count"`
}

// Service prices subscription configurations. ComputeTotal resolves
// the discount once and prices all four components; the narrow
// operations price one component under the same validation and
// discount resolution. Every operation validates before touching the
// catalog and returns either a complete result or an error, never
// both.
type Service interface {
	ComputeTotal(ctx context.Context, req QuoteRequest) (*QuoteResult, error)

	PricePeriod(ctx context.Context, req PeriodQuoteRequest) (*ComponentPrice, error)
	PriceTraffic(ctx context.Context, req TrafficQuoteRequest) (*ComponentPrice, error)
	PriceServers(ctx context.Context, req ServersQuoteRequest) (*ServersPrice, error)
	PriceDevices(ctx context.Context, req DevicesQuoteRequest) (*ComponentPrice, error)
}

var (
	ErrInvalidPeriodDays  = errors.New("invalid_period_days")
	ErrInvalidTraffic     = errors.New("invalid_traffic")
	ErrInvalidDeviceCount = errors.New("invalid_device_count")
	ErrInvalidResourceID  = errors.New("invalid_resource_id")
)
