package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Lookup is the read-only contract the pricing engine consumes. All
// lookups are side-effect free; an unknown identifier surfaces as a
// typed not-found error, never as a zero price.
type Lookup interface {
	PeriodPrice(ctx context.Context, days int) (*PeriodPrice, error)
	TrafficTier(ctx context.Context, gb int64) (*TrafficTier, error)
	ServerResource(ctx context.Context, id snowflake.ID) (*ServerResource, error)
	DeviceRate(ctx context.Context) (*DeviceRate, error)
}

// Service is the full catalog surface: the quoting lookups plus the
// administrative operations that maintain catalog rows.
type Service interface {
	Lookup

	CreatePeriodPrice(ctx context.Context, req CreatePeriodPriceRequest) (*PeriodPrice, error)
	ListPeriodPrices(ctx context.Context) ([]PeriodPrice, error)

	CreateTrafficTier(ctx context.Context, req CreateTrafficTierRequest) (*TrafficTier, error)
	ListTrafficTiers(ctx context.Context) ([]TrafficTier, error)

	CreateServerResource(ctx context.Context, req CreateServerResourceRequest) (*ServerResource, error)
	ListServerResources(ctx context.Context) ([]ServerResource, error)

	SetDeviceRate(ctx context.Context, req SetDeviceRateRequest) (*DeviceRate, error)
}

type CreatePeriodPriceRequest struct {
	Days        int   `json:"days"`
	AmountCents int64 `json:"amount_cents"`
}

type CreateTrafficTierRequest struct {
	UpToGB        *int64 `json:"up_to_gb"`
	AmountCents   int64  `json:"amount_cents"`
	ReferenceDays int    `json:"reference_days"`
}

type CreateServerResourceRequest struct {
	Name          string         `json:"name"`
	AmountCents   int64          `json:"amount_cents"`
	ReferenceDays int            `json:"reference_days"`
	Metadata      map[string]any `json:"metadata"`
}

type SetDeviceRateRequest struct {
	PerDeviceCents int64 `json:"per_device_cents"`
	ReferenceDays  int   `json:"reference_days"`
}

var (
	ErrPeriodNotSupported     = errors.New("period_not_supported")
	ErrTrafficTierNotFound    = errors.New("traffic_tier_not_found")
	ErrServerResourceNotFound = errors.New("server_resource_not_found")
	ErrDeviceRateNotSet       = errors.New("device_rate_not_set")

	ErrInvalidDays          = errors.New("invalid_days")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidReferenceDays = errors.New("invalid_reference_days")
	ErrInvalidUpToGB        = errors.New("invalid_up_to_gb")
	ErrInvalidName          = errors.New("invalid_name")
	ErrDuplicatePeriod      = errors.New("duplicate_period")
)
