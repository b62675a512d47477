package domain

import (
	"context"
	"errors"
	"time"
)

// DiscountOrigin records which rule produced the winning percentage.
type DiscountOrigin string

const (
	OriginNone       DiscountOrigin = "none"
	OriginPersonal   DiscountOrigin = "personal"
	OriginPromoGroup DiscountOrigin = "promo_group"
)

// ResolvedDiscount is the single percentage applied to every priced
// component of a quote. Discounts never stack; the resolver picks one
// winner and reports where it came from.
type ResolvedDiscount struct {
	Percent int            `json:"percent"`
	Origin  DiscountOrigin `json:"origin"`
	GroupID string         `json:"group_id,omitempty"`
}

type ResolveRequest struct {
	SubscriberID string `json:"subscriber_id,omitempty"`
	PromoGroupID string `json:"promo_group_id,omitempty"`
}

// Resolver decides the discount percentage for a quote.
//
// An explicit promo group reference overrides everything else and must
// exist. Without one, a known subscriber gets the larger of their
// active personal discount and their group's percentage. With neither
// reference the discount is zero.
type Resolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (*ResolvedDiscount, error)
}

// Service is the full promo surface: quote-time resolution plus the
// administrative operations that maintain groups and subscribers.
type Service interface {
	Resolver

	CreatePromoGroup(ctx context.Context, req CreatePromoGroupRequest) (*PromoGroup, error)
	ListPromoGroups(ctx context.Context) ([]PromoGroup, error)

	RegisterSubscriber(ctx context.Context, req RegisterSubscriberRequest) (*Subscriber, error)
	GetSubscriber(ctx context.Context, id string) (*Subscriber, error)
	AssignPromoGroup(ctx context.Context, req AssignPromoGroupRequest) (*Subscriber, error)
	GrantPersonalDiscount(ctx context.Context, req GrantPersonalDiscountRequest) (*Subscriber, error)
}

type CreatePromoGroupRequest struct {
	Name            string `json:"name"`
	DiscountPercent int    `json:"discount_percent"`
}

type RegisterSubscriberRequest struct {
	ExternalID   string `json:"external_id"`
	PromoGroupID string `json:"promo_group_id,omitempty"`
}

type AssignPromoGroupRequest struct {
	SubscriberID string `json:"subscriber_id"`
	PromoGroupID string `json:"promo_group_id"`
}

type GrantPersonalDiscountRequest struct {
	SubscriberID string     `json:"subscriber_id"`
	Percent      int        `json:"percent"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

var (
	ErrPromoGroupNotFound = errors.New("promo_group_not_found")
	ErrSubscriberNotFound = errors.New("subscriber_not_found")

	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPercent    = errors.New("invalid_percent")
	ErrInvalidExternalID = errors.New("invalid_external_id")
	ErrDuplicateGroup    = errors.New("duplicate_group")
	ErrDuplicateExternal = errors.New("duplicate_external_id")
)
