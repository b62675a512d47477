package cache

import (
	"fmt"
	"time"

	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
)

const (
	defaultPeriodTTL     = 5 * time.Minute
	defaultTrafficTTL    = 5 * time.Minute
	defaultResourceTTL   = 5 * time.Minute
	defaultDeviceRateTTL = 1 * time.Minute
)

// CatalogCache stores hot-path catalog lookups for quote computation.
type CatalogCache interface {
	GetPeriodPrice(days int) (*catalogdomain.PeriodPrice, bool)
	SetPeriodPrice(days int, price *catalogdomain.PeriodPrice)
	GetTrafficTier(gb int64) (*catalogdomain.TrafficTier, bool)
	SetTrafficTier(gb int64, tier *catalogdomain.TrafficTier)
	GetServerResource(id int64) (*catalogdomain.ServerResource, bool)
	SetServerResource(id int64, resource *catalogdomain.ServerResource)
	GetDeviceRate() (*catalogdomain.DeviceRate, bool)
	SetDeviceRate(rate *catalogdomain.DeviceRate)
	Invalidate()
}

type catalogCache struct {
	periods   Cache[string, *catalogdomain.PeriodPrice]
	tiers     Cache[string, *catalogdomain.TrafficTier]
	resources Cache[string, *catalogdomain.ServerResource]
	rates     Cache[string, *catalogdomain.DeviceRate]
}

// NewCatalogCache returns an in-memory cache tuned for quote lookups.
func NewCatalogCache() CatalogCache {
	return &catalogCache{
		periods:   NewTTLCache[string, *catalogdomain.PeriodPrice](),
		tiers:     NewTTLCache[string, *catalogdomain.TrafficTier](),
		resources: NewTTLCache[string, *catalogdomain.ServerResource](),
		rates:     NewTTLCache[string, *catalogdomain.DeviceRate](),
	}
}

func (c *catalogCache) GetPeriodPrice(days int) (*catalogdomain.PeriodPrice, bool) {
	return c.periods.Get(fmt.Sprintf("period|%d", days))
}

func (c *catalogCache) SetPeriodPrice(days int, price *catalogdomain.PeriodPrice) {
	if price == nil {
		return
	}
	c.periods.Set(fmt.Sprintf("period|%d", days), price, defaultPeriodTTL)
}

func (c *catalogCache) GetTrafficTier(gb int64) (*catalogdomain.TrafficTier, bool) {
	return c.tiers.Get(fmt.Sprintf("traffic|%d", gb))
}

func (c *catalogCache) SetTrafficTier(gb int64, tier *catalogdomain.TrafficTier) {
	if tier == nil {
		return
	}
	c.tiers.Set(fmt.Sprintf("traffic|%d", gb), tier, defaultTrafficTTL)
}

func (c *catalogCache) GetServerResource(id int64) (*catalogdomain.ServerResource, bool) {
	return c.resources.Get(fmt.Sprintf("resource|%d", id))
}

func (c *catalogCache) SetServerResource(id int64, resource *catalogdomain.ServerResource) {
	if resource == nil {
		return
	}
	c.resources.Set(fmt.Sprintf("resource|%d", id), resource, defaultResourceTTL)
}

func (c *catalogCache) GetDeviceRate() (*catalogdomain.DeviceRate, bool) {
	return c.rates.Get("device_rate")
}

func (c *catalogCache) SetDeviceRate(rate *catalogdomain.DeviceRate) {
	if rate == nil {
		return
	}
	c.rates.Set("device_rate", rate, defaultDeviceRateTTL)
}

// Invalidate drops every cached entry. Called after catalog writes so
// quotes never serve a retired price.
func (c *catalogCache) Invalidate() {
	c.periods.Purge()
	c.tiers.Purge()
	c.resources.Purge()
	c.rates.Purge()
}
