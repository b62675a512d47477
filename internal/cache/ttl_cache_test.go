package cache

import (
	"testing"
	"time"

	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	value, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCache_NonPositiveTTLIgnored(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCache_Purge(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Purge()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCatalogCache_InvalidateDropsEverything(t *testing.T) {
	c := NewCatalogCache()

	c.SetPeriodPrice(30, &catalogdomain.PeriodPrice{Days: 30, AmountCents: 1000})
	c.SetDeviceRate(&catalogdomain.DeviceRate{PerDeviceCents: 500})

	_, ok := c.GetPeriodPrice(30)
	assert.True(t, ok)

	c.Invalidate()

	_, ok = c.GetPeriodPrice(30)
	assert.False(t, ok)
	_, ok = c.GetDeviceRate()
	assert.False(t, ok)
}

func TestCatalogCache_NilEntriesIgnored(t *testing.T) {
	c := NewCatalogCache()

	c.SetPeriodPrice(30, nil)
	_, ok := c.GetPeriodPrice(30)
	assert.False(t, ok)
}
