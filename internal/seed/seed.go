// Package seed bootstraps a usable catalog for fresh deployments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"gorm.io/gorm"
)

type periodSeed struct {
	days        int
	amountCents int64
}

type tierSeed struct {
	upToGB      *int64
	amountCents int64
}

var defaultPeriods = []periodSeed{
	{days: 30, amountCents: 10000},
	{days: 90, amountCents: 27000},
	{days: 180, amountCents: 48000},
	{days: 365, amountCents: 84000},
}

var defaultTiers = []tierSeed{
	{upToGB: gb(100), amountCents: 0},
	{upToGB: gb(500), amountCents: 3000},
	{upToGB: nil, amountCents: 9000},
}

const defaultPerDeviceCents = 500

func gb(v int64) *int64 { return &v }

// EnsureDefaultCatalog seeds period prices, traffic tiers, and a
// device rate when the catalog is empty. An already populated catalog
// is left untouched.
func EnsureDefaultCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePeriodPrices(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureTrafficTiers(ctx, tx, node); err != nil {
			return err
		}
		return ensureDeviceRate(ctx, tx, node)
	})
}

func ensurePeriodPrices(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.PeriodPrice{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, p := range defaultPeriods {
		price := catalogdomain.PeriodPrice{
			ID:          node.Generate(),
			Days:        p.days,
			AmountCents: p.amountCents,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&price).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureTrafficTiers(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.TrafficTier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, t := range defaultTiers {
		tier := catalogdomain.TrafficTier{
			ID:            node.Generate(),
			UpToGB:        t.upToGB,
			AmountCents:   t.amountCents,
			ReferenceDays: 30,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.WithContext(ctx).Create(&tier).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureDeviceRate(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.DeviceRate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	rate := catalogdomain.DeviceRate{
		ID:             node.Generate(),
		PerDeviceCents: defaultPerDeviceCents,
		ReferenceDays:  30,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return tx.WithContext(ctx).Create(&rate).Error
}
