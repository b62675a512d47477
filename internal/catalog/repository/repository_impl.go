package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) InsertPeriodPrice(ctx context.Context, db *gorm.DB, price *catalogdomain.PeriodPrice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO period_prices (id, days, amount_cents, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		price.ID,
		price.Days,
		price.AmountCents,
		price.Active,
		price.CreatedAt,
		price.UpdatedAt,
	).Error
}

func (r *repo) FindPeriodPrice(ctx context.Context, db *gorm.DB, days int) (*catalogdomain.PeriodPrice, error) {
	var price catalogdomain.PeriodPrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, days, amount_cents, active, created_at, updated_at
		 FROM period_prices WHERE days = ? AND active`,
		days,
	).Scan(&price).Error
	if err != nil {
		return nil, err
	}
	if price.ID == 0 {
		return nil, nil
	}
	return &price, nil
}

func (r *repo) ListPeriodPrices(ctx context.Context, db *gorm.DB) ([]catalogdomain.PeriodPrice, error) {
	var items []catalogdomain.PeriodPrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, days, amount_cents, active, created_at, updated_at
		 FROM period_prices ORDER BY days ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertTrafficTier(ctx context.Context, db *gorm.DB, tier *catalogdomain.TrafficTier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO traffic_tiers (id, up_to_gb, amount_cents, reference_days, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tier.ID,
		tier.UpToGB,
		tier.AmountCents,
		tier.ReferenceDays,
		tier.Active,
		tier.CreatedAt,
		tier.UpdatedAt,
	).Error
}

// FindTrafficTier selects the narrowest bracket covering the requested
// volume, falling back to the open-ended top tier.
func (r *repo) FindTrafficTier(ctx context.Context, db *gorm.DB, gb int64) (*catalogdomain.TrafficTier, error) {
	var tier catalogdomain.TrafficTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, up_to_gb, amount_cents, reference_days, active, created_at, updated_at
		 FROM traffic_tiers
		 WHERE active AND (up_to_gb IS NULL OR up_to_gb >= ?)
		 ORDER BY up_to_gb IS NULL, up_to_gb ASC
		 LIMIT 1`,
		gb,
	).Scan(&tier).Error
	if err != nil {
		return nil, err
	}
	if tier.ID == 0 {
		return nil, nil
	}
	return &tier, nil
}

func (r *repo) ListTrafficTiers(ctx context.Context, db *gorm.DB) ([]catalogdomain.TrafficTier, error) {
	var items []catalogdomain.TrafficTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, up_to_gb, amount_cents, reference_days, active, created_at, updated_at
		 FROM traffic_tiers ORDER BY up_to_gb IS NULL, up_to_gb ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertServerResource(ctx context.Context, db *gorm.DB, resource *catalogdomain.ServerResource) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO server_resources (id, name, amount_cents, reference_days, active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resource.ID,
		resource.Name,
		resource.AmountCents,
		resource.ReferenceDays,
		resource.Active,
		resource.Metadata,
		resource.CreatedAt,
		resource.UpdatedAt,
	).Error
}

func (r *repo) FindServerResource(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.ServerResource, error) {
	var resource catalogdomain.ServerResource
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, amount_cents, reference_days, active, metadata, created_at, updated_at
		 FROM server_resources WHERE id = ? AND active`,
		id,
	).Scan(&resource).Error
	if err != nil {
		return nil, err
	}
	if resource.ID == 0 {
		return nil, nil
	}
	return &resource, nil
}

func (r *repo) ListServerResources(ctx context.Context, db *gorm.DB) ([]catalogdomain.ServerResource, error) {
	var items []catalogdomain.ServerResource
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, amount_cents, reference_days, active, metadata, created_at, updated_at
		 FROM server_resources ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertDeviceRate retires the previous active rate and inserts the new
// one in a single transaction.
func (r *repo) UpsertDeviceRate(ctx context.Context, db *gorm.DB, rate *catalogdomain.DeviceRate) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE device_rates SET active = ?, updated_at = ? WHERE active`,
			false,
			rate.UpdatedAt,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO device_rates (id, per_device_cents, reference_days, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rate.ID,
			rate.PerDeviceCents,
			rate.ReferenceDays,
			rate.Active,
			rate.CreatedAt,
			rate.UpdatedAt,
		).Error
	})
}

func (r *repo) FindActiveDeviceRate(ctx context.Context, db *gorm.DB) (*catalogdomain.DeviceRate, error) {
	var rate catalogdomain.DeviceRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, per_device_cents, reference_days, active, created_at, updated_at
		 FROM device_rates WHERE active
		 ORDER BY created_at DESC LIMIT 1`,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}
