package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPeriodPrice(ctx context.Context, db *gorm.DB, price *PeriodPrice) error
	FindPeriodPrice(ctx context.Context, db *gorm.DB, days int) (*PeriodPrice, error)
	ListPeriodPrices(ctx context.Context, db *gorm.DB) ([]PeriodPrice, error)

	InsertTrafficTier(ctx context.Context, db *gorm.DB, tier *TrafficTier) error
	FindTrafficTier(ctx context.Context, db *gorm.DB, gb int64) (*TrafficTier, error)
	ListTrafficTiers(ctx context.Context, db *gorm.DB) ([]TrafficTier, error)

	InsertServerResource(ctx context.Context, db *gorm.DB, resource *ServerResource) error
	FindServerResource(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ServerResource, error)
	ListServerResources(ctx context.Context, db *gorm.DB) ([]ServerResource, error)

	UpsertDeviceRate(ctx context.Context, db *gorm.DB, rate *DeviceRate) error
	FindActiveDeviceRate(ctx context.Context, db *gorm.DB) (*DeviceRate, error)
}
