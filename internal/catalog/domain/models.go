// Package domain contains persistence models for the pricing catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PeriodPrice is the base price for an exact subscription period length.
// Period prices are defined per supported length; there is no
// interpolation between lengths.
type PeriodPrice struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Days        int          `json:"days" gorm:"not null;uniqueIndex"`
	AmountCents int64        `json:"amount_cents" gorm:"not null"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PeriodPrice) TableName() string { return "period_prices" }

// TrafficTier prices a traffic volume bracket per its reference period.
// A nil UpToGB marks the open-ended top tier.
type TrafficTier struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	UpToGB        *int64       `json:"up_to_gb,omitempty" gorm:"index"`
	AmountCents   int64        `json:"amount_cents" gorm:"not null"`
	ReferenceDays int          `json:"reference_days" gorm:"not null;default:30"`
	Active        bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TrafficTier) TableName() string { return "traffic_tiers" }

// ServerResource is an optional add-on priced per its reference period.
type ServerResource struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name          string            `json:"name" gorm:"type:text;not null"`
	AmountCents   int64             `json:"amount_cents" gorm:"not null"`
	ReferenceDays int               `json:"reference_days" gorm:"not null;default:30"`
	Active        bool              `json:"active" gorm:"not null;default:true"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ServerResource) TableName() string { return "server_resources" }

// DeviceRate is the per-device price per its reference period. Only the
// active row is consulted for quoting.
type DeviceRate struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	PerDeviceCents int64        `json:"per_device_cents" gorm:"not null"`
	ReferenceDays  int          `json:"reference_days" gorm:"not null;default:30"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DeviceRate) TableName() string { return "device_rates" }
