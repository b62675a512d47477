// Package domain contains persistence models for promo groups and
// subscribers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PromoGroup carries a flat percentage discount shared by its members.
type PromoGroup struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	Name            string       `json:"name" gorm:"type:text;not null;uniqueIndex"`
	DiscountPercent int          `json:"discount_percent" gorm:"not null"`
	Active          bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PromoGroup) TableName() string { return "promo_groups" }

// Subscriber links an account to an optional promo group and an
// optional personal discount. A personal discount with a nil expiry
// never lapses.
type Subscriber struct {
	ID                     snowflake.ID  `json:"id" gorm:"primaryKey"`
	ExternalID             string        `json:"external_id" gorm:"type:text;not null;uniqueIndex"`
	PromoGroupID           *snowflake.ID `json:"promo_group_id,omitempty" gorm:"index"`
	PersonalPercent        int           `json:"personal_percent" gorm:"not null;default:0"`
	PersonalPercentExpires *time.Time    `json:"personal_percent_expires,omitempty"`
	CreatedAt              time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscriber) TableName() string { return "subscribers" }
