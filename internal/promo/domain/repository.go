package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPromoGroup(ctx context.Context, db *gorm.DB, group *PromoGroup) error
	FindPromoGroup(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PromoGroup, error)
	ListPromoGroups(ctx context.Context, db *gorm.DB) ([]PromoGroup, error)

	InsertSubscriber(ctx context.Context, db *gorm.DB, subscriber *Subscriber) error
	FindSubscriber(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscriber, error)
	UpdateSubscriber(ctx context.Context, db *gorm.DB, subscriber *Subscriber) error
}
