package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() promodomain.Repository {
	return &repo{}
}

func (r *repo) InsertPromoGroup(ctx context.Context, db *gorm.DB, group *promodomain.PromoGroup) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO promo_groups (id, name, discount_percent, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID,
		group.Name,
		group.DiscountPercent,
		group.Active,
		group.CreatedAt,
		group.UpdatedAt,
	).Error
}

func (r *repo) FindPromoGroup(ctx context.Context, db *gorm.DB, id snowflake.ID) (*promodomain.PromoGroup, error) {
	var group promodomain.PromoGroup
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, discount_percent, active, created_at, updated_at
		 FROM promo_groups WHERE id = ? AND active`,
		id,
	).Scan(&group).Error
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		return nil, nil
	}
	return &group, nil
}

func (r *repo) ListPromoGroups(ctx context.Context, db *gorm.DB) ([]promodomain.PromoGroup, error) {
	var items []promodomain.PromoGroup
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, discount_percent, active, created_at, updated_at
		 FROM promo_groups ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertSubscriber(ctx context.Context, db *gorm.DB, subscriber *promodomain.Subscriber) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscribers (id, external_id, promo_group_id, personal_percent, personal_percent_expires, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		subscriber.ID,
		subscriber.ExternalID,
		subscriber.PromoGroupID,
		subscriber.PersonalPercent,
		subscriber.PersonalPercentExpires,
		subscriber.CreatedAt,
		subscriber.UpdatedAt,
	).Error
}

func (r *repo) FindSubscriber(ctx context.Context, db *gorm.DB, id snowflake.ID) (*promodomain.Subscriber, error) {
	var subscriber promodomain.Subscriber
	err := db.WithContext(ctx).Raw(
		`SELECT id, external_id, promo_group_id, personal_percent, personal_percent_expires, created_at, updated_at
		 FROM subscribers WHERE id = ?`,
		id,
	).Scan(&subscriber).Error
	if err != nil {
		return nil, err
	}
	if subscriber.ID == 0 {
		return nil, nil
	}
	return &subscriber, nil
}

func (r *repo) UpdateSubscriber(ctx context.Context, db *gorm.DB, subscriber *promodomain.Subscriber) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscribers
		 SET promo_group_id = ?, personal_percent = ?, personal_percent_expires = ?, updated_at = ?
		 WHERE id = ?`,
		subscriber.PromoGroupID,
		subscriber.PersonalPercent,
		subscriber.PersonalPercentExpires,
		subscriber.UpdatedAt,
		subscriber.ID,
	).Error
}
