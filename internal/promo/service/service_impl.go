package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/subwavelabs/subwave/internal/clock"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/subwavelabs/subwave/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  promodomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  promodomain.Repository
}

func New(p Params) promodomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("promo.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Resolve picks the discount for a quote. An explicit promo group
// reference wins outright and must exist. Otherwise a known subscriber
// gets the larger of their active personal discount and their group's
// percentage. Percentages are never summed.
func (s *Service) Resolve(ctx context.Context, req promodomain.ResolveRequest) (*promodomain.ResolvedDiscount, error) {
	if strings.TrimSpace(req.PromoGroupID) != "" {
		groupID, err := parseID(req.PromoGroupID)
		if err != nil {
			return nil, promodomain.ErrInvalidID
		}

		group, err := s.repo.FindPromoGroup(ctx, s.db, groupID)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, promodomain.ErrPromoGroupNotFound
		}

		return &promodomain.ResolvedDiscount{
			Percent: group.DiscountPercent,
			Origin:  promodomain.OriginPromoGroup,
			GroupID: group.ID.String(),
		}, nil
	}

	if strings.TrimSpace(req.SubscriberID) != "" {
		subscriberID, err := parseID(req.SubscriberID)
		if err != nil {
			return nil, promodomain.ErrInvalidID
		}

		subscriber, err := s.repo.FindSubscriber(ctx, s.db, subscriberID)
		if err != nil {
			return nil, err
		}
		if subscriber == nil {
			return nil, promodomain.ErrSubscriberNotFound
		}

		return s.resolveForSubscriber(ctx, subscriber)
	}

	return &promodomain.ResolvedDiscount{Percent: 0, Origin: promodomain.OriginNone}, nil
}

func (s *Service) resolveForSubscriber(ctx context.Context, subscriber *promodomain.Subscriber) (*promodomain.ResolvedDiscount, error) {
	resolved := &promodomain.ResolvedDiscount{Percent: 0, Origin: promodomain.OriginNone}

	if personal := s.activePersonalPercent(subscriber); personal > 0 {
		resolved.Percent = personal
		resolved.Origin = promodomain.OriginPersonal
	}

	if subscriber.PromoGroupID != nil {
		group, err := s.repo.FindPromoGroup(ctx, s.db, *subscriber.PromoGroupID)
		if err != nil {
			return nil, err
		}
		if group != nil && group.DiscountPercent > resolved.Percent {
			resolved.Percent = group.DiscountPercent
			resolved.Origin = promodomain.OriginPromoGroup
			resolved.GroupID = group.ID.String()
		}
	}

	return resolved, nil
}

func (s *Service) activePersonalPercent(subscriber *promodomain.Subscriber) int {
	if subscriber.PersonalPercent <= 0 {
		return 0
	}
	if subscriber.PersonalPercentExpires != nil && !subscriber.PersonalPercentExpires.After(s.clock.Now()) {
		return 0
	}
	return subscriber.PersonalPercent
}

func (s *Service) CreatePromoGroup(ctx context.Context, req promodomain.CreatePromoGroupRequest) (*promodomain.PromoGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, promodomain.ErrInvalidName
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, promodomain.ErrInvalidPercent
	}

	now := s.clock.Now()
	entity := &promodomain.PromoGroup{
		ID:              s.genID.Generate(),
		Name:            name,
		DiscountPercent: req.DiscountPercent,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.InsertPromoGroup(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, promodomain.ErrDuplicateGroup
		}
		return nil, err
	}

	s.log.Info("promo group created",
		zap.String("name", entity.Name),
		zap.Int("discount_percent", entity.DiscountPercent),
	)
	return entity, nil
}

func (s *Service) ListPromoGroups(ctx context.Context) ([]promodomain.PromoGroup, error) {
	return s.repo.ListPromoGroups(ctx, s.db)
}

func (s *Service) RegisterSubscriber(ctx context.Context, req promodomain.RegisterSubscriberRequest) (*promodomain.Subscriber, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		return nil, promodomain.ErrInvalidExternalID
	}

	var groupID *snowflake.ID
	if strings.TrimSpace(req.PromoGroupID) != "" {
		parsed, err := parseID(req.PromoGroupID)
		if err != nil {
			return nil, promodomain.ErrInvalidID
		}
		group, err := s.repo.FindPromoGroup(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, promodomain.ErrPromoGroupNotFound
		}
		groupID = &group.ID
	}

	now := s.clock.Now()
	entity := &promodomain.Subscriber{
		ID:           s.genID.Generate(),
		ExternalID:   externalID,
		PromoGroupID: groupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertSubscriber(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, promodomain.ErrDuplicateExternal
		}
		return nil, err
	}

	return entity, nil
}

func (s *Service) GetSubscriber(ctx context.Context, id string) (*promodomain.Subscriber, error) {
	subscriberID, err := parseID(id)
	if err != nil {
		return nil, promodomain.ErrInvalidID
	}

	subscriber, err := s.repo.FindSubscriber(ctx, s.db, subscriberID)
	if err != nil {
		return nil, err
	}
	if subscriber == nil {
		return nil, promodomain.ErrSubscriberNotFound
	}

	return subscriber, nil
}

func (s *Service) AssignPromoGroup(ctx context.Context, req promodomain.AssignPromoGroupRequest) (*promodomain.Subscriber, error) {
	subscriber, err := s.GetSubscriber(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	groupID, err := parseID(req.PromoGroupID)
	if err != nil {
		return nil, promodomain.ErrInvalidID
	}

	group, err := s.repo.FindPromoGroup(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, promodomain.ErrPromoGroupNotFound
	}

	subscriber.PromoGroupID = &group.ID
	subscriber.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateSubscriber(ctx, s.db, subscriber); err != nil {
		return nil, err
	}

	return subscriber, nil
}

func (s *Service) GrantPersonalDiscount(ctx context.Context, req promodomain.GrantPersonalDiscountRequest) (*promodomain.Subscriber, error) {
	if req.Percent < 0 || req.Percent > 100 {
		return nil, promodomain.ErrInvalidPercent
	}

	subscriber, err := s.GetSubscriber(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	var expires *time.Time
	if req.ExpiresAt != nil {
		utc := req.ExpiresAt.UTC()
		expires = &utc
	}

	subscriber.PersonalPercent = req.Percent
	subscriber.PersonalPercentExpires = expires
	subscriber.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateSubscriber(ctx, s.db, subscriber); err != nil {
		return nil, err
	}

	s.log.Info("personal discount granted",
		zap.String("subscriber_id", subscriber.ID.String()),
		zap.Int("percent", req.Percent),
	)
	return subscriber, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
