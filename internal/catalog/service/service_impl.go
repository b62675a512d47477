package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/subwavelabs/subwave/internal/cache"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/observability/metrics"
	"github.com/subwavelabs/subwave/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    catalogdomain.Repository
	Cache   cache.CatalogCache
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    catalogdomain.Repository
	cache   cache.CatalogCache
	metrics *metrics.Metrics
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		cache:   p.Cache,
		metrics: p.Metrics,
	}
}

func (s *Service) PeriodPrice(ctx context.Context, days int) (*catalogdomain.PeriodPrice, error) {
	if days <= 0 {
		return nil, catalogdomain.ErrInvalidDays
	}

	if price, ok := s.cache.GetPeriodPrice(days); ok {
		s.metrics.RecordCatalogLookup(ctx, "period_price", "cache")
		return price, nil
	}

	price, err := s.repo.FindPeriodPrice(ctx, s.db, days)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, catalogdomain.ErrPeriodNotSupported
	}

	s.cache.SetPeriodPrice(days, price)
	s.metrics.RecordCatalogLookup(ctx, "period_price", "db")
	return price, nil
}

func (s *Service) TrafficTier(ctx context.Context, gb int64) (*catalogdomain.TrafficTier, error) {
	if gb < 0 {
		return nil, catalogdomain.ErrInvalidUpToGB
	}

	if tier, ok := s.cache.GetTrafficTier(gb); ok {
		s.metrics.RecordCatalogLookup(ctx, "traffic_tier", "cache")
		return tier, nil
	}

	tier, err := s.repo.FindTrafficTier(ctx, s.db, gb)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, catalogdomain.ErrTrafficTierNotFound
	}

	s.cache.SetTrafficTier(gb, tier)
	s.metrics.RecordCatalogLookup(ctx, "traffic_tier", "db")
	return tier, nil
}

func (s *Service) ServerResource(ctx context.Context, id snowflake.ID) (*catalogdomain.ServerResource, error) {
	if resource, ok := s.cache.GetServerResource(int64(id)); ok {
		s.metrics.RecordCatalogLookup(ctx, "server_resource", "cache")
		return resource, nil
	}

	resource, err := s.repo.FindServerResource(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, catalogdomain.ErrServerResourceNotFound
	}

	s.cache.SetServerResource(int64(id), resource)
	s.metrics.RecordCatalogLookup(ctx, "server_resource", "db")
	return resource, nil
}

func (s *Service) DeviceRate(ctx context.Context) (*catalogdomain.DeviceRate, error) {
	if rate, ok := s.cache.GetDeviceRate(); ok {
		s.metrics.RecordCatalogLookup(ctx, "device_rate", "cache")
		return rate, nil
	}

	rate, err := s.repo.FindActiveDeviceRate(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, catalogdomain.ErrDeviceRateNotSet
	}

	s.cache.SetDeviceRate(rate)
	s.metrics.RecordCatalogLookup(ctx, "device_rate", "db")
	return rate, nil
}

func (s *Service) CreatePeriodPrice(ctx context.Context, req catalogdomain.CreatePeriodPriceRequest) (*catalogdomain.PeriodPrice, error) {
	if req.Days <= 0 {
		return nil, catalogdomain.ErrInvalidDays
	}
	if req.AmountCents < 0 {
		return nil, catalogdomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	entity := &catalogdomain.PeriodPrice{
		ID:          s.genID.Generate(),
		Days:        req.Days,
		AmountCents: req.AmountCents,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertPeriodPrice(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicatePeriod
		}
		return nil, err
	}

	s.cache.Invalidate()
	s.log.Info("period price created",
		zap.Int("days", entity.Days),
		zap.Int64("amount_cents", entity.AmountCents),
	)
	return entity, nil
}

func (s *Service) ListPeriodPrices(ctx context.Context) ([]catalogdomain.PeriodPrice, error) {
	return s.repo.ListPeriodPrices(ctx, s.db)
}

func (s *Service) CreateTrafficTier(ctx context.Context, req catalogdomain.CreateTrafficTierRequest) (*catalogdomain.TrafficTier, error) {
	if req.UpToGB != nil && *req.UpToGB <= 0 {
		return nil, catalogdomain.ErrInvalidUpToGB
	}
	if req.AmountCents < 0 {
		return nil, catalogdomain.ErrInvalidAmount
	}
	refDays := req.ReferenceDays
	if refDays == 0 {
		refDays = 30
	}
	if refDays < 0 {
		return nil, catalogdomain.ErrInvalidReferenceDays
	}

	now := time.Now().UTC()
	entity := &catalogdomain.TrafficTier{
		ID:            s.genID.Generate(),
		UpToGB:        req.UpToGB,
		AmountCents:   req.AmountCents,
		ReferenceDays: refDays,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertTrafficTier(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return entity, nil
}

func (s *Service) ListTrafficTiers(ctx context.Context) ([]catalogdomain.TrafficTier, error) {
	return s.repo.ListTrafficTiers(ctx, s.db)
}

func (s *Service) CreateServerResource(ctx context.Context, req catalogdomain.CreateServerResourceRequest) (*catalogdomain.ServerResource, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}
	if req.AmountCents < 0 {
		return nil, catalogdomain.ErrInvalidAmount
	}
	refDays := req.ReferenceDays
	if refDays == 0 {
		refDays = 30
	}
	if refDays < 0 {
		return nil, catalogdomain.ErrInvalidReferenceDays
	}

	now := time.Now().UTC()
	entity := &catalogdomain.ServerResource{
		ID:            s.genID.Generate(),
		Name:          name,
		AmountCents:   req.AmountCents,
		ReferenceDays: refDays,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.InsertServerResource(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return entity, nil
}

func (s *Service) ListServerResources(ctx context.Context) ([]catalogdomain.ServerResource, error) {
	return s.repo.ListServerResources(ctx, s.db)
}

func (s *Service) SetDeviceRate(ctx context.Context, req catalogdomain.SetDeviceRateRequest) (*catalogdomain.DeviceRate, error) {
	if req.PerDeviceCents < 0 {
		return nil, catalogdomain.ErrInvalidAmount
	}
	refDays := req.ReferenceDays
	if refDays == 0 {
		refDays = 30
	}
	if refDays < 0 {
		return nil, catalogdomain.ErrInvalidReferenceDays
	}

	now := time.Now().UTC()
	entity := &catalogdomain.DeviceRate{
		ID:             s.genID.Generate(),
		PerDeviceCents: req.PerDeviceCents,
		ReferenceDays:  refDays,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.UpsertDeviceRate(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.log.Info("device rate updated",
		zap.Int64("per_device_cents", entity.PerDeviceCents),
		zap.Int("reference_days", entity.ReferenceDays),
	)
	return entity, nil
}
