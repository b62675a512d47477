package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/subwavelabs/subwave/internal/cache"
	"github.com/subwavelabs/subwave/internal/catalog"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/clock"
	"github.com/subwavelabs/subwave/internal/config"
	"github.com/subwavelabs/subwave/internal/observability"
	obslogger "github.com/subwavelabs/subwave/internal/observability/logger"
	obsmetrics "github.com/subwavelabs/subwave/internal/observability/metrics"
	obstracing "github.com/subwavelabs/subwave/internal/observability/tracing"
	"github.com/subwavelabs/subwave/internal/pricing"
	pricingdomain "github.com/subwavelabs/subwave/internal/pricing/domain"
	"github.com/subwavelabs/subwave/internal/promo"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/subwavelabs/subwave/internal/ratelimit"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	cache.Module,
	catalog.Module,
	promo.Module,
	pricing.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	pricingSvc   pricingdomain.Service
	catalogSvc   catalogdomain.Service
	promoSvc     promodomain.Service
	quoteLimiter *ratelimit.QuoteLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	PricingSvc pricingdomain.Service
	CatalogSvc catalogdomain.Service
	PromoSvc   promodomain.Service

	QuoteLimiter *ratelimit.QuoteLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		pricingSvc:   p.PricingSvc,
		catalogSvc:   p.CatalogSvc,
		promoSvc:     p.PromoSvc,
		quoteLimiter: p.QuoteLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerQuoteRoutes()
	svc.registerCatalogRoutes()
	svc.registerPromoRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerQuoteRoutes() {
	quotes := s.engine.Group("/v1/quotes", s.QuoteRateLimit())

	quotes.POST("", s.ComputeQuote)
	quotes.POST("/period", s.QuotePeriod)
	quotes.POST("/traffic", s.QuoteTraffic)
	quotes.POST("/servers", s.QuoteServers)
	quotes.POST("/devices", s.QuoteDevices)
}

func (s *Server) registerCatalogRoutes() {
	catalog := s.engine.Group("/v1/catalog")

	catalog.GET("/period-prices", s.ListPeriodPrices)
	catalog.POST("/period-prices", s.CreatePeriodPrice)
	catalog.GET("/traffic-tiers", s.ListTrafficTiers)
	catalog.POST("/traffic-tiers", s.CreateTrafficTier)
	catalog.GET("/server-resources", s.ListServerResources)
	catalog.POST("/server-resources", s.CreateServerResource)
	catalog.PUT("/device-rate", s.SetDeviceRate)
}

func (s *Server) registerPromoRoutes() {
	groups := s.engine.Group("/v1/promo-groups")
	groups.GET("", s.ListPromoGroups)
	groups.POST("", s.CreatePromoGroup)

	subscribers := s.engine.Group("/v1/subscribers")
	subscribers.POST("", s.RegisterSubscriber)
	subscribers.GET("/:id", s.GetSubscriber)
	subscribers.PUT("/:id/promo-group", s.AssignPromoGroup)
	subscribers.PUT("/:id/personal-discount", s.GrantPersonalDiscount)
}
