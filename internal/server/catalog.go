package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
)

func (s *Server) ListPeriodPrices(c *gin.Context) {
	items, err := s.catalogSvc.ListPeriodPrices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreatePeriodPrice(c *gin.Context) {
	var req catalogdomain.CreatePeriodPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.catalogSvc.CreatePeriodPrice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, price)
}

func (s *Server) ListTrafficTiers(c *gin.Context) {
	items, err := s.catalogSvc.ListTrafficTiers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateTrafficTier(c *gin.Context) {
	var req catalogdomain.CreateTrafficTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tier, err := s.catalogSvc.CreateTrafficTier(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tier)
}

func (s *Server) ListServerResources(c *gin.Context) {
	items, err := s.catalogSvc.ListServerResources(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateServerResource(c *gin.Context) {
	var req catalogdomain.CreateServerResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resource, err := s.catalogSvc.CreateServerResource(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

// SetDeviceRate replaces the active device rate. The write is guarded
// by a distributed lock so concurrent replicas cannot both retire the
// active row.
func (s *Server) SetDeviceRate(c *gin.Context) {
	var req catalogdomain.SetDeviceRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	token, ok, err := s.quoteLimiter.TryLockCatalogWrite(ctx, "device_rate")
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	if !ok {
		AbortWithError(c, ErrConflict)
		return
	}
	defer func() {
		_ = s.quoteLimiter.ReleaseCatalogWrite(ctx, "device_rate", token)
	}()

	rate, err := s.catalogSvc.SetDeviceRate(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
