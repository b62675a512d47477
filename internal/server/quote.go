package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/subwavelabs/subwave/internal/pricing/domain"
)

func (s *Server) ComputeQuote(c *gin.Context) {
	var req pricingdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.pricingSvc.ComputeTotal(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) QuotePeriod(c *gin.Context) {
	var req pricingdomain.PeriodQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.pricingSvc.PricePeriod(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}

func (s *Server) QuoteTraffic(c *gin.Context) {
	var req pricingdomain.TrafficQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.pricingSvc.PriceTraffic(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}

func (s *Server) QuoteServers(c *gin.Context) {
	var req pricingdomain.ServersQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.pricingSvc.PriceServers(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}

func (s *Server) QuoteDevices(c *gin.Context) {
	var req pricingdomain.DevicesQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.pricingSvc.PriceDevices(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}
