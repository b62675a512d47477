package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
)

func (s *Server) ListPromoGroups(c *gin.Context) {
	items, err := s.promoSvc.ListPromoGroups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreatePromoGroup(c *gin.Context) {
	var req promodomain.CreatePromoGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	group, err := s.promoSvc.CreatePromoGroup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (s *Server) RegisterSubscriber(c *gin.Context) {
	var req promodomain.RegisterSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subscriber, err := s.promoSvc.RegisterSubscriber(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscriber)
}

func (s *Server) GetSubscriber(c *gin.Context) {
	subscriber, err := s.promoSvc.GetSubscriber(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}

type assignPromoGroupBody struct {
	PromoGroupID string `json:"promo_group_id"`
}

func (s *Server) AssignPromoGroup(c *gin.Context) {
	var body assignPromoGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subscriber, err := s.promoSvc.AssignPromoGroup(c.Request.Context(), promodomain.AssignPromoGroupRequest{
		SubscriberID: c.Param("id"),
		PromoGroupID: body.PromoGroupID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}

type grantPersonalDiscountBody struct {
	Percent   int        `json:"percent"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Server) GrantPersonalDiscount(c *gin.Context) {
	var body grantPersonalDiscountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subscriber, err := s.promoSvc.GrantPersonalDiscount(c.Request.Context(), promodomain.GrantPersonalDiscountRequest{
		SubscriberID: c.Param("id"),
		Percent:      body.Percent,
		ExpiresAt:    body.ExpiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}
