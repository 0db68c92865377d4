// internal/handler/merchants.go
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"card-assistant/internal/domain"
	"card-assistant/internal/merchant"
)

type MerchantsHandler struct {
	resolver *merchant.Resolver
}

func NewMerchantsHandler(resolver *merchant.Resolver) *MerchantsHandler {
	return &MerchantsHandler{resolver: resolver}
}

type AddMerchantRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Domain   string `json:"domain" validate:"notblank"`
	Category string `json:"category" validate:"category"`
}

func (h *MerchantsHandler) ListMerchants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"merchants": h.resolver.All()})
}

// AddMerchant appends a custom merchant. Static entries keep priority,
// so a custom entry can extend the table but never shadow a known one.
func (h *MerchantsHandler) AddMerchant(c *gin.Context) {
	var req AddMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.resolver.Add(domain.Merchant{
		Name:     req.Name,
		Domain:   merchant.Normalize(strings.TrimSpace(req.Domain)),
		Category: domain.Category(req.Category),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
