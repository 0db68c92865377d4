// internal/handler/cards.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"card-assistant/internal/domain"
	"card-assistant/internal/storage"
	val "card-assistant/internal/validator"
)

type CardsHandler struct {
	store *storage.Store
}

func NewCardsHandler(store *storage.Store) *CardsHandler {
	return &CardsHandler{store: store}
}

type CapRequest struct {
	Amount       float64 `json:"amount" validate:"gt=0"`
	Period       string  `json:"period" validate:"capperiod"`
	CurrentUsage float64 `json:"currentUsage" validate:"gte=0"`
}

type RewardRuleRequest struct {
	Category   string      `json:"category" validate:"category"`
	RewardRate float64     `json:"rewardRate" validate:"gt=0,lte=1"`
	Cap        *CapRequest `json:"cap,omitempty"`
}

type SaveCardRequest struct {
	ID              string              `json:"id"`
	Name            string              `json:"name" validate:"notblank"`
	RewardStructure []RewardRuleRequest `json:"rewardStructure" validate:"min=1,dive"`
	IsActive        *bool               `json:"isActive"`
}

func (h *CardsHandler) ListCards(c *gin.Context) {
	cards := h.store.Cards(c.Request.Context())
	if cards == nil {
		cards = []domain.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *CardsHandler) SaveCard(c *gin.Context) {
	var req SaveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := domain.Card{
		ID:        req.ID,
		Name:      req.Name,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if req.IsActive != nil {
		card.IsActive = *req.IsActive
	}
	if card.ID == "" {
		card.ID = fmt.Sprintf("card-%d", time.Now().UnixNano())
	}
	for _, rr := range req.RewardStructure {
		rule := domain.RewardRule{
			Category:   domain.Category(rr.Category),
			RewardRate: rr.RewardRate,
		}
		if rr.Cap != nil {
			rule.Cap = &domain.Cap{
				Amount:       rr.Cap.Amount,
				Period:       domain.CapPeriod(rr.Cap.Period),
				CurrentUsage: rr.Cap.CurrentUsage,
			}
		}
		card.RewardStructure = append(card.RewardStructure, rule)
	}

	if err := h.store.SaveCard(c.Request.Context(), card); err != nil {
		slog.Error("Failed to save card", "error", err, "card_id", card.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save card"})
		return
	}

	slog.Info("Card saved", "card_id", card.ID, "name", card.Name)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": card.ID})
}

func (h *CardsHandler) DeleteCard(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id required"})
		return
	}
	if err := h.store.DeleteCard(c.Request.Context(), cardID); err != nil {
		slog.Error("Failed to delete card", "error", err, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *CardsHandler) ResetCaps(c *gin.Context) {
	var req struct {
		Period string `json:"period" validate:"capperiod"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.ResetCapUsage(c.Request.Context(), domain.CapPeriod(req.Period)); err != nil {
		slog.Error("Failed to reset caps", "error", err, "period", req.Period)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset caps"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateStruct(s any) error {
	err := val.Validate.Struct(s)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return fmt.Errorf("field %s failed validation on %s", verrs[0].Field(), verrs[0].Tag())
	}
	return err
}
