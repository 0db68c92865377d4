// internal/handler/transactions.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"card-assistant/internal/domain"
	"card-assistant/internal/reward"
	"card-assistant/internal/savings"
	"card-assistant/internal/storage"
)

type TransactionsHandler struct {
	store   *storage.Store
	tracker *savings.Tracker
	engine  *reward.Engine
}

func NewTransactionsHandler(store *storage.Store, tracker *savings.Tracker, engine *reward.Engine) *TransactionsHandler {
	return &TransactionsHandler{store: store, tracker: tracker, engine: engine}
}

type LogTransactionRequest struct {
	MerchantName    string  `json:"merchantName" validate:"notblank"`
	Category        string  `json:"category" validate:"category"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	CardUsed        string  `json:"cardUsed"`
	RecommendedCard string  `json:"recommendedCard"`
}

func (h *TransactionsHandler) ListTransactions(c *gin.Context) {
	txs := h.store.Transactions(c.Request.Context())
	if txs == nil {
		txs = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// LogTransaction records a confirmed purchase. Potential savings are
// derived from the reward spread between the card actually used and
// the best card for the category.
func (h *TransactionsHandler) LogTransaction(c *gin.Context) {
	var req LogTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if !h.store.Settings(ctx).TrackSpending {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": "spend tracking disabled"})
		return
	}

	cards := h.store.Cards(ctx)
	category := domain.Category(req.Category)

	var optimalReward, actualReward float64
	recommended := req.RecommendedCard
	if best := h.engine.Recommend(cards, category, req.Amount); best != nil {
		optimalReward = best.RewardAmount
		if recommended == "" {
			recommended = best.Card.ID
		}
	}
	if req.CardUsed != "" {
		for _, card := range cards {
			if card.ID == req.CardUsed {
				if rec := h.engine.Recommend([]domain.Card{card}, category, req.Amount); rec != nil {
					actualReward = rec.RewardAmount
				}
				break
			}
		}
	}

	tx := domain.Transaction{
		ID:               fmt.Sprintf("tx-%d", time.Now().UnixNano()),
		MerchantName:     req.MerchantName,
		Category:         category,
		Amount:           req.Amount,
		CardUsed:         req.CardUsed,
		RecommendedCard:  recommended,
		PotentialSavings: reward.PotentialSavings(actualReward, optimalReward),
		Timestamp:        time.Now(),
	}

	if err := h.tracker.Log(ctx, tx); err != nil {
		slog.Error("Failed to log transaction", "error", err, "merchant", req.MerchantName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log transaction"})
		return
	}

	slog.Info("Transaction logged", "tx_id", tx.ID, "merchant", tx.MerchantName, "amount", tx.Amount)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": tx.ID})
}

func (h *TransactionsHandler) SavingsStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Stats(c.Request.Context()))
}

func (h *TransactionsHandler) CurrentMonthSavings(c *gin.Context) {
	saved, missed := h.tracker.CurrentMonth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"saved": saved, "missed": missed})
}
