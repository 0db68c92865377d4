// internal/handler/recommend.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"card-assistant/internal/amount"
	"card-assistant/internal/checkout"
	"card-assistant/internal/domain"
	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
	"card-assistant/internal/reward"
	"card-assistant/internal/storage"
)

type RecommendHandler struct {
	store      *storage.Store
	resolver   *merchant.Resolver
	classifier *checkout.Classifier
	estimator  *amount.Estimator
	engine     *reward.Engine
}

func NewRecommendHandler(store *storage.Store, resolver *merchant.Resolver, classifier *checkout.Classifier, estimator *amount.Estimator, engine *reward.Engine) *RecommendHandler {
	return &RecommendHandler{
		store:      store,
		resolver:   resolver,
		classifier: classifier,
		estimator:  estimator,
		engine:     engine,
	}
}

type RecommendRequest struct {
	URL  string `json:"url" validate:"notblank"`
	HTML string `json:"html" validate:"notblank"`
}

// Recommend runs the whole pipeline once against a posted snapshot.
// One-shot: no retry loop, since no fresher snapshot can arrive.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := page.Parse(req.URL, req.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	res := h.classifier.Classify(p)

	if res.IsCartView {
		h.estimator.SnapshotCartAmount(ctx, p)
	}
	if !res.IsCheckout {
		c.JSON(http.StatusOK, gin.H{"isCheckout": false, "isCartView": res.IsCartView})
		return
	}

	name := merchant.Normalize(p.Hostname)
	category := domain.CategoryGeneral
	if m := h.resolver.Resolve(p.Hostname); m != nil {
		name = m.Name
		category = m.Category
	}

	amt := h.estimator.EstimateSnapshot(ctx, p)
	rec := h.engine.Recommend(h.store.Cards(ctx), category, amt)
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{
			"isCheckout":      true,
			"isCartView":      res.IsCartView,
			"estimatedAmount": amt,
			"merchantName":    name,
			"category":        category,
			"recommendation":  nil,
		})
		return
	}
	rec.EstimatedAmount = amt
	rec.MerchantName = name
	rec.Category = category

	c.JSON(http.StatusOK, gin.H{
		"isCheckout":     true,
		"isCartView":     res.IsCartView,
		"recommendation": rec,
	})
}
