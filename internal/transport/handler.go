package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/analysis"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/campaign"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/config"
	apperrors "github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/errors"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/logger"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/observer"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/proof"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/repository"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/storage"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/match"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// TrackerStore is the writable tracker metadata store exposed over the API.
type TrackerStore interface {
	repository.TrackerSource
	Put(tr models.TrackerInfo)
}

// Deps carries the collaborators the handler routes to.
type Deps struct {
	Enumerator   storage.PhotoEnumerator
	Orchestrator *analysis.Orchestrator
	Analyses     *analysis.Store
	Tags         repository.TagStore
	Trackers     TrackerStore
	Proofs       repository.ProofStore
	Manager      *proof.Manager
	Metrics      *observer.MetricsObserver
}

type AnalyzeRequest struct {
	Force bool `json:"force,omitempty"`
}

type TagsRequest struct {
	Include      []string `json:"include"`
	Exclude      []string `json:"exclude"`
	ExpectedCopy string   `json:"expected_copy,omitempty"`
}

type TrackerRequest struct {
	Advertiser  string `json:"advertiser" binding:"required"`
	Product     string `json:"product,omitempty"`
	Market      string `json:"market,omitempty"`
	Stage       string `json:"stage" binding:"required"`
	ExpectedQty int    `json:"expected_qty"`
	Owner       string `json:"owner,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler configures the HTTP surface.
func NewHandler(deps Deps, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsReport(deps.Metrics))
	r.GET("/campaigns", listCampaigns(deps, cfg))
	r.POST("/campaigns/:id/analyze", analyzeCampaign(deps, cfg))
	r.PUT("/campaigns/:id/tags", updateTags(deps))
	r.GET("/campaigns/:id/suggestions", campaignSuggestions(deps))
	r.POST("/campaigns/:id/confirm", confirmCampaign(deps, cfg))
	r.PUT("/trackers/:id", upsertTracker(deps))

	return r
}

func listCampaigns(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		live, err := deps.Enumerator.Enumerate(ctx)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to enumerate photos", err)
			return
		}

		stored, err := deps.Proofs.GetAll(ctx)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to load proof records", err)
			return
		}
		records := make(map[string]*models.ProofRecord, len(stored))
		for i := range stored {
			records[stored[i].CampaignID] = &stored[i]
		}

		groups := campaign.GroupByCampaign(live, deps.Trackers.All(), records, campaign.GroupOptions{
			Sort:           c.Query("sort"),
			Market:         c.Query("market"),
			OnlyIncomplete: c.Query("incomplete") == "true",
		})

		logger.WithField("groups", len(groups)).Debug("Campaign aggregation completed")
		c.JSON(http.StatusOK, gin.H{"campaigns": groups, "count": len(groups)})
	}
}

func analyzeCampaign(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.Param("id")
		startTime := time.Now()

		var req AnalyzeRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "invalid request format", err)
				return
			}
		}
		if force := c.Query("force"); force != "" {
			req.Force = force == "true"
		}

		photos, err := deps.Enumerator.EnumerateCampaign(c.Request.Context(), campaignID)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to enumerate campaign photos", err)
			return
		}
		if len(photos) == 0 {
			respondError(c, http.StatusNotFound, "no photos for campaign",
				apperrors.NewNotFoundError(fmt.Sprintf("campaign %s has no photos", campaignID), nil))
			return
		}

		tags := deps.Tags.Get(campaignID)
		result := deps.Orchestrator.AnalyzeBatch(c.Request.Context(), photos, tags, analysis.BatchOptions{
			Force:        req.Force,
			AutoKeywords: autoKeywordsFor(deps, campaignID),
		})

		logger.WithCampaign(campaignID).WithFields(logrus.Fields{
			"batch_id":           result.BatchID,
			"analyzed":           result.Analyzed,
			"failed":             result.Failed,
			"skipped":            result.Skipped,
			"cancelled":          result.Cancelled,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Campaign analysis completed")

		c.JSON(http.StatusOK, result)
	}
}

func updateTags(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.Param("id")

		var req TagsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		tags := models.TagSet{
			Include:      normalizeTagList(req.Include),
			Exclude:      normalizeTagList(req.Exclude),
			ExpectedCopy: strings.TrimSpace(req.ExpectedCopy),
		}
		deps.Tags.Put(campaignID, tags)

		// Rescore cached extractions without touching the OCR engine.
		rescored := deps.Orchestrator.Reevaluate(campaignID, tags, autoKeywordsFor(deps, campaignID))

		logger.WithCampaign(campaignID).WithFields(logrus.Fields{
			"include":  len(tags.Include),
			"exclude":  len(tags.Exclude),
			"rescored": rescored,
		}).Info("Campaign tags updated")

		c.JSON(http.StatusOK, gin.H{
			"tags":     tags,
			"rescored": rescored,
			"analyses": deps.Analyses.ForCampaign(campaignID),
		})
	}
}

func campaignSuggestions(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.Param("id")
		suggestions := deps.Analyses.Suggestions(campaignID)
		if suggestions == nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
	}
}

func confirmCampaign(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.Param("id")
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.SaveTimeout)
		defer cancel()

		photos, err := deps.Enumerator.EnumerateCampaign(ctx, campaignID)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to enumerate campaign photos", err)
			return
		}

		group := models.CampaignGroup{CampaignID: campaignID, Photos: photos}
		record, report, err := deps.Manager.ConfirmAndSave(ctx, group)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to save proof record", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"record": record, "report": report})
	}
}

func upsertTracker(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.Param("id")

		var req TrackerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		tracker := models.TrackerInfo{
			CampaignID:  campaignID,
			Advertiser:  req.Advertiser,
			Product:     req.Product,
			Market:      req.Market,
			Stage:       req.Stage,
			ExpectedQty: req.ExpectedQty,
			Owner:       req.Owner,
		}
		deps.Trackers.Put(tracker)

		logger.WithCampaign(campaignID).WithFields(logrus.Fields{
			"advertiser": tracker.Advertiser,
			"stage":      tracker.Stage,
		}).Info("Tracker updated")

		c.JSON(http.StatusOK, tracker)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsReport(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// autoKeywordsFor derives fallback keywords from tracker metadata for
// campaigns with no configured include tags.
func autoKeywordsFor(deps Deps, campaignID string) []string {
	tracker, ok := deps.Trackers.Get(campaignID)
	if !ok {
		return nil
	}
	return match.AutoKeywords(tracker.Advertiser, tracker.Product)
}

func normalizeTagList(raw []string) []string {
	var out []string
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	case errors.Is(err, repository.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
