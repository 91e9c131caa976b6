package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fisioflow/recommendation-engine/internal/domain"
	"github.com/fisioflow/recommendation-engine/internal/feedback"
	"github.com/fisioflow/recommendation-engine/pkg/external"
)

// recommendationResponse is the payload returned by generation and update
// endpoints.
type recommendationResponse struct {
	ID             uuid.UUID                       `json:"id"`
	Recommendation *domain.TreatmentRecommendation `json:"recommendation"`
	Cached         bool                            `json:"cached"`
	Media          []*external.VideoAsset          `json:"media,omitempty"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
}

// feedbackRequest is the body for saving clinician feedback.
type feedbackRequest struct {
	Clinician         string `json:"clinician" binding:"required"`
	Agreed            bool   `json:"agreed"`
	AdjustedDuration  int    `json:"adjusted_duration"`
	AdjustedFrequency int    `json:"adjusted_frequency"`
	Notes             string `json:"notes"`
}

func (s *Server) apiError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString("correlation_id")))
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	components := gin.H{
		"engine":         "up",
		"store":          s.store != nil,
		"feedback_store": s.feedbackStore != nil,
		"media_catalog":  s.mediaClient != nil,
	}

	cacheStatus := "disabled"
	if s.recCache != nil {
		cacheStatus = "up"
		if err := s.recCache.Ping(c.Request.Context()); err != nil {
			cacheStatus = "degraded"
		}
	}
	components["cache"] = cacheStatus

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"components": components,
	})
}

// handleGenerateRecommendation generates a treatment recommendation from a
// patient profile
func (s *Server) handleGenerateRecommendation(c *gin.Context) {
	var profile domain.PatientProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()

	rec, cached := s.recCache.Get(ctx, &profile)
	if !cached {
		var err error
		rec, err = s.engine.GenerateRecommendation(&profile)
		if err != nil {
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				s.apiError(c, http.StatusBadRequest, domain.ErrCodeValidation, "Profile validation failed", vErr.Error())
				return
			}
			s.log.WithError(err).Error("Recommendation generation failed")
			s.apiError(c, http.StatusInternalServerError, domain.ErrCodeRecommendation, "Recommendation generation failed", "")
			return
		}
		s.recCache.Set(ctx, &profile, rec)
	}

	now := time.Now().UTC()
	record := &domain.RecommendationRecord{
		ID:             uuid.New(),
		Profile:        profile,
		Recommendation: *rec,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if s.store != nil {
		if err := s.store.Create(ctx, record); err != nil {
			s.log.WithError(err).Error("Persisting recommendation failed")
			s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Persisting recommendation failed", "")
			return
		}
	}

	response := recommendationResponse{
		ID:             record.ID,
		Recommendation: rec,
		Cached:         cached,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}

	if c.Query("include_media") == "true" && s.mediaClient != nil {
		assets, err := s.mediaClient.ResolveVideos(ctx, rec.VideoIDs)
		if err != nil {
			s.log.WithError(err).Warn("Media enrichment failed")
		} else {
			response.Media = assets
		}
	}

	s.log.WithFields(logrus.Fields{
		"recommendation_id": record.ID,
		"condition":         profile.NormalizedCondition(),
		"cached":            cached,
	}).Info("Recommendation served")

	c.JSON(http.StatusCreated, response)
}

// handleGetRecommendation retrieves a stored recommendation by id
func (s *Server) handleGetRecommendation(c *gin.Context) {
	if s.store == nil {
		s.apiError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabaseError, "Persistence is not configured", "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid recommendation id", err.Error())
		return
	}

	record, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.apiError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Recommendation not found", "")
			return
		}
		s.log.WithError(err).Error("Loading recommendation failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Loading recommendation failed", "")
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleUpdateProgress re-scores a stored recommendation from measured
// treatment progress
func (s *Server) handleUpdateProgress(c *gin.Context) {
	if s.store == nil {
		s.apiError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabaseError, "Persistence is not configured", "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid recommendation id", err.Error())
		return
	}

	var progress domain.ProgressReport
	if err := c.ShouldBindJSON(&progress); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.apiError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Recommendation not found", "")
			return
		}
		s.log.WithError(err).Error("Loading recommendation failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Loading recommendation failed", "")
		return
	}

	updated, err := s.engine.UpdateRecommendationBasedOnProgress(&record.Recommendation, &progress)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			s.apiError(c, http.StatusBadRequest, domain.ErrCodeValidation, "Progress validation failed", vErr.Error())
			return
		}
		s.log.WithError(err).Error("Progress update failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeRecommendation, "Progress update failed", "")
		return
	}

	record.Recommendation = *updated
	record.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, record); err != nil {
		s.log.WithError(err).Error("Persisting updated recommendation failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Persisting updated recommendation failed", "")
		return
	}

	// The stored plan changed, so the cached entry for this profile is stale.
	s.recCache.Invalidate(ctx, &record.Profile)

	c.JSON(http.StatusOK, recommendationResponse{
		ID:             record.ID,
		Recommendation: updated,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	})
}

// handleSaveFeedback stores a clinician's review of a recommendation
func (s *Server) handleSaveFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.apiError(c, http.StatusServiceUnavailable, domain.ErrCodeInternalServer, "Feedback store is not configured", "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid recommendation id", err.Error())
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	fb := &feedback.Feedback{
		RecommendationID:  id,
		Clinician:         req.Clinician,
		Agreed:            req.Agreed,
		AdjustedDuration:  req.AdjustedDuration,
		AdjustedFrequency: req.AdjustedFrequency,
		Notes:             req.Notes,
	}

	if err := s.feedbackStore.Save(c.Request.Context(), fb); err != nil {
		s.log.WithError(err).Error("Saving feedback failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Saving feedback failed", "")
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// handleListFeedback lists all clinician feedback for a recommendation
func (s *Server) handleListFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.apiError(c, http.StatusServiceUnavailable, domain.ErrCodeInternalServer, "Feedback store is not configured", "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid recommendation id", err.Error())
		return
	}

	list, err := s.feedbackStore.ListByRecommendation(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("Listing feedback failed")
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabaseError, "Listing feedback failed", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendation_id": id,
		"count":             len(list),
		"feedback":          list,
	})
}
