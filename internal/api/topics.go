package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/models"
)

// TopicHandler serves clustering-run and topic-read endpoints.
type TopicHandler struct {
	topics TopicRunner
	log    *logrus.Logger
}

// NewTopicHandler creates a TopicHandler with the given service and logger.
func NewTopicHandler(topics TopicRunner, log *logrus.Logger) *TopicHandler {
	return &TopicHandler{topics: topics, log: log}
}

// Retopic handles GET /api/topics.
func (h *TopicHandler) Retopic(c *gin.Context) {
	user := getUser(c)
	if user == "" {
		return
	}

	result, err := h.topics.Retopic(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, models.ErrNoEmails) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no emails found for this user")

			return
		}

		h.log.WithError(err).WithField("user", user).Error("running retopic")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":  "topics.retopic",
		"user":    user,
		"topics":  len(result.Topics),
		"emails":  len(result.Emails),
		"outcome": result.Outcome,
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}

// Incremental handles GET /api/topics/incremental.
func (h *TopicHandler) Incremental(c *gin.Context) {
	user := getUser(c)
	if user == "" {
		return
	}

	result, err := h.topics.RunIncremental(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, models.ErrNoEmails) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no emails found for this user")

			return
		}

		h.log.WithError(err).WithField("user", user).Error("running incremental retopic")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "topics.incremental", "user": user}).Info("audit")

	c.JSON(http.StatusOK, result)
}

// Timeframe handles GET /api/topics/timeframe.
func (h *TopicHandler) Timeframe(c *gin.Context) {
	user := getUser(c)
	if user == "" {
		return
	}

	timeframe := c.Query("timeframe")
	if timeframe == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "timeframe is required")

		return
	}

	rows, err := h.topics.TopicsByTimeframe(c.Request.Context(), user, timeframe)
	if err != nil {
		if errors.Is(err, models.ErrUnknownTimeframe) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}

		h.log.WithError(err).WithField("user", user).Error("reading topics by timeframe")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":    "topics.timeframe",
		"user":      user,
		"timeframe": timeframe,
		"count":     len(rows),
	}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"topics": rows})
}

// Update handles POST /api/topics/update.
func (h *TopicHandler) Update(c *gin.Context) {
	var req models.UpdateTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	result, err := h.topics.UpdateTopics(c.Request.Context(), req.User, req.NewDocuments)
	if err != nil {
		if errors.Is(err, models.ErrNoEmails) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no emails or documents to model")

			return
		}

		h.log.WithError(err).WithField("user", req.User).Error("updating topics")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "topics.update",
		"user":   req.User,
		"new":    len(req.NewDocuments),
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}
