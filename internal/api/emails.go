package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/models"
)

// EmailHandler serves single-email endpoints: recent reads, similarity
// assignment and manual reassignment.
type EmailHandler struct {
	topics   TopicRunner
	assigner Assigner
	log      *logrus.Logger
}

// NewEmailHandler creates an EmailHandler.
func NewEmailHandler(topics TopicRunner, assigner Assigner, log *logrus.Logger) *EmailHandler {
	return &EmailHandler{topics: topics, assigner: assigner, log: log}
}

// Recent handles GET /api/emails/recent.
func (h *EmailHandler) Recent(c *gin.Context) {
	user := getUser(c)
	if user == "" {
		return
	}

	limit := parseLimit(c.DefaultQuery("limit", "0"))

	emails, err := h.topics.RecentEmails(c.Request.Context(), user, limit)
	if err != nil {
		h.log.WithError(err).WithField("user", user).Error("fetching recent emails")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "emails.recent", "user": user, "count": len(emails)}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

// Assign handles POST /api/emails/assign.
func (h *EmailHandler) Assign(c *gin.Context) {
	var req models.InsertEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	result, err := h.assigner.AssignNewEmail(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrNoTopics) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no topics exist for this user")

			return
		}

		h.log.WithError(err).WithField("user", req.User).Error("assigning new email")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "emails.assign",
		"user":     req.User,
		"email_id": result.EmailID,
		"group_id": result.GroupID,
	}).Info("audit")

	c.JSON(http.StatusCreated, result)
}

// Reassign handles POST /api/topics/reassign.
func (h *EmailHandler) Reassign(c *gin.Context) {
	var req models.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	result, err := h.assigner.Reassign(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmailNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "email not found")
		case errors.Is(err, models.ErrNoEmails):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no emails found for this user")
		default:
			h.log.WithError(err).WithField("user", req.User).Error("reassigning email")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "topics.reassign",
		"user":     req.User,
		"email_id": req.EmailID,
		"group_id": result.GroupID,
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}
