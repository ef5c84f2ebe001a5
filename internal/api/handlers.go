// Package api serves the quiz operations over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/mastery"
	"github.com/abhisek/adaptiq/internal/session"
)

// Service is the set of operations the handlers expose.
type Service interface {
	StartSession(ctx context.Context, in session.StartInput) (string, error)
	NextQuestion(ctx context.Context, sessionID string) (*session.QuestionView, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string, timeTaken float64) (*session.AnswerResult, error)
	MasteryReport(ctx context.Context, userID string) (*mastery.Report, error)
	Session(ctx context.Context, sessionID string) (*session.Summary, error)
}

// Handler holds the HTTP handlers.
type Handler struct {
	svc Service
	log *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: logger.OrNop(log)}
}

type startRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	ConceptID   string `json:"concept_id" binding:"required"`
	ConceptName string `json:"concept_name"`
	Content     string `json:"content"`
	Count       int    `json:"count" binding:"gte=0"`
}

type answerRequest struct {
	Answer    string  `json:"answer"`
	TimeTaken float64 `json:"time_taken" binding:"gte=0"`
}

// StartSession handles POST /sessions.
func (h *Handler) StartSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.svc.StartSession(c.Request.Context(), session.StartInput{
		UserID:      req.UserID,
		ConceptID:   req.ConceptID,
		ConceptName: req.ConceptName,
		Content:     req.Content,
		Count:       req.Count,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	q, err := h.svc.NextQuestion(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "question": q})
}

// GetSession handles GET /sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	sum, err := h.svc.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// NextQuestion handles GET /sessions/:id/next. A finished session yields
// a null question.
func (h *Handler) NextQuestion(c *gin.Context) {
	q, err := h.svc.NextQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": q, "finished": q == nil})
}

// SubmitAnswer handles POST /sessions/:id/answers.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.SubmitAnswer(c.Request.Context(), c.Param("id"), req.Answer, req.TimeTaken)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MasteryReport handles GET /users/:id/mastery.
func (h *Handler) MasteryReport(c *gin.Context) {
	rep, err := h.svc.MasteryReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// fail maps err to a status code and writes it as {"error": ...}.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrAlreadyCompleted):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
