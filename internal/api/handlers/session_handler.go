package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/utils"
)

type SessionHandler struct {
	sessions    services.SessionService
	evaluations services.EvaluationService
}

func NewSessionHandler(sessions services.SessionService, evaluations services.EvaluationService) *SessionHandler {
	return &SessionHandler{sessions: sessions, evaluations: evaluations}
}

type CreateSessionRequest struct {
	Type       models.InterviewType `json:"type" binding:"required"`
	Domain     string               `json:"domain" binding:"required"`
	Difficulty string               `json:"difficulty" binding:"required"`
	Topics     []string             `json:"topics"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Create", "invalid request body", err))
		return
	}

	detail, err := h.sessions.Create(c.Request.Context(), userID, services.CreateSessionParams{
		Type:       req.Type,
		Domain:     req.Domain,
		Difficulty: req.Difficulty,
		Topics:     req.Topics,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.sessions.ListForUser(c.Request.Context(), userID, 50)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	detail, err := h.sessions.Get(c.Request.Context(), c.Param("session_id"), userID, callerRole(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type InteractRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *SessionHandler) Interact(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req InteractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Interact", "invalid request body", err))
		return
	}

	sess, err := h.sessions.Interact(c.Request.Context(), c.Param("session_id"), userID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func (h *SessionHandler) Answer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Answer", "invalid request body", err))
		return
	}

	iq, err := h.sessions.RecordAnswer(c.Request.Context(), c.Param("session_id"), userID, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iq)
}

type UpdateStatusRequest struct {
	Status models.SessionStatus `json:"status" binding:"required"`
}

func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.UpdateStatus", "invalid request body", err))
		return
	}

	sess, err := h.sessions.UpdateStatus(c.Request.Context(), c.Param("session_id"), userID, callerRole(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Publish releases the final report to the student: an admin-only transition
// to COMPLETED.
func (h *SessionHandler) Publish(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.UpdateStatus(c.Request.Context(), c.Param("session_id"), userID, callerRole(c), models.SessionCompleted)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Evaluate is the explicit admin re-trigger for sessions stuck in SUBMITTED
// after a failed background run. It runs synchronously.
func (h *SessionHandler) Evaluate(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	sess, err := h.evaluations.EvaluateSession(c.Request.Context(), c.Param("session_id"), "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
