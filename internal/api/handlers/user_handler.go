package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/services"
)

type UserHandler struct {
	svc services.UserService
}

func NewUserHandler(svc services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), 100)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *UserHandler) Ban(c *gin.Context) {
	if err := h.svc.SetBanned(c.Request.Context(), c.Param("user_id"), true); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Unban(c *gin.Context) {
	if err := h.svc.SetBanned(c.Request.Context(), c.Param("user_id"), false); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
