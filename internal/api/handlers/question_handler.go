package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/utils"
)

type QuestionHandler struct {
	svc services.QuestionService
}

func NewQuestionHandler(svc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestionHandler.Create", "invalid request body", err))
		return
	}

	q, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuestionHandler) Update(c *gin.Context) {
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestionHandler.Update", "invalid request body", err))
		return
	}

	q, err := h.svc.Update(c.Request.Context(), c.Param("question_id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("question_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.svc.Get(c.Request.Context(), c.Param("question_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// List serves the curated catalog. Students only ever see ACTIVE entries;
// snapshot rows are always excluded.
func (h *QuestionHandler) List(c *gin.Context) {
	f := pgrepo.QuestionFilter{
		Domain:      c.Query("domain"),
		Difficulty:  c.Query("difficulty"),
		Topic:       c.Query("topic"),
		Category:    models.QuestionCategory(c.Query("category")),
		CatalogOnly: true,
	}
	if callerRole(c) != models.RoleAdmin {
		f.Status = models.QuestionActive
	} else if s := c.Query("status"); s != "" {
		f.Status = models.QuestionStatus(s)
	}

	rows, err := h.svc.List(c.Request.Context(), f, 100)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type ImportRequest struct {
	Source string                `json:"source" binding:"required"`
	Items  []services.ImportItem `json:"items"`
	// Object names a JSON question bank in the configured bucket; used when
	// Items is empty.
	Object string `json:"object"`
}

func (h *QuestionHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestionHandler.Import", "invalid request body", err))
		return
	}

	var n int64
	var err error
	if len(req.Items) > 0 {
		n, err = h.svc.Import(c.Request.Context(), req.Source, req.Items)
	} else {
		n, err = h.svc.ImportFromObject(c.Request.Context(), req.Source, req.Object)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}
