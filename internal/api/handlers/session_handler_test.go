package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/utils"
)

type stubSessionService struct {
	createFn       func(ctx context.Context, userID string, p services.CreateSessionParams) (*services.SessionDetail, error)
	interactFn     func(ctx context.Context, sessionID, userID, message string) (*models.InterviewSession, error)
	updateStatusFn func(ctx context.Context, sessionID, userID string, role models.UserRole, next models.SessionStatus) (*models.InterviewSession, error)
}

func (s *stubSessionService) Create(ctx context.Context, userID string, p services.CreateSessionParams) (*services.SessionDetail, error) {
	return s.createFn(ctx, userID, p)
}

func (s *stubSessionService) Get(ctx context.Context, sessionID, userID string, role models.UserRole) (*services.SessionDetail, error) {
	return nil, utils.NotFoundE("stub.Get", "session")
}

func (s *stubSessionService) ListForUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	return nil, nil
}

func (s *stubSessionService) Interact(ctx context.Context, sessionID, userID, message string) (*models.InterviewSession, error) {
	return s.interactFn(ctx, sessionID, userID, message)
}

func (s *stubSessionService) RecordAnswer(ctx context.Context, sessionID, userID, answer string) (*models.InterviewQuestion, error) {
	return nil, utils.NotFoundE("stub.RecordAnswer", "question")
}

func (s *stubSessionService) UpdateStatus(ctx context.Context, sessionID, userID string, role models.UserRole, next models.SessionStatus) (*models.InterviewSession, error) {
	return s.updateStatusFn(ctx, sessionID, userID, role, next)
}

func newSessionRouter(svc services.SessionService, userID string, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(svc, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("role", string(role))
		}
		c.Next()
	})
	r.POST("/sessions", h.Create)
	r.POST("/sessions/:session_id/interact", h.Interact)
	r.PATCH("/sessions/:session_id/status", h.UpdateStatus)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateSessionHandler(t *testing.T) {
	svc := &stubSessionService{
		createFn: func(ctx context.Context, userID string, p services.CreateSessionParams) (*services.SessionDetail, error) {
			if userID != "u-1" {
				t.Errorf("unexpected user id %q", userID)
			}
			if p.Type != models.InterviewTechnical || len(p.Topics) != 2 {
				t.Errorf("unexpected params %+v", p)
			}
			return &services.SessionDetail{
				InterviewSession: &models.InterviewSession{ID: "s-1", Status: models.SessionInProgress},
				SkippedTopics:    []string{"quantum"},
			}, nil
		},
	}
	r := newSessionRouter(svc, "u-1", models.RoleStudent)

	rec := doJSON(t, r, http.MethodPost, "/sessions",
		`{"type":"TECHNICAL","domain":"backend","difficulty":"medium","topics":["arrays","quantum"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID            string   `json:"id"`
		SkippedTopics []string `json:"skipped_topics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ID != "s-1" || len(resp.SkippedTopics) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateSessionHandlerRequiresAuth(t *testing.T) {
	r := newSessionRouter(&stubSessionService{}, "", models.RoleStudent)

	rec := doJSON(t, r, http.MethodPost, "/sessions",
		`{"type":"TECHNICAL","domain":"backend","difficulty":"medium"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateSessionHandlerValidatesBody(t *testing.T) {
	r := newSessionRouter(&stubSessionService{}, "u-1", models.RoleStudent)

	rec := doJSON(t, r, http.MethodPost, "/sessions", `{"domain":"backend"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInteractHandlerMapsConflict(t *testing.T) {
	svc := &stubSessionService{
		interactFn: func(ctx context.Context, sessionID, userID, message string) (*models.InterviewSession, error) {
			return nil, utils.SessionNotActive("SessionService.Interact", string(models.SessionSubmitted))
		},
	}
	r := newSessionRouter(svc, "u-1", models.RoleStudent)

	rec := doJSON(t, r, http.MethodPost, "/sessions/s-1/interact", `{"message":"hello"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for inactive session, got %d: %s", rec.Code, rec.Body.String())
	}

	var apiErr APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if apiErr.Code != utils.CodeConflict {
		t.Fatalf("expected CONFLICT code, got %s", apiErr.Code)
	}
}

func TestUpdateStatusHandlerPassesRole(t *testing.T) {
	svc := &stubSessionService{
		updateStatusFn: func(ctx context.Context, sessionID, userID string, role models.UserRole, next models.SessionStatus) (*models.InterviewSession, error) {
			if role != models.RoleAdmin {
				t.Errorf("expected admin role, got %s", role)
			}
			if next != models.SessionEvaluated {
				t.Errorf("unexpected target status %s", next)
			}
			return &models.InterviewSession{ID: sessionID, Status: next}, nil
		},
	}
	r := newSessionRouter(svc, "admin-1", models.RoleAdmin)

	rec := doJSON(t, r, http.MethodPatch, "/sessions/s-1/status", `{"status":"EVALUATED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
