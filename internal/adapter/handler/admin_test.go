package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/course"
)

type fakeAdminService struct {
	user       *entities.User
	lastUserID uuid.UUID
	lastActive *bool
}

func (f *fakeAdminService) Stats(ctx context.Context) (*course.PlatformStats, error) {
	return &course.PlatformStats{}, nil
}

func (f *fakeAdminService) ResetMessageCount(ctx context.Context, userID uuid.UUID) error {
	f.lastUserID = userID
	return nil
}

func (f *fakeAdminService) SetUserAccess(ctx context.Context, userID uuid.UUID, active bool) (*entities.User, error) {
	f.lastUserID = userID
	f.lastActive = &active
	updated := *f.user
	updated.IsActive = active
	return &updated, nil
}

func (f *fakeAdminService) UserDetails(ctx context.Context, userID uuid.UUID) (*course.UserDetails, error) {
	f.lastUserID = userID
	return &course.UserDetails{User: f.user, Grants: []course.GrantDetail{}}, nil
}

func newAdminTestContext(t *testing.T, method, target, body, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(paramID)
	return c, rec
}

func TestSetUserAccessBlocksAccount(t *testing.T) {
	userID := uuid.New()
	svc := &fakeAdminService{user: &entities.User{ID: userID, Username: "asha", IsActive: true}}
	h := NewAdminHandler(svc, nil, zap.NewNop(), "test")

	c, rec := newAdminTestContext(t, http.MethodPatch,
		"/v1/admin/users/"+userID.String()+"/access", `{"is_active": false}`, userID.String())
	if err := h.SetUserAccess(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("service called with wrong user id: %s", svc.lastUserID)
	}
	if svc.lastActive == nil || *svc.lastActive {
		t.Fatalf("expected the account to be blocked")
	}
	if !strings.Contains(rec.Body.String(), `"is_active":false`) {
		t.Fatalf("response should carry the updated account: %s", rec.Body.String())
	}
}

func TestSetUserAccessRejectsBadInput(t *testing.T) {
	svc := &fakeAdminService{user: &entities.User{ID: uuid.New(), IsActive: true}}
	h := NewAdminHandler(svc, nil, zap.NewNop(), "test")

	// malformed user id
	c, rec := newAdminTestContext(t, http.MethodPatch, "/v1/admin/users/nope/access", `{"is_active": false}`, "nope")
	if err := h.SetUserAccess(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	// missing is_active
	id := uuid.New().String()
	c, rec = newAdminTestContext(t, http.MethodPatch, "/v1/admin/users/"+id+"/access", `{}`, id)
	if err := h.SetUserAccess(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing is_active, got %d", rec.Code)
	}
	if svc.lastActive != nil {
		t.Fatalf("service should not be reached on invalid input")
	}
}

func TestGetUserReturnsDetails(t *testing.T) {
	userID := uuid.New()
	svc := &fakeAdminService{user: &entities.User{ID: userID, Username: "asha", IsActive: true}}
	h := NewAdminHandler(svc, nil, zap.NewNop(), "test")

	c, rec := newAdminTestContext(t, http.MethodGet, "/v1/admin/users/"+userID.String(), "", userID.String())
	if err := h.GetUser(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("service called with wrong user id: %s", svc.lastUserID)
	}
	if !strings.Contains(rec.Body.String(), `"username":"asha"`) {
		t.Fatalf("response should carry the account: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"grants":[]`) {
		t.Fatalf("response should carry the grants list: %s", rec.Body.String())
	}
}
