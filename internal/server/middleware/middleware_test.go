package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestEcho(app *App) *echo.Echo {
	e := echo.New()
	e.Use(AppContextMiddleware(app))
	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).UserID)
	}
	e.GET("/open", ok, AuthMiddleware)
	e.GET("/snapshots", ok, AuthMiddleware, RequirePermission(PermSnapshotView))
	return e
}

func TestAuthMiddlewareMasterKey(t *testing.T) {
	e := newTestEcho(&App{MasterAPIKey: "secret", MasterUserID: "7", MasterUserRole: "admin"})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "7" {
		t.Fatalf("expected master user id, got %q", rec.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	e := newTestEcho(&App{MasterAPIKey: "secret", MasterUserID: "7", MasterUserRole: "admin"})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic secret"},
		{name: "wrong key without jwks", header: "Bearer other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestMasterKeyRequiresCompleteIdentity(t *testing.T) {
	e := newTestEcho(&App{MasterAPIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without master user, got %d", rec.Code)
	}
}

func TestHasPermission(t *testing.T) {
	if HasPermission(nil, PermLineageRead) {
		t.Fatal("expected nil user to have no permissions")
	}
	reader := &AppUser{UserID: "1", Role: "user", Permissions: []string{PermLineageRead}}
	if !HasPermission(reader, PermLineageRead) {
		t.Fatal("expected reader to read")
	}
	if HasPermission(reader, PermSnapshotSave) {
		t.Fatal("expected reader not to save snapshots")
	}
	admin := &AppUser{UserID: "2", Role: "admin"}
	if !HasPermission(admin, PermSnapshotSave) {
		t.Fatal("expected admin to hold every permission")
	}
}
