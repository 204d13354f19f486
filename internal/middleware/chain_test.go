package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/model"
)

// newChainRouter はセッション・CSRF・ロール検証を通すルーターを返す。
func newChainRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := newTestRegistry(t)

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(NewClientSessionMiddleware(reg, SessionCookieConfig{}))
	r.Use(NewCSRFMiddleware(CSRFConfig{}))
	r.Get("/api/csrf-token", NewCSRFTokenHandler(CSRFConfig{}).ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(model.RoleEmployer))
		r.Post("/api/employer/jobs", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	return r
}

func TestMiddlewareChain_CSRFThenRole(t *testing.T) {
	router := newChainRouter(t)

	// 1. CSRFトークンとセッションCookieを取得
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csrf-token status = %d", w.Code)
	}
	var sessionCookie, csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case SessionCookieName:
			sessionCookie = c
		case CSRFCookieName:
			csrfCookie = c
		}
	}
	if sessionCookie == nil || csrfCookie == nil {
		t.Fatal("both session and csrf cookies should be set")
	}

	// 2. CSRFトークンなしのPOSTは403
	req := httptest.NewRequest(http.MethodPost, "/api/employer/jobs", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("without csrf: status = %d, want 403", w.Code)
	}

	// 3. CSRFトークンありでも未ログインは401
	req = httptest.NewRequest(http.MethodPost, "/api/employer/jobs", nil)
	req.AddCookie(sessionCookie)
	req.AddCookie(csrfCookie)
	req.Header.Set(CSRFHeaderName, csrfCookie.Value)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("logged out: status = %d, want 401", w.Code)
	}
}

// TestMiddlewareChain_CookieNames は発行されるCookie名を固定する。
// フロントエンドのCSRFトークン読み取りがこの名前に依存する。
func TestMiddlewareChain_CookieNames(t *testing.T) {
	router := newChainRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))

	got := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		got[c.Name] = true
	}
	for _, name := range []string{"jobportal_client", "jobportal_csrf"} {
		if !got[name] {
			t.Errorf("cookie %q not issued, got %v", name, got)
		}
	}
}

func TestMiddlewareChain_PanicReturnsInternalError(t *testing.T) {
	router := newChainRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
