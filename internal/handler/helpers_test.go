package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/jobportal/internal/catalog"
	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/session"
	"github.com/hitoshi/jobportal/internal/store"
)

// testBrowser はCookieとCSRFトークンを引き継いでリクエストを送るテスト用クライアント。
type testBrowser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

// newTestRouter は待ち時間なしのストアと埋め込みカタログでルーターを組み立てる。
// backendがnilの場合は常に成功する。
func newTestRouter(t *testing.T, backend store.Backend) (http.Handler, *session.Registry) {
	t.Helper()
	cat, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	reg := session.NewRegistry(session.RegistryConfig{
		Rules: gate.DefaultRules(),
		NewStore: func(id string) *store.Store {
			return store.New(store.Options{ClientID: id, Delayer: store.NoDelay{}, Backend: backend})
		},
	})
	t.Cleanup(reg.Stop)

	router := NewRouter(&RouterDeps{
		Registry:          reg,
		CORSAllowedOrigin: "http://localhost:3000",
		Rules:             gate.DefaultRules(),
		Catalog:           cat,
		Logger:            discardLogger(),
	})
	return router, reg
}

func newTestBrowser(t *testing.T, h http.Handler) *testBrowser {
	return &testBrowser{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

// do はリクエストを送り、レスポンスのCookieを保存する。
// 状態変更メソッドにはCSRFトークンを付与する。
func (b *testBrowser) do(method, path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			b.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	if method != http.MethodGet {
		if c, ok := b.cookies[middleware.CSRFCookieName]; ok {
			req.Header.Set(middleware.CSRFHeaderName, c.Value)
		}
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

// start はセッションCookieとCSRFトークンを取得する。
func (b *testBrowser) start() *testBrowser {
	b.t.Helper()
	if w := b.do(http.MethodGet, "/api/csrf-token", nil); w.Code != http.StatusOK {
		b.t.Fatalf("csrf-token status = %d", w.Code)
	}
	return b
}

// login はデモログインする。
func (b *testBrowser) login(email string) *testBrowser {
	b.t.Helper()
	w := b.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "secret"})
	if w.Code != http.StatusOK {
		b.t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	return b
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v, body = %s", err, w.Body.String())
	}
	return v
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	body := decodeBody[middleware.ErrorResponseBody](t, w)
	if body.Code != want {
		t.Errorf("code = %q, want %q", body.Code, want)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
