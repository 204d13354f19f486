// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/session"
)

// SessionCookieName はクライアントIDを運ぶCookieの名前。
// 求人ボードの状態コンテナはこのIDごとにレジストリへ登録される。
const SessionCookieName = "jobportal_client"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// clientContextKey はリクエストコンテキストにクライアントを格納するためのキー。
var clientContextKey = contextKey("client")

// ClientRegistry はクライアントの取得・生成に必要なインターフェース。
// session.Registryの部分集合として定義する。
type ClientRegistry interface {
	GetOrCreate(ctx context.Context, id string) (*session.Client, bool)
}

// SessionCookieConfig はセッションCookieの設定。
type SessionCookieConfig struct {
	MaxAge       int // 秒
	CookieSecure bool
	CookieDomain string
}

// NewClientSessionMiddleware はHTTP Only Cookieからクライアントを特定するミドルウェアを返す。
// Cookieがない、またはUUID形式でない場合は新しいクライアントIDを発行してCookieに設定する。
// 特定したクライアントをリクエストコンテキストに注入する。
func NewClientSessionMiddleware(registry ClientRegistry, config SessionCookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからクライアントIDを取得
			clientID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					clientID = cookie.Value
				}
			}

			// 2. 未発行の場合は新規発行
			if clientID == "" {
				clientID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    clientID,
					Path:     "/",
					Domain:   config.CookieDomain,
					MaxAge:   config.MaxAge,
					HttpOnly: true,
					Secure:   config.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			// 3. クライアントの状態コンテナをコンテキストに注入
			client, _ := registry.GetOrCreate(r.Context(), clientID)
			next.ServeHTTP(w, r.WithContext(ContextWithClient(r.Context(), client)))
		})
	}
}

// ClientFromContext はリクエストコンテキストからクライアントを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func ClientFromContext(ctx context.Context) (*session.Client, bool) {
	c, ok := ctx.Value(clientContextKey).(*session.Client)
	return c, ok && c != nil
}

// ContextWithClient はコンテキストにクライアントを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClient(ctx context.Context, c *session.Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// ClientIDFromContext はリクエストコンテキストからクライアントIDを取得する。
func ClientIDFromContext(ctx context.Context) (string, error) {
	c, ok := ClientFromContext(ctx)
	if !ok || c.ID == "" {
		return "", fmt.Errorf("client not found in context")
	}
	return c.ID, nil
}

// UserIDFromContext はログイン中のユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	c, ok := ClientFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("client not found in context")
	}
	user := c.Store.Snapshot().User
	if user == nil || user.ID == "" {
		return "", fmt.Errorf("user not logged in")
	}
	return user.ID, nil
}

// RequireAuthenticated はログイン済みのクライアントのみを通すミドルウェアを返す。
// 未ログインの場合は401を返す。
func RequireAuthenticated() func(next http.Handler) http.Handler {
	return RequireRole()
}

// RequireRole はログイン済みで、かつ指定ロールのいずれかを持つクライアントのみを通すミドルウェアを返す。
// ロール未指定の場合はログインのみを要求する。未ログインは401、ロール不一致は403を返す。
func RequireRole(roles ...model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClientFromContext(r.Context())
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			st := c.Store.Snapshot()
			if !st.IsAuthenticated || st.User == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, st.User.Role) {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenRoleError(st.User.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
