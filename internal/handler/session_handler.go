package handler

import (
	"net/http"

	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/model"
)

// SessionHandler はデモ認証（ログイン・サインアップ・ログアウト）のHTTPハンドラー。
// 状態はクライアントごとのストアに保持する。
type SessionHandler struct {
	rules gate.Rules
}

// NewSessionHandler はSessionHandlerを生成する。
// ログイン後の遷移先はrulesのダッシュボードを使う。
func NewSessionHandler(rules gate.Rules) *SessionHandler {
	return &SessionHandler{rules: rules}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// meResponse は現在のセッション情報のレスポンス。
type meResponse struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	Redirect        string      `json:"redirect,omitempty"`
}

// Login はデモログインを行う。
// POST /api/auth/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := c.Store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:            user,
		IsAuthenticated: true,
		Redirect:        h.rules.Dashboard(user.Role),
	})
}

// Signup はアカウントを作成してログイン状態にする。
// POST /api/auth/signup
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := c.Store.Signup(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meResponse{
		User:            user,
		IsAuthenticated: true,
		Redirect:        h.rules.Dashboard(user.Role),
	})
}

// Logout はログアウトする。未ログインでも成功する。
// POST /api/auth/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	c.Store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッション情報を返す。未ログインの場合もisAuthenticated=falseで200を返す。
// GET /api/auth/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	st := c.Store.Snapshot()
	writeJSON(w, http.StatusOK, meResponse{
		User:            st.User,
		IsAuthenticated: st.IsAuthenticated,
		IsLoading:       st.IsLoading,
	})
}

// UpdateMe はユーザー情報を部分更新する。
// PATCH /api/auth/me
func (h *SessionHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var patch model.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := c.Store.UpdateUser(r.Context(), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: user, IsAuthenticated: true})
}
