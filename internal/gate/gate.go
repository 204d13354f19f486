// Package gate はビューへのアクセス可否を判定するアクセスゲートを提供する。
// 判定はナビゲーションのためのもので、APIの認可はmiddleware.RequireRoleが行う。
package gate

import (
	"slices"
	"strings"

	"github.com/hitoshi/jobportal/internal/model"
)

// State はゲートの判定状態。
type State string

const (
	StateChecking    State = "checking"
	StateAllowed     State = "allowed"
	StateRedirecting State = "redirecting"
	StateLoading     State = "loading"
)

// SessionView はゲートが参照するセッションの要約。
// Versionはセッション状態が変わるたびに増える値で、Guardの再評価判定に使う。
type SessionView struct {
	IsLoading       bool
	IsAuthenticated bool
	Role            model.Role
	Version         uint64
}

// Decision はゲートの判定結果。RedirectToはStateRedirectingの場合のみ設定される。
type Decision struct {
	State      State
	RedirectTo string
}

// Rules はパスの分類と遷移先を定義する。
type Rules struct {
	PublicPaths       []string // 完全一致で公開
	PublicPrefixes    []string // 配下を含めて公開
	AuthPrefix        string   // ログイン・サインアップ
	LoginPath         string
	SeekerDashboard   string
	EmployerDashboard string
}

// DefaultRules は既定のルールを返す。
func DefaultRules() Rules {
	return Rules{
		PublicPaths:       []string{"/"},
		PublicPrefixes:    []string{"/jobs", "/companies", "/resources"},
		AuthPrefix:        "/auth/",
		LoginPath:         "/auth/login",
		SeekerDashboard:   "/dashboard",
		EmployerDashboard: "/dashboard/employer",
	}
}

// Evaluate は既定のルールで判定する。
func Evaluate(path string, view SessionView, required ...model.Role) Decision {
	return DefaultRules().Evaluate(path, view, required...)
}

// Evaluate はパスとセッションから判定を行う。パニックせず、未知のロールは必要ロールに含まれないものとして扱う。
func (r Rules) Evaluate(path string, view SessionView, required ...model.Role) Decision {
	if view.IsLoading {
		return Decision{State: StateLoading}
	}
	if r.isPublic(path) {
		return allowed()
	}
	if r.AuthPrefix != "" && strings.HasPrefix(path, r.AuthPrefix) {
		if view.IsAuthenticated {
			return r.redirect(r.Dashboard(view.Role))
		}
		return allowed()
	}
	if !view.IsAuthenticated {
		return r.redirect(r.LoginPath)
	}
	if len(required) > 0 && !slices.Contains(required, view.Role) {
		return r.redirect(r.Dashboard(view.Role))
	}
	return allowed()
}

// Dashboard はロールに応じたダッシュボードのパスを返す。採用企業以外は求職者ダッシュボード。
func (r Rules) Dashboard(role model.Role) string {
	if role == model.RoleEmployer {
		return r.EmployerDashboard
	}
	return r.SeekerDashboard
}

func (r Rules) isPublic(path string) bool {
	if slices.Contains(r.PublicPaths, path) {
		return true
	}
	for _, p := range r.PublicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (r Rules) redirect(to string) Decision {
	return Decision{State: StateRedirecting, RedirectTo: to}
}

func allowed() Decision {
	return Decision{State: StateAllowed}
}
