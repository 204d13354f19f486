package gate

import (
	"testing"

	"github.com/hitoshi/jobportal/internal/model"
)

var (
	anonymous = SessionView{}
	seeker    = SessionView{IsAuthenticated: true, Role: model.RoleJobSeeker, Version: 1}
	employer  = SessionView{IsAuthenticated: true, Role: model.RoleEmployer, Version: 1}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		view     SessionView
		required []model.Role
		want     Decision
	}{
		{"home is public", "/", anonymous, nil, Decision{State: StateAllowed}},
		{"job list is public", "/jobs", anonymous, nil, Decision{State: StateAllowed}},
		{"job detail is public", "/jobs/job1", anonymous, nil, Decision{State: StateAllowed}},
		{"company jobs are public", "/companies/1/jobs", anonymous, nil, Decision{State: StateAllowed}},
		{"resources are public", "/resources/articles/1", anonymous, nil, Decision{State: StateAllowed}},
		{"public ignores required role", "/jobs", seeker, []model.Role{model.RoleEmployer}, Decision{State: StateAllowed}},
		{"prefix needs a segment boundary", "/jobsearch", anonymous, nil, Decision{State: StateRedirecting, RedirectTo: "/auth/login"}},
		{"login page for anonymous", "/auth/login", anonymous, nil, Decision{State: StateAllowed}},
		{"login page for seeker", "/auth/login", seeker, nil, Decision{State: StateRedirecting, RedirectTo: "/dashboard"}},
		{"signup page for employer", "/auth/signup", employer, nil, Decision{State: StateRedirecting, RedirectTo: "/dashboard/employer"}},
		{"protected for anonymous", "/dashboard", anonymous, nil, Decision{State: StateRedirecting, RedirectTo: "/auth/login"}},
		{"settings for seeker", "/settings", seeker, nil, Decision{State: StateAllowed}},
		{"seeker on employer route", "/dashboard/employer", seeker, []model.Role{model.RoleEmployer}, Decision{State: StateRedirecting, RedirectTo: "/dashboard"}},
		{"employer on seeker route", "/dashboard", employer, []model.Role{model.RoleJobSeeker}, Decision{State: StateRedirecting, RedirectTo: "/dashboard/employer"}},
		{"employer on employer route", "/post-job", employer, []model.Role{model.RoleEmployer}, Decision{State: StateAllowed}},
		{"either role allowed", "/profile", employer, []model.Role{model.RoleJobSeeker, model.RoleEmployer}, Decision{State: StateAllowed}},
		{"unknown role is not a member", "/post-job", SessionView{IsAuthenticated: true, Role: "admin"}, []model.Role{model.RoleEmployer}, Decision{State: StateRedirecting, RedirectTo: "/dashboard"}},
		{"missing role is not a member", "/post-job", SessionView{IsAuthenticated: true}, []model.Role{model.RoleEmployer}, Decision{State: StateRedirecting, RedirectTo: "/dashboard"}},
		{"loading skips checks", "/dashboard", SessionView{IsLoading: true}, nil, Decision{State: StateLoading}},
		{"loading on public route", "/jobs", SessionView{IsLoading: true}, nil, Decision{State: StateLoading}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.path, tt.view, tt.required...)
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

// TestEvaluate_SeekerNeverSentToEmployerDashboard は求職者が採用企業ダッシュボードへ送られないことをテストする。
func TestEvaluate_SeekerNeverSentToEmployerDashboard(t *testing.T) {
	for _, path := range []string{"/dashboard/employer", "/post-job", "/auth/login"} {
		d := Evaluate(path, seeker, model.RoleEmployer)
		if d.RedirectTo == "/dashboard/employer" {
			t.Errorf("%s redirected a job seeker to the employer dashboard", path)
		}
	}
}

func TestRules_Dashboard(t *testing.T) {
	r := DefaultRules()
	if got := r.Dashboard(model.RoleEmployer); got != "/dashboard/employer" {
		t.Errorf("employer dashboard = %q", got)
	}
	for _, role := range []model.Role{model.RoleJobSeeker, model.RoleNone, "other"} {
		if got := r.Dashboard(role); got != "/dashboard" {
			t.Errorf("Dashboard(%q) = %q, want /dashboard", role, got)
		}
	}
}

// --- Guard ---

func TestGuard_StartsChecking(t *testing.T) {
	g := NewGuard(DefaultRules())
	if g.State() != StateChecking {
		t.Errorf("initial state = %q, want checking", g.State())
	}
}

// TestGuard_ReevaluatesOnlyOnKeyChange はパスかバージョンが変わった場合のみ再評価することをテストする。
func TestGuard_ReevaluatesOnlyOnKeyChange(t *testing.T) {
	g := NewGuard(DefaultRules(), model.RoleEmployer)

	d, re := g.Check("/post-job", anonymous)
	if !re || d.State != StateRedirecting || d.RedirectTo != "/auth/login" {
		t.Fatalf("first check = %+v, reevaluated=%v", d, re)
	}

	if _, re := g.Check("/post-job", anonymous); re {
		t.Error("same key should use the cached decision")
	}

	loggedIn := employer
	loggedIn.Version = 5
	d, re = g.Check("/post-job", loggedIn)
	if !re || d.State != StateAllowed {
		t.Errorf("after login = %+v, reevaluated=%v", d, re)
	}
	if g.State() != StateAllowed {
		t.Errorf("state = %q, want allowed", g.State())
	}

	if _, re := g.Check("/post-job/preview", loggedIn); !re {
		t.Error("path change should trigger re-evaluation")
	}
}

func TestGuards_ForReturnsSameGuard(t *testing.T) {
	gs := NewGuards(DefaultRules())
	a := gs.For("dashboard", model.RoleJobSeeker)
	b := gs.For("dashboard")
	if a != b {
		t.Error("For should return the same guard for a view")
	}
	if c := gs.For("settings"); c == a {
		t.Error("different views should have different guards")
	}
}
