package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Registry          middleware.ClientRegistry
	SessionCookie     middleware.SessionCookieConfig
	CSRF              middleware.CSRFConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// ゲート
	Rules gate.Rules

	// カタログ
	Catalog CatalogService

	// 運用
	HealthChecker HealthChecker
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer
}

// NewRouter は求人ボードの全エンドポイントとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ルートの構成:
//
//	画面 (/, /jobs, /companies, /resources, /dashboard ...)  アクセスゲートを通過したビューをJSONで返す
//	/api/auth          ログイン・登録・ログアウト・プロフィール更新
//	/api/jobs ほか     求人・企業・記事・コーチ・添削プランのカタログ（認証不要）
//	/api/seeker        求職者の応募と保存求人
//	/api/employer      採用担当の求人投稿と候補者管理
//	/api/settings      表示設定
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → ClientSession → Logging → RateLimit(General) → CSRF
//
// /health と /metrics はクライアントセッションの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	sessionHandler := NewSessionHandler(deps.Rules)
	catalogHandler := NewCatalogHandler(deps.Catalog)
	seekerHandler := NewSeekerHandler()
	employerHandler := NewEmployerHandler(deps.Catalog.Job)
	settingsHandler := NewSettingsHandler()
	viewHandler := NewViewHandler(deps.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewClientSessionMiddleware(deps.Registry, deps.SessionCookie))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		// --- 画面（アクセスゲート適用） ---
		view := func(name string, required ...model.Role) func(http.Handler) http.Handler {
			return gate.NewMiddleware(deps.Rules, gateLookup, deps.Metrics, name, required...)
		}
		r.With(view(ViewHome)).Get("/", viewHandler.Home)
		r.With(view(ViewJobs)).Get("/jobs", viewHandler.Jobs)
		r.With(view(ViewJobDetail)).Get("/jobs/{id}", viewHandler.JobDetail)
		r.With(view(ViewCompanies)).Get("/companies", viewHandler.Companies)
		r.With(view(ViewCompanyDetail)).Get("/companies/{id}", viewHandler.CompanyDetail)
		r.With(view(ViewCompanyJobs)).Get("/companies/{id}/jobs", viewHandler.CompanyJobs)
		r.With(view(ViewResources)).Get("/resources", viewHandler.Resources)
		r.With(view(ViewArticle)).Get("/resources/articles/{id}", viewHandler.Article)
		r.With(view(ViewCareerCoaching)).Get("/resources/career-coaching", viewHandler.CareerCoaching)
		r.With(view(ViewResumeReview)).Get("/resources/resume-review", viewHandler.ResumeReview)
		r.With(view(ViewLogin)).Get("/auth/login", viewHandler.Login)
		r.With(view(ViewSignup)).Get("/auth/signup", viewHandler.Signup)
		r.With(view(ViewSeekerDashboard, model.RoleJobSeeker)).Get("/dashboard", viewHandler.SeekerDashboard)
		r.With(view(ViewEmployerDashboard, model.RoleEmployer)).Get("/dashboard/employer", viewHandler.EmployerDashboard)
		r.With(view(ViewPostJob, model.RoleEmployer)).Get("/post-job", viewHandler.PostJob)
		r.With(view(ViewProfile)).Get("/profile", viewHandler.Profile)
		r.With(view(ViewSettings)).Get("/settings", viewHandler.Settings)

		// --- API ---
		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF).ServeHTTP)

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", sessionHandler.Login)
			r.Post("/signup", sessionHandler.Signup)
			r.Post("/logout", sessionHandler.Logout)
			r.Get("/me", sessionHandler.Me)
			r.With(middleware.RequireAuthenticated()).Patch("/me", sessionHandler.UpdateMe)
		})

		// カタログ（認証不要）
		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", catalogHandler.ListJobs)
			r.Get("/{id}", catalogHandler.GetJob)
			r.Get("/{id}/similar", catalogHandler.SimilarJobs)
		})
		r.Route("/api/companies", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCompanies)
			r.Get("/{id}", catalogHandler.GetCompany)
			r.Get("/{id}/jobs", catalogHandler.CompanyJobs)
		})
		r.Route("/api/articles", func(r chi.Router) {
			r.Get("/", catalogHandler.ListArticles)
			r.Get("/{id}", catalogHandler.GetArticle)
		})
		r.Route("/api/coaches", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCoaches)
			r.Get("/{id}", catalogHandler.GetCoach)
		})
		r.Route("/api/resume-review", func(r chi.Router) {
			r.Get("/plans", catalogHandler.ListResumeReviewPlans)
			r.Get("/plans/{id}", catalogHandler.GetResumeReviewPlan)
		})

		// 求職者
		r.Route("/api/seeker", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleJobSeeker))

			r.Get("/applications", seekerHandler.ListApplications)
			r.Post("/applications", seekerHandler.Apply)
			r.Post("/applications/refresh", seekerHandler.RefreshApplications)
			r.Delete("/applications/{id}", seekerHandler.Withdraw)

			r.Get("/saved-jobs", seekerHandler.ListSavedJobs)
			r.Post("/saved-jobs/refresh", seekerHandler.RefreshSavedJobs)
			r.Put("/saved-jobs/{jobId}", seekerHandler.SaveJob)
			r.Delete("/saved-jobs/{jobId}", seekerHandler.UnsaveJob)

			r.Get("/profile", seekerHandler.GetProfile)
			r.Patch("/profile", seekerHandler.UpdateProfile)
		})

		// 採用企業
		r.Route("/api/employer", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleEmployer))

			r.Get("/jobs", employerHandler.ListJobs)
			// POST /api/employer/jobs - 求人投稿（投稿専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.PostJobMiddleware()).Post("/jobs", employerHandler.PostJob)
			} else {
				r.Post("/jobs", employerHandler.PostJob)
			}
			r.Post("/jobs/refresh", employerHandler.RefreshJobs)
			r.Get("/jobs/{id}", employerHandler.GetJob)
			r.Delete("/jobs/{id}", employerHandler.CloseJob)

			r.Get("/candidates", employerHandler.ListCandidates)
			r.Post("/candidates/refresh", employerHandler.RefreshCandidates)
			r.Put("/candidates/{id}/status", employerHandler.UpdateCandidateStatus)

			r.Get("/profile", employerHandler.GetProfile)
			r.Patch("/profile", employerHandler.UpdateProfile)
		})

		// 設定
		r.Route("/api/settings", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated())

			r.Get("/", settingsHandler.Get)
			r.Patch("/", settingsHandler.Update)
			r.Put("/theme", settingsHandler.SetTheme)
			r.Post("/notifications/toggle", settingsHandler.ToggleNotifications)
			r.Post("/email-alerts/toggle", settingsHandler.ToggleEmailAlerts)
		})
	})

	return r
}

// gateLookup はリクエストのクライアントからゲート判定用の情報を取り出す。
func gateLookup(r *http.Request) (gate.SessionView, *gate.Guards, bool) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		return gate.SessionView{}, nil, false
	}
	return c.View(), c.Guards, true
}
