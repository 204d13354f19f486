package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/catalog"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/store"
)

// ビュー名。ゲートのGuardもこの名前で区別する。
const (
	ViewHome              = "home"
	ViewJobs              = "jobs"
	ViewJobDetail         = "job-detail"
	ViewCompanies         = "companies"
	ViewCompanyDetail     = "company-detail"
	ViewCompanyJobs       = "company-jobs"
	ViewResources         = "resources"
	ViewArticle           = "article"
	ViewCareerCoaching    = "career-coaching"
	ViewResumeReview      = "resume-review"
	ViewLogin             = "login"
	ViewSignup            = "signup"
	ViewSeekerDashboard   = "dashboard"
	ViewEmployerDashboard = "employer-dashboard"
	ViewPostJob           = "post-job"
	ViewProfile           = "profile"
	ViewSettings          = "settings"
)

// featuredCompanyLimit はホーム画面に表示する注目企業の最大数。
const featuredCompanyLimit = 4

// viewResponse はゲートを通過したビューのレスポンス。
type viewResponse struct {
	View string      `json:"view"`
	User *model.User `json:"user"`
	Data any         `json:"data,omitempty"`
}

type homeData struct {
	Jobs              catalog.JobPage `json:"jobs"`
	FeaturedCompanies []model.Company `json:"featuredCompanies"`
}

type jobDetailData struct {
	Job     model.JobListing   `json:"job"`
	Similar []model.JobListing `json:"similar"`
	Saved   bool               `json:"saved"`
	Applied bool               `json:"applied"`
}

type companyData struct {
	Company model.Company      `json:"company"`
	Jobs    []model.JobListing `json:"jobs"`
}

type resourcesData struct {
	Articles []model.Article `json:"articles"`
	Coaches  []model.Coach   `json:"coaches"`
}

type seekerDashboardData struct {
	Stats     store.SeekerStats      `json:"stats"`
	SavedJobs []model.JobListing     `json:"savedJobs"`
	Profile   model.JobSeekerProfile `json:"profile"`
}

type employerDashboardData struct {
	Stats      store.EmployerStats   `json:"stats"`
	Jobs       []postedJobResponse   `json:"jobs"`
	Candidates []model.Candidate     `json:"candidates"`
	Profile    model.EmployerProfile `json:"profile"`
}

type profileData struct {
	JobSeeker *model.JobSeekerProfile `json:"jobSeeker,omitempty"`
	Employer  *model.EmployerProfile  `json:"employer,omitempty"`
}

// ViewHandler はゲートを通過した画面のデータをJSONで返すハンドラー。
type ViewHandler struct {
	catalog  CatalogService
	employer *EmployerHandler
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(c CatalogService) *ViewHandler {
	return &ViewHandler{
		catalog:  c,
		employer: NewEmployerHandler(c.Job),
	}
}

// render はクライアントのユーザー情報を付けてビューを返す。
func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, view string, data any) {
	resp := viewResponse{View: view, Data: data}
	if c, ok := clientFrom(w, r); ok {
		resp.User = c.Store.Snapshot().User
		writeJSON(w, http.StatusOK, resp)
	}
}

// Home はトップ画面。求人検索と注目企業を返す。
// GET /
func (h *ViewHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.SearchJobs(jobQueryFrom(r.URL.Query()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	featured, err := h.catalog.Companies(catalog.CompanyQuery{Tab: catalog.TabFeatured})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.render(w, r, ViewHome, homeData{
		Jobs:              page,
		FeaturedCompanies: featured[:min(featuredCompanyLimit, len(featured))],
	})
}

// Jobs は求人一覧画面。
// GET /jobs
func (h *ViewHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.SearchJobs(jobQueryFrom(r.URL.Query()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.render(w, r, ViewJobs, page)
}

// JobDetail は求人詳細画面。ログイン中の求職者には保存・応募状況を含める。
// GET /jobs/{id}
func (h *ViewHandler) JobDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := h.catalog.Job(id)
	if !ok {
		handleServiceError(w, model.NewJobNotFoundError(id))
		return
	}
	similar, _ := h.catalog.SimilarJobs(id, similarJobsLimit)

	data := jobDetailData{Job: job, Similar: similar}
	if c, ok := clientFrom(w, r); ok {
		st := c.Store.Snapshot()
		data.Saved = slices.Contains(st.JobSeeker.SavedJobs, id)
		data.Applied = slices.ContainsFunc(st.JobSeeker.Applications, func(a model.Application) bool {
			return a.JobID == id
		})
		writeJSON(w, http.StatusOK, viewResponse{View: ViewJobDetail, User: st.User, Data: data})
	}
}

// Companies は企業ディレクトリ画面。
// GET /companies
func (h *ViewHandler) Companies(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	companies, err := h.catalog.Companies(catalog.CompanyQuery{
		Search:   v.Get("q"),
		Industry: v.Get("industry"),
		Tab:      v.Get("tab"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.render(w, r, ViewCompanies, companies)
}

// CompanyDetail は企業詳細画面。
// GET /companies/{id}
func (h *ViewHandler) CompanyDetail(w http.ResponseWriter, r *http.Request) {
	h.company(w, r, ViewCompanyDetail)
}

// CompanyJobs は企業別求人一覧画面。
// GET /companies/{id}/jobs
func (h *ViewHandler) CompanyJobs(w http.ResponseWriter, r *http.Request) {
	h.company(w, r, ViewCompanyJobs)
}

func (h *ViewHandler) company(w http.ResponseWriter, r *http.Request, view string) {
	id := chi.URLParam(r, "id")
	co, ok := h.catalog.Company(id)
	if !ok {
		handleServiceError(w, model.NewCompanyNotFoundError(id))
		return
	}
	v := r.URL.Query()
	jobs, _ := h.catalog.CompanyJobs(id, catalog.CompanyJobsQuery{Search: v.Get("q"), Type: v.Get("type")})
	h.render(w, r, view, companyData{Company: co, Jobs: jobs})
}

// Resources はキャリアリソース画面。
// GET /resources
func (h *ViewHandler) Resources(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	h.render(w, r, ViewResources, resourcesData{
		Articles: h.catalog.Articles(catalog.ArticleQuery{Search: v.Get("q"), Category: v.Get("category")}),
		Coaches:  h.catalog.Coaches(),
	})
}

// Article は記事画面。
// GET /resources/articles/{id}
func (h *ViewHandler) Article(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := h.catalog.Article(id)
	if !ok {
		handleServiceError(w, model.NewArticleNotFoundError(id))
		return
	}
	h.render(w, r, ViewArticle, a)
}

// CareerCoaching はキャリアコーチ一覧画面。
// GET /resources/career-coaching
func (h *ViewHandler) CareerCoaching(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ViewCareerCoaching, h.catalog.Coaches())
}

// ResumeReview は履歴書添削のプラン選択画面。
// GET /resources/resume-review
func (h *ViewHandler) ResumeReview(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ViewResumeReview, h.catalog.ResumeReviewPlans())
}

// Login はログイン画面。
// GET /auth/login
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ViewLogin, nil)
}

// Signup はサインアップ画面。
// GET /auth/signup
func (h *ViewHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ViewSignup, nil)
}

// SeekerDashboard は求職者ダッシュボード。表示時に応募と保存求人を取得し直す。
// GET /dashboard
func (h *ViewHandler) SeekerDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := fetchAll(r.Context(), c.Store.FetchApplications, c.Store.FetchSavedJobs); err != nil {
		handleServiceError(w, err)
		return
	}

	st := c.Store.Snapshot()
	saved := make([]model.JobListing, 0, len(st.JobSeeker.SavedJobs))
	for _, id := range st.JobSeeker.SavedJobs {
		if j, ok := h.catalog.Job(id); ok {
			saved = append(saved, j)
		}
	}
	writeJSON(w, http.StatusOK, viewResponse{
		View: ViewSeekerDashboard,
		User: st.User,
		Data: seekerDashboardData{
			Stats:     st.SeekerStats(h.catalog.Job),
			SavedJobs: saved,
			Profile:   st.JobSeeker.Profile,
		},
	})
}

// EmployerDashboard は採用企業ダッシュボード。表示時に投稿求人と応募者を取得し直す。
// GET /dashboard/employer
func (h *ViewHandler) EmployerDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := fetchAll(r.Context(), c.Store.FetchPostedJobs, c.Store.FetchCandidates); err != nil {
		handleServiceError(w, err)
		return
	}

	st := c.Store.Snapshot()
	writeJSON(w, http.StatusOK, viewResponse{
		View: ViewEmployerDashboard,
		User: st.User,
		Data: employerDashboardData{
			Stats:      st.EmployerStats(),
			Jobs:       h.employer.postedJobs(st),
			Candidates: st.Employer.Candidates,
			Profile:    st.Employer.Profile,
		},
	})
}

// PostJob は求人投稿画面。企業プロフィールを初期値として返す。
// GET /post-job
func (h *ViewHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	st := c.Store.Snapshot()
	writeJSON(w, http.StatusOK, viewResponse{View: ViewPostJob, User: st.User, Data: st.Employer.Profile})
}

// Profile はプロフィール画面。ロールに応じたプロフィールを返す。
// GET /profile
func (h *ViewHandler) Profile(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	st := c.Store.Snapshot()
	var data profileData
	if st.User != nil && st.User.Role == model.RoleEmployer {
		data.Employer = &st.Employer.Profile
	} else {
		data.JobSeeker = &st.JobSeeker.Profile
	}
	writeJSON(w, http.StatusOK, viewResponse{View: ViewProfile, User: st.User, Data: data})
}

// Settings は設定画面。
// GET /settings
func (h *ViewHandler) Settings(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	st := c.Store.Snapshot()
	writeJSON(w, http.StatusOK, viewResponse{View: ViewSettings, User: st.User, Data: st.Settings})
}

// fetchAll は取得処理を並行に実行し、すべての完了を待ってエラーをまとめて返す。
func fetchAll(ctx context.Context, fns ...func(context.Context) error) error {
	errs := make([]error, len(fns))
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(ctx)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
