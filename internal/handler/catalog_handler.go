package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/catalog"
	"github.com/hitoshi/jobportal/internal/model"
)

// similarJobsLimit は類似求人として返す最大件数。
const similarJobsLimit = 3

// CatalogService はカタログハンドラーが必要とする読み取り専用インターフェース。
type CatalogService interface {
	Job(id string) (model.JobListing, bool)
	SearchJobs(q catalog.JobQuery) (catalog.JobPage, error)
	SimilarJobs(id string, n int) ([]model.JobListing, bool)
	Companies(q catalog.CompanyQuery) ([]model.Company, error)
	Company(id string) (model.Company, bool)
	CompanyJobs(companyID string, q catalog.CompanyJobsQuery) ([]model.JobListing, bool)
	Articles(q catalog.ArticleQuery) []model.Article
	Article(id string) (model.Article, bool)
	Coaches() []model.Coach
	Coach(id string) (model.Coach, bool)
	ResumeReviewPlans() []model.ResumeReviewPlan
	ResumeReviewPlan(id string) (model.ResumeReviewPlan, bool)
}

var _ CatalogService = (*catalog.Catalog)(nil)

// CatalogHandler は求人・企業・記事・コーチの参照用HTTPハンドラー。
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(c CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// jobQueryFrom はクエリパラメータから求人検索条件を組み立てる。
// page, limitが数値でない場合は既定値を使う。
func jobQueryFrom(v url.Values) catalog.JobQuery {
	page, _ := strconv.Atoi(v.Get("page"))
	limit, _ := strconv.Atoi(v.Get("limit"))
	remote, _ := strconv.ParseBool(v.Get("remote"))
	return catalog.JobQuery{
		Search:     v.Get("q"),
		Type:       v.Get("type"),
		Experience: v.Get("experience"),
		RemoteOnly: remote,
		Tab:        v.Get("tab"),
		Page:       page,
		Limit:      limit,
	}
}

// ListJobs は求人を検索する。
// GET /api/jobs?q=&type=&experience=&remote=&tab=&page=&limit=
func (h *CatalogHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.SearchJobs(jobQueryFrom(r.URL.Query()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetJob は求人詳細を返す。
// GET /api/jobs/{id}
func (h *CatalogHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := h.catalog.Job(id)
	if !ok {
		handleServiceError(w, model.NewJobNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// SimilarJobs は同じ業界の求人を返す。
// GET /api/jobs/{id}/similar
func (h *CatalogHandler) SimilarJobs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	jobs, ok := h.catalog.SimilarJobs(id, similarJobsLimit)
	if !ok {
		handleServiceError(w, model.NewJobNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// ListCompanies は企業ディレクトリを検索する。
// GET /api/companies?q=&industry=&tab=
func (h *CatalogHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, companies)
}

// GetCompany は企業詳細を返す。
// GET /api/companies/{id}
func (h *CatalogHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	co, ok := h.catalog.Company(id)
	if !ok {
		handleServiceError(w, model.NewCompanyNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, co)
}

// CompanyJobs は企業の求人一覧を返す。
// GET /api/companies/{id}/jobs?q=&type=
func (h *CatalogHandler) CompanyJobs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := r.URL.Query()
	jobs, ok := h.catalog.CompanyJobs(id, catalog.CompanyJobsQuery{
		Search: v.Get("q"),
		Type:   v.Get("type"),
	})
	if !ok {
		handleServiceError(w, model.NewCompanyNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// ListArticles はキャリアリソースの記事を検索する。
// GET /api/articles?q=&category=
func (h *CatalogHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	writeJSON(w, http.StatusOK, h.catalog.Articles(catalog.ArticleQuery{
		Search:   v.Get("q"),
		Category: v.Get("category"),
	}))
}

// GetArticle は記事を返す。
// GET /api/articles/{id}
func (h *CatalogHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := h.catalog.Article(id)
	if !ok {
		handleServiceError(w, model.NewArticleNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListCoaches はキャリアコーチ一覧を返す。
// GET /api/coaches
func (h *CatalogHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Coaches())
}

// GetCoach はコーチを返す。
// GET /api/coaches/{id}
func (h *CatalogHandler) GetCoach(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	co, ok := h.catalog.Coach(id)
	if !ok {
		handleServiceError(w, model.NewCoachNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, co)
}

// ListResumeReviewPlans は履歴書添削プランを返す。
// GET /api/resume-review/plans
func (h *CatalogHandler) ListResumeReviewPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.ResumeReviewPlans())
}

// GET /api/resume-review/plans/{id}
func (h *CatalogHandler) GetResumeReviewPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.catalog.ResumeReviewPlan(id)
	if !ok {
		handleServiceError(w, model.NewPlanNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
