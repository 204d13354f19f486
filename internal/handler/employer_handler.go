package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/store"
)

// EmployerHandler は採用企業向け（求人投稿・応募者・企業プロフィール）のHTTPハンドラー。
// ルートにはRequireRole(employer)を適用する。
type EmployerHandler struct {
	lookup store.JobLookup
}

// NewEmployerHandler はEmployerHandlerを生成する。
// lookupは投稿内容を持たない求人IDをカタログの求人に解決するために使う。
func NewEmployerHandler(lookup store.JobLookup) *EmployerHandler {
	if lookup == nil {
		lookup = func(string) (model.JobListing, bool) { return model.JobListing{}, false }
	}
	return &EmployerHandler{lookup: lookup}
}

// postedJobResponse は投稿済み求人1件のレスポンス。
// 投稿内容を保持している場合はPosting、カタログにある場合はListingを含む。
type postedJobResponse struct {
	ID         string            `json:"id"`
	Posting    *model.JobPosting `json:"posting,omitempty"`
	Listing    *model.JobListing `json:"listing,omitempty"`
	Applicants int               `json:"applicants"`
}

type postJobResponse struct {
	ID string `json:"id"`
}

type candidateStatusRequest struct {
	Status model.CandidateStatus `json:"status"`
}

func (h *EmployerHandler) postedJob(st store.State, id string, applicants map[string]int) (postedJobResponse, bool) {
	if !st.IsPosted(id) {
		return postedJobResponse{}, false
	}
	resp := postedJobResponse{ID: id, Applicants: applicants[id]}
	if p, ok := st.PostedJob(id); ok {
		resp.Posting = &p
	}
	if l, ok := h.lookup(id); ok {
		resp.Listing = &l
	}
	return resp, true
}

func (h *EmployerHandler) postedJobs(st store.State) []postedJobResponse {
	applicants := st.EmployerStats().ApplicantsPerJob
	out := make([]postedJobResponse, 0, len(st.Employer.PostedJobs))
	for _, id := range st.Employer.PostedJobs {
		if resp, ok := h.postedJob(st, id, applicants); ok {
			out = append(out, resp)
		}
	}
	return out
}

// ListJobs は投稿済み求人を返す。
// GET /api/employer/jobs
func (h *EmployerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.postedJobs(c.Store.Snapshot()))
}

// RefreshJobs はバックエンドから投稿済み求人を取得し直して返す。
// POST /api/employer/jobs/refresh
func (h *EmployerHandler) RefreshJobs(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.FetchPostedJobs(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.postedJobs(c.Store.Snapshot()))
}

// PostJob は求人を投稿する。
// POST /api/employer/jobs
func (h *EmployerHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var posting model.JobPosting
	if err := decodeJSON(r, &posting); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := c.Store.PostJob(r.Context(), posting)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/api/employer/jobs/"+id)
	writeJSON(w, http.StatusCreated, postJobResponse{ID: id})
}

// GetJob は投稿済み求人の詳細を返す。
// GET /api/employer/jobs/{id}
func (h *EmployerHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	st := c.Store.Snapshot()
	resp, ok := h.postedJob(st, id, st.EmployerStats().ApplicantsPerJob)
	if !ok {
		handleServiceError(w, model.NewPostedJobNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CloseJob は投稿済み求人を取り下げる。存在しないIDでも204を返す。
// DELETE /api/employer/jobs/{id}
func (h *EmployerHandler) CloseJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.CloseJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCandidates は応募者一覧を返す。
// GET /api/employer/candidates
func (h *EmployerHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().Employer.Candidates)
}

// RefreshCandidates はバックエンドから応募者一覧を取得し直して返す。
// POST /api/employer/candidates/refresh
func (h *EmployerHandler) RefreshCandidates(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.FetchCandidates(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().Employer.Candidates)
}

// UpdateCandidateStatus は応募者のステータスを変更する。
// PUT /api/employer/candidates/{id}/status
func (h *EmployerHandler) UpdateCandidateStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var req candidateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := c.Store.UpdateCandidateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile は企業プロフィールを返す。
// GET /api/employer/profile
func (h *EmployerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().Employer.Profile)
}

// UpdateProfile は企業プロフィールを部分更新する。
// PATCH /api/employer/profile
func (h *EmployerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var patch model.EmployerProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		handleServiceError(w, err)
		return
	}

	profile, err := c.Store.UpdateEmployerProfile(r.Context(), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
