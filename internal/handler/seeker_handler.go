package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/model"
)

// SeekerHandler は求職者向け（応募・保存求人・プロフィール）のHTTPハンドラー。
// ルートにはRequireRole(job-seeker)を適用する。
type SeekerHandler struct{}

// NewSeekerHandler はSeekerHandlerを生成する。
func NewSeekerHandler() *SeekerHandler {
	return &SeekerHandler{}
}

type applyRequest struct {
	JobID string `json:"jobId"`
}

// ListApplications は保持している応募一覧を返す。
// GET /api/seeker/applications
func (h *SeekerHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().JobSeeker.Applications)
}

// RefreshApplications はバックエンドから応募一覧を取得し直して返す。
// POST /api/seeker/applications/refresh
func (h *SeekerHandler) RefreshApplications(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.FetchApplications(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().JobSeeker.Applications)
}

// Apply は求人に応募する。
// POST /api/seeker/applications
func (h *SeekerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	app, err := c.Store.ApplyToJob(r.Context(), req.JobID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// Withdraw は応募を取り下げる。存在しないIDでも204を返す。
// DELETE /api/seeker/applications/{id}
func (h *SeekerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.WithdrawApplication(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSavedJobs は保存済み求人のID一覧を返す。
// GET /api/seeker/saved-jobs
func (h *SeekerHandler) ListSavedJobs(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().JobSeeker.SavedJobs)
}

// RefreshSavedJobs はバックエンドから保存済み求人を取得し直して返す。
// POST /api/seeker/saved-jobs/refresh
func (h *SeekerHandler) RefreshSavedJobs(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.FetchSavedJobs(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().JobSeeker.SavedJobs)
}

// SaveJob は求人を保存する。保存済みの場合も204を返す。
// PUT /api/seeker/saved-jobs/{jobId}
func (h *SeekerHandler) SaveJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	if err := c.Store.SaveJob(r.Context(), chi.URLParam(r, "jobId")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnsaveJob は求人の保存を解除する。
// DELETE /api/seeker/saved-jobs/{jobId}
func (h *SeekerHandler) UnsaveJob(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	c.Store.UnsaveJob(chi.URLParam(r, "jobId"))
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile は求職者プロフィールを返す。
// GET /api/seeker/profile
func (h *SeekerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Snapshot().JobSeeker.Profile)
}

// UpdateProfile は求職者プロフィールを部分更新する。
// PATCH /api/seeker/profile
func (h *SeekerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var patch model.JobSeekerProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		handleServiceError(w, err)
		return
	}

	profile, err := c.Store.UpdateJobSeekerProfile(r.Context(), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
