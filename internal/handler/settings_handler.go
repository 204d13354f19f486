package handler

import (
	"net/http"

	"github.com/hitoshi/jobportal/internal/model"
)

// SettingsHandler は表示・通知設定のHTTPハンドラー。
type SettingsHandler struct{}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

type themeRequest struct {
	Theme model.Theme `json:"theme"`
}

// Get は現在の設定を返す。
// GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Settings())
}

// Update は指定された設定項目を変更する。
// PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var patch model.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		handleServiceError(w, err)
		return
	}

	settings, err := c.Store.UpdateSettings(patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SetTheme は表示テーマを変更する。
// PUT /api/settings/theme
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}

	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := c.Store.SetTheme(req.Theme); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Store.Settings())
}

// ToggleNotifications は通知設定を反転する。
// POST /api/settings/notifications/toggle
func (h *SettingsHandler) ToggleNotifications(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	c.Store.ToggleNotifications()
	writeJSON(w, http.StatusOK, c.Store.Settings())
}

// ToggleEmailAlerts はメール通知設定を反転する。
// POST /api/settings/email-alerts/toggle
func (h *SettingsHandler) ToggleEmailAlerts(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFrom(w, r)
	if !ok {
		return
	}
	c.Store.ToggleEmailAlerts()
	writeJSON(w, http.StatusOK, c.Store.Settings())
}
