// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/session"
)

// maxRequestBody はJSONリクエストボディの上限（バイト）。
const maxRequestBody = 1 << 20

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをvにデコードする。
// 失敗した場合はINVALID_REQUESTを返す。
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return model.NewInvalidRequestError("リクエストボディの解析に失敗しました")
	}
	return nil
}

// clientFrom はリクエストのクライアントを返す。見つからない場合は401を書き込みfalseを返す。
func clientFrom(w http.ResponseWriter, r *http.Request) (*session.Client, bool) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return nil, false
	}
	return c, true
}

// handleServiceError はストアやカタログから返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode >= http.StatusInternalServerError {
			attrs := []any{slog.String("code", apiErr.Code)}
			if apiErr.Err != nil {
				attrs = append(attrs, slog.String("error", apiErr.Err.Error()))
			}
			slog.Warn("operation failed", attrs...)
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthenticated, model.ErrCodeLoginFailed:
		return http.StatusUnauthorized
	case model.ErrCodeForbiddenRole, model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeOperationFailed, model.ErrCodeSignupFailed, model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	case model.ErrCodeInvalidCredentials, model.ErrCodeInvalidRole, model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidProfile, model.ErrCodeInvalidRequest, model.ErrCodeInvalidJobPosting,
		model.ErrCodeInvalidTheme, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeJobNotFound, model.ErrCodeCompanyNotFound, model.ErrCodeArticleNotFound,
		model.ErrCodeCoachNotFound, model.ErrCodePostedJobNotFound, model.ErrCodePlanNotFound:
		return http.StatusNotFound
	case model.ErrCodeParseFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
