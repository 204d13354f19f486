package gate

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/model"
)

// Lookup はリクエストに対応するセッションの要約とクライアントのGuardsを返す。
// クライアントが特定できない場合はokをfalseにする。
type Lookup func(r *http.Request) (view SessionView, guards *Guards, ok bool)

// loadingBody は読み込み中のレスポンス。
type loadingBody struct {
	Status string `json:"status"`
}

// NewMiddleware はビューにゲートを適用するミドルウェアを返す。
// 許可の場合は次のハンドラーへ、リダイレクトの場合は307、読み込み中は202を返す。
func NewMiddleware(rules Rules, lookup Lookup, mc metrics.MetricsCollector, view string, required ...model.Role) func(http.Handler) http.Handler {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sv, guards, ok := lookup(r)
			if !ok || guards == nil {
				sv = SessionView{}
				guards = NewGuards(rules)
			}

			d, reevaluated := guards.For(view, required...).Check(r.URL.Path, sv)
			if reevaluated {
				mc.RecordGateDecision(string(d.State))
			}

			switch d.State {
			case StateAllowed:
				next.ServeHTTP(w, r)
			case StateRedirecting:
				http.Redirect(w, r, d.RedirectTo, http.StatusTemporaryRedirect)
			default:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusAccepted)
				json.NewEncoder(w).Encode(loadingBody{Status: string(StateLoading)})
			}
		})
	}
}
