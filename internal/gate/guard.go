package gate

import (
	"slices"
	"sync"

	"github.com/hitoshi/jobportal/internal/model"
)

type guardKey struct {
	path    string
	version uint64
}

// Guard はビュー1つ分のゲート状態を保持する。
// 初期状態はStateCheckingで、パスかセッションのバージョンが変わった場合のみ再評価する。
type Guard struct {
	rules    Rules
	required []model.Role

	mu        sync.Mutex
	key       guardKey
	decision  Decision
	evaluated bool
}

// NewGuard はGuardを生成する。
func NewGuard(rules Rules, required ...model.Role) *Guard {
	return &Guard{
		rules:    rules,
		required: slices.Clone(required),
		decision: Decision{State: StateChecking},
	}
}

// State は直近の判定状態を返す。未評価の場合はStateChecking。
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision.State
}

// Check は判定を返す。reevaluatedは今回の呼び出しで評価をやり直した場合にtrue。
func (g *Guard) Check(path string, view SessionView) (d Decision, reevaluated bool) {
	key := guardKey{path: path, version: view.Version}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.evaluated && g.key == key {
		return g.decision, false
	}
	g.decision = g.rules.Evaluate(path, view, g.required...)
	g.key = key
	g.evaluated = true
	return g.decision, true
}

// Guards はクライアントごとのビュー別Guardを保持する。
type Guards struct {
	rules Rules

	mu     sync.Mutex
	guards map[string]*Guard
}

// NewGuards はGuardsを生成する。
func NewGuards(rules Rules) *Guards {
	return &Guards{
		rules:  rules,
		guards: make(map[string]*Guard),
	}
}

// For はビュー名に対応するGuardを返す。初回は必要ロールを指定して生成する。
func (gs *Guards) For(view string, required ...model.Role) *Guard {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	g, ok := gs.guards[view]
	if !ok {
		g = NewGuard(gs.rules, required...)
		gs.guards[view] = g
	}
	return g
}
