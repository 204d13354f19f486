package middleware

import (
	"context"
	"testing"

	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/session"
	"github.com/hitoshi/jobportal/internal/store"
)

// newTestRegistry は待ち時間なしのストアを生成するRegistryを返す。
func newTestRegistry(t *testing.T) *session.Registry {
	t.Helper()
	r := session.NewRegistry(session.RegistryConfig{
		Rules: gate.DefaultRules(),
		NewStore: func(id string) *store.Store {
			return store.New(store.Options{ClientID: id, Delayer: store.NoDelay{}})
		},
	})
	t.Cleanup(r.Stop)
	return r
}

// newTestClient はクライアントを生成する。emailが空でなければデモログインする。
func newTestClient(t *testing.T, id, email string) *session.Client {
	t.Helper()
	c, _ := newTestRegistry(t).GetOrCreate(context.Background(), id)
	if email != "" {
		if _, err := c.Store.Login(context.Background(), email, "password"); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	return c
}
