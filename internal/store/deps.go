package store

import (
	"context"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Delayer は疑似的な通信待ちを表す。ctxがキャンセルされた場合は待機を中断してctx.Err()を返す。
type Delayer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// RealDelayer は実時間で待機する。
type RealDelayer struct{}

// Wait はdだけ待機する。
func (RealDelayer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay は待機せずに即座に戻る。テスト用。
type NoDelay struct{}

// Wait はctxのエラーのみを返す。
func (NoDelay) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Clock は現在時刻を返す。
type Clock interface {
	Now() time.Time
}

// ClockFunc は関数をClockとして扱う。
type ClockFunc func() time.Time

// Now は関数の戻り値を返す。
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IDGenerator は応募IDや求人IDの接尾辞を生成する。
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc は関数をIDGeneratorとして扱う。
type IDGeneratorFunc func() string

// NewID は関数の戻り値を返す。
func (f IDGeneratorFunc) NewID() string { return f() }

// shortIDLength は生成するIDの文字数。
const shortIDLength = 7

// RandomIDGenerator はUUIDv4の乱数部から7文字の36進文字列を生成する。
// 一意性は保証しないため、呼び出し側でコレクション内の重複を確認する。
type RandomIDGenerator struct{}

// NewID は7文字の英数字IDを返す。
func (RandomIDGenerator) NewID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])
	s := strconv.FormatUint(n, 36)
	if len(s) < shortIDLength {
		s = strings.Repeat("0", shortIDLength-len(s)) + s
	}
	return s[len(s)-shortIDLength:]
}

// Backend は擬似的なリモート呼び出し。待機の後に呼ばれ、失敗した場合はアクションを中止する。
type Backend interface {
	Do(ctx context.Context, op string) error
}

// BackendFunc は関数をBackendとして扱う。
type BackendFunc func(ctx context.Context, op string) error

// Do は関数を呼び出す。
func (f BackendFunc) Do(ctx context.Context, op string) error { return f(ctx, op) }

// MockBackend は常に成功するBackend。
type MockBackend struct{}

// Do はctxのエラーのみを返す。
func (MockBackend) Do(ctx context.Context, _ string) error {
	return ctx.Err()
}

// Latency はアクション種別ごとの疑似待ち時間。
type Latency struct {
	Login    time.Duration // ログイン・サインアップ
	Fetch    time.Duration // 一覧取得・求人の保存
	Mutation time.Duration // その他の更新
}

// DefaultLatency は既定の待ち時間を返す。
func DefaultLatency() Latency {
	return Latency{
		Login:    time.Second,
		Fetch:    500 * time.Millisecond,
		Mutation: time.Second,
	}
}
