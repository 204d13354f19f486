package fetch

import (
	"fmt"
	"net/http"
	"time"
)

// FetchResult はHTTPステータスコードに基づくフェッチ結果の分類。
type FetchResult int

const (
	// FetchResultOK はフェッチ成功（200）。
	FetchResultOK FetchResult = iota
	// FetchResultNotModified はコンテンツ未変更（304）。
	FetchResultNotModified
	// FetchResultStop はフェッチ停止が必要なステータス（404/410/401/403）。
	FetchResultStop
	// FetchResultBackoff はバックオフが必要なステータス（429/5xx）。
	FetchResultBackoff
	// FetchResultUnknown は未知のステータスコード。
	FetchResultUnknown
)

const (
	// initialBackoff は指数バックオフの初回遅延（30分）。
	initialBackoff = 30 * time.Minute
	// maxBackoff は指数バックオフの最大遅延（12時間）。
	maxBackoff = 12 * time.Hour
	// parseFailureThreshold はパース失敗によるフェッチ停止の閾値。
	parseFailureThreshold = 10
)

// Source は取り込み対象のリソースフィード1件の取得状態。
type Source struct {
	URL               string
	ETag              string
	LastModified      string
	ConsecutiveErrors int
	NextFetchAt       time.Time
	Stopped           bool
	ErrorMessage      string
}

// NewSources はURL一覧から取得状態を初期化する。空のURLは除く。
func NewSources(urls []string) []*Source {
	sources := make([]*Source, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		sources = append(sources, &Source{URL: u})
	}
	return sources
}

// Due は停止しておらず、次回取得時刻を過ぎているかを判定する。
func (s *Source) Due(now time.Time) bool {
	return !s.Stopped && !now.Before(s.NextFetchAt)
}

// ClassifyHTTPStatus はHTTPステータスコードをフェッチ結果に分類する。
func ClassifyHTTPStatus(statusCode int) FetchResult {
	switch {
	case statusCode == http.StatusOK:
		return FetchResultOK
	case statusCode == http.StatusNotModified:
		return FetchResultNotModified
	case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
		return FetchResultStop
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return FetchResultStop
	case statusCode == http.StatusTooManyRequests:
		return FetchResultBackoff
	case statusCode >= 500:
		return FetchResultBackoff
	default:
		return FetchResultUnknown
	}
}

// CalculateBackoff は連続エラー回数に基づいて指数バックオフ遅延を計算する。
// 初回30分、2倍ずつ増加、最大12時間。
func CalculateBackoff(consecutiveErrors int) time.Duration {
	delay := initialBackoff
	for range consecutiveErrors {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// ApplyStop はフィードの取得を停止する。
func ApplyStop(src *Source, reason string) {
	src.Stopped = true
	src.ErrorMessage = reason
}

// ApplyBackoff は連続エラー回数を増やし、指数バックオフで次回取得時刻を設定する。
func ApplyBackoff(src *Source, now time.Time, reason string) {
	src.ConsecutiveErrors++
	src.ErrorMessage = reason
	src.NextFetchAt = now.Add(CalculateBackoff(src.ConsecutiveErrors - 1))
}

// ApplySuccess はエラー状態をリセットし、interval後を次回取得時刻にする。
func ApplySuccess(src *Source, now time.Time, interval time.Duration) {
	src.ConsecutiveErrors = 0
	src.ErrorMessage = ""
	src.NextFetchAt = now.Add(interval)
}

// ApplyParseFailure はパース失敗を記録する。閾値に達した場合は取得を停止する。
func ApplyParseFailure(src *Source, now time.Time, interval time.Duration, reason string) {
	src.ConsecutiveErrors++
	src.ErrorMessage = fmt.Sprintf("パース失敗 (%d回連続): %s", src.ConsecutiveErrors, reason)
	src.NextFetchAt = now.Add(interval)

	if src.ConsecutiveErrors >= parseFailureThreshold {
		ApplyStop(src, fmt.Sprintf("パース失敗が%d回連続したため取得を停止しました: %s", src.ConsecutiveErrors, reason))
	}
}
