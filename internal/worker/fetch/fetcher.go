// Package fetch は外部のキャリア記事フィードを取得し、リソースカタログに取り込む。
// スケジューラ、フェッチャー、リトライ/バックオフ戦略を含む。
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/security"
)

const (
	// importedCategory はカテゴリを持たない取り込み記事のカテゴリ。
	importedCategory = "Career Advice"
	// excerptMaxRunes は抜粋の最大文字数。
	excerptMaxRunes = 200
	// wordsPerMinute は読了時間の目安に使う1分あたりの単語数。
	wordsPerMinute = 200
)

// ArticleImporter は取り込んだ記事を追加するインターフェース。
// catalog.Catalogが実装する。
type ArticleImporter interface {
	AddArticles(articles []model.Article) int
}

// URLGuard はSSRF検証のインターフェース。security.FeedURLGuardが実装する。
type URLGuard interface {
	Validate(rawURL string) error
	NewClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// FetcherConfig はFetcherの設定を保持する。
type FetcherConfig struct {
	Timeout     time.Duration
	MaxBodySize int64
	Interval    time.Duration // 成功時の次回取得までの間隔
}

// Fetcher は個別フィードのHTTPフェッチとパースを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証、
// gofeedによるパース、本文の無害化、カタログへの追加を実行する。
type Fetcher struct {
	importer  ArticleImporter
	guard     URLGuard
	sanitizer *security.Sanitizer
	logger    *slog.Logger
	metrics   metrics.MetricsCollector
	config    FetcherConfig
	now       func() time.Time
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(
	importer ArticleImporter,
	guard URLGuard,
	logger *slog.Logger,
	mc metrics.MetricsCollector,
	config FetcherConfig,
) *Fetcher {
	if mc == nil {
		mc = metrics.Nop{}
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &Fetcher{
		importer:  importer,
		guard:     guard,
		sanitizer: security.NewSanitizer(),
		logger:    logger,
		metrics:   mc,
		config:    config,
		now:       time.Now,
	}
}

// Fetch はフィードを取得し、結果に応じて取得状態を更新する。
// 追加した記事数を返す。HTTPステータスやパースの失敗は状態に記録しエラーにしない。
// URLがHTMLページの場合はheadで宣言されたフィードを検出し、以後はそのURLを取得する。
func (f *Fetcher) Fetch(ctx context.Context, src *Source) (int, error) {
	return f.fetch(ctx, src, true)
}

func (f *Fetcher) fetch(ctx context.Context, src *Source, discover bool) (int, error) {
	start := f.now()

	// SSRF検証
	if err := f.guard.Validate(src.URL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("feed_url", src.URL),
			slog.String("error", err.Error()),
		)
		ApplyStop(src, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		f.metrics.RecordImportFailure("ssrf")
		return 0, fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	client := f.guard.NewClient(f.config.Timeout, f.config.MaxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "JobPortal/1.0 Resource Importer")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, text/html, */*")
	if src.ETag != "" {
		req.Header.Set("If-None-Match", src.ETag)
	}
	if src.LastModified != "" {
		req.Header.Set("If-Modified-Since", src.LastModified)
	}

	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("feed_url", src.URL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(src, f.now(), fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		f.metrics.RecordImportFailure("request")
		return 0, fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	switch ClassifyHTTPStatus(resp.StatusCode) {
	case FetchResultOK:
	case FetchResultNotModified:
		f.logger.Info("フィードは未変更です（304）",
			slog.String("feed_url", src.URL),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplySuccess(src, f.now(), f.config.Interval)
		return 0, nil
	case FetchResultStop:
		reason := fmt.Sprintf("HTTPステータス %d により取得を停止しました", resp.StatusCode)
		f.logger.Warn("フィードの取得を停止します",
			slog.String("feed_url", src.URL),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyStop(src, reason)
		f.metrics.RecordImportFailure("status")
		return 0, nil
	default:
		f.logger.Warn("フィードの取得にバックオフを適用します",
			slog.String("feed_url", src.URL),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("consecutive_errors", src.ConsecutiveErrors+1),
		)
		ApplyBackoff(src, f.now(), fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
		f.metrics.RecordImportFailure("status")
		return 0, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		reason := "read"
		if errors.Is(err, security.ErrResponseTooLarge) {
			reason = "too_large"
		}
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("feed_url", src.URL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(src, f.now(), fmt.Sprintf("レスポンス読み取り失敗: %s", err.Error()))
		f.metrics.RecordImportFailure(reason)
		return 0, nil
	}

	if isHTMLPage(resp.Header.Get("Content-Type"), body) {
		link, ok := selectFeedLink(parseFeedLinks(body, src.URL), src.URL)
		if discover && ok && link.URL != src.URL {
			f.logger.Info("HTMLページからフィードを検出しました",
				slog.String("page_url", src.URL),
				slog.String("feed_url", link.URL),
			)
			src.URL = link.URL
			src.ETag = ""
			src.LastModified = ""
			return f.fetch(ctx, src, false)
		}
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		f.logger.Error("フィードのパースに失敗しました",
			slog.String("feed_url", src.URL),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(src, f.now(), f.config.Interval, err.Error())
		f.metrics.RecordImportFailure("parse")
		return 0, nil
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		src.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		src.LastModified = lastMod
	}

	articles := f.convertItems(parsed)
	added := f.importer.AddArticles(articles)
	f.metrics.RecordArticlesImported(added)
	ApplySuccess(src, f.now(), f.config.Interval)

	f.logger.Info("フィードの取り込みが完了しました",
		slog.String("feed_url", src.URL),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("articles_added", added),
		slog.Int("articles_total", len(articles)),
		slog.Float64("duration_ms", float64(f.now().Sub(start).Milliseconds())),
	)
	return added, nil
}

// convertItems はgofeedの記事をカタログの記事に変換する。
// リンクもGUIDもない記事は重複判定ができないため除く。
func (f *Fetcher) convertItems(feed *gofeed.Feed) []model.Article {
	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		source := item.Link
		if source == "" && (strings.HasPrefix(item.GUID, "http://") || strings.HasPrefix(item.GUID, "https://")) {
			source = item.GUID
		}
		key := source
		if key == "" {
			key = item.GUID
		}
		if key == "" {
			continue
		}

		title := f.sanitizer.Text(item.Title)
		if title == "" {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		blocks := f.sanitizer.Paragraphs(content)

		excerpt := f.sanitizer.Text(item.Description)
		if excerpt == "" && len(blocks) > 0 {
			excerpt = blocks[0].Text
		}

		articles = append(articles, model.Article{
			ID:       "ext-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(),
			Title:    title,
			Category: itemCategory(item),
			Author:   itemAuthor(item, feed),
			Date:     itemDate(item),
			ReadTime: readTime(blocks),
			Excerpt:  truncateRunes(excerpt, excerptMaxRunes),
			Content:  blocks,
			Source:   source,
		})
	}
	return articles
}

func itemCategory(item *gofeed.Item) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return importedCategory
}

func itemAuthor(item *gofeed.Item, feed *gofeed.Feed) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	return feed.Title
}

// itemDate は公開日時（なければ更新日時）をYYYY-MM-DD形式で返す。
func itemDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.DateOnly)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.DateOnly)
	default:
		return ""
	}
}

// readTime は本文の単語数から読了時間の目安を返す。最短1分。
func readTime(blocks []model.ArticleBlock) string {
	words := 0
	for _, b := range blocks {
		words += len(strings.Fields(b.Text))
	}
	return fmt.Sprintf("%d min read", max(1, (words+wordsPerMinute-1)/wordsPerMinute))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
