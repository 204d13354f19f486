package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/jobportal/internal/model"
)

// Sanitizer は利用者や外部フィード由来のテキストを無害化する。
// 求人投稿の自由記述にはText、取り込み記事の本文にはParagraphsを使う。
// 内部のbluemondayポリシーはスレッドセーフ。
type Sanitizer struct {
	strict  *bluemonday.Policy
	article *bluemonday.Policy
}

// NewSanitizer はSanitizerを生成する。
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "h2", "h3",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemeWithCustomPolicy("https", func(*url.URL) bool { return true })

	return &Sanitizer{
		strict:  bluemonday.StrictPolicy(),
		article: p,
	}
}

// Text はHTMLタグをすべて除去したプレーンテキストを返す。
// 前後の空白は取り除く。
func (s *Sanitizer) Text(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(in)))
}

// Texts はスライスの各要素にTextを適用する。空になった要素は除く。
func (s *Sanitizer) Texts(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := s.Text(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Paragraphs は記事HTMLを段落ごとのプレーンテキストに分解する。
// 見出し（h2, h3）は"heading"、それ以外は"paragraph"として返す。
// ブロック要素が見つからない場合は全体を1段落として扱う。
func (s *Sanitizer) Paragraphs(rawHTML string) []model.ArticleBlock {
	cleaned := s.article.Sanitize(rawHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return s.single(rawHTML)
	}

	var blocks []model.ArticleBlock
	doc.Find("h2, h3, p, li, blockquote, pre").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("p").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		kind := "paragraph"
		if goquery.NodeName(sel) == "h2" || goquery.NodeName(sel) == "h3" {
			kind = "heading"
		}
		blocks = append(blocks, model.ArticleBlock{Type: kind, Text: text})
	})
	if len(blocks) == 0 {
		return s.single(rawHTML)
	}
	return blocks
}

func (s *Sanitizer) single(rawHTML string) []model.ArticleBlock {
	if t := s.Text(rawHTML); t != "" {
		return []model.ArticleBlock{{Type: "paragraph", Text: t}}
	}
	return nil
}
