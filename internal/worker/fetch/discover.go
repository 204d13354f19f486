package fetch

import (
	"bytes"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// feedLink はHTMLのheadで宣言されたフィードへのリンク。
type feedLink struct {
	URL   string
	Atom  bool
	Title string
}

var feedMediaTypes = map[string]bool{
	"application/rss+xml":  true,
	"application/atom+xml": true,
}

var xmlMediaTypes = map[string]bool{
	"text/xml":        true,
	"application/xml": true,
}

// mediaTypeOf はContent-Typeからパラメータを除いたメディアタイプを返す。
func mediaTypeOf(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.ToLower(mt)
}

// isHTMLPage はレスポンスがフィードではなくHTMLページかを判定する。
// Content-Typeが汎用XMLまたは未指定の場合はボディの先頭で判定する。
func isHTMLPage(contentType string, body []byte) bool {
	mt := mediaTypeOf(contentType)
	if feedMediaTypes[mt] {
		return false
	}
	if xmlMediaTypes[mt] {
		return !looksLikeFeed(body)
	}
	if strings.Contains(mt, "html") {
		return !looksLikeFeed(body)
	}
	return false
}

// looksLikeFeed はボディの先頭4KBにRSS/Atomのルート要素があるかを判定する。
func looksLikeFeed(body []byte) bool {
	n := min(len(body), 4096)
	prefix := strings.ToLower(string(body[:n]))

	if strings.Contains(prefix, "<rss") || strings.Contains(prefix, "<rdf:rdf") {
		return true
	}
	return strings.Contains(prefix, "<feed") && strings.Contains(prefix, "http://www.w3.org/2005/atom")
}

// parseFeedLinks はHTMLのheadから rel="alternate" のRSS/Atomリンクを抽出する。
// 相対URLはpageURLを基準に解決する。
func parseFeedLinks(body []byte, pageURL string) []feedLink {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []feedLink
	z := html.NewTokenizer(bytes.NewReader(body))
	inHead := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return links

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			switch string(tn) {
			case "head":
				inHead = true
				continue
			case "body":
				return links
			case "link":
			default:
				continue
			}
			if !inHead || !hasAttr {
				continue
			}

			var rel, typ, href, title string
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch strings.ToLower(string(key)) {
				case "rel":
					rel = strings.ToLower(string(val))
				case "type":
					typ = strings.ToLower(string(val))
				case "href":
					href = string(val)
				case "title":
					title = string(val)
				}
			}

			if rel != "alternate" || href == "" || !feedMediaTypes[typ] {
				continue
			}
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			links = append(links, feedLink{
				URL:   base.ResolveReference(ref).String(),
				Atom:  typ == "application/atom+xml",
				Title: title,
			})

		case html.EndTagToken:
			if tn, _ := z.TagName(); string(tn) == "head" {
				return links
			}
		}
	}
}

// selectFeedLink はページと同一ホストのリンクを優先し、同点ならAtom、次に先頭を選ぶ。
func selectFeedLink(links []feedLink, pageURL string) (feedLink, bool) {
	if len(links) == 0 {
		return feedLink{}, false
	}

	pageHost := hostOf(pageURL)
	best, bestScore := 0, -1
	for i, l := range links {
		score := 0
		if hostOf(l.URL) == pageHost {
			score += 100
		}
		if l.Atom {
			score += 10
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return links[best], true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
