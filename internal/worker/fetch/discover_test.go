package fetch

import "testing"

func TestIsHTMLPage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        bool
	}{
		{"rss content type", "application/rss+xml", "", false},
		{"atom content type", "application/atom+xml; charset=utf-8", "", false},
		{"xml with rss body", "text/xml", `<?xml version="1.0"?><rss version="2.0"></rss>`, false},
		{"xml with atom body", "application/xml", `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`, false},
		{"xml without feed root", "application/xml", `<urlset></urlset>`, true},
		{"html page", "text/html; charset=utf-8", `<html><head></head></html>`, true},
		{"html mislabelled rss", "text/html", `<rss version="2.0"></rss>`, false},
		{"plain text", "text/plain", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHTMLPage(tt.contentType, []byte(tt.body)); got != tt.want {
				t.Errorf("isHTMLPage(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestParseFeedLinks(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="/style.css">
  <link rel="alternate" type="application/rss+xml" title="RSS" href="/feed.xml">
  <link rel="Alternate" type="application/atom+xml" title="Atom" href="https://cdn.example.net/atom.xml">
  <link rel="alternate" type="text/html" href="/en">
</head>
<body>
  <link rel="alternate" type="application/rss+xml" href="/ignored.xml">
</body>
</html>`

	links := parseFeedLinks([]byte(page), "https://careers.example.com/blog/")
	if len(links) != 2 {
		t.Fatalf("links = %+v, want 2", links)
	}
	if links[0].URL != "https://careers.example.com/feed.xml" || links[0].Atom || links[0].Title != "RSS" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].URL != "https://cdn.example.net/atom.xml" || !links[1].Atom {
		t.Errorf("links[1] = %+v", links[1])
	}
}

func TestParseFeedLinks_InvalidBaseURL(t *testing.T) {
	if links := parseFeedLinks([]byte(`<head><link rel="alternate" type="application/rss+xml" href="/f"></head>`), "://bad"); links != nil {
		t.Errorf("links = %+v, want nil", links)
	}
}

func TestSelectFeedLink(t *testing.T) {
	page := "https://careers.example.com/blog"

	tests := []struct {
		name  string
		links []feedLink
		want  string
	}{
		{
			name: "same host wins over atom",
			links: []feedLink{
				{URL: "https://cdn.example.net/atom.xml", Atom: true},
				{URL: "https://careers.example.com/feed.xml"},
			},
			want: "https://careers.example.com/feed.xml",
		},
		{
			name: "atom preferred on same host",
			links: []feedLink{
				{URL: "https://careers.example.com/rss.xml"},
				{URL: "https://careers.example.com/atom.xml", Atom: true},
			},
			want: "https://careers.example.com/atom.xml",
		},
		{
			name: "first wins on tie",
			links: []feedLink{
				{URL: "https://careers.example.com/a.xml"},
				{URL: "https://careers.example.com/b.xml"},
			},
			want: "https://careers.example.com/a.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := selectFeedLink(tt.links, page)
			if !ok || got.URL != tt.want {
				t.Errorf("selectFeedLink() = %+v, %v; want %q", got, ok, tt.want)
			}
		})
	}

	if _, ok := selectFeedLink(nil, page); ok {
		t.Error("selectFeedLink(nil) should report false")
	}
}
