// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/hitoshi/jobportal/internal/model"
)

// ErrResponseTooLarge はレスポンスボディが上限を超えた場合に返る。
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// defaultBlockedCIDRs は外部フィード取得で拒否するネットワーク範囲。
var defaultBlockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16", // クラウドメタデータIPを含む
	"0.0.0.0/8",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
}

// FeedURLGuard は外部リソースフィードのURL検証と安全なHTTPクライアントの生成を行う。
// DNS解決後のIP検証はsafeurlのDialerが担い、Validateは設定値の静的チェックのみ行う。
type FeedURLGuard struct {
	blocked      []*net.IPNet
	blockedHosts []string
	ports        []int
}

// NewFeedURLGuard はFeedURLGuardを生成する。
func NewFeedURLGuard() *FeedURLGuard {
	g := &FeedURLGuard{
		blockedHosts: []string{"localhost"},
		ports:        []int{80, 443},
	}
	for _, cidr := range defaultBlockedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR %s: %v", cidr, err))
		}
		g.blocked = append(g.blocked, network)
	}
	return g
}

// Validate はフィードURLを検証する。
// 形式不正はINVALID_URL、内部ネットワーク宛てはSSRF_BLOCKEDのAPIErrorを返す。
func (g *FeedURLGuard) Validate(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return model.NewInvalidURLError("URLが空です")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.NewInvalidURLError(err.Error())
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return model.NewInvalidURLError(fmt.Sprintf("許可されていないスキーム: %q", parsed.Scheme))
	}

	host := parsed.Hostname()
	if host == "" {
		return model.NewInvalidURLError("ホストがありません")
	}

	if ip := net.ParseIP(host); ip != nil {
		for _, network := range g.blocked {
			if network.Contains(ip) {
				return model.NewSSRFBlockedError()
			}
		}
		return nil
	}

	for _, h := range g.blockedHosts {
		if strings.EqualFold(host, h) {
			return model.NewSSRFBlockedError()
		}
	}
	return nil
}

// NewClient はSSRF防止機能付きのHTTPクライアントを生成する。
// maxResponseSizeが正の場合、ボディの読み取りがそのサイズを超えるとErrResponseTooLargeを返す。
func (g *FeedURLGuard) NewClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(g.ports...).
		Build()

	client := safeurl.Client(config).Client
	if maxResponseSize > 0 {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		client.Transport = newLimitTransport(base, maxResponseSize)
	}
	return client
}

// limitTransport はレスポンスボディの読み取り量を制限するRoundTripper。
type limitTransport struct {
	base http.RoundTripper
	max  int64
}

func newLimitTransport(base http.RoundTripper, max int64) *limitTransport {
	return &limitTransport{base: base, max: max}
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &limitedBody{rc: resp.Body, remaining: t.max}
	return resp, nil
}

type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		var probe [1]byte
		n, err := b.rc.Read(probe[:])
		if n > 0 {
			return 0, ErrResponseTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.rc.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *limitedBody) Close() error {
	return b.rc.Close()
}
