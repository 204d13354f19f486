// Package catalog は求人・企業・記事・コーチの読み取り専用カタログを提供する。
// 初期データはバイナリに埋め込んだcatalog.yamlで、外部ファイルでの差し替えとホットリロードに対応する。
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/jobportal/internal/model"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Data はカタログファイルの内容。
type Data struct {
	Jobs      []model.JobListing       `yaml:"jobs"`
	Companies []model.Company          `yaml:"companies"`
	Articles  []model.Article          `yaml:"articles"`
	Coaches   []model.Coach            `yaml:"coaches"`
	Plans     []model.ResumeReviewPlan `yaml:"plans"`
}

// Parse はYAMLをパースし、IDの欠落や重複を検証する。
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) validate() error {
	check := func(kind string, ids []string) error {
		seen := make(map[string]struct{}, len(ids))
		for i, id := range ids {
			if id == "" {
				return fmt.Errorf("catalog %s[%d]: empty id", kind, i)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("catalog %s: duplicate id %q", kind, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	}

	jobIDs := make([]string, len(d.Jobs))
	for i, j := range d.Jobs {
		jobIDs[i] = j.ID
	}
	companyIDs := make([]string, len(d.Companies))
	for i, c := range d.Companies {
		companyIDs[i] = c.ID
	}
	articleIDs := make([]string, len(d.Articles))
	for i, a := range d.Articles {
		articleIDs[i] = a.ID
	}
	coachIDs := make([]string, len(d.Coaches))
	for i, c := range d.Coaches {
		coachIDs[i] = c.ID
	}
	planIDs := make([]string, len(d.Plans))
	for i, p := range d.Plans {
		planIDs[i] = p.ID
	}

	for _, e := range []struct {
		kind string
		ids  []string
	}{
		{"jobs", jobIDs},
		{"companies", companyIDs},
		{"articles", articleIDs},
		{"coaches", coachIDs},
		{"plans", planIDs},
	} {
		if err := check(e.kind, e.ids); err != nil {
			return err
		}
	}
	return nil
}

// Catalog はカタログデータを保持し、検索・参照を提供する。
// 読み取りは並行に行え、Replaceでデータを原子的に差し替える。
type Catalog struct {
	mu       sync.RWMutex
	data     *Data
	imported []model.Article
}

// New はデータからCatalogを生成する。
func New(d *Data) *Catalog {
	return &Catalog{data: d}
}

// LoadDefault は埋め込みカタログからCatalogを生成する。
func LoadDefault() (*Catalog, error) {
	d, err := Parse(embeddedCatalog)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// Load はpathのYAMLからCatalogを生成する。pathが空の場合は埋め込みカタログを使う。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	d, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// ReadFile はカタログファイルを読み込んでパースする。
func ReadFile(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(b)
}

// Replace はカタログデータを差し替える。取り込み済み記事は維持する。
func (c *Catalog) Replace(d *Data) {
	c.mu.Lock()
	c.data = d
	c.mu.Unlock()
}

// AddArticles は外部フィードから取り込んだ記事を追加する。
// 既存の記事とIDまたはSourceが重複するものは追加しない。追加した件数を返す。
func (c *Catalog) AddArticles(articles []model.Article) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, a := range c.data.Articles {
		ids[a.ID] = struct{}{}
	}
	for _, a := range c.imported {
		ids[a.ID] = struct{}{}
		if a.Source != "" {
			sources[a.Source] = struct{}{}
		}
	}

	added := 0
	for _, a := range articles {
		if a.ID == "" {
			continue
		}
		if _, dup := ids[a.ID]; dup {
			continue
		}
		if a.Source != "" {
			if _, dup := sources[a.Source]; dup {
				continue
			}
			sources[a.Source] = struct{}{}
		}
		ids[a.ID] = struct{}{}
		c.imported = append(c.imported, a)
		added++
	}
	return added
}

// containsFold はsubstrが空、またはいずれかの値に大文字小文字を区別せず含まれるかを判定する。
func containsFold(substr string, values ...string) bool {
	if substr == "" {
		return true
	}
	needle := strings.ToLower(substr)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
