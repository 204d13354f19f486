package catalog

import (
	"github.com/hitoshi/jobportal/internal/model"
)

// ページング設定
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// 求人一覧のタブ
const (
	TabAll      = "all"
	TabRecent   = "recent"
	TabFeatured = "featured"
	TabRemote   = "remote"
)

// JobQuery は求人検索の条件。空の値は条件なしを表す。
type JobQuery struct {
	Search     string
	Type       string // full-time, part-time, contract など。完全一致
	Experience string // 経験年数の表記に含まれる文字列（例: "3-5"）
	RemoteOnly bool
	Tab        string
	Page       int
	Limit      int
}

// JobPage は求人検索の結果ページ。
type JobPage struct {
	Jobs  []model.JobListing `json:"jobs"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ValidJobTab はタブ名が定義済みかを判定する。空文字列はallとして扱う。
func ValidJobTab(tab string) bool {
	switch tab {
	case "", TabAll, TabRecent, TabFeatured, TabRemote:
		return true
	default:
		return false
	}
}

// Job はIDで求人を取得する。
func (c *Catalog) Job(id string) (model.JobListing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, j := range c.data.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return model.JobListing{}, false
}

// SearchJobs は条件に合う求人をカタログ順にページングして返す。
// 検索語はタイトル、企業名、勤務地、概要に対して大文字小文字を区別せず部分一致させる。
func (c *Catalog) SearchJobs(q JobQuery) (JobPage, error) {
	if !ValidJobTab(q.Tab) {
		return JobPage{}, model.NewInvalidRequestError("tab must be one of all, recent, featured, remote")
	}

	page, limit := normalizePage(q.Page, q.Limit)

	c.mu.RLock()
	var matched []model.JobListing
	for _, j := range c.data.Jobs {
		if matchJob(j, q) {
			matched = append(matched, j)
		}
	}
	c.mu.RUnlock()

	result := JobPage{
		Jobs:  []model.JobListing{},
		Total: len(matched),
		Page:  page,
		Limit: limit,
	}
	start := (page - 1) * limit
	if start < len(matched) {
		end := min(start+limit, len(matched))
		result.Jobs = matched[start:end]
	}
	return result, nil
}

func matchJob(j model.JobListing, q JobQuery) bool {
	if !containsFold(q.Search, j.Title, j.Company, j.Location, j.ShortDescription) {
		return false
	}
	if q.Type != "" && q.Type != "all" && j.Type != q.Type {
		return false
	}
	if q.Experience != "" && q.Experience != "all" && !containsFold(q.Experience, j.Experience) {
		return false
	}
	if q.RemoteOnly && !j.IsRemote {
		return false
	}
	switch q.Tab {
	case TabRecent:
		return j.IsRecent
	case TabFeatured:
		return j.IsFeatured
	case TabRemote:
		return j.IsRemote
	}
	return true
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// SimilarJobs は同じ業界の他の求人を最大n件返す。
// 指定IDの求人が存在しない場合はfalseを返す。
func (c *Catalog) SimilarJobs(id string, n int) ([]model.JobListing, bool) {
	job, ok := c.Job(id)
	if !ok {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	similar := []model.JobListing{}
	for _, j := range c.data.Jobs {
		if len(similar) >= n {
			break
		}
		if j.ID != job.ID && j.Industry == job.Industry {
			similar = append(similar, j)
		}
	}
	return similar, true
}
