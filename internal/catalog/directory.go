package catalog

import (
	"github.com/hitoshi/jobportal/internal/model"
)

// hiringThreshold を超える求人数の企業を「採用中」タブに表示する。
const hiringThreshold = 5

// CompanyQuery は企業ディレクトリの検索条件。
type CompanyQuery struct {
	Search   string
	Industry string
	Tab      string // all, featured, hiring
}

// Companies は条件に合う企業を返す。
func (c *Catalog) Companies(q CompanyQuery) ([]model.Company, error) {
	switch q.Tab {
	case "", TabAll, TabFeatured, "hiring":
	default:
		return nil, model.NewInvalidRequestError("tab must be one of all, featured, hiring")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []model.Company{}
	for _, co := range c.data.Companies {
		if !containsFold(q.Search, co.Name, co.Description, co.Location) {
			continue
		}
		if q.Industry != "" && q.Industry != "all" && co.Industry != q.Industry {
			continue
		}
		if q.Tab == TabFeatured && !co.Featured {
			continue
		}
		if q.Tab == "hiring" && co.JobCount <= hiringThreshold {
			continue
		}
		out = append(out, co)
	}
	return out, nil
}

// Company はIDで企業を取得する。
func (c *Catalog) Company(id string) (model.Company, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, co := range c.data.Companies {
		if co.ID == id {
			return co, true
		}
	}
	return model.Company{}, false
}

// CompanyJobsQuery は企業別求人一覧の絞り込み条件。
type CompanyJobsQuery struct {
	Search string // タイトルの部分一致
	Type   string
}

// CompanyJobs は企業に紐づく求人を返す。
// 求人のCompanyIDが一致するもの、またはCompanyIDが未設定で企業名が一致するものを対象とする。
func (c *Catalog) CompanyJobs(companyID string, q CompanyJobsQuery) ([]model.JobListing, bool) {
	co, ok := c.Company(companyID)
	if !ok {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []model.JobListing{}
	for _, j := range c.data.Jobs {
		owned := j.CompanyID == co.ID || (j.CompanyID == "" && j.Company == co.Name)
		if !owned {
			continue
		}
		if !containsFold(q.Search, j.Title) {
			continue
		}
		if q.Type != "" && q.Type != "all" && j.Type != q.Type {
			continue
		}
		out = append(out, j)
	}
	return out, true
}

// ArticleQuery は記事検索の条件。
type ArticleQuery struct {
	Search   string // タイトルと抜粋の部分一致
	Category string
}

// Articles は条件に合う記事を返す。カタログの記事の後に取り込み記事が続く。
func (c *Catalog) Articles(q ArticleQuery) []model.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []model.Article{}
	for _, list := range [][]model.Article{c.data.Articles, c.imported} {
		for _, a := range list {
			if !containsFold(q.Search, a.Title, a.Excerpt) {
				continue
			}
			if q.Category != "" && q.Category != "all" && a.Category != q.Category {
				continue
			}
			out = append(out, a)
		}
	}
	return out
}

// Article はIDで記事を取得する。
func (c *Catalog) Article(id string) (model.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, list := range [][]model.Article{c.data.Articles, c.imported} {
		for _, a := range list {
			if a.ID == id {
				return a, true
			}
		}
	}
	return model.Article{}, false
}

// Coaches は全コーチを返す。
func (c *Catalog) Coaches() []model.Coach {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Coach, len(c.data.Coaches))
	copy(out, c.data.Coaches)
	return out
}

// Coach はIDでコーチを取得する。
func (c *Catalog) Coach(id string) (model.Coach, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, co := range c.data.Coaches {
		if co.ID == id {
			return co, true
		}
	}
	return model.Coach{}, false
}

// ResumeReviewPlans は履歴書添削プランを掲載順に返す。
func (c *Catalog) ResumeReviewPlans() []model.ResumeReviewPlan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.ResumeReviewPlan, len(c.data.Plans))
	copy(out, c.data.Plans)
	return out
}

func (c *Catalog) ResumeReviewPlan(id string) (model.ResumeReviewPlan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.data.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.ResumeReviewPlan{}, false
}
