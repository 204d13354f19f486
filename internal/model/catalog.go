package model

// JobListing はカタログに掲載される求人。
type JobListing struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	Company            string   `json:"company" yaml:"company"`
	CompanyID          string   `json:"companyId" yaml:"company_id"`
	Location           string   `json:"location" yaml:"location"`
	Type               string   `json:"type" yaml:"type"`
	Experience         string   `json:"experience" yaml:"experience"`
	Salary             string   `json:"salary" yaml:"salary"`
	PostedDate         string   `json:"postedDate" yaml:"posted_date"`
	IsRemote           bool     `json:"isRemote" yaml:"is_remote"`
	IsFeatured         bool     `json:"isFeatured" yaml:"is_featured"`
	IsRecent           bool     `json:"isRecent" yaml:"is_recent"`
	ShortDescription   string   `json:"shortDescription" yaml:"short_description"`
	Description        string   `json:"description" yaml:"description"`
	Responsibilities   []string `json:"responsibilities" yaml:"responsibilities"`
	Requirements       []string `json:"requirements" yaml:"requirements"`
	Benefits           []string `json:"benefits" yaml:"benefits"`
	Industry           string   `json:"industry" yaml:"industry"`
	CompanyDescription string   `json:"companyDescription" yaml:"company_description"`
	CompanySize        string   `json:"companySize" yaml:"company_size"`
	Founded            string   `json:"founded" yaml:"founded"`
	Website            string   `json:"website" yaml:"website"`
}

// Company は企業ディレクトリの1社。
type Company struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Logo        string `json:"logo" yaml:"logo"`
	Industry    string `json:"industry" yaml:"industry"`
	Location    string `json:"location" yaml:"location"`
	Size        string `json:"size" yaml:"size"`
	Description string `json:"description" yaml:"description"`
	JobCount    int    `json:"jobCount" yaml:"job_count"`
	Featured    bool   `json:"featured" yaml:"featured"`
}

// ArticleBlock は記事本文の1ブロック。
// Typeは heading, paragraph, list, quote, resource のいずれか。
// listはItems、resourceはTitle/Description/URL/LinkTextを使う。
type ArticleBlock struct {
	Type        string   `json:"type" yaml:"type"`
	Text        string   `json:"text,omitempty" yaml:"text"`
	Items       []string `json:"items,omitempty" yaml:"items"`
	Title       string   `json:"title,omitempty" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description"`
	URL         string   `json:"url,omitempty" yaml:"url"`
	LinkText    string   `json:"linkText,omitempty" yaml:"link_text"`
}

// Article はキャリアリソースの記事。
// Sourceはフィードから取り込んだ記事の場合に元URLを保持する。
type Article struct {
	ID       string         `json:"id" yaml:"id"`
	Title    string         `json:"title" yaml:"title"`
	Category string         `json:"category" yaml:"category"`
	Author   string         `json:"author" yaml:"author"`
	Avatar   string         `json:"authorAvatar,omitempty" yaml:"author_avatar"`
	Date     string         `json:"date" yaml:"date"`
	ReadTime string         `json:"readTime" yaml:"read_time"`
	Excerpt  string         `json:"excerpt" yaml:"excerpt"`
	Likes    int            `json:"likes" yaml:"likes"`
	Content  []ArticleBlock `json:"content" yaml:"content"`
	Source   string         `json:"source,omitempty" yaml:"source"`
}

// Coach はキャリアコーチ。
type Coach struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Avatar       string   `json:"avatar" yaml:"avatar"`
	Title        string   `json:"title" yaml:"title"`
	Specialties  []string `json:"specialties" yaml:"specialties"`
	Experience   string   `json:"experience" yaml:"experience"`
	Rating       float64  `json:"rating" yaml:"rating"`
	ReviewCount  int      `json:"reviewCount" yaml:"review_count"`
	Bio          string   `json:"bio" yaml:"bio"`
	Availability []string `json:"availability" yaml:"availability"`
	Price        string   `json:"price" yaml:"price"`
}

// ResumeReviewPlan は履歴書添削サービスの料金プラン。
type ResumeReviewPlan struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       string   `json:"price" yaml:"price"`
	Turnaround  string   `json:"turnaround" yaml:"turnaround"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	Popular     bool     `json:"popular" yaml:"popular"`
}
