package model

// ApplicationStatus は求職者から見た応募ステータス。
type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusOffer     ApplicationStatus = "offer"
)

// Application は求職者の求人への応募を表す。
// IDはコレクション内で一意。
type Application struct {
	ID     string            `json:"id"`
	JobID  string            `json:"jobId"`
	Status ApplicationStatus `json:"status"`
	Date   string            `json:"date"` // YYYY-MM-DD
}

// Education は学歴1件を表す。
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Experience は職歴1件を表す。
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// JobSeekerProfile は求職者のプロフィール。
// ProfileCompletenessは呼び出し側が指定する値で、他フィールドから再計算しない。
type JobSeekerProfile struct {
	Skills              []string     `json:"skills"`
	Education           []Education  `json:"education"`
	Experience          []Experience `json:"experience"`
	Resume              *string      `json:"resume"`
	ProfileCompleteness int          `json:"profileCompleteness"`
}

// JobSeekerProfilePatch は求職者プロフィールの部分更新。
// nilフィールドは既存の値を維持する。
// ClearResumeがtrueの場合は履歴書参照をnullにする。
type JobSeekerProfilePatch struct {
	Skills              *[]string     `json:"skills,omitempty"`
	Education           *[]Education  `json:"education,omitempty"`
	Experience          *[]Experience `json:"experience,omitempty"`
	Resume              *string       `json:"resume,omitempty"`
	ClearResume         bool          `json:"clearResume,omitempty"`
	ProfileCompleteness *int          `json:"profileCompleteness,omitempty"`
}
