package model

// CandidateStatus は採用企業から見た応募者のステータス。
type CandidateStatus string

const (
	CandidateStatusNew         CandidateStatus = "new"
	CandidateStatusReviewing   CandidateStatus = "reviewing"
	CandidateStatusInterview   CandidateStatus = "interview"
	CandidateStatusShortlisted CandidateStatus = "shortlisted"
	CandidateStatusRejected    CandidateStatus = "rejected"
)

// Valid は定義済みのステータスかを判定する。
func (s CandidateStatus) Valid() bool {
	switch s {
	case CandidateStatusNew, CandidateStatusReviewing, CandidateStatusInterview,
		CandidateStatusShortlisted, CandidateStatusRejected:
		return true
	default:
		return false
	}
}

// Candidate は採用企業から見た応募1件を表す。
type Candidate struct {
	ID            string          `json:"id"`
	JobID         string          `json:"jobId"`
	CandidateName string          `json:"candidateName"`
	Status        CandidateStatus `json:"status"`
	Date          string          `json:"date"`
}

// EmployerProfile は採用企業のプロフィール。
type EmployerProfile struct {
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize"`
	Founded     string `json:"founded"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
}

// EmployerProfilePatch は採用企業プロフィールの部分更新。
type EmployerProfilePatch struct {
	CompanyName *string `json:"companyName,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	CompanySize *string `json:"companySize,omitempty"`
	Founded     *string `json:"founded,omitempty"`
	Website     *string `json:"website,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
}

// JobPosting は採用企業が投稿する求人の内容。
// 投稿後も生成されたIDをキーとして保持する。
type JobPosting struct {
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Experience       string   `json:"experience"`
	Location         string   `json:"location"`
	Salary           string   `json:"salary"`
	WorkType         string   `json:"workType"`
	ShortDescription string   `json:"shortDescription"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
	IsFeatured       bool     `json:"isFeatured"`
	IsRecent         bool     `json:"isRecent"`
	PostedDate       string   `json:"postedDate"`
}
