package store

import (
	"cmp"
	"slices"

	"github.com/hitoshi/jobportal/internal/model"
)

// recentApplicationLimit はダッシュボードに表示する最近の応募数。
const recentApplicationLimit = 3

// JobLookup は求人IDからカタログの求人を引く関数。
type JobLookup func(id string) (model.JobListing, bool)

// SeekerStats は求職者ダッシュボードの集計。
type SeekerStats struct {
	TotalApplications  int                 `json:"totalApplications"`
	Interviews         int                 `json:"interviews"`
	Offers             int                 `json:"offers"`
	SavedJobs          int                 `json:"savedJobs"`
	RecentApplications []RecentApplication `json:"recentApplications"`
}

// RecentApplication は求人情報を結合した応募。求人がカタログにない場合Jobはnil。
type RecentApplication struct {
	model.Application
	Job *model.JobListing `json:"job,omitempty"`
}

// EmployerStats は採用企業ダッシュボードの集計。
type EmployerStats struct {
	ActiveJobs        int            `json:"activeJobs"`
	TotalApplications int            `json:"totalApplications"`
	Shortlisted       int            `json:"shortlisted"`
	ApplicantsPerJob  map[string]int `json:"applicantsPerJob"`
}

// SeekerStats は求職者ダッシュボードの集計を返す。最近の応募は日付の新しい順。
func (s State) SeekerStats(lookup JobLookup) SeekerStats {
	apps := s.JobSeeker.Applications
	stats := SeekerStats{
		TotalApplications:  len(apps),
		SavedJobs:          len(s.JobSeeker.SavedJobs),
		RecentApplications: []RecentApplication{},
	}
	for _, a := range apps {
		switch a.Status {
		case model.ApplicationStatusInterview:
			stats.Interviews++
		case model.ApplicationStatusOffer:
			stats.Offers++
		}
	}

	sorted := slices.Clone(apps)
	slices.SortStableFunc(sorted, func(a, b model.Application) int {
		return cmp.Compare(b.Date, a.Date)
	})
	for _, a := range sorted[:min(recentApplicationLimit, len(sorted))] {
		ra := RecentApplication{Application: a}
		if lookup != nil {
			if job, ok := lookup(a.JobID); ok {
				ra.Job = &job
			}
		}
		stats.RecentApplications = append(stats.RecentApplications, ra)
	}
	return stats
}

// EmployerStats は採用企業ダッシュボードの集計を返す。
func (s State) EmployerStats() EmployerStats {
	stats := EmployerStats{
		ActiveJobs:        len(s.Employer.PostedJobs),
		TotalApplications: len(s.Employer.Candidates),
		ApplicantsPerJob:  make(map[string]int, len(s.Employer.PostedJobs)),
	}
	for _, id := range s.Employer.PostedJobs {
		stats.ApplicantsPerJob[id] = 0
	}
	for _, c := range s.Employer.Candidates {
		if c.Status == model.CandidateStatusShortlisted {
			stats.Shortlisted++
		}
		stats.ApplicantsPerJob[c.JobID]++
	}
	return stats
}
