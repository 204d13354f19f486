package store

import "github.com/hitoshi/jobportal/internal/model"

// デモログイン時の表示名とアバター
const (
	employerDisplayName = "Acme Corporation"
	seekerDisplayName   = "John Doe"

	employerAvatarURL = "https://images.unsplash.com/photo-1611944212129-29977ae1398c?w=96&h=96&q=80&crop=entropy&cs=tinysrgb&fit=crop"
	seekerAvatarURL   = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=96&h=96&q=80&crop=entropy&cs=tinysrgb&fit=crop"
)

// モックの応募一覧。FetchApplicationsはこの内容で丸ごと置き換える。
func mockApplications() []model.Application {
	return []model.Application{
		{ID: "app1", JobID: "job1", Status: model.ApplicationStatusApplied, Date: "2023-04-10"},
		{ID: "app2", JobID: "job2", Status: model.ApplicationStatusInterview, Date: "2023-04-05"},
		{ID: "app3", JobID: "job3", Status: model.ApplicationStatusRejected, Date: "2023-03-28"},
		{ID: "app4", JobID: "job4", Status: model.ApplicationStatusOffer, Date: "2023-03-15"},
	}
}

func mockSavedJobs() []string {
	return []string{"job5", "job6", "job7"}
}

func mockPostedJobs() []string {
	return []string{"job1", "job2", "job3", "job4"}
}

func mockCandidates() []model.Candidate {
	return []model.Candidate{
		{ID: "cand1", JobID: "job1", CandidateName: "Alice Johnson", Status: model.CandidateStatusNew, Date: "2023-04-10"},
		{ID: "cand2", JobID: "job1", CandidateName: "Bob Smith", Status: model.CandidateStatusReviewing, Date: "2023-04-09"},
		{ID: "cand3", JobID: "job2", CandidateName: "Charlie Brown", Status: model.CandidateStatusInterview, Date: "2023-04-08"},
		{ID: "cand4", JobID: "job2", CandidateName: "Diana Prince", Status: model.CandidateStatusRejected, Date: "2023-04-07"},
		{ID: "cand5", JobID: "job3", CandidateName: "Edward Norton", Status: model.CandidateStatusShortlisted, Date: "2023-04-06"},
	}
}

func seedJobSeekerProfile() model.JobSeekerProfile {
	resume := "John_Doe_Resume.pdf"
	return model.JobSeekerProfile{
		Skills: []string{
			"UI/UX Design", "Figma", "Adobe XD", "Sketch",
			"Prototyping", "User Research", "Wireframing", "HTML/CSS",
		},
		Education: []model.Education{
			{Degree: "Bachelor of Design", Institution: "Design University", Year: "2018"},
		},
		Experience: []model.Experience{
			{
				Title:       "UI/UX Designer",
				Company:     "DesignCo",
				Duration:    "2018-2021",
				Description: "Designed user interfaces for web and mobile applications.",
			},
			{
				Title:       "Senior UI/UX Designer",
				Company:     "TechCorp",
				Duration:    "2021-Present",
				Description: "Lead designer for enterprise software products.",
			},
		},
		Resume:              &resume,
		ProfileCompleteness: 85,
	}
}

func seedEmployerProfile() model.EmployerProfile {
	return model.EmployerProfile{
		CompanyName: "Acme Corporation",
		Industry:    "Technology",
		CompanySize: "501-1000 employees",
		Founded:     "2010",
		Website:     "www.acmecorp.com",
		Location:    "San Francisco, CA",
		Description: "Acme Corporation is a leading technology company specializing in innovative software solutions for businesses of all sizes. With a focus on user experience and cutting-edge technology, we help our clients transform their operations and achieve their goals.",
	}
}
