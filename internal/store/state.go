package store

import (
	"slices"

	"github.com/hitoshi/jobportal/internal/model"
)

// State はクライアント1件分のアプリケーション状態。
// IsLoadingとVersionは永続化しない。
type State struct {
	User            *model.User    `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	IsLoading       bool           `json:"-"`
	Version         uint64         `json:"-"`
	JobSeeker       JobSeekerState `json:"jobSeeker"`
	Employer        EmployerState  `json:"employer"`
	Settings        model.Settings `json:"settings"`
}

// JobSeekerState は求職者向けのデータ。
type JobSeekerState struct {
	Applications []model.Application    `json:"applications"`
	SavedJobs    []string               `json:"savedJobs"`
	Profile      model.JobSeekerProfile `json:"profile"`
}

// EmployerState は採用企業向けのデータ。
// PostedJobDetailsは投稿時の内容をIDで保持する。
type EmployerState struct {
	PostedJobs       []string                    `json:"postedJobs"`
	PostedJobDetails map[string]model.JobPosting `json:"postedJobDetails"`
	Candidates       []model.Candidate           `json:"candidates"`
	Profile          model.EmployerProfile       `json:"profile"`
}

// initialState はコンテナ生成時の状態を返す。
func initialState() State {
	return State{
		JobSeeker: JobSeekerState{
			Applications: []model.Application{},
			SavedJobs:    []string{},
			Profile:      seedJobSeekerProfile(),
		},
		Employer: EmployerState{
			PostedJobs:       []string{},
			PostedJobDetails: map[string]model.JobPosting{},
			Candidates:       []model.Candidate{},
			Profile:          seedEmployerProfile(),
		},
		Settings: model.DefaultSettings(),
	}
}

// clone は共有しない深いコピーを返す。
func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}

	out.JobSeeker.Applications = slices.Clone(s.JobSeeker.Applications)
	out.JobSeeker.SavedJobs = slices.Clone(s.JobSeeker.SavedJobs)
	out.JobSeeker.Profile = cloneJobSeekerProfile(s.JobSeeker.Profile)

	out.Employer.PostedJobs = slices.Clone(s.Employer.PostedJobs)
	out.Employer.Candidates = slices.Clone(s.Employer.Candidates)
	out.Employer.PostedJobDetails = make(map[string]model.JobPosting, len(s.Employer.PostedJobDetails))
	for id, p := range s.Employer.PostedJobDetails {
		out.Employer.PostedJobDetails[id] = cloneJobPosting(p)
	}
	return out
}

func cloneJobSeekerProfile(p model.JobSeekerProfile) model.JobSeekerProfile {
	out := p
	out.Skills = slices.Clone(p.Skills)
	out.Education = slices.Clone(p.Education)
	out.Experience = slices.Clone(p.Experience)
	if p.Resume != nil {
		r := *p.Resume
		out.Resume = &r
	}
	return out
}

func cloneJobPosting(p model.JobPosting) model.JobPosting {
	out := p
	out.Responsibilities = slices.Clone(p.Responsibilities)
	out.Requirements = slices.Clone(p.Requirements)
	out.Benefits = slices.Clone(p.Benefits)
	return out
}

// normalize はnilのコレクションを空にそろえる。復元したスナップショットに使う。
func (s *State) normalize() {
	if s.JobSeeker.Applications == nil {
		s.JobSeeker.Applications = []model.Application{}
	}
	if s.JobSeeker.SavedJobs == nil {
		s.JobSeeker.SavedJobs = []string{}
	}
	if s.Employer.PostedJobs == nil {
		s.Employer.PostedJobs = []string{}
	}
	if s.Employer.Candidates == nil {
		s.Employer.Candidates = []model.Candidate{}
	}
	if s.Employer.PostedJobDetails == nil {
		s.Employer.PostedJobDetails = map[string]model.JobPosting{}
	}
	if !s.Settings.Theme.Valid() {
		s.Settings.Theme = model.ThemeSystem
	}
	if s.User == nil {
		s.IsAuthenticated = false
	}
}

// IsPosted は求人IDが投稿済み一覧に含まれるかを判定する。
func (s State) IsPosted(id string) bool {
	return slices.Contains(s.Employer.PostedJobs, id)
}

// PostedJob はIDで投稿済み求人の内容を返す。
// 投稿済み一覧にない場合、または取得した一覧のみで内容を持たない場合はfalseを返す。
func (s State) PostedJob(id string) (model.JobPosting, bool) {
	if !s.IsPosted(id) {
		return model.JobPosting{}, false
	}
	p, ok := s.Employer.PostedJobDetails[id]
	return cloneJobPosting(p), ok
}
