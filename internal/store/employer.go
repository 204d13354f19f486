package store

import (
	"context"
	"slices"
	"strings"

	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/security"
)

// postedJobIDPrefix は投稿求人IDの接頭辞。
const postedJobIDPrefix = "job"

var postingSanitizer = security.NewSanitizer()

// FetchPostedJobs は投稿済み求人を取得し、モックデータで丸ごと置き換える。
// 一覧に残らなくなった求人の投稿内容も破棄する。
func (s *Store) FetchPostedJobs(ctx context.Context) error {
	return s.fetch(ctx, ActionFetchPostedJobs, collPostedJobs, func(st *State) {
		st.Employer.PostedJobs = mockPostedJobs()
		for id := range st.Employer.PostedJobDetails {
			if !slices.Contains(st.Employer.PostedJobs, id) {
				delete(st.Employer.PostedJobDetails, id)
			}
		}
	})
}

// FetchCandidates は応募者一覧を取得し、モックデータで丸ごと置き換える。
func (s *Store) FetchCandidates(ctx context.Context) error {
	return s.fetch(ctx, ActionFetchCandidates, collCandidates, func(st *State) {
		st.Employer.Candidates = mockCandidates()
	})
}

// sanitizePosting は投稿内容の自由記述からHTMLを取り除く。
func sanitizePosting(p model.JobPosting) model.JobPosting {
	out := p
	out.Title = postingSanitizer.Text(p.Title)
	out.Type = postingSanitizer.Text(p.Type)
	out.Experience = postingSanitizer.Text(p.Experience)
	out.Location = postingSanitizer.Text(p.Location)
	out.Salary = postingSanitizer.Text(p.Salary)
	out.WorkType = postingSanitizer.Text(p.WorkType)
	out.ShortDescription = postingSanitizer.Text(p.ShortDescription)
	out.Description = postingSanitizer.Text(p.Description)
	out.Responsibilities = postingSanitizer.Texts(p.Responsibilities)
	out.Requirements = postingSanitizer.Texts(p.Requirements)
	out.Benefits = postingSanitizer.Texts(p.Benefits)
	out.PostedDate = strings.TrimSpace(p.PostedDate)
	return out
}

// PostJob は求人を投稿し、生成した求人IDを返す。投稿内容はIDをキーに保持する。
func (s *Store) PostJob(ctx context.Context, posting model.JobPosting) (string, error) {
	clean := sanitizePosting(posting)
	if clean.Title == "" {
		return "", model.NewInvalidJobPostingError("title is required")
	}

	var id string
	err := s.mutate(ctx, ActionPostJob, s.latency.Mutation, func(st *State) (bool, error) {
		generated, err := s.uniqueID(postedJobIDPrefix, func(candidate string) bool {
			_, hasDetails := st.Employer.PostedJobDetails[candidate]
			return hasDetails || slices.Contains(st.Employer.PostedJobs, candidate)
		})
		if err != nil {
			return false, model.NewOperationFailedError(ActionPostJob, err)
		}

		if clean.PostedDate == "" {
			clean.PostedDate = s.today()
		}
		id = generated
		st.Employer.PostedJobs = append(st.Employer.PostedJobs, id)
		st.Employer.PostedJobDetails[id] = clean
		s.bumpLocked(collPostedJobs)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CloseJob は投稿済み求人を取り下げる。存在しないIDは何もしない。
func (s *Store) CloseJob(ctx context.Context, jobID string) error {
	return s.mutate(ctx, ActionCloseJob, s.latency.Mutation, func(st *State) (bool, error) {
		s.bumpLocked(collPostedJobs)
		before := len(st.Employer.PostedJobs)
		st.Employer.PostedJobs = slices.DeleteFunc(st.Employer.PostedJobs, func(id string) bool {
			return id == jobID
		})
		_, hadDetails := st.Employer.PostedJobDetails[jobID]
		delete(st.Employer.PostedJobDetails, jobID)
		return hadDetails || len(st.Employer.PostedJobs) != before, nil
	})
}

// UpdateCandidateStatus は指定した応募者のステータスのみを変更する。存在しないIDは何もしない。
func (s *Store) UpdateCandidateStatus(ctx context.Context, candidateID string, status model.CandidateStatus) error {
	if !status.Valid() {
		return model.NewInvalidStatusError(string(status))
	}

	return s.mutate(ctx, ActionUpdateCandidateStatus, s.latency.Mutation, func(st *State) (bool, error) {
		s.bumpLocked(collCandidates)
		for i := range st.Employer.Candidates {
			if st.Employer.Candidates[i].ID == candidateID {
				st.Employer.Candidates[i].Status = status
				return true, nil
			}
		}
		return false, nil
	})
}

// UpdateEmployerProfile は採用企業プロフィールに指定フィールドを上書きする。
func (s *Store) UpdateEmployerProfile(ctx context.Context, patch model.EmployerProfilePatch) (model.EmployerProfile, error) {
	if patch.CompanyName != nil && strings.TrimSpace(*patch.CompanyName) == "" {
		return model.EmployerProfile{}, model.NewInvalidProfileError("companyName must not be empty")
	}

	var updated model.EmployerProfile
	err := s.mutate(ctx, ActionUpdateEmployerProfile, s.latency.Mutation, func(st *State) (bool, error) {
		p := &st.Employer.Profile
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&p.CompanyName, patch.CompanyName)
		set(&p.Industry, patch.Industry)
		set(&p.CompanySize, patch.CompanySize)
		set(&p.Founded, patch.Founded)
		set(&p.Website, patch.Website)
		set(&p.Location, patch.Location)
		set(&p.Description, patch.Description)
		set(&p.Logo, patch.Logo)
		updated = *p
		return true, nil
	})
	if err != nil {
		return model.EmployerProfile{}, err
	}
	return updated, nil
}
