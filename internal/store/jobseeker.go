package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hitoshi/jobportal/internal/model"
)

// FetchApplications は応募一覧を取得し、モックデータで丸ごと置き換える。
// 取り消した応募も再取得で元に戻る。
func (s *Store) FetchApplications(ctx context.Context) error {
	return s.fetch(ctx, ActionFetchApplications, collApplications, func(st *State) {
		st.JobSeeker.Applications = mockApplications()
	})
}

// FetchSavedJobs は保存済み求人を取得し、モックデータで丸ごと置き換える。
func (s *Store) FetchSavedJobs(ctx context.Context) error {
	return s.fetch(ctx, ActionFetchSavedJobs, collSavedJobs, func(st *State) {
		st.JobSeeker.SavedJobs = mockSavedJobs()
	})
}

// ApplyToJob は求人に応募し、作成した応募を返す。
func (s *Store) ApplyToJob(ctx context.Context, jobID string) (*model.Application, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, model.NewInvalidRequestError("jobId is required")
	}

	var created model.Application
	err := s.mutate(ctx, ActionApplyToJob, s.latency.Mutation, func(st *State) (bool, error) {
		id, err := s.uniqueID("", func(id string) bool {
			return slices.ContainsFunc(st.JobSeeker.Applications, func(a model.Application) bool {
				return a.ID == id
			})
		})
		if err != nil {
			return false, model.NewOperationFailedError(ActionApplyToJob, err)
		}

		created = model.Application{
			ID:     id,
			JobID:  jobID,
			Status: model.ApplicationStatusApplied,
			Date:   s.today(),
		}
		st.JobSeeker.Applications = append(st.JobSeeker.Applications, created)
		s.bumpLocked(collApplications)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// WithdrawApplication は応募を取り消す。存在しないIDは何もしない。
func (s *Store) WithdrawApplication(ctx context.Context, applicationID string) error {
	return s.mutate(ctx, ActionWithdrawApplication, s.latency.Mutation, func(st *State) (bool, error) {
		s.bumpLocked(collApplications)
		before := len(st.JobSeeker.Applications)
		st.JobSeeker.Applications = slices.DeleteFunc(st.JobSeeker.Applications, func(a model.Application) bool {
			return a.ID == applicationID
		})
		return len(st.JobSeeker.Applications) != before, nil
	})
}

// SaveJob は求人を保存済みに追加する。既に保存済みの場合は何もしない。
func (s *Store) SaveJob(ctx context.Context, jobID string) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return model.NewInvalidRequestError("jobId is required")
	}

	return s.mutate(ctx, ActionSaveJob, s.latency.Fetch, func(st *State) (bool, error) {
		s.bumpLocked(collSavedJobs)
		if slices.Contains(st.JobSeeker.SavedJobs, jobID) {
			return false, nil
		}
		st.JobSeeker.SavedJobs = append(st.JobSeeker.SavedJobs, jobID)
		return true, nil
	})
}

// UnsaveJob は保存済みから即座に取り除く。保存と異なり待ちを伴わない楽観的な削除。
func (s *Store) UnsaveJob(jobID string) {
	start := time.Now()
	s.commit(context.Background(), func(st *State) bool {
		s.bumpLocked(collSavedJobs)
		before := len(st.JobSeeker.SavedJobs)
		st.JobSeeker.SavedJobs = slices.DeleteFunc(st.JobSeeker.SavedJobs, func(id string) bool {
			return id == jobID
		})
		return len(st.JobSeeker.SavedJobs) != before
	})
	s.record(ActionUnsaveJob, outcomeSuccess, start)
}

// UpdateJobSeekerProfile は求職者プロフィールに指定フィールドを上書きする。
func (s *Store) UpdateJobSeekerProfile(ctx context.Context, patch model.JobSeekerProfilePatch) (model.JobSeekerProfile, error) {
	if c := patch.ProfileCompleteness; c != nil && (*c < 0 || *c > 100) {
		return model.JobSeekerProfile{}, model.NewInvalidProfileError("profileCompleteness must be between 0 and 100")
	}

	var updated model.JobSeekerProfile
	err := s.mutate(ctx, ActionUpdateJobSeekerProfile, s.latency.Mutation, func(st *State) (bool, error) {
		p := &st.JobSeeker.Profile
		if patch.Skills != nil {
			p.Skills = slices.Clone(*patch.Skills)
		}
		if patch.Education != nil {
			p.Education = slices.Clone(*patch.Education)
		}
		if patch.Experience != nil {
			p.Experience = slices.Clone(*patch.Experience)
		}
		if patch.ClearResume {
			p.Resume = nil
		} else if patch.Resume != nil {
			r := *patch.Resume
			p.Resume = &r
		}
		if patch.ProfileCompleteness != nil {
			p.ProfileCompleteness = *patch.ProfileCompleteness
		}
		updated = cloneJobSeekerProfile(*p)
		return true, nil
	})
	if err != nil {
		return model.JobSeekerProfile{}, err
	}
	return updated, nil
}
