package store

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobportal/internal/model"
)

// アクション名。メトリクスのラベルとBackendの操作名に使う。
const (
	ActionLogin                  = "login"
	ActionSignup                 = "signup"
	ActionLogout                 = "logout"
	ActionUpdateUser             = "update_user"
	ActionFetchApplications      = "fetch_applications"
	ActionFetchSavedJobs         = "fetch_saved_jobs"
	ActionApplyToJob             = "apply_to_job"
	ActionWithdrawApplication    = "withdraw_application"
	ActionSaveJob                = "save_job"
	ActionUnsaveJob              = "unsave_job"
	ActionUpdateJobSeekerProfile = "update_job_seeker_profile"
	ActionFetchPostedJobs        = "fetch_posted_jobs"
	ActionFetchCandidates        = "fetch_candidates"
	ActionPostJob                = "post_job"
	ActionCloseJob               = "close_job"
	ActionUpdateCandidateStatus  = "update_candidate_status"
	ActionUpdateEmployerProfile  = "update_employer_profile"
)

// DeriveRole はデモログインのロールをメールアドレスから決める。
// "employer" または "recruiter" を含む場合は採用企業、それ以外は求職者。大文字小文字は区別する。
func DeriveRole(email string) model.Role {
	if strings.Contains(email, "employer") || strings.Contains(email, "recruiter") {
		return model.RoleEmployer
	}
	return model.RoleJobSeeker
}

// validEmail は表示名などを含まない素のメールアドレスかを判定する。
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return model.NewInvalidCredentialsError("email is required")
	}
	if !validEmail(email) {
		return model.NewInvalidCredentialsError("email is malformed")
	}
	if password == "" {
		return model.NewInvalidCredentialsError("password is required")
	}
	return nil
}

func newSessionUser(name, email string, role model.Role) *model.User {
	avatar := seekerAvatarURL
	if role == model.RoleEmployer {
		avatar = employerAvatarURL
	}
	return &model.User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   role,
		Avatar: avatar,
	}
}

// Login はデモ用のログインを行う。資格情報の照合は行わず、形式のみを検証する。
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	start := time.Now()
	s.setLoading(1)
	defer s.setLoading(-1)

	if err := s.call(ctx, ActionLogin, s.latency.Login); err != nil {
		s.record(ActionLogin, outcomeError, start)
		return nil, model.NewLoginFailedError(err)
	}

	role := DeriveRole(email)
	name := seekerDisplayName
	if role == model.RoleEmployer {
		name = employerDisplayName
	}
	user := newSessionUser(name, email, role)

	s.commit(ctx, func(st *State) bool {
		st.User = user
		st.IsAuthenticated = true
		return true
	})
	s.record(ActionLogin, outcomeSuccess, start)

	u := *user
	return &u, nil
}

// Signup はアカウントを作成してログイン状態にする。ロールは呼び出し側が指定する。
func (s *Store) Signup(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, model.NewInvalidRoleError(string(role))
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewInvalidCredentialsError("name is required")
	}

	start := time.Now()
	s.setLoading(1)
	defer s.setLoading(-1)

	if err := s.call(ctx, ActionSignup, s.latency.Login); err != nil {
		s.record(ActionSignup, outcomeError, start)
		return nil, model.NewSignupFailedError(err)
	}

	user := newSessionUser(name, email, role)
	s.commit(ctx, func(st *State) bool {
		st.User = user
		st.IsAuthenticated = true
		return true
	})
	s.record(ActionSignup, outcomeSuccess, start)

	u := *user
	return &u, nil
}

// Logout はセッションを未認証の初期状態に戻す。他のデータは保持する。
func (s *Store) Logout() {
	start := time.Now()
	s.commit(context.Background(), func(st *State) bool {
		if st.User == nil && !st.IsAuthenticated {
			return false
		}
		st.User = nil
		st.IsAuthenticated = false
		return true
	})
	s.record(ActionLogout, outcomeSuccess, start)
}

// UpdateUser は現在のユーザー情報に指定フィールドを上書きする。
func (s *Store) UpdateUser(ctx context.Context, patch model.UserPatch) (*model.User, error) {
	if !s.Snapshot().IsAuthenticated {
		return nil, model.NewUnauthenticatedError()
	}
	if patch.Email != nil && !validEmail(*patch.Email) {
		return nil, model.NewInvalidProfileError("email is malformed")
	}

	s.setLoading(1)
	defer s.setLoading(-1)

	var updated model.User
	err := s.mutate(ctx, ActionUpdateUser, s.latency.Mutation, func(st *State) (bool, error) {
		// 待機中にログアウトされた場合
		if st.User == nil {
			return false, model.NewUnauthenticatedError()
		}
		if patch.Name != nil {
			st.User.Name = *patch.Name
		}
		if patch.Email != nil {
			st.User.Email = *patch.Email
		}
		if patch.Avatar != nil {
			st.User.Avatar = *patch.Avatar
		}
		updated = *st.User
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
