package store

import (
	"context"

	"github.com/hitoshi/jobportal/internal/model"
)

// Settings は現在の設定を返す。
func (s *Store) Settings() model.Settings {
	return s.Snapshot().Settings
}

// SetTheme は表示テーマを変更する。
func (s *Store) SetTheme(theme model.Theme) error {
	if !theme.Valid() {
		return model.NewInvalidThemeError(string(theme))
	}
	s.commit(context.Background(), func(st *State) bool {
		if st.Settings.Theme == theme {
			return false
		}
		st.Settings.Theme = theme
		return true
	})
	return nil
}

// ToggleNotifications は通知設定を反転する。
func (s *Store) ToggleNotifications() {
	s.commit(context.Background(), func(st *State) bool {
		st.Settings.Notifications = !st.Settings.Notifications
		return true
	})
}

// ToggleEmailAlerts はメール通知設定を反転する。
func (s *Store) ToggleEmailAlerts() {
	s.commit(context.Background(), func(st *State) bool {
		st.Settings.EmailAlerts = !st.Settings.EmailAlerts
		return true
	})
}

// UpdateSettings は指定された設定項目をまとめて変更する。
func (s *Store) UpdateSettings(patch model.SettingsPatch) (model.Settings, error) {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return model.Settings{}, model.NewInvalidThemeError(string(*patch.Theme))
	}

	var updated model.Settings
	s.commit(context.Background(), func(st *State) bool {
		before := st.Settings
		if patch.Theme != nil {
			st.Settings.Theme = *patch.Theme
		}
		if patch.Notifications != nil {
			st.Settings.Notifications = *patch.Notifications
		}
		if patch.EmailAlerts != nil {
			st.Settings.EmailAlerts = *patch.EmailAlerts
		}
		updated = st.Settings
		return updated != before
	})
	return updated, nil
}
