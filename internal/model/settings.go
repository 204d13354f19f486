package model

// Theme は表示テーマ。
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid は定義済みのテーマかを判定する。
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Settings はクライアントごとの表示・通知設定。
type Settings struct {
	Theme         Theme `json:"theme"`
	Notifications bool  `json:"notifications"`
	EmailAlerts   bool  `json:"emailAlerts"`
}

// DefaultSettings は初期設定を返す。
func DefaultSettings() Settings {
	return Settings{
		Theme:         ThemeSystem,
		Notifications: true,
		EmailAlerts:   true,
	}
}

// SettingsPatch は設定の部分更新。nilフィールドは変更しない。
type SettingsPatch struct {
	Theme         *Theme `json:"theme,omitempty"`
	Notifications *bool  `json:"notifications,omitempty"`
	EmailAlerts   *bool  `json:"emailAlerts,omitempty"`
}
