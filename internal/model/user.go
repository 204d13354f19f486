// Package model はドメインモデルを定義する。
package model

// Role はユーザーのロールを表す。
// 未認証の間は空文字列（RoleNone）となる。
type Role string

const (
	// RoleNone は未認証状態のロール。
	RoleNone Role = ""
	// RoleJobSeeker は求職者ロール。
	RoleJobSeeker Role = "job-seeker"
	// RoleEmployer は採用企業ロール。
	RoleEmployer Role = "employer"
)

// Valid はロールが認証済みユーザーに付与可能な値かを判定する。
func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

// User は現在のセッションのユーザーを表す。
// ロールはログイン・サインアップ時に決まり、セッション中は変更されない。
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// UserPatch はユーザー情報の部分更新を表す。
// nilフィールドは変更しない。IDとロールは更新対象外。
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}
