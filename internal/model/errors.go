package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, employer, system
	Action   string // ユーザー向け対処方法
	Err      error  // 原因となったエラー（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeForbiddenRole      = "FORBIDDEN_ROLE"
	ErrCodeOperationFailed    = "OPERATION_FAILED"
	ErrCodeLoginFailed        = "LOGIN_FAILED"
	ErrCodeSignupFailed       = "SIGNUP_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidRole        = "INVALID_ROLE"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidProfile     = "INVALID_PROFILE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidJobPosting  = "INVALID_JOB_POSTING"
	ErrCodeInvalidTheme       = "INVALID_THEME"
	ErrCodeJobNotFound        = "JOB_NOT_FOUND"
	ErrCodeCompanyNotFound    = "COMPANY_NOT_FOUND"
	ErrCodeArticleNotFound    = "ARTICLE_NOT_FOUND"
	ErrCodeCoachNotFound      = "COACH_NOT_FOUND"
	ErrCodePostedJobNotFound  = "POSTED_JOB_NOT_FOUND"
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeSSRFBlocked        = "SSRF_BLOCKED"
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeParseFailed        = "PARSE_FAILED"
)

// NewUnauthenticatedError はセッションが存在しない場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "ログインしていません。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewForbiddenRoleError はロールが要求を満たさない場合のエラーを生成する。
func NewForbiddenRoleError(role Role) *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenRole,
		Message:  fmt.Sprintf("このロールでは操作できません: %s", role),
		Category: "auth",
		Action:   "対応するロールのアカウントでログインしてください。",
	}
}

// NewOperationFailedError はリモート操作の失敗を表すエラーを生成する。
// 原因はUnwrapで取り出せる。
func NewOperationFailedError(op string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeOperationFailed,
		Message:  fmt.Sprintf("操作に失敗しました: %s", op),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
func NewLoginFailedError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "ログインに失敗しました。",
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認して再度お試しください。",
		Err:      cause,
	}
}

// NewSignupFailedError はサインアップ失敗エラーを生成する。
func NewSignupFailedError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeSignupFailed,
		Message:  "アカウントの作成に失敗しました。",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}

// NewInvalidCredentialsError は資格情報の形式が不正な場合のエラーを生成する。
func NewInvalidCredentialsError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "有効なメールアドレスとパスワードを入力してください。",
	}
}

// NewInvalidRoleError は無効なロール指定のエラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: "validation",
		Action:   "ロールには job-seeker または employer を指定してください。",
	}
}

// NewInvalidStatusError は無効な応募者ステータスのエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには new、reviewing、interview、shortlisted、rejected のいずれかを指定してください。",
	}
}

// NewInvalidProfileError はプロフィール更新内容が不正な場合のエラーを生成する。
func NewInvalidProfileError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProfile,
		Message:  fmt.Sprintf("プロフィールの内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディが解釈できない場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidJobPostingError は求人投稿内容が不正な場合のエラーを生成する。
func NewInvalidJobPostingError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidJobPosting,
		Message:  fmt.Sprintf("求人の内容が不正です: %s", reason),
		Category: "validation",
		Action:   "求人タイトルなどの必須項目を入力してください。",
	}
}

// NewInvalidThemeError は無効なテーマ指定のエラーを生成する。
func NewInvalidThemeError(theme string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTheme,
		Message:  fmt.Sprintf("無効なテーマです: %s", theme),
		Category: "validation",
		Action:   "テーマには light、dark、system のいずれかを指定してください。",
	}
}

// NewJobNotFoundError は求人未検出エラーを生成する。
func NewJobNotFoundError(jobID string) *APIError {
	return &APIError{
		Code:     ErrCodeJobNotFound,
		Message:  fmt.Sprintf("指定された求人が見つかりません: %s", jobID),
		Category: "catalog",
		Action:   "求人IDを確認してください。",
	}
}

// NewCompanyNotFoundError は企業未検出エラーを生成する。
func NewCompanyNotFoundError(companyID string) *APIError {
	return &APIError{
		Code:     ErrCodeCompanyNotFound,
		Message:  fmt.Sprintf("指定された企業が見つかりません: %s", companyID),
		Category: "catalog",
		Action:   "企業IDを確認してください。",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "catalog",
		Action:   "記事IDを確認してください。",
	}
}

// NewCoachNotFoundError はコーチ未検出エラーを生成する。
func NewCoachNotFoundError(coachID string) *APIError {
	return &APIError{
		Code:     ErrCodeCoachNotFound,
		Message:  fmt.Sprintf("指定されたコーチが見つかりません: %s", coachID),
		Category: "catalog",
		Action:   "コーチIDを確認してください。",
	}
}

// NewPlanNotFoundError は添削プラン未検出エラーを生成する。
func NewPlanNotFoundError(planID string) *APIError {
	return &APIError{
		Code:     ErrCodePlanNotFound,
		Message:  fmt.Sprintf("指定された添削プランが見つかりません: %s", planID),
		Category: "catalog",
		Action:   "プランIDを確認してください。",
	}
}

// NewPostedJobNotFoundError は投稿済み求人の未検出エラーを生成する。
func NewPostedJobNotFoundError(jobID string) *APIError {
	return &APIError{
		Code:     ErrCodePostedJobNotFound,
		Message:  fmt.Sprintf("投稿済みの求人が見つかりません: %s", jobID),
		Category: "employer",
		Action:   "投稿済み求人の一覧を確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を指定してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを指定してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFetchFailedError はフェッチ失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("URLの取得に失敗しました: %s", reason),
		Category: "resources",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError はフィードのパース失敗エラーを生成する。
func NewParseFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  "フィードの解析に失敗しました。",
		Category: "resources",
		Action:   "有効なRSS/Atomフィードかどうか確認してください。",
	}
}
