package usecase

import "fmt"

type ErrorCode string

const (
	ErrorUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorValidation   ErrorCode = "VALIDATION_ERROR"
	ErrorNotFound     ErrorCode = "NOT_FOUND"
	ErrorAgent        ErrorCode = "AGENT_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// Default user-facing messages per code.
const (
	MsgUnauthorized = "認証に失敗しました"
	MsgValidation   = "リクエストが不正です"
	MsgNotFound     = "リソースが見つかりません"
	MsgAgent        = "推薦処理に失敗しました"
	MsgInternal     = "内部エラーが発生しました"
)

const (
	msgRecordNotFound    = "記録が見つかりません"
	msgCreateFailed      = "記録の作成に失敗しました"
	msgListFailed        = "記録の取得に失敗しました"
	msgUpdateFailed      = "記録の更新に失敗しました"
	msgDeleteFailed      = "記録の削除に失敗しました"
	msgHistoryFailed     = "飲酒履歴の取得に失敗しました"
	msgNoAttributesToSet = "更新する属性が指定されていません"
)

// Error is a classified use-case failure. Message is safe to show to the
// caller; Err carries the underlying cause for logs.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}
