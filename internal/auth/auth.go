// Package auth resolves the caller's user id from a bearer token.
package auth

import (
	"context"
	"strings"
)

const (
	MsgMissingToken  = "認証トークンが見つかりません"
	MsgMalformed     = "認証トークンの形式が不正です"
	MsgExpired       = "認証トークンの有効期限が切れています"
	MsgClaimMismatch = "認証トークンの検証に失敗しました"
	MsgNoSubject     = "トークンからユーザーIDを取得できません"
	MsgFailed        = "認証に失敗しました"
)

// Error is an authentication failure. Message is safe to show to the caller.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "auth: " + e.Message
	}
	return "auth: " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(message string, err error) *Error {
	return &Error{Message: message, Err: err}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", newError(MsgMissingToken, nil)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", newError(MsgMalformed, nil)
	}
	return strings.TrimSpace(token), nil
}

// StaticVerifier accepts any well-formed bearer token as a fixed user.
// It exists for local development with SKIP_AUTH.
type StaticVerifier struct {
	UserID string
}

func (s StaticVerifier) Verify(_ context.Context, _ string) (string, error) {
	if s.UserID == "" {
		return "", newError(MsgNoSubject, nil)
	}
	return s.UserID, nil
}
