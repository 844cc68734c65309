package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"sake-recommendation/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type dataResponse struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorUnauthorized:
		return http.StatusUnauthorized
	case usecase.ErrorValidation:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the error envelope. Anything that is not a
// *usecase.Error is reported as INTERNAL_ERROR.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected", Message: usecase.MsgInternal, Err: err}
	}
	status := statusFor(ucErr.Code)

	message := ucErr.Message
	if message == "" {
		message = usecase.MsgInternal
	}
	if h.devMode && ucErr.Err != nil && downstreamFault(ucErr.Code) {
		message += ": " + ucErr.Err.Error()
	}

	fields := []zap.Field{
		zap.String("code", string(ucErr.Code)),
		zap.String("reason", ucErr.Reason),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("correlationId", correlationIDFrom(r.Context())),
		zap.Error(ucErr.Err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	writeErrorBody(w, status, string(ucErr.Code), message)
}

// downstreamFault reports codes whose cause is a storage or agent failure.
// Only those get the underlying error appended in dev mode.
func downstreamFault(code usecase.ErrorCode) bool {
	return code == usecase.ErrorAgent || code == usecase.ErrorInternal
}

// decodeBody reads a JSON document of any shape; the use cases validate it.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, malformedBody(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformedBody(errors.New("trailing data after JSON body"))
	}
	return body, nil
}

func malformedBody(err error) *usecase.Error {
	return &usecase.Error{
		Code:    usecase.ErrorValidation,
		Reason:  "malformed_json",
		Message: usecase.MsgValidation,
		Err:     err,
	}
}
