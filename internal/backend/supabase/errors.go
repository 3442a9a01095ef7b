package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"teamtodo/internal/service"
)

// APIError is a PostgREST or GoTrue error response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", msg, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

// Is maps response statuses onto the service sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case service.ErrNotFound:
		return e.StatusCode == http.StatusNotFound || e.Code == codeNoRows
	case service.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// authErrorBody covers the GoTrue error shapes.
type authErrorBody struct {
	Code             any    `json:"code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
		return apiErr
	}

	var ae authErrorBody
	if err := json.Unmarshal(body, &ae); err == nil {
		apiErr.Code = ae.ErrorCode
		for _, m := range []string{ae.ErrorDescription, ae.Msg, ae.Message, ae.Error} {
			if m != "" {
				apiErr.Message = m
				break
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	if errors.Is(err, service.ErrUnauthorized) {
		return fmt.Errorf("%w: token expired or revoked (run: teamtodo login)", service.ErrUnauthorized)
	}

	return err
}
