package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gravepaint/gravepaint"
)

const (
	codeSuccess = 1

	// maxErrBody bounds how much of a failed response is read into an Error.
	maxErrBody = 4 << 10
)

// A Doer sends requests to a backend.
// *client.Client is a Doer.
type Doer interface {
	Get(ctx context.Context, path string) (*http.Response, error)
	PostJSON(ctx context.Context, path string, v any) (*http.Response, error)
}

// An Error is a backend refusing or failing a call.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}

	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// Is matches the sentinel errors of the root package by status code.
func (e *Error) Is(target error) bool {
	switch target {
	case gravepaint.ErrNotExist:
		return e.StatusCode == http.StatusNotFound
	case gravepaint.ErrNotValid:
		return e.StatusCode == http.StatusBadRequest
	}

	return false
}

// envelope is the shape of every primary backend response.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// assistantErr is the shape of an assistant backend failure.
type assistantErr struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeEnvelope reads a primary backend response into out.
// A nil out discards data.
func decodeEnvelope(res *http.Response, out any) error {
	defer res.Body.Close()

	if !ok(res) {
		return errorFrom(res)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decoding envelope: %s", gravepaint.ErrNotValid, err)
	}

	if env.Code != codeSuccess {
		return &Error{StatusCode: res.StatusCode, Code: env.Code, Message: env.Msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decoding data: %s", gravepaint.ErrNotValid, err)
	}

	return nil
}

// decodeJSON reads an assistant backend response into out.
// A nil out discards the body.
func decodeJSON(res *http.Response, out any) error {
	defer res.Body.Close()

	if !ok(res) {
		return errorFrom(res)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding body: %s", gravepaint.ErrNotValid, err)
	}

	return nil
}

// errorFrom builds an Error out of a failed response,
// pulling a message from whichever error shape the body has.
func errorFrom(res *http.Response) *Error {
	e := &Error{StatusCode: res.StatusCode}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxErrBody))
	if err != nil || len(b) == 0 {
		return e
	}

	var env envelope
	if json.Unmarshal(b, &env) == nil && env.Msg != "" {
		e.Code = env.Code
		e.Message = env.Msg
		return e
	}

	var ae assistantErr
	if json.Unmarshal(b, &ae) == nil && (ae.Error != "" || ae.Message != "") {
		e.Message = ae.Error
		if e.Message == "" {
			e.Message = ae.Message
		}

		return e
	}

	e.Message = strings.TrimSpace(string(b))
	return e
}

func ok(res *http.Response) bool {
	return res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices
}
