package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/logger"
	"github.com/stretchr/testify/require"
)

type testUser struct{}

func (testUser) Identity() string { return "1" }

func TestLogContextLogValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://example.com/personal", nil)
	r.Header.Set("userId", "abc123")

	for _, tc := range []struct {
		name     string
		lc       logger.LogContext
		expected map[string]any
	}{
		{"Zero-Value", logger.LogContext{}, nil},
		{
			"Data",
			logger.LogContext{Data: map[string]any{"test": "data"}},
			map[string]any{"data": map[string]any{"test": "data"}},
		},
		{
			"Error",
			logger.LogContext{Error: errors.New("test")},
			map[string]any{"error": "test"},
		},
		{
			"User",
			logger.LogContext{User: testUser{}},
			map[string]any{"user": map[string]any{"id": "1"}},
		},
		{
			"Request",
			logger.LogContext{Request: r},
			map[string]any{"request": map[string]any{
				"method": http.MethodGet,
				"url":    "https://example.com/personal",
				"header": map[string]any{"Userid": []any{gravepaint.LogMaskVal}},
			}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			b := new(bytes.Buffer)
			l := slog.New(slog.NewJSONHandler(b, nil))

			// Act
			l.Info("test", slog.Any(logger.LogContextKey, tc.lc))

			// Assert
			actual := make(map[string]any)
			require.Nil(t, json.Unmarshal(b.Bytes(), &actual))
			if tc.expected == nil {
				require.NotContains(t, actual, logger.LogContextKey)
				return
			}

			require.Equal(t, tc.expected, actual[logger.LogContextKey])
		})
	}

	// Assert the request being logged was left alone
	require.Equal(t, "abc123", r.Header.Get("userId"))
}

func TestCurrentCaller(t *testing.T) {
	var actual string
	func() { actual = logger.CurrentCaller() }()

	require.Regexp(t, `^logger/context_test\.go:\d+$`, actual)
}
