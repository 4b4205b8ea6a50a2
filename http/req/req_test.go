package req_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/http/req"
	"github.com/stretchr/testify/require"
)

type testEnum string

func (e testEnum) String() string { return string(e) }
func (e testEnum) Valid() error {
	if e == "ok" {
		return nil
	}

	return errors.New("oops")
}

type body struct {
	A string `json:"a,omitempty" validate:"required"`
	B int64  `json:"b" validate:"gt=10,required"`
	C struct {
		Nested bool `json:"nested" validate:"eq=true"`
	} `json:"c"`
	D testEnum   `json:"d" validate:"enum"`
	E []testEnum `json:"e" validate:"enum"`
	F string     `json:"-"`
}

func TestParserParseBody(t *testing.T) {
	parser := req.NewParser()

	t.Run("Not-A-Pointer", func(t *testing.T) {
		// Act
		err := parser.ParseBody(strings.NewReader(`{}`), struct{}{})

		// Assert
		require.ErrorIs(t, err, gravepaint.ErrBadConfig)
	})

	t.Run("Malformed", func(t *testing.T) {
		// Act
		err := parser.ParseBody(strings.NewReader("\x00"), new(body))

		// Assert
		require.ErrorIs(t, err, gravepaint.ErrNotValid)
	})

	t.Run("Too-Big", func(t *testing.T) {
		// Arrange
		r := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`)), 16)

		// Act
		err := parser.ParseBody(r, new(body))

		// Assert
		require.ErrorIs(t, err, gravepaint.ErrNotValid)
		require.Contains(t, err.Error(), "exceeds 16 bytes")
	})

	t.Run("Invalid", func(t *testing.T) {
		// Arrange
		var in, out body
		b := new(bytes.Buffer)
		require.Nil(t, json.NewEncoder(b).Encode(in))

		expected := req.ValidationErrors{
			{Field: "a", Got: "", Rule: "required; string"},
			{Field: "b", Got: int64(0), Rule: "gt=10; int64"},
			{Field: "c.nested", Got: false, Rule: "eq=true; bool"},
			{Field: "d", Got: testEnum(""), Rule: "enum; req_test.testEnum"},
			{Field: "e", Got: []testEnum(nil), Rule: "enum; []req_test.testEnum"},
		}

		// Act
		err := parser.ParseBody(b, &out)

		// Assert
		require.ErrorIs(t, err, gravepaint.ErrNotValid)

		var actual req.ValidationErrors
		require.ErrorAs(t, err, &actual)
		require.Equal(t, expected, actual)
		require.Equal(t, in, out)
	})

	t.Run("Valid", func(t *testing.T) {
		// Arrange
		in := body{A: "hello", B: 20, D: "ok", E: []testEnum{"ok"}, F: "dropped"}
		in.C.Nested = true

		b := new(bytes.Buffer)
		require.Nil(t, json.NewEncoder(b).Encode(in))

		var out body

		// Act
		err := parser.ParseBody(b, &out)

		// Assert
		require.Nil(t, err)
		in.F = ""
		require.Equal(t, in, out)
	})
}

type query struct {
	A string   `schema:"a" validate:"required"`
	B int64    `schema:"b" validate:"gt=10,required"`
	C []string `schema:"c" validate:"len=2,required"`
	D string   `schema:"-"`
}

func TestParserParseQueryParams(t *testing.T) {
	parser := req.NewParser()

	tcs := []struct {
		name     string
		vals     url.Values
		into     any
		err      error
		expected req.ValidationErrors
	}{
		{"Not-A-Pointer", url.Values{}, struct{}{}, gravepaint.ErrBadConfig, nil},
		{
			"Schema-Required",
			url.Values{},
			new(struct {
				A string `schema:"a,required"`
			}),
			gravepaint.ErrBadConfig,
			nil,
		},
		{
			"Unsupported-Type",
			url.Values{"a": {"test"}},
			new(struct {
				A struct{} `schema:"a"`
			}),
			gravepaint.ErrBadConfig,
			nil,
		},
		{
			"Bad-Conversion",
			url.Values{"a": {"test"}, "b": {"test"}},
			new(query),
			gravepaint.ErrNotValid,
			req.ValidationErrors{{Field: "b", Got: "bad value at index 0", Rule: "must be int64"}},
		},
		{
			"Invalid",
			url.Values{"a": {"test"}, "b": {"1"}, "c": {"1"}},
			new(query),
			gravepaint.ErrNotValid,
			req.ValidationErrors{
				{Field: "b", Got: int64(1), Rule: "gt=10; int64"},
				{Field: "c", Got: []string{"1"}, Rule: "len=2; []string"},
			},
		},
		{"Valid", url.Values{"a": {"test"}, "b": {"20"}, "c": {"1", "2"}, "d": {"ignored"}}, new(query), nil, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			err := parser.ParseQueryParams(tc.vals, tc.into)

			// Assert
			require.ErrorIs(t, err, tc.err)
			if tc.expected != nil {
				var actual req.ValidationErrors
				require.ErrorAs(t, err, &actual)
				require.Equal(t, tc.expected, actual)
			}
		})
	}

	t.Run("Fills", func(t *testing.T) {
		// Arrange
		actual := new(query)

		// Act
		err := parser.ParseQueryParams(url.Values{"a": {"test"}, "b": {"20"}, "c": {"1", "2"}, "d": {"x"}}, actual)

		// Assert
		require.Nil(t, err)
		require.Equal(t, &query{A: "test", B: 20, C: []string{"1", "2"}}, actual)
	})
}

type login struct {
	Username string `json:"username" schema:"username" validate:"required"`
	Mode     string `json:"mode" schema:"mode"`
}

func TestParserParseRequest(t *testing.T) {
	parser := req.NewParser()

	tcs := []struct {
		name        string
		contentType string
		body        string
		expected    login
		err         error
	}{
		{"Json", "application/json", `{"username":"ada","mode":"register"}`, login{Username: "ada", Mode: "register"}, nil},
		{"Json-Charset", "application/json; charset=utf-8", `{"username":"ada"}`, login{Username: "ada"}, nil},
		{"Form", "application/x-www-form-urlencoded", `username=grace&mode=register`, login{Username: "grace", Mode: "register"}, nil},
		{"Form-Invalid", "application/x-www-form-urlencoded", `mode=register`, login{Mode: "register"}, gravepaint.ErrNotValid},
		{"Json-Malformed", "application/json", `{`, login{}, gravepaint.ErrNotValid},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodPost, "/Login", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", tc.contentType)

			var actual login

			// Act
			err := parser.ParseRequest(r, &actual)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}
