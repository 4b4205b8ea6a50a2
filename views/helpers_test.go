package views_test

import (
	"io"
	"strings"
)

func httptestBody(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }
