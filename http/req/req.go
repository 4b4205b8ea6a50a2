package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
	"github.com/gravepaint/gravepaint"
)

// A Parser decodes request payloads into structs and validates them.
// A Parser is safe for concurrent use.
type Parser struct {
	values *schema.Decoder
	validator
}

// NewParser constructs a *Parser.
func NewParser() *Parser {
	return &Parser{
		values:    newValuesDecoder(),
		validator: newValidator(),
	}
}

// ParseBody decodes into a pointer to a struct the JSON data in body.
// If successful, ParseBody runs validation against the contents,
// returning ValidationErrors if the data fails validation rules.
//
// ParseBody reads the entire body and can't be read from again.
// Use a [io.TeeReader] if the body needs to be reused after calling ParseBody.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	if err := checkPtr(structPtr); err != nil {
		return err
	}

	var tooBig *http.MaxBytesError
	err := json.NewDecoder(body).Decode(structPtr)
	switch {
	case errors.As(err, &tooBig):
		return fmt.Errorf("%w: request body exceeds %d bytes", gravepaint.ErrNotValid, tooBig.Limit)
	case err != nil:
		return fmt.Errorf("%w: failed decoding request body: %s", gravepaint.ErrNotValid, err)
	}

	return p.check(structPtr)
}

// ParseForm decodes into a pointer to a struct the form values vals,
// then validates the result like ParseBody.
func (p *Parser) ParseForm(vals url.Values, structPtr any) error {
	if err := checkPtr(structPtr); err != nil {
		return err
	}

	if err := p.values.Decode(structPtr, vals); err != nil {
		return fmt.Errorf("failed decoding form: %w", translateDecoderError(err))
	}

	return p.check(structPtr)
}

// ParseQueryParams decodes into a pointer to a struct the query params,
// then validates the result like ParseBody.
func (p *Parser) ParseQueryParams(params url.Values, structPtr any) error {
	if err := checkPtr(structPtr); err != nil {
		return err
	}

	if err := p.values.Decode(structPtr, params); err != nil {
		return fmt.Errorf("failed decoding query params: %w", translateDecoderError(err))
	}

	return p.check(structPtr)
}

// ParseRequest parses the body of r as JSON when its Content-Type says so,
// and as a submitted form otherwise.
func (p *Parser) ParseRequest(r *http.Request, structPtr any) error {
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		return p.ParseBody(r.Body, structPtr)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: failed reading form: %s", gravepaint.ErrNotValid, err)
	}

	return p.ParseForm(r.PostForm, structPtr)
}

func (p *Parser) check(structPtr any) error {
	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("%T failed validation: %w", structPtr, err)
	}

	return nil
}

func checkPtr(structPtr any) error {
	v := reflect.ValueOf(structPtr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: parsing requires a pointer to a struct, not %T", gravepaint.ErrBadConfig, structPtr)
	}

	return nil
}
