package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravepaint/gravepaint"
)

const (
	embeddingPath = "/api/canvas/embedding"
	searchPath    = "/api/search"
)

// A ChatTurn is one question put to the assistant and its answer.
type ChatTurn [2]string

// A SearchQuery asks the assistant for canvases matching Query.
// UserID scopes the search to what that user may see.
type SearchQuery struct {
	Query       string     `json:"query"`
	UserID      int64      `json:"user_id,omitempty"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"`
}

type searchResult struct {
	Sources []gravepaint.SearchSource `json:"sources"`
}

// Assistant calls the search assistant backend.
type Assistant struct {
	c Doer
}

// NewAssistant constructs an Assistant sending requests through c.
func NewAssistant(c Doer) *Assistant { return &Assistant{c: c} }

// Embed asks the assistant to index the canvas identified by canvasID.
func (a *Assistant) Embed(ctx context.Context, canvasID int64) error {
	if canvasID <= 0 {
		return fmt.Errorf("%w: canvas ID", gravepaint.ErrMissingData)
	}

	res, err := a.c.PostJSON(ctx, embeddingPath, map[string]int64{"canvas_id": canvasID})
	if err != nil {
		return err
	}

	return decodeJSON(res, nil)
}

// Search returns the canvases the assistant matched for q
// in the order the assistant ranked them.
func (a *Assistant) Search(ctx context.Context, q SearchQuery) ([]gravepaint.SearchSource, error) {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return nil, fmt.Errorf("%w: query", gravepaint.ErrMissingData)
	}

	res, err := a.c.PostJSON(ctx, searchPath, q)
	if err != nil {
		return nil, err
	}

	var out searchResult
	if err := decodeJSON(res, &out); err != nil {
		return nil, err
	}

	if out.Sources == nil {
		out.Sources = []gravepaint.SearchSource{}
	}

	return out.Sources, nil
}
