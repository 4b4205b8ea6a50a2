package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gravepaint/gravepaint"
)

const (
	canvasGetPath  = "/user/canvas/get"
	canvasLoadPath = "/user/canvas/load"
	canvasSavePath = "/user/canvas/save"
)

// Canvases calls the canvas endpoints of the primary backend.
type Canvases struct {
	c Doer
}

// NewCanvases constructs Canvases sending requests through c.
func NewCanvases(c Doer) *Canvases { return &Canvases{c: c} }

// Save stores c, pointing every element on it at c.ID first.
func (cs *Canvases) Save(ctx context.Context, c gravepaint.Canvas) error {
	c.Adopt()

	res, err := cs.c.PostJSON(ctx, canvasSavePath, c)
	if err != nil {
		return err
	}

	return decodeEnvelope(res, nil)
}

// Get returns the canvas identified by id belonging to the user identified by userID.
func (cs *Canvases) Get(ctx context.Context, userID, id int64) (gravepaint.Canvas, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	q.Set("id", strconv.FormatInt(id, 10))

	res, err := cs.c.PostJSON(ctx, canvasGetPath+"?"+q.Encode(), nil)
	if err != nil {
		return gravepaint.Canvas{}, err
	}

	var c *gravepaint.Canvas
	if err := decodeEnvelope(res, &c); err != nil {
		return gravepaint.Canvas{}, err
	}

	if c == nil {
		return gravepaint.Canvas{}, fmt.Errorf("%w: canvas %d", gravepaint.ErrNotExist, id)
	}

	// NOTE: the backend does not always echo the ID back
	if c.ID == 0 {
		c.ID = id
	}

	return *c, nil
}

// Load returns every canvas the backend lists.
func (cs *Canvases) Load(ctx context.Context) ([]gravepaint.Canvas, error) {
	res, err := cs.c.Get(ctx, canvasLoadPath)
	if err != nil {
		return nil, err
	}

	var list []gravepaint.Canvas
	if err := decodeEnvelope(res, &list); err != nil {
		return nil, err
	}

	return list, nil
}

// Public returns the canvases Load lists that are shown in the public gallery.
func (cs *Canvases) Public(ctx context.Context) ([]gravepaint.Canvas, error) {
	list, err := cs.Load(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]gravepaint.Canvas, 0, len(list))
	for _, c := range list {
		if c.Public() {
			public = append(public, c)
		}
	}

	return public, nil
}
