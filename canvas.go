package gravepaint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// A Box is the placement of an element on a Canvas, in pixels.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// An ImageBox places an image on a Canvas.
type ImageBox struct {
	Box
	ID       int64  `json:"id"`
	PID      int64  `json:"pid"`
	ImageURL string `json:"imageUrl"`
}

// A TextBox places plain text on a Canvas.
type TextBox struct {
	Box
	ID      int64  `json:"id"`
	PID     int64  `json:"pid"`
	Content string `json:"content"`
}

// A MarkdownBox places rendered markdown on a Canvas.
type MarkdownBox struct {
	Box
	ID      int64  `json:"id"`
	PID     int64  `json:"pid"`
	Content string `json:"content"`
}

// A Position locates a Heritage on a Canvas.
type Position struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

// A Heritage is a bundle of items left on a Canvas,
// revealed to visitors once PublicTime passes.
type Heritage struct {
	ID         int64          `json:"id"`
	PID        int64          `json:"pid"`
	PublicTime Timestamp      `json:"publicTime"`
	Position   Position       `json:"position"`
	Items      []HeritageItem `json:"items"`
}

// IsPublic asserts whether the Heritage can be shown at t.
func (h Heritage) IsPublic(t time.Time) bool {
	return !h.PublicTime.IsZero() && !t.Before(h.PublicTime.Time)
}

// A Timestamp is a time.Time exchanged with the primary backend
// as milliseconds since the Unix epoch.
// Decoding also accepts RFC 3339 strings and null.
type Timestamp struct {
	time.Time
}

// MarshalJSON encodes t as epoch milliseconds, or null when t is zero.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalJSON decodes epoch milliseconds, an RFC 3339 string or null.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		t.Time = time.Time{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		if s == "" {
			t.Time = time.Time{}
			return nil
		}

		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNotValid, err)
		}

		t.Time = parsed
		return nil
	default:
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNotValid, err)
		}

		t.Time = time.UnixMilli(ms)
		return nil
	}
}

// A HeritageItem is one piece of a Heritage.
// A private item is only shown to the user it is addressed to.
type HeritageItem struct {
	ID         int64  `json:"id"`
	HeritageID int64  `json:"heritageId"`
	Content    string `json:"content"`
	IsPrivate  bool   `json:"isPrivate"`
	UserID     int64  `json:"userId"`
}

// VisibleTo asserts whether the user identified by userID may see the item.
func (hi HeritageItem) VisibleTo(userID int64) bool {
	return !hi.IsPrivate || hi.UserID == userID
}

// A Canvas is a user's drawing surface and everything placed on it.
type Canvas struct {
	ID        int64         `json:"id" validate:"gt=0"`
	UserID    int64         `json:"userId,omitempty"`
	Title     string        `json:"title"`
	IsPublic  int           `json:"isPublic" validate:"oneof=0 1"`
	Images    []ImageBox    `json:"images"`
	Texts     []TextBox     `json:"texts"`
	Heritages []Heritage    `json:"heritages"`
	Markdowns []MarkdownBox `json:"markdowns"`
}

// Public asserts whether the Canvas is shown in the public gallery.
func (c Canvas) Public() bool { return c.IsPublic == 1 }

// Adopt points every element on the Canvas at the Canvas' ID.
func (c *Canvas) Adopt() {
	for i := range c.Images {
		c.Images[i].PID = c.ID
	}

	for i := range c.Texts {
		c.Texts[i].PID = c.ID
	}

	for i := range c.Markdowns {
		c.Markdowns[i].PID = c.ID
	}

	for i := range c.Heritages {
		c.Heritages[i].PID = c.ID
	}
}

// ForViewer returns a copy of the Canvas holding only what the user identified by userID
// may see at now: public Heritages, and of those only the items visible to the user.
// A userID of zero is an anonymous visitor.
func (c Canvas) ForViewer(userID int64, now time.Time) Canvas {
	out := c
	out.Heritages = make([]Heritage, 0, len(c.Heritages))
	for _, h := range c.Heritages {
		if !h.IsPublic(now) {
			continue
		}

		items := make([]HeritageItem, 0, len(h.Items))
		for _, item := range h.Items {
			if item.VisibleTo(userID) {
				items = append(items, item)
			}
		}

		h.Items = items
		out.Heritages = append(out.Heritages, h)
	}

	return out
}

// A SearchSource is a Canvas the assistant matched for a query.
type SearchSource struct {
	CanvasID        int64   `json:"canvas_id"`
	UserID          int64   `json:"userId"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
	ContentPreview  string  `json:"content_preview"`
}
