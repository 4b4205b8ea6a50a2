package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// userSessionKey is the session value holding the logged-in user's ID,
// the same name the ID travels under in the userId header.
const userSessionKey = "userId"

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The UserSessionable wraps methods for adding, removing, and retrieving
// the logged-in user's ID from a session.
type UserSessionable interface {
	DeregisterUser(w http.ResponseWriter, r *http.Request) error
	RegisterUser(w http.ResponseWriter, r *http.Request, id string) error
	UserID() (string, error)
}

// The AppSessionable composes session's major interfaces.
type AppSessionable interface {
	FlashSessionable
	Sessionable
	UserSessionable
}

// A Session lightly wraps a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a Session from g.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterUser removes the user's ID from the session.
func (s Session) DeregisterUser(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, userSessionKey)
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session, removing them.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			fs = append(fs, f)
		}
	}

	if len(raw) > 0 {
		// NOTE: flashes are only gone once the session is saved
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterUser stores the user's ID in the session.
func (s Session) RegisterUser(w http.ResponseWriter, r *http.Request, id string) error {
	if id == "" {
		return ErrNotValid
	}

	s.s.Values[userSessionKey] = id
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// UserID gets the user's ID out of the session.
// If there is none, the user has not logged in and ErrNoUser returns.
//
// A value that is not a non-empty string returns ErrNotValid.
func (s Session) UserID() (string, error) {
	v, ok := s.s.Values[userSessionKey]
	if !ok {
		return "", ErrNoUser
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", ErrNotValid
	}

	return id, nil
}

var _ AppSessionable = Stub{}

// A Stub is an AppSessionable doing nothing, always holding ID.
type Stub struct {
	ID string
}

func (s Stub) Flashes(w http.ResponseWriter, r *http.Request) []Flash             { return nil }
func (s Stub) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error { return nil }
func (s Stub) Delete(w http.ResponseWriter, r *http.Request) error                { return nil }
func (s Stub) Get(key string) any                                                 { return nil }
func (s Stub) Save(w http.ResponseWriter, r *http.Request) error                  { return nil }
func (s Stub) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	return nil
}
func (s Stub) DeregisterUser(w http.ResponseWriter, r *http.Request) error           { return nil }
func (s Stub) RegisterUser(w http.ResponseWriter, r *http.Request, id string) error { return nil }
func (s Stub) UserID() (string, error) {
	if s.ID == "" {
		return "", ErrNoUser
	}

	return s.ID, nil
}
