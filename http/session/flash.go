package session

import (
	"net/http"
)

const (
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	BadCredsMsg   = "Hmm... check those credentials."
	ContactUsErr  = "Uh oh! We've run into an issue. Please reach out to %s for help."
	DefaultErrMsg = "Uh oh! We've run into an issue."
	LoggedOffMsg  = "See you next time."
)

// The FlashSessionable wraps methods for one-time messages shown on the next page rendered.
type FlashSessionable interface {
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

// A Flash is a message shown once to the user.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
