package api

import (
	"context"
	"fmt"

	"github.com/gravepaint/gravepaint"
)

const (
	loginPath    = "/user/info/login"
	registerPath = "/user/info/register"
	userInfoPath = "/user/info/get"
)

// Credentials are what a user logs in or registers with.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Users calls the account endpoints of the primary backend.
type Users struct {
	c Doer
}

// NewUsers constructs Users sending requests through c.
func NewUsers(c Doer) *Users { return &Users{c: c} }

// Login checks username and password with the backend,
// returning the User they belong to.
func (u *Users) Login(ctx context.Context, username, password string) (gravepaint.User, error) {
	return u.credentials(ctx, loginPath, username, password)
}

// Register creates an account for username,
// returning the new User.
func (u *Users) Register(ctx context.Context, username, password string) (gravepaint.User, error) {
	return u.credentials(ctx, registerPath, username, password)
}

// Info returns the User whose ID the client attached to the request.
// Without one, the backend refuses with an *Error.
func (u *Users) Info(ctx context.Context) (gravepaint.User, error) {
	res, err := u.c.PostJSON(ctx, userInfoPath, nil)
	if err != nil {
		return gravepaint.User{}, err
	}

	var user gravepaint.User
	if err := decodeEnvelope(res, &user); err != nil {
		return gravepaint.User{}, err
	}

	return user, nil
}

func (u *Users) credentials(ctx context.Context, path, username, password string) (gravepaint.User, error) {
	if username == "" || password == "" {
		return gravepaint.User{}, fmt.Errorf("%w: username and password are required", gravepaint.ErrMissingData)
	}

	res, err := u.c.PostJSON(ctx, path, Credentials{Username: username, Password: password})
	if err != nil {
		return gravepaint.User{}, err
	}

	var user gravepaint.User
	if err := decodeEnvelope(res, &user); err != nil {
		return gravepaint.User{}, err
	}

	if !user.Exists() {
		return gravepaint.User{}, fmt.Errorf("%w: backend returned no user", gravepaint.ErrNotExist)
	}

	return user, nil
}
