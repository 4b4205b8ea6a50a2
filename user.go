package gravepaint

import "strconv"

// A User is someone with an account on the primary backend.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Identity renders the User's ID as sent in the userId header.
func (u User) Identity() string {
	if u.ID <= 0 {
		return ""
	}

	return strconv.FormatInt(u.ID, 10)
}

// Exists asserts whether the User was returned by the backend.
func (u User) Exists() bool { return u.ID > 0 }

// ParseIdentity parses the userId header value back into a user ID.
func ParseIdentity(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrNotValid
	}

	return n, nil
}
