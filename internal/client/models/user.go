// Package models defines client-side data models used by the Syllabify CLI.
package models

// User is the profile returned by the API for an authenticated session.
type User struct {
	// Username is the account name the session belongs to.
	Username string `json:"username"`

	// SecuritySetupDone reports whether the one-time security question
	// setup has been completed for this account.
	SecuritySetupDone bool `json:"security_setup_done"`
}

// LoginResult is the successful response of a login call.
type LoginResult struct {
	Token             string `json:"token"`
	Username          string `json:"username"`
	SecuritySetupDone bool   `json:"security_setup_done"`
}

// User returns the profile part of the login response.
func (r *LoginResult) User() *User {
	return &User{Username: r.Username, SecuritySetupDone: r.SecuritySetupDone}
}

// SecurityQuestion is a single question/answer pair submitted during
// security setup.
type SecurityQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
