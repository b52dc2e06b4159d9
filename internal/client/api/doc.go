// Package api is the client side of the Syllabify HTTP API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     three auth endpoints: Login, SecuritySetup and Me.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient) built on
//     go-resty. The bearer token is always an explicit argument; the client
//     never reads or writes local storage.
//
// # Error Handling
//
// Login and SecuritySetup fail with *AuthError. Its message is the
// server-supplied {"error": "..."} text when present, otherwise a generic
// fallback. The wrapped cause can be matched with errors.Is:
// ErrUnauthorized, ErrUnavailable, ErrRejected.
//
// Me never fails: a missing token, a rejected token and a transport error
// all come back as a nil profile, so callers treat "no session" uniformly.
package api
