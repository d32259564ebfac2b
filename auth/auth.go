// Package auth is the authentication collaborator: credentials, durable
// sessions and asynchronous session-transition events.
package auth

// SessionHandler receives session transitions. signedIn false means the
// session ended; userID is empty in that case.
type SessionHandler func(userID string, signedIn bool)

// Authenticator is the contract the session service consumes.
type Authenticator interface {
	GetSession() (userID string, ok bool)
	OnSessionChange(h SessionHandler) (unsubscribe func())
	SignInWithPassword(email, password string) error
	SignUp(email, password string) (userID string, err error)
	SignOut() error
}
