package auth

import "errors"

// SingleUserID is the implicit identity of the offline variant.
const SingleUserID = "local"

// SingleUser is the offline authenticator: one implicit, always-on session.
type SingleUser struct{}

func (SingleUser) GetSession() (string, bool) { return SingleUserID, true }

func (SingleUser) OnSessionChange(SessionHandler) func() { return func() {} }

func (SingleUser) SignInWithPassword(string, string) error { return nil }

func (SingleUser) SignUp(string, string) (string, error) { return SingleUserID, nil }

func (SingleUser) SignOut() error { return errors.New("offline mode has no sign-out") }
