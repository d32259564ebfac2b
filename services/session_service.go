package services

import (
	"log"
	"sync"

	"macrolog/auth"
	"macrolog/models"
	"macrolog/store"
	"macrolog/utils"
)

// SessionService owns the current authenticated profile and its goals. It is
// the sole writer of the identity; everything else subscribes via OnIdentity.
// Collaborator failures are logged, surfaced as a notice, and degrade to the
// pre-operation state; no error object crosses this boundary.
type SessionService struct {
	auth     auth.Authenticator
	profiles store.ProfileStore
	notify   Notifier

	mu        sync.Mutex
	current   *models.UserProfile
	listeners []func(*models.UserProfile)
	unsub     func()
}

func NewSessionService(a auth.Authenticator, p store.ProfileStore, n Notifier) *SessionService {
	return &SessionService{auth: a, profiles: p, notify: n}
}

// OnIdentity registers a listener for identity changes. Listeners run on the
// goroutine performing the change.
func (s *SessionService) OnIdentity(fn func(*models.UserProfile)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Current returns a copy of the active profile, or nil when signed out.
func (s *SessionService) Current() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *SessionService) publish(p *models.UserProfile) {
	s.mu.Lock()
	s.current = p
	listeners := append(([]func(*models.UserProfile))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(p)
	}
}

// ResolveSession restores the identity from a persisted session, if any.
// A session whose profile cannot be fetched degrades to signed-out.
func (s *SessionService) ResolveSession() {
	userID, ok := s.auth.GetSession()
	if !ok {
		s.publish(nil)
		return
	}
	profile, err := s.profiles.FetchProfile(userID)
	if err != nil {
		log.Printf("session restore: profile %s unavailable: %v", userID, err)
		s.publish(nil)
		return
	}
	s.publish(profile)
}

// Watch subscribes to asynchronous session transitions. Call Close to
// detach before tearing the service down.
func (s *SessionService) Watch() {
	unsub := s.auth.OnSessionChange(func(userID string, signedIn bool) {
		if !signedIn {
			s.publish(nil)
			return
		}
		profile, err := s.profiles.FetchProfile(userID)
		if err != nil {
			log.Printf("session change: profile %s unavailable: %v", userID, err)
			s.publish(nil)
			return
		}
		s.publish(profile)
	})

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
}

func (s *SessionService) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Login signs in and loads the profile. Both must succeed: a valid
// credential without a profile row is an incomplete account.
func (s *SessionService) Login(email, password string) bool {
	if err := s.auth.SignInWithPassword(email, password); err != nil {
		s.notify.Notify(models.Notice{
			Title:       "Login failed",
			Description: "Invalid email or password.",
			Severity:    models.NoticeError,
		})
		return false
	}

	userID, ok := s.auth.GetSession()
	if !ok {
		s.notify.Notify(models.Notice{
			Title:       "Login failed",
			Description: "No session was established.",
			Severity:    models.NoticeError,
		})
		return false
	}
	profile, err := s.profiles.FetchProfile(userID)
	if err != nil {
		log.Printf("login: profile %s unavailable: %v", userID, err)
		s.notify.Notify(models.Notice{
			Title:       "Login failed",
			Description: "Your profile could not be loaded.",
			Severity:    models.NoticeError,
		})
		return false
	}

	s.publish(profile)
	s.notify.Notify(models.Notice{
		Title:       "Welcome back",
		Description: profile.Name,
		Severity:    models.NoticeSuccess,
	})
	return true
}

// Signup registers credentials, then creates the profile row with baseline
// goals. A profile insert failing after the credential was created is
// logged, not rolled back at the authentication layer.
func (s *SessionService) Signup(name, email, password string) bool {
	userID, err := s.auth.SignUp(email, password)
	if err != nil {
		s.notify.Notify(models.Notice{
			Title:       "Signup failed",
			Description: "That email may already be registered.",
			Severity:    models.NoticeError,
		})
		return false
	}

	profile := &models.UserProfile{
		ID:    userID,
		Email: email,
		Name:  name,
		Goals: models.DefaultGoals(),
	}
	if err := s.profiles.InsertProfile(profile); err != nil {
		log.Printf("signup: credential %s created but profile insert failed: %v", userID, err)
		s.notify.Notify(models.Notice{
			Title:       "Signup failed",
			Description: "Your profile could not be created.",
			Severity:    models.NoticeError,
		})
		return false
	}

	if err := utils.SendWelcomeEmail(email, name); err != nil {
		log.Printf("signup: welcome mail to %s failed: %v", email, err)
	}

	s.publish(profile)
	s.notify.Notify(models.Notice{
		Title:       "Account created",
		Description: "Welcome to MacroLog!",
		Severity:    models.NoticeSuccess,
	})
	return true
}

// Logout requests sign-out; the identity is cleared only once the
// collaborator confirms.
func (s *SessionService) Logout() {
	if err := s.auth.SignOut(); err != nil {
		log.Printf("logout: %v", err)
		s.notify.Notify(models.Notice{
			Title:       "Logout failed",
			Description: "Could not sign out. Try again.",
			Severity:    models.NoticeError,
		})
		return
	}
	s.publish(nil)
	s.notify.Notify(models.Notice{
		Title:    "Signed out",
		Severity: models.NoticeInfo,
	})
}

// UpdateGoals persists new targets and applies them locally only after the
// store confirms. Without an active identity this is a silent no-op.
func (s *SessionService) UpdateGoals(goals models.Goals) bool {
	current := s.Current()
	if current == nil {
		return false
	}

	if err := s.profiles.UpdateGoals(current.ID, goals); err != nil {
		log.Printf("update goals for %s: %v", current.ID, err)
		s.notify.Notify(models.Notice{
			Title:       "Goals not saved",
			Description: "Your goals could not be updated.",
			Severity:    models.NoticeError,
		})
		return false
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == current.ID {
		updated := *s.current
		updated.Goals = goals
		s.current = &updated
	}
	s.mu.Unlock()

	s.notify.Notify(models.Notice{
		Title:    "Goals updated",
		Severity: models.NoticeSuccess,
	})
	return true
}
