package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"macrolog/store"
	"macrolog/utils"
)

// Credential is one set of login credentials. Its ID doubles as the profile
// id handed to the rest of the system.
type Credential struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

const sessionKey = "session.token"

// Local authenticates against a credentials table and keeps the session as
// a JWT in the local KV, the way a browser client keeps its token.
type Local struct {
	db *gorm.DB
	kv store.KV

	mu       sync.Mutex
	handlers map[int]SessionHandler
	nextID   int
}

func NewLocal(db *gorm.DB, kv store.KV) *Local {
	return &Local{db: db, kv: kv, handlers: make(map[int]SessionHandler)}
}

func (a *Local) GetSession() (string, bool) {
	raw, ok, err := a.kv.Get(sessionKey)
	if err != nil || !ok {
		return "", false
	}
	userID, err := utils.ParseJWT(raw)
	if err != nil {
		// expired or tampered; drop it
		_ = a.kv.Remove(sessionKey)
		return "", false
	}
	return userID, true
}

// Token returns the persisted session token, for handing to the UI client.
func (a *Local) Token() (string, bool) {
	raw, ok, err := a.kv.Get(sessionKey)
	if err != nil || !ok {
		return "", false
	}
	return raw, true
}

func (a *Local) OnSessionChange(h SessionHandler) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.handlers[id] = h
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers, id)
	}
}

func (a *Local) fire(userID string, signedIn bool) {
	a.mu.Lock()
	hs := make([]SessionHandler, 0, len(a.handlers))
	for _, h := range a.handlers {
		hs = append(hs, h)
	}
	a.mu.Unlock()
	for _, h := range hs {
		h(userID, signedIn)
	}
}

func (a *Local) SignInWithPassword(email, password string) error {
	var cred Credential
	if err := a.db.First(&cred, "email = ?", email).Error; err != nil {
		return errors.New("invalid email or password")
	}
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		return errors.New("invalid email or password")
	}

	token, err := utils.GenerateJWT(cred.ID)
	if err != nil {
		return err
	}
	if err := a.kv.Set(sessionKey, token); err != nil {
		return err
	}
	a.fire(cred.ID, true)
	return nil
}

func (a *Local) SignUp(email, password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	cred := Credential{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	if err := a.db.Create(&cred).Error; err != nil {
		return "", errors.New("email already registered")
	}

	// Establish the session but do not fire handlers: the caller still has
	// to insert the profile row before the identity is publishable.
	token, err := utils.GenerateJWT(cred.ID)
	if err != nil {
		return "", err
	}
	if err := a.kv.Set(sessionKey, token); err != nil {
		return "", err
	}
	return cred.ID, nil
}

func (a *Local) SignOut() error {
	if err := a.kv.Remove(sessionKey); err != nil {
		return err
	}
	a.fire("", false)
	return nil
}
