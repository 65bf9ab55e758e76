// Package session owns the identity state of the local client and reconciles
// it against the identity provider and the profile document store.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantmart/storefront/docstore"
	"github.com/verdantmart/storefront/identity"
	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
	"github.com/verdantmart/storefront/internal/validate"
)

const usersCollection = "users"

type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// User is the authenticated profile. Token is the provider-minted session
// credential for the presentation layer; it is never serialized or persisted.
type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DisplayName string    `json:"displayName"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Token       string    `json:"-"`
}

// Session is the snapshot every consumer reads. User is nil unless Status is
// Authenticated.
type Session struct {
	Status Status
	User   *User
}

// Manager is the single source of truth for "who is acting". Every mutation
// replaces the whole Session snapshot and broadcasts it to subscribers.
type Manager struct {
	identity identity.Store
	docs     docstore.Store

	mu          sync.Mutex
	session     Session
	initialized bool
	restored    bool
	subscribers map[int]chan Session
	nextSub     int
}

func NewManager(identityStore identity.Store, docs docstore.Store) *Manager {
	return &Manager{
		identity:    identityStore,
		docs:        docs,
		subscribers: map[int]chan Session{},
	}
}

func (m *Manager) Signup(c context.Context, param SignupRequest) (User, error) {
	c, span := otel.Tracer.Start(c, "SessionManager Signup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager Signup").
		Str(log.KeyEmail, param.Email).
		Logger()

	err := validate.Struct(param)
	if err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return User{}, err
	}

	prior := m.setStatus(Authenticating)

	logger = logger.With().Str(log.KeyProcess, "creating account").Logger()
	logger.Info().Msg("creating account")
	id, err := m.identity.CreateAccount(c, param.Email, param.Password)
	if err != nil {
		err = fmt.Errorf("failed creating account with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		m.restore(prior)
		return User{}, errors.AuthError{Err: err}
	}
	logger = logger.With().Str(log.KeyUserID, id.ID).Logger()
	logger.Info().Msg("created account")

	displayName := strings.TrimSpace(param.FirstName + " " + param.LastName)
	logger = logger.With().Str(log.KeyProcess, "updating display name").Logger()
	logger.Info().Msg("updating display name")
	err = m.identity.UpdateDisplayName(c, id.ID, displayName)
	if err != nil {
		err = fmt.Errorf("failed updating display name with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		m.restore(prior)
		return User{}, errors.AuthError{Err: err}
	}
	logger.Info().Msg("updated display name")

	now := time.Now().UTC()
	doc := docstore.Document{
		"uid":         id.ID,
		"email":       param.Email,
		"firstName":   param.FirstName,
		"lastName":    param.LastName,
		"displayName": displayName,
		"createdAt":   now.Format(time.RFC3339),
		"lastLoginAt": now.Format(time.RFC3339),
	}
	logger = logger.With().Str(log.KeyProcess, "persisting profile document").Logger()
	logger.Info().Msg("persisting profile document")
	err = m.docs.Set(c, usersCollection, id.ID, doc, false)
	if err != nil {
		err = fmt.Errorf("failed persisting profile document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		m.restore(prior)
		return User{}, errors.AuthError{Err: err}
	}
	logger.Info().Msg("persisted profile document")

	user := User{
		UID:         id.ID,
		Email:       param.Email,
		FirstName:   param.FirstName,
		LastName:    param.LastName,
		DisplayName: displayName,
		CreatedAt:   now,
		Token:       id.Token,
	}
	m.setAuthenticated(user)
	return user, nil
}

func (m *Manager) Login(c context.Context, param LoginRequest) (User, error) {
	c, span := otel.Tracer.Start(c, "SessionManager Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	err := validate.Struct(param)
	if err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return User{}, err
	}

	prior := m.setStatus(Authenticating)

	logger = logger.With().Str(log.KeyProcess, "authenticating").Logger()
	logger.Info().Msg("authenticating")
	id, err := m.identity.Authenticate(c, param.Email, param.Password)
	if err != nil {
		// Normalized regardless of the provider's reason so a caller cannot
		// tell which field was wrong.
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg("failed authenticating")
		m.restore(prior)
		return User{}, errors.AuthError{Err: errors.ErrInvalidCredentials}
	}
	logger = logger.With().Str(log.KeyUserID, id.ID).Logger()
	logger.Info().Msg("authenticated")

	logger = logger.With().Str(log.KeyProcess, "finding profile document").Logger()
	logger.Info().Msg("finding profile document")
	doc, err := m.docs.Get(c, usersCollection, id.ID)
	if stderrors.Is(err, errors.ErrNotFound) {
		// Login must not silently create a profile.
		logger.Error().Err(errors.ErrNoAccount).Msg("no profile document, signing back out")
		signOutErr := m.identity.SignOut(c)
		if signOutErr != nil {
			logger.Error().Err(signOutErr).Msg("failed signing back out")
		}
		m.restore(Session{Status: Unauthenticated})
		err = errors.AuthError{Err: errors.ErrNoAccount}
		errors.HandleError(err, span)
		return User{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding profile document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		m.restore(prior)
		return User{}, errors.AuthError{Err: err}
	}
	logger.Info().Msg("found profile document")

	logger = logger.With().Str(log.KeyProcess, "updating last login").Logger()
	logger.Info().Msg("updating last login")
	err = m.docs.Set(c, usersCollection, id.ID, docstore.Document{
		"lastLoginAt": time.Now().UTC().Format(time.RFC3339),
	}, true)
	if err != nil {
		err = fmt.Errorf("failed updating last login with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		m.restore(prior)
		return User{}, errors.AuthError{Err: err}
	}
	logger.Info().Msg("updated last login")

	user := userFromDocument(id, doc)
	m.setAuthenticated(user)
	return user, nil
}

// Logout signs out of the identity provider. Local session state is cleared
// even when the provider call fails, so the user is never stuck
// authenticated locally.
func (m *Manager) Logout(c context.Context) error {
	c, span := otel.Tracer.Start(c, "SessionManager Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager Logout").
		Str(log.KeyProcess, "signing out").
		Logger()

	logger.Info().Msg("signing out")
	err := m.identity.SignOut(c)

	m.restore(Session{Status: Unauthenticated})

	if err != nil {
		err = fmt.Errorf("failed signing out with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.AuthError{Err: err}
	}
	logger.Info().Msg("signed out")
	return nil
}

func (m *Manager) UpdateProfile(c context.Context, param ProfileUpdate) (User, error) {
	c, span := otel.Tracer.Start(c, "SessionManager UpdateProfile")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager UpdateProfile").
		Logger()

	current := m.Snapshot()
	if current.Status != Authenticated || current.User == nil {
		err := errors.AuthError{Err: errors.ErrNotAuthenticated}
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return User{}, err
	}

	err := validate.Struct(param)
	if err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return User{}, err
	}

	user := *current.User
	logger = logger.With().Str(log.KeyUserID, user.UID).Logger()

	doc := docstore.Document{"updatedAt": time.Now().UTC().Format(time.RFC3339)}
	if param.FirstName != "" {
		user.FirstName = param.FirstName
		doc["firstName"] = param.FirstName
	}
	if param.LastName != "" {
		user.LastName = param.LastName
		doc["lastName"] = param.LastName
	}
	if param.Phone != "" {
		user.Phone = param.Phone
		doc["phone"] = param.Phone
	}
	if param.Address != "" {
		user.Address = param.Address
		doc["address"] = param.Address
	}
	if param.Email != "" {
		user.Email = param.Email
		doc["email"] = param.Email
	}

	if param.FirstName != "" || param.LastName != "" {
		displayName := strings.TrimSpace(user.FirstName + " " + user.LastName)
		logger = logger.With().Str(log.KeyProcess, "updating display name").Logger()
		logger.Info().Msg("updating display name")
		err = m.identity.UpdateDisplayName(c, user.UID, displayName)
		if err != nil {
			err = fmt.Errorf("failed updating display name with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return User{}, errors.AuthError{Err: err}
		}
		user.DisplayName = displayName
		doc["displayName"] = displayName
		logger.Info().Msg("updated display name")
	}

	logger = logger.With().Str(log.KeyProcess, "merging profile document").Logger()
	logger.Info().Msg("merging profile document")
	err = m.docs.Set(c, usersCollection, user.UID, doc, true)
	if err != nil {
		err = fmt.Errorf("failed merging profile document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return User{}, errors.AuthError{Err: err}
	}
	logger.Info().Msg("merged profile document")

	m.setAuthenticated(user)
	return user, nil
}

// ResetPassword is fire-and-forget; it does not require a session.
func (m *Manager) ResetPassword(c context.Context, email string) (string, error) {
	c, span := otel.Tracer.Start(c, "SessionManager ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager ResetPassword").
		Str(log.KeyEmail, email).
		Logger()

	err := validate.Get().Var(email, "required,email")
	if err != nil {
		verr := errors.ValidationError{Err: fmt.Errorf("invalid email with error=%w", err)}
		errors.HandleError(verr, span)
		logger.Error().Err(verr).Msg(verr.Error())
		return "", verr
	}

	logger = logger.With().Str(log.KeyProcess, "sending password reset").Logger()
	logger.Info().Msg("sending password reset")
	err = m.identity.SendPasswordReset(c, email)
	if err != nil {
		err = fmt.Errorf("failed sending password reset with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", errors.AuthError{Err: err}
	}
	logger.Info().Msg("sent password reset")

	return "Password reset email sent. Please check your inbox.", nil
}

// Restore registers the identity provider's change subscription exactly once.
// The provider delivers the current state immediately, so Initialized flips
// and a Session snapshot is broadcast before Restore returns; consumers can
// tell "not yet checked" from "checked, logged out" right at startup. The
// returned func releases the subscription.
func (m *Manager) Restore(c context.Context) func() {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return func() {}
	}
	m.restored = true
	m.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionManager Restore").
		Logger()

	unsubscribe := m.identity.OnChange(func(id *identity.Identity) {
		if id == nil {
			logger.Info().Str(log.KeyProcess, "auth change").Msg("provider reports signed out")
			m.mu.Lock()
			m.initialized = true
			m.mu.Unlock()
			m.restore(Session{Status: Unauthenticated})
			return
		}

		logger := logger.With().
			Str(log.KeyProcess, "auth change").
			Str(log.KeyUserID, id.ID).
			Logger()
		logger.Info().Msg("provider reports signed in")

		user := User{UID: id.ID, Email: id.Email, DisplayName: id.DisplayName, Token: id.Token}
		doc, err := m.docs.Get(c, usersCollection, id.ID)
		if err == nil {
			user = userFromDocument(*id, doc)
		} else if !stderrors.Is(err, errors.ErrNotFound) {
			logger.Error().Err(err).Msg("failed finding profile document")
		}

		m.mu.Lock()
		m.initialized = true
		m.mu.Unlock()
		m.setAuthenticated(user)
	})

	return unsubscribe
}

// Subscribe returns a channel of Session snapshots and a cancel func. Slow
// consumers drop intermediate snapshots rather than block the mutation path.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Session, 16)
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(existing)
		}
	}
}

func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Manager) setStatus(status Status) Session {
	m.mu.Lock()
	prior := m.session
	m.session = Session{Status: status, User: prior.User}
	m.mu.Unlock()
	m.broadcast()
	return prior
}

func (m *Manager) setAuthenticated(user User) {
	m.mu.Lock()
	m.session = Session{Status: Authenticated, User: &user}
	m.mu.Unlock()
	m.broadcast()
}

func (m *Manager) restore(session Session) {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	m.broadcast()
}

func (m *Manager) broadcast() {
	m.mu.Lock()
	snapshot := m.session
	channels := make([]chan Session, 0, len(m.subscribers))
	for _, ch := range m.subscribers {
		channels = append(channels, ch)
	}
	m.mu.Unlock()
	for _, ch := range channels {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func userFromDocument(id identity.Identity, doc docstore.Document) User {
	user := User{
		UID:         id.ID,
		Email:       stringField(doc, "email", id.Email),
		FirstName:   stringField(doc, "firstName", ""),
		LastName:    stringField(doc, "lastName", ""),
		DisplayName: stringField(doc, "displayName", id.DisplayName),
		Phone:       stringField(doc, "phone", ""),
		Address:     stringField(doc, "address", ""),
		Token:       id.Token,
	}
	if raw, ok := doc["createdAt"].(string); ok {
		if createdAt, err := time.Parse(time.RFC3339, raw); err == nil {
			user.CreatedAt = createdAt
		}
	}
	return user
}

func stringField(doc docstore.Document, field, fallback string) string {
	if v, ok := doc[field].(string); ok && v != "" {
		return v
	}
	return fallback
}
