package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
)

const minPasswordLength = 6

type account struct {
	id          string
	email       string
	hash        []byte
	displayName string
}

// LocalStore is an in-process identity provider. Passwords are stored as
// bcrypt hashes and a signed JWT is minted per authenticated session.
type LocalStore struct {
	mu          sync.Mutex
	secretKey   string
	accounts    map[string]account
	current     *Identity
	subscribers map[int]func(*Identity)
	nextSub     int
}

func NewLocalStore(secretKey string) *LocalStore {
	return &LocalStore{
		secretKey:   secretKey,
		accounts:    map[string]account{},
		subscribers: map[int]func(*Identity){},
	}
}

func (s *LocalStore) CreateAccount(c context.Context, email, password string) (Identity, error) {
	c, span := otel.Tracer.Start(c, "LocalStore CreateAccount")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "LocalStore CreateAccount").
		Str(log.KeyEmail, email).
		Logger()

	if len(password) < minPasswordLength {
		err := errors.ErrWeakPassword
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	logger.Info().Msg("hashed password")

	s.mu.Lock()
	if _, ok := s.accounts[email]; ok {
		s.mu.Unlock()
		err := errors.ErrEmailExists
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	acct := account{id: uuid.NewString(), email: email, hash: hash}
	s.accounts[email] = acct
	s.mu.Unlock()

	identity := Identity{ID: acct.id, Email: acct.email}
	token, err := s.SessionToken(identity)
	if err != nil {
		err = fmt.Errorf("failed minting session token with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	identity.Token = token

	s.mu.Lock()
	s.current = &identity
	s.mu.Unlock()
	s.notify(&identity)

	logger.Info().Str(log.KeyUserID, identity.ID).Msg("created account")
	return identity, nil
}

func (s *LocalStore) Authenticate(c context.Context, email, password string) (Identity, error) {
	c, span := otel.Tracer.Start(c, "LocalStore Authenticate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "LocalStore Authenticate").
		Str(log.KeyEmail, email).
		Logger()

	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		err := errors.ErrInvalidCredentials
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg("no account for email")
		return Identity{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying hashed password with password")
	err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password))
	if err != nil {
		err = errors.ErrInvalidCredentials
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg("password mismatch")
		return Identity{}, err
	}
	logger.Info().Msg("verified hashed password with password")

	identity := Identity{ID: acct.id, Email: acct.email, DisplayName: acct.displayName}
	token, err := s.SessionToken(identity)
	if err != nil {
		err = fmt.Errorf("failed minting session token with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	identity.Token = token

	s.mu.Lock()
	s.current = &identity
	s.mu.Unlock()
	s.notify(&identity)

	return identity, nil
}

func (s *LocalStore) SignOut(c context.Context) error {
	_, span := otel.Tracer.Start(c, "LocalStore SignOut")
	defer span.End()

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.notify(nil)
	return nil
}

func (s *LocalStore) UpdateDisplayName(c context.Context, id, displayName string) error {
	_, span := otel.Tracer.Start(c, "LocalStore UpdateDisplayName")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	for email, acct := range s.accounts {
		if acct.id == id {
			acct.displayName = displayName
			s.accounts[email] = acct
			if s.current != nil && s.current.ID == id {
				updated := *s.current
				updated.DisplayName = displayName
				s.current = &updated
			}
			return nil
		}
	}
	return errors.ErrNoAccount
}

func (s *LocalStore) SendPasswordReset(c context.Context, email string) error {
	_, span := otel.Tracer.Start(c, "LocalStore SendPasswordReset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; !ok {
		return errors.ErrNoAccount
	}
	return nil
}

// OnChange delivers the current identity to fn right away, so a subscriber
// can always resolve "signed in or not" at registration, then invokes fn on
// every later change.
func (s *LocalStore) OnChange(fn func(*Identity)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	current := s.current
	s.mu.Unlock()
	fn(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *LocalStore) notify(identity *Identity) {
	s.mu.Lock()
	fns := make([]func(*Identity), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(identity)
	}
}

// SessionToken mints a signed token for an authenticated identity, valid for
// 30 minutes.
func (s *LocalStore) SessionToken(identity Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"storefront"},
			Issuer:    "storefront-identity",
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signed, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}
