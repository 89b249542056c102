package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"planova.app/internal/ids"
)

// Service implements registration, password login, federated login and the
// admin-facing account lifecycle.
type Service struct {
	users  UserStore
	codec  *Codec
	google IdentityProvider
	codes  *SessionCodes
	now    func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithGoogle enables the federated login flow.
func WithGoogle(provider IdentityProvider) Option {
	return func(s *Service) {
		s.google = provider
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the account service.
func NewService(users UserStore, codec *Codec, opts ...Option) *Service {
	svc := &Service{
		users: users,
		codec: codec,
		codes: NewSessionCodes(defaultSessionCodeTTL),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Session is an issued token plus the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// DeriveRole maps an email to its bootstrap role. Applied exactly once, at
// account creation; the stored role is authoritative afterwards.
func DeriveRole(email string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(email)), "admin") {
		return RoleAdmin
	}
	return RoleUser
}

// Register creates a password-based account and issues its first token.
func (s *Service) Register(ctx context.Context, fullName, email, password string) (Session, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return Session{}, ErrInvalidInput
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	user := &User{
		ID:           ids.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         DeriveRole(email),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.issueSession(user)
}

// Login authenticates a password-based account. Unknown emails and wrong
// passwords are indistinguishable; federation-only accounts get a distinct
// error so the client can point the user at Google login.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if user.PasswordHash == "" {
		return Session{}, ErrFederatedOnly
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issueSession(user)
}

// ConsentURL returns the Google consent redirect target, if federation is
// configured.
func (s *Service) ConsentURL() (string, error) {
	if s.google == nil {
		return "", ErrFederationDisabled
	}
	return s.google.ConsentURL(), nil
}

// GoogleLogin exchanges the provider authorization code, materializes the
// account on first login, and returns the user along with a single-use
// session code for the browser redirect.
func (s *Service) GoogleLogin(ctx context.Context, code string) (*User, string, error) {
	if s.google == nil {
		return nil, "", ErrFederationDisabled
	}
	identity, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if errors.Is(err, ErrNotFound) {
		user = &User{
			ID:        ids.New(),
			FullName:  identity.Name,
			Email:     identity.Email,
			GoogleID:  identity.Subject,
			Avatar:    identity.Picture,
			Role:      DeriveRole(identity.Email),
			CreatedAt: s.now().UTC(),
		}
		err = s.users.Create(ctx, user)
		if errors.Is(err, ErrEmailTaken) {
			// Lost a first-login race; the account exists now.
			user, err = s.users.FindByEmail(ctx, identity.Email)
		}
	}
	if err != nil {
		return nil, "", err
	}

	sessionCode, err := s.codes.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, sessionCode, nil
}

// RedeemSession trades a single-use session code for a real token.
func (s *Service) RedeemSession(ctx context.Context, code string) (Session, error) {
	userID, err := s.codes.Redeem(code)
	if err != nil {
		return Session{}, err
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, err
	}
	return s.issueSession(user)
}

// Authenticate verifies a bearer token and returns the identity it asserts.
// No store lookup happens here; the signed claims are trusted until expiry.
func (s *Service) Authenticate(token string) (Identity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// Me loads the caller's own account.
func (s *Service) Me(ctx context.Context, caller Identity) (*User, error) {
	return s.users.Find(ctx, caller.UserID)
}

// ListAccounts returns every account. Admin only.
func (s *Service) ListAccounts(ctx context.Context, caller Identity) ([]*User, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// DeleteAccount hard-deletes an account. The authorization check runs before
// the existence check so unauthorized callers cannot probe for account ids.
func (s *Service) DeleteAccount(ctx context.Context, caller Identity, targetID string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ErrNotFound
	}
	return s.users.Delete(ctx, targetID)
}

func (s *Service) issueSession(user *User) (Session, error) {
	token, expiresAt, err := s.codec.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
