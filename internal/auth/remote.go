package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bganesh/bprogress/internal/localstore"
	"github.com/bganesh/bprogress/internal/models"
	"github.com/bganesh/bprogress/internal/repository"
)

// Local store key holding the signed session token.
const sessionTokenKey = "b_progress_session_token"

const sessionTTL = 30 * 24 * time.Hour

// AccountRepository defines the persistence operations required by the
// remote session service.
type AccountRepository interface {
	// AccountExists returns true if an account with the email exists.
	AccountExists(ctx context.Context, email string) (bool, error)
	// CreateAccount inserts a new account row.
	CreateAccount(ctx context.Context, a repository.Account) error
	// AccountByEmail fetches an account, or repository.ErrAbsent.
	AccountByEmail(ctx context.Context, email string) (*repository.Account, error)
	// AccountByID fetches an account, or repository.ErrAbsent.
	AccountByID(ctx context.Context, id string) (*repository.Account, error)
}

// sessionClaims is the token payload. The session user is rebuilt from
// claims alone, so session resolution needs no database round trip.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

// RemoteSessions implements Service against the remote account registry.
// Session tokens are signed, persisted in the local store and
// re-validated by a background watcher that emits auth-state events
// when the resolved user changes.
type RemoteSessions struct {
	repo       AccountRepository
	store      *localstore.Store
	signingKey []byte
	log        *zap.Logger

	events chan Event

	// mu guards lastID, which is touched by both the caller's goroutine
	// (via establish and SignOut) and the Watch goroutine.
	mu     sync.Mutex
	lastID string
}

// NewRemoteSessions constructs the remote session service.
func NewRemoteSessions(repo AccountRepository, store *localstore.Store, signingKey string, log *zap.Logger) *RemoteSessions {
	return &RemoteSessions{
		repo:       repo,
		store:      store,
		signingKey: []byte(signingKey),
		events:     make(chan Event, 4),
		log:        log,
	}
}

// SignUp registers a new remote account and establishes a session.
// Duplicate emails surface as an AuthError; infrastructure failures do
// not.
func (s *RemoteSessions) SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error) {
	exists, err := s.repo.AccountExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if exists {
		return nil, &AuthError{Reason: "user already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := profile.Role
	if role == "" {
		role = models.RoleFriend
	}
	account := repository.Account{
		ID:           models.NewEntityID(),
		Email:        email,
		PasswordHash: hash,
		Name:         profile.Name,
		Role:         string(role),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.establish(account)
}

// SignIn verifies credentials and establishes a session. Bad
// credentials surface as an AuthError.
func (s *RemoteSessions) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	account, err := s.repo.AccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrAbsent) {
		return nil, &AuthError{Reason: "invalid credentials"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return nil, &AuthError{Reason: "invalid credentials"}
	}

	return s.establish(*account)
}

// SignOut removes the persisted session token and emits a sign-out
// event.
func (s *RemoteSessions) SignOut(context.Context) error {
	if err := s.store.Delete(sessionTokenKey); err != nil {
		return err
	}
	s.emit(nil)
	return nil
}

// CurrentSession rebuilds the session user from the persisted token.
// Missing, expired or malformed tokens all resolve to ErrNoSession;
// session resolution is never a hard failure.
func (s *RemoteSessions) CurrentSession(context.Context) (*models.User, error) {
	raw, ok, err := s.store.Get(sessionTokenKey)
	if err != nil || !ok {
		return nil, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	return &models.User{
		ID:       claims.Subject,
		Name:     claims.Name,
		Username: claims.Email,
		Role:     models.Role(claims.Role),
		JoinedAt: claims.JoinedAt,
	}, nil
}

// Events returns the auth-state change stream.
func (s *RemoteSessions) Events() <-chan Event {
	return s.events
}

// Watch re-resolves the persisted session on an interval and emits an
// event whenever the resolved user id changes, covering sessions
// established or torn down by another process sharing the store. Each
// resolved session is re-validated against the account registry: a
// deleted account invalidates the session, while a registry lookup
// failure keeps it (remote unavailability is not a sign-out). Watch
// blocks until ctx is done and is meant to run in its own goroutine.
func (s *RemoteSessions) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			user, err := s.CurrentSession(ctx)
			if err != nil {
				user = nil
			}
			if user != nil {
				if _, err := s.repo.AccountByID(ctx, user.ID); errors.Is(err, repository.ErrAbsent) {
					s.log.Warn("session account no longer exists, signing out",
						zap.String("user", user.ID))
					_ = s.store.Delete(sessionTokenKey)
					user = nil
				}
			}
			id := ""
			if user != nil {
				id = user.ID
			}
			s.mu.Lock()
			changed := id != s.lastID
			s.mu.Unlock()
			if changed {
				s.emit(user)
			}
		}
	}
}

// establish signs a session token for the account, persists it and
// emits an auth event.
func (s *RemoteSessions) establish(account repository.Account) (*models.User, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		Email:    account.Email,
		Name:     account.Name,
		Role:     account.Role,
		JoinedAt: account.CreatedAt.Format(time.RFC3339),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := s.store.Put(sessionTokenKey, token); err != nil {
		return nil, fmt.Errorf("persist session token: %w", err)
	}

	user := &models.User{
		ID:       account.ID,
		Name:     account.Name,
		Username: account.Email,
		Role:     models.Role(account.Role),
		JoinedAt: account.CreatedAt.Format(time.RFC3339),
	}
	s.emit(user)
	return user, nil
}

// emit publishes an auth event without ever blocking the caller.
func (s *RemoteSessions) emit(user *models.User) {
	s.mu.Lock()
	if user != nil {
		s.lastID = user.ID
	} else {
		s.lastID = ""
	}
	s.mu.Unlock()
	select {
	case s.events <- Event{User: user}:
	default:
		s.log.Warn("auth event dropped, subscriber not keeping up")
	}
}
