package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bganesh/bprogress/internal/catalog"
	"github.com/bganesh/bprogress/internal/localstore"
	"github.com/bganesh/bprogress/internal/models"
)

// Local store keys for offline auth state.
const (
	localUsersKey   = "b_progress_mock_users"
	localSessionKey = "b_progress_mock_session"
)

// localAccount is a registered offline account.
type localAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LocalSessions implements Service entirely against the on-device
// store, for deployments with no remote configured. Accounts created
// here get "local-" prefixed ids and are never mirrored remotely.
type LocalSessions struct {
	store *localstore.Store
}

// NewLocalSessions constructs the offline session service.
func NewLocalSessions(store *localstore.Store) *LocalSessions {
	return &LocalSessions{store: store}
}

// SignUp registers a new offline account. Duplicate emails are rejected
// with an AuthError.
func (s *LocalSessions) SignUp(_ context.Context, email, password string, profile Profile) (*models.User, error) {
	accounts, err := s.accounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email == email {
			return nil, &AuthError{Reason: "user already exists locally"}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := profile.Role
	if role == "" {
		role = models.RoleFriend
	}
	account := localAccount{
		ID:           models.LocalIDPrefix + models.NewEntityID(),
		Email:        email,
		PasswordHash: hash,
		Name:         profile.Name,
		Role:         string(role),
		Bio:          profile.Bio,
		CreatedAt:    time.Now().UTC(),
	}
	accounts = append(accounts, account)
	if err := s.putAccounts(accounts); err != nil {
		return nil, err
	}

	user := account.user()
	if err := s.putSession(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn checks registered offline accounts first, then falls back to
// the seeded supporter credentials from the catalog.
func (s *LocalSessions) SignIn(_ context.Context, email, password string) (*models.User, error) {
	accounts, err := s.accounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
			break
		}
		user := a.user()
		if err := s.putSession(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	for _, seed := range catalog.SeedUsers() {
		if seed.Username == email && seed.Password == password {
			user := seed
			user.Password = ""
			if err := s.putSession(&user); err != nil {
				return nil, err
			}
			return &user, nil
		}
	}

	return nil, &AuthError{Reason: "invalid credentials"}
}

// SignOut removes the offline session marker.
func (s *LocalSessions) SignOut(context.Context) error {
	return s.store.Delete(localSessionKey)
}

// CurrentSession reads the offline session marker.
func (s *LocalSessions) CurrentSession(context.Context) (*models.User, error) {
	raw, ok, err := s.store.Get(localSessionKey)
	if err != nil || !ok {
		return nil, ErrNoSession
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, ErrNoSession
	}
	return &user, nil
}

// Events returns nil: offline sessions have no push source.
func (s *LocalSessions) Events() <-chan Event {
	return nil
}

func (a localAccount) user() *models.User {
	return &models.User{
		ID:       a.ID,
		Name:     a.Name,
		Username: a.Email,
		Role:     models.Role(a.Role),
		Bio:      a.Bio,
		JoinedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (s *LocalSessions) accounts() ([]localAccount, error) {
	raw, ok, err := s.store.Get(localUsersKey)
	if err != nil {
		return nil, fmt.Errorf("read local accounts: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var accounts []localAccount
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		// A corrupt registry behaves like an empty one.
		return nil, nil
	}
	return accounts, nil
}

func (s *LocalSessions) putAccounts(accounts []localAccount) error {
	b, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode local accounts: %w", err)
	}
	return s.store.Put(localUsersKey, string(b))
}

func (s *LocalSessions) putSession(user *models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.store.Put(localSessionKey, string(b))
}
