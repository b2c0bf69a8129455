package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/health"
)

// Gate is the identity pillar. It owns the user, session, and service
// account maps; only the Gate mutates them.
type Gate struct {
	config config.IdentityConfig
	sso    SSOConnector
	logger *zap.Logger

	mu              sync.RWMutex
	users           map[string]*userRecord
	sessions        map[string]Session
	serviceAccounts map[string]ServiceAccount
	initialized     bool
}

type userRecord struct {
	user         User
	passwordHash []byte
}

// NewGate creates an uninitialized Gate. sso may be nil when zero trust
// is disabled; with zero trust enabled and sso nil, a connector is built
// from the configured provider endpoint.
func NewGate(cfg config.IdentityConfig, sso SSOConnector, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sso == nil && cfg.ZeroTrustEnabled {
		sso = NewHTTPSSOConnector(cfg.SSOProvider, cfg.SSOEndpoint)
	}
	return &Gate{
		config:          cfg,
		sso:             sso,
		logger:          logger,
		users:           make(map[string]*userRecord),
		sessions:        make(map[string]Session),
		serviceAccounts: make(map[string]ServiceAccount),
	}
}

// Initialize connects the SSO provider when zero trust is enabled and
// loads the service accounts for the five core agents. A failed SSO
// connect aborts startup.
func (g *Gate) Initialize(ctx context.Context) error {
	if g.config.ZeroTrustEnabled {
		if err := g.sso.Connect(ctx); err != nil {
			return fmt.Errorf("connecting sso provider: %w", err)
		}
		g.logger.Info("sso provider connected", zap.String("provider", g.sso.Provider()))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.serviceAccounts = make(map[string]ServiceAccount, len(config.CoreAgents))
	for _, agent := range config.CoreAgents {
		account := ServiceAccount{
			ID:     uuid.NewString(),
			Name:   agent,
			Agent:  agent,
			Active: true,
		}
		g.serviceAccounts[account.ID] = account
	}
	g.initialized = true

	g.logger.Info("identity gate initialized",
		zap.Int("service_accounts", len(g.serviceAccounts)),
		zap.Bool("zero_trust", g.config.ZeroTrustEnabled),
	)
	return nil
}

// Shutdown clears sessions and service accounts.
func (g *Gate) Shutdown(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = make(map[string]Session)
	g.serviceAccounts = make(map[string]ServiceAccount)
	g.initialized = false
	return nil
}

// HealthStatus reports pillar health. Cheap and non-blocking.
func (g *Gate) HealthStatus() health.Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.initialized {
		return health.Unknown
	}
	return health.Healthy
}

// RegisterUser creates a user with a bcrypt-hashed password.
func (g *Gate) RegisterUser(email, name, password string, role Role) (User, error) {
	if email == "" || password == "" {
		return User{}, fmt.Errorf("%w: email and password required", ErrInvalidCredentials)
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	key := strings.ToLower(email)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.users[key]; exists {
		return User{}, fmt.Errorf("%w: %s", ErrUserExists, email)
	}

	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	g.users[key] = &userRecord{user: user, passwordHash: hash}
	return user, nil
}

// Authenticate verifies credentials and opens a session.
func (g *Gate) Authenticate(_ context.Context, email, password string) (User, Session, error) {
	if err := g.ready(); err != nil {
		return User{}, Session{}, err
	}

	g.mu.RLock()
	rec, ok := g.users[strings.ToLower(email)]
	g.mu.RUnlock()
	if !ok {
		return User{}, Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return User{}, Session{}, ErrInvalidCredentials
	}

	session := g.openSession(rec.user)
	g.logger.Info("user authenticated",
		zap.String("user_id", rec.user.ID),
		zap.String("role", string(rec.user.Role)),
	)
	return rec.user, session, nil
}

// AuthenticateSSO opens a session for an SSO-asserted identity. The
// assertion itself is validated by the zero-trust layer in front of the
// daemon; unknown emails are registered on first login with RoleUser.
func (g *Gate) AuthenticateSSO(_ context.Context, email, name string) (User, Session, error) {
	if err := g.ready(); err != nil {
		return User{}, Session{}, err
	}
	if !g.config.ZeroTrustEnabled {
		return User{}, Session{}, fmt.Errorf("sso authentication disabled")
	}
	if email == "" {
		return User{}, Session{}, fmt.Errorf("%w: email required", ErrInvalidCredentials)
	}

	key := strings.ToLower(email)

	g.mu.Lock()
	rec, ok := g.users[key]
	if !ok {
		user := User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      RoleUser,
			CreatedAt: time.Now().UTC(),
		}
		rec = &userRecord{user: user}
		g.users[key] = rec
	}
	g.mu.Unlock()

	return rec.user, g.openSession(rec.user), nil
}

// ValidateSession resolves a session token to its user. Expired
// sessions are removed on access.
func (g *Gate) ValidateSession(token string) (User, error) {
	g.mu.RLock()
	session, ok := g.sessions[token]
	g.mu.RUnlock()
	if !ok {
		return User{}, ErrSessionInvalid
	}

	if time.Now().After(session.ExpiresAt) {
		g.mu.Lock()
		delete(g.sessions, token)
		g.mu.Unlock()
		return User{}, ErrSessionInvalid
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, rec := range g.users {
		if rec.user.ID == session.UserID {
			return rec.user, nil
		}
	}
	return User{}, ErrUserNotFound
}

// Logout removes the session. Unknown tokens are a no-op.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, token)
}

// CheckPermission reports whether the session's user holds the
// permission. False is the answer for missing or expired sessions;
// authorization failure is an expected outcome, not an error.
func (g *Gate) CheckPermission(token string, permission Permission) bool {
	user, err := g.ValidateSession(token)
	if err != nil {
		return false
	}
	return user.Role.Has(permission)
}

// AuthorizeServiceAccount reports whether the account exists and is
// active.
func (g *Gate) AuthorizeServiceAccount(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	account, ok := g.serviceAccounts[id]
	return ok && account.Active
}

// ServiceAccounts returns a snapshot of the loaded service accounts.
func (g *Gate) ServiceAccounts() []ServiceAccount {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ServiceAccount, 0, len(g.serviceAccounts))
	for _, account := range g.serviceAccounts {
		out = append(out, account)
	}
	return out
}

func (g *Gate) openSession(user User) Session {
	timeout := g.config.SessionTimeout.Duration()
	if timeout <= 0 {
		timeout = time.Hour
	}
	session := Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(timeout),
	}
	g.mu.Lock()
	g.sessions[session.Token] = session
	g.mu.Unlock()
	return session
}

func (g *Gate) ready() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.initialized {
		return ErrNotInitialized
	}
	return nil
}
