package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/security/jwt"
	"github.com/ncobase/feedsync/structs"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionKey = "session"
	secretKey         = "jwt_secret"
)

// Messages shown for sign-up failures.
const (
	MsgEmailInUse      = "The email address is already in use."
	MsgMissingPassword = "Password is required."
	MsgInvalidEmail    = "Invalid email format."
)

// LocalProvider keeps bcrypt password hashes in the account store and the
// signed-in token in the local slot.
type LocalProvider struct {
	accounts   data.AccountStore
	slot       data.Slot
	tokens     *jwt.TokenManager
	sessionKey string
	cost       int
}

// Option configures a LocalProvider.
type Option func(*LocalProvider)

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) Option {
	return func(p *LocalProvider) { p.cost = cost }
}

// NewLocalProvider builds a provider from cfg. Without a configured JWT
// secret a random one is generated once and kept in slot.
func NewLocalProvider(ctx context.Context, accounts data.AccountStore, slot data.Slot, cfg *config.Auth, opts ...Option) (*LocalProvider, error) {
	if cfg == nil {
		cfg = &config.Auth{}
	}
	secret := ""
	var expire time.Duration
	if cfg.JWT != nil {
		secret = cfg.JWT.Secret
		expire = cfg.JWT.Expire
	}
	if secret == "" {
		var err error
		if secret, err = localSecret(ctx, slot); err != nil {
			return nil, err
		}
	}
	p := &LocalProvider{
		accounts:   accounts,
		slot:       slot,
		tokens:     jwt.NewTokenManager(secret, expire),
		sessionKey: cfg.SessionKey,
		cost:       bcrypt.DefaultCost,
	}
	if p.sessionKey == "" {
		p.sessionKey = defaultSessionKey
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func localSecret(ctx context.Context, slot data.Slot) (string, error) {
	secret, ok, err := slot.Get(ctx, secretKey)
	if err != nil {
		return "", fmt.Errorf("auth: read secret: %w", err)
	}
	if ok && secret != "" {
		return secret, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := slot.Set(ctx, secretKey, secret); err != nil {
		return "", fmt.Errorf("auth: store secret: %w", err)
	}
	return secret, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*structs.Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ecode.AuthError(MsgInvalidEmail, nil)
	}
	if password == "" {
		return nil, ecode.AuthError(MsgMissingPassword, nil)
	}

	if _, err := p.accounts.GetAccountByEmail(ctx, email); err == nil {
		return nil, ecode.AuthError(MsgEmailInUse, nil)
	} else if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &structs.Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, data.ErrDuplicate) {
			return nil, ecode.AuthError(MsgEmailInUse, err)
		}
		return nil, err
	}

	logger.Info(ctx, "account created", "uid", account.UID, "email", email)
	return p.start(ctx, account)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*structs.Session, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ecode.AuthError("", err)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ecode.AuthError("", err)
	}

	logger.Info(ctx, "signed in", "uid", account.UID)
	return p.start(ctx, account)
}

func (p *LocalProvider) start(ctx context.Context, account *structs.Account) (*structs.Session, error) {
	token, expiresAt, err := p.tokens.GenerateAccessToken(uuid.New().String(), map[string]any{
		"user_id": account.UID,
		"email":   account.Email,
	}, account.UID)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	if err := p.slot.Set(ctx, p.sessionKey, token); err != nil {
		return nil, fmt.Errorf("auth: store session: %w", err)
	}
	return &structs.Session{UID: account.UID, Email: account.Email, Token: token, ExpiresAt: expiresAt}, nil
}

// CurrentSession decodes the stored token. Invalid or expired tokens are
// removed and reported as signed out.
func (p *LocalProvider) CurrentSession(ctx context.Context) (*structs.Session, error) {
	token, ok, err := p.slot.Get(ctx, p.sessionKey)
	if err != nil {
		return nil, fmt.Errorf("auth: read session: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}
	claims, err := p.tokens.DecodeToken(token)
	if err != nil {
		logger.Debug(ctx, "dropping invalid session token", logger.ErrorKey, err)
		if err := p.slot.Remove(ctx, p.sessionKey); err != nil {
			return nil, fmt.Errorf("auth: remove session: %w", err)
		}
		return nil, nil
	}
	return &structs.Session{
		UID:       jwt.GetUserIDFromToken(claims),
		Email:     jwt.GetEmailFromToken(claims),
		Token:     token,
		ExpiresAt: jwt.GetExpirationFromToken(claims),
	}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	if err := p.slot.Remove(ctx, p.sessionKey); err != nil {
		return fmt.Errorf("auth: remove session: %w", err)
	}
	return nil
}
