// Package services contains server-side business logic. This file
// implements AuthService, which composes the password hasher, the account
// repository, the session token codec and the session transport into the
// signup, login and logout state transitions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avdokushin/authgate/internal/common"
	"github.com/avdokushin/authgate/internal/cryptox"
	"github.com/avdokushin/authgate/internal/dbx"
	"github.com/avdokushin/authgate/internal/logging"
	"github.com/avdokushin/authgate/internal/server/auth"
	"github.com/avdokushin/authgate/internal/server/config"
	"github.com/avdokushin/authgate/internal/server/models"
	"github.com/avdokushin/authgate/internal/server/repositories/repomanager"
)

// AuthService provides the credential-based authentication operations:
//   - Signup: validate, create the account, establish a session
//   - Login: validate, verify credentials, establish a session
//   - Logout: drop the client-held session token
//   - CurrentSession / Profile: the session query surface for protected views
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secretKey   []byte
	sessionTTL  time.Duration
	bcryptCost  int
	logger      logging.Logger
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		secretKey:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTokenValidityDuration,
		bcryptCost:  cfg.BcryptCost,
		logger:      logger.With("module", "auth_service"),
	}
}

// Signup validates the submission, creates the account and establishes a
// session. Validation failures return field-keyed errors without touching
// the store. A duplicate email, whether caught by the pre-check or by the
// unique constraint under a concurrent signup, is reported on the email
// field; no account is created and no token issued in that case.
func (s *AuthService) Signup(ctx context.Context, sub Submission, transport SessionTransport) Result {

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = normalizeEmail(sub.Email)

	if errs := validateSignup(sub); len(errs) > 0 {
		return fieldResult(errs)
	}

	// Deliberately CPU-expensive; done before the transaction so the
	// connection is not held during hashing.
	digest, err := cryptox.HashPassword(sub.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err.Error())
		return failResult(msgSignupFailed)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Name:         sub.Name,
		Email:        sub.Email,
		PasswordHash: digest,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		_, err := repo.GetByEmail(ctx, sub.Email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		_, err = repo.Create(ctx, account)
		return err
	})

	if errors.Is(err, common.ErrorAlreadyExists) {
		return fieldResult(map[string][]string{"email": {msgEmailTaken}})
	}
	if err != nil {
		s.logger.Error(ctx, "account creation failed", "error", err.Error())
		return failResult(msgSignupFailed)
	}

	return s.establishSession(ctx, account.ID, transport, msgSignupFailed)
}

// Login validates the submission, verifies the password against the stored
// digest and establishes a session. An unknown email is attributed to the
// email field, a wrong password to the password field; neither issues a
// token.
func (s *AuthService) Login(ctx context.Context, sub Submission, transport SessionTransport) Result {

	sub.Email = normalizeEmail(sub.Email)

	if errs := validateLogin(sub); len(errs) > 0 {
		return fieldResult(errs)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, sub.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fieldResult(map[string][]string{"email": {msgNoAccount}})
		}
		s.logger.Error(ctx, "account lookup failed", "error", err.Error())
		return failResult(msgLoginFailed)
	}

	if !cryptox.CheckPassword(sub.Password, account.PasswordHash) {
		return fieldResult(map[string][]string{"password": {msgIncorrectPassword}})
	}

	return s.establishSession(ctx, account.ID, transport, msgLoginFailed)
}

// Logout unconditionally clears the transport channel. Calling it with no
// active session is a no-op that still reports success. The token itself
// stays cryptographically valid until natural expiry; there is no
// server-side revocation set.
func (s *AuthService) Logout(transport SessionTransport) Result {
	transport.Clear()
	return okResult()
}

// CurrentSession reads the token from the transport and verifies it.
// Any verification failure means "not authenticated".
func (s *AuthService) CurrentSession(transport SessionTransport) (*auth.Session, bool) {
	token, ok := transport.Read()
	if !ok {
		return nil, false
	}
	session, err := auth.VerifyToken(token, s.secretKey)
	if err != nil {
		return nil, false
	}
	return session, true
}

// Profile returns the account behind a verified session, for protected
// views. The caller must already hold a verified account identifier.
func (s *AuthService) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "profile lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return account, nil
}

// SecretKey exposes the signing secret to the HTTP layer, which verifies
// tokens in its auth middleware without a service round-trip.
func (s *AuthService) SecretKey() []byte {
	return s.secretKey
}

func (s *AuthService) establishSession(ctx context.Context, accountID string, transport SessionTransport, failMessage string) Result {
	token, err := auth.IssueToken(accountID, s.secretKey, s.sessionTTL)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		return failResult(failMessage)
	}
	transport.Store(token, time.Now().Add(s.sessionTTL))
	return okResult()
}
