package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avdokushin/authgate/internal/common"
	"github.com/avdokushin/authgate/internal/cryptox"
	"github.com/avdokushin/authgate/internal/dbx"
	"github.com/avdokushin/authgate/internal/logging"
	"github.com/avdokushin/authgate/internal/server/auth"
	"github.com/avdokushin/authgate/internal/server/config"
	"github.com/avdokushin/authgate/internal/server/models"
	accountsrepo "github.com/avdokushin/authgate/internal/server/repositories/accounts"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newAuthService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *AuthService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		SessionTokenValidityDuration: time.Hour,
		BcryptCost:                   4, // minimum cost keeps the suite fast
	}
	return NewAuthService(db, rm, cfg, noopLogger())
}

func noopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeAccountsRepo struct {
	createOut   *models.Account
	createIn    *models.Account
	createErr   error
	createCalls int

	byEmailOut   *models.Account
	byEmailErr   error
	byEmailCalls int

	byIDOut   *models.Account
	byIDErr   error
	byIDCalls int
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.createCalls++
	f.createIn = a
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return a, nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.byEmailCalls++
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.byIDCalls++
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeRepoManager struct {
	accounts *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.accounts }

type fakeTransport struct {
	token   string
	expires time.Time
	stored  bool
	cleared bool
}

func (f *fakeTransport) Store(token string, expires time.Time) {
	f.token = token
	f.expires = expires
	f.stored = true
}

func (f *fakeTransport) Read() (string, bool) {
	if f.token == "" {
		return "", false
	}
	return f.token, true
}

func (f *fakeTransport) Clear() {
	f.token = ""
	f.cleared = true
}

func validSignup() Submission {
	return Submission{Name: "Ana", Email: "ana@x.com", Password: "hunter2!X"}
}

// --- Signup ---

func TestSignup_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeAccountsRepo{byEmailErr: common.ErrorNotFound}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Signup(context.Background(), validSignup(), transport)

	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected one Create call, got %d", repo.createCalls)
	}
	if !transport.stored {
		t.Fatalf("expected a token to be stored in the transport")
	}

	session, err := auth.VerifyToken(transport.token, []byte("k"))
	if err != nil {
		t.Fatalf("stored token does not verify: %v", err)
	}
	if session.AccountID == "" {
		t.Fatalf("stored token carries no account id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignup_ValidationFailure_NoStoreAccess(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeAccountsRepo{}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Signup(context.Background(), Submission{Name: "", Email: "bad", Password: "short"}, transport)

	if res.OK {
		t.Fatalf("expected failure")
	}
	for _, field := range []string{"name", "email", "password"} {
		if len(res.Errors[field]) == 0 {
			t.Fatalf("expected error on field %q, got %+v", field, res.Errors)
		}
	}
	if repo.byEmailCalls != 0 || repo.createCalls != 0 {
		t.Fatalf("validation failure must not touch the store")
	}
	if transport.stored {
		t.Fatalf("validation failure must not issue a token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store was accessed: %v", err)
	}
}

func TestSignup_PasswordPolicyList(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeRepoManager{accounts: &fakeAccountsRepo{}})

	res := s.Signup(context.Background(), Submission{Name: "Ana", Email: "ana@x.com", Password: "abc"}, &fakeTransport{})

	if len(res.Errors["password"]) < 2 {
		t.Fatalf("expected every violated rule listed, got %+v", res.Errors["password"])
	}
}

func TestSignup_DuplicateEmail_PreCheck(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeAccountsRepo{byEmailOut: &models.Account{ID: "id-1", Email: "ana@x.com"}}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Signup(context.Background(), validSignup(), transport)

	if res.OK {
		t.Fatalf("expected failure for duplicate email")
	}
	if len(res.Errors["email"]) != 1 {
		t.Fatalf("expected email field error, got %+v", res.Errors)
	}
	if repo.createCalls != 0 {
		t.Fatalf("no account must be created on duplicate email")
	}
	if transport.stored {
		t.Fatalf("no token must be issued on duplicate email")
	}
}

func TestSignup_DuplicateEmail_UniqueConstraintRace(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	// Pre-check misses, the insert itself trips the unique constraint.
	repo := &fakeAccountsRepo{byEmailErr: common.ErrorNotFound, createErr: common.ErrorAlreadyExists}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Signup(context.Background(), validSignup(), transport)

	if res.OK || len(res.Errors["email"]) != 1 {
		t.Fatalf("unique violation must surface as an email field error, got %+v", res)
	}
	if transport.stored {
		t.Fatalf("no token must be issued")
	}
}

func TestSignup_StoreFailure_GenericMessage(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeAccountsRepo{byEmailErr: common.ErrorNotFound, createErr: errors.New("pq: connection refused")}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})

	res := s.Signup(context.Background(), validSignup(), &fakeTransport{})

	if res.OK {
		t.Fatalf("expected failure")
	}
	if res.Message != msgSignupFailed {
		t.Fatalf("expected generic message, got %q", res.Message)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("infrastructure failure must not be field-attributed, got %+v", res.Errors)
	}
}

func TestSignup_NormalizesEmailCase(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeAccountsRepo{byEmailErr: common.ErrorNotFound}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})

	res := s.Signup(context.Background(), Submission{Name: "Ana", Email: "Ana@X.Com", Password: "hunter2!X"}, &fakeTransport{})
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if repo.createIn == nil || repo.createIn.Email != "ana@x.com" {
		t.Fatalf("email must be stored lowercased, got %+v", repo.createIn)
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	digest, err := cryptox.HashPassword("hunter2!X", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	repo := &fakeAccountsRepo{byEmailOut: &models.Account{ID: "id-1", Email: "ana@x.com", PasswordHash: digest}}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Login(context.Background(), Submission{Email: "ana@x.com", Password: "hunter2!X"}, transport)

	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}

	session, err := auth.VerifyToken(transport.token, []byte("k"))
	if err != nil {
		t.Fatalf("stored token does not verify: %v", err)
	}
	if session.AccountID != "id-1" {
		t.Fatalf("token bound to wrong account: %q", session.AccountID)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeAccountsRepo{byEmailErr: common.ErrorNotFound}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Login(context.Background(), Submission{Email: "ghost@x.com", Password: "whatever1!"}, transport)

	if res.OK {
		t.Fatalf("expected failure")
	}
	if got := res.Errors["email"]; len(got) != 1 || got[0] != msgNoAccount {
		t.Fatalf("expected email field error %q, got %+v", msgNoAccount, res.Errors)
	}
	if transport.stored {
		t.Fatalf("no token must be issued for unknown email")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	digest, err := cryptox.HashPassword("hunter2!X", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	repo := &fakeAccountsRepo{byEmailOut: &models.Account{ID: "id-1", Email: "ana@x.com", PasswordHash: digest}}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})
	transport := &fakeTransport{}

	res := s.Login(context.Background(), Submission{Email: "ana@x.com", Password: "wrong"}, transport)

	if res.OK {
		t.Fatalf("expected failure")
	}
	if got := res.Errors["password"]; len(got) != 1 || got[0] != msgIncorrectPassword {
		t.Fatalf("expected password field error %q, got %+v", msgIncorrectPassword, res.Errors)
	}
	if transport.stored {
		t.Fatalf("no token must be issued for wrong password")
	}
}

func TestLogin_ValidationFailure_NoStoreAccess(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeAccountsRepo{}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})

	res := s.Login(context.Background(), Submission{Email: "", Password: ""}, &fakeTransport{})

	if res.OK {
		t.Fatalf("expected failure")
	}
	if len(res.Errors["email"]) == 0 || len(res.Errors["password"]) == 0 {
		t.Fatalf("expected field errors, got %+v", res.Errors)
	}
	if repo.byEmailCalls != 0 {
		t.Fatalf("validation failure must not touch the store")
	}
}

func TestLogin_StoreFailure_GenericMessage(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeAccountsRepo{byEmailErr: errors.New("pq: connection refused")}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})

	res := s.Login(context.Background(), Submission{Email: "ana@x.com", Password: "hunter2!X"}, &fakeTransport{})

	if res.OK || res.Message != msgLoginFailed {
		t.Fatalf("expected generic failure message, got %+v", res)
	}
}

// --- Logout ---

func TestLogout_ClearsTransport(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeRepoManager{accounts: &fakeAccountsRepo{}})
	transport := &fakeTransport{token: "some-token"}

	res := s.Logout(transport)

	if !res.OK {
		t.Fatalf("logout must report success")
	}
	if !transport.cleared || transport.token != "" {
		t.Fatalf("transport was not cleared")
	}
}

func TestLogout_IdempotentWithoutSession(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeRepoManager{accounts: &fakeAccountsRepo{}})
	transport := &fakeTransport{}

	if res := s.Logout(transport); !res.OK {
		t.Fatalf("logout without a session must still succeed")
	}
	if !transport.cleared {
		t.Fatalf("clear must be called unconditionally")
	}
}

// --- CurrentSession / Profile ---

func TestCurrentSession(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeRepoManager{accounts: &fakeAccountsRepo{}})

	token, err := auth.IssueToken("id-1", []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	if session, ok := s.CurrentSession(&fakeTransport{token: token}); !ok || session.AccountID != "id-1" {
		t.Fatalf("expected valid session, got ok=%v session=%+v", ok, session)
	}
	if _, ok := s.CurrentSession(&fakeTransport{}); ok {
		t.Fatalf("absent token must mean no session")
	}
	if _, ok := s.CurrentSession(&fakeTransport{token: "garbage"}); ok {
		t.Fatalf("garbage token must mean no session")
	}
}

func TestProfile(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	account := &models.Account{ID: "id-1", Name: "Ana", Email: "ana@x.com"}
	repo := &fakeAccountsRepo{byIDOut: account}
	s := newAuthService(t, db, &fakeRepoManager{accounts: repo})

	got, err := s.Profile(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("Profile error: %v", err)
	}
	if got.Name != "Ana" {
		t.Fatalf("unexpected account: %+v", got)
	}

	repo.byIDErr = common.ErrorNotFound
	if _, err := s.Profile(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}

	repo.byIDErr = errors.New("pq: connection refused")
	if _, err := s.Profile(context.Background(), "id-1"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("driver errors must be masked as ErrorInternal, got %v", err)
	}
}
