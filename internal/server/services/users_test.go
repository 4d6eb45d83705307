package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/server/auth"
	"github.com/dmitrijs2005/emphub/internal/server/config"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	hashCost = bcrypt.MinCost
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, u *fakeUsersRepo) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
	}
	return NewUserService(db, &fakeRepoManager{u: u, e: newMemEmployees()}, cfg)
}

func TestSignup_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeUsersRepo{}
	s := newUserService(t, db, repo)

	u, err := s.Signup(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", repo.created.UserName)
	assert.Equal(t, "alice@example.com", repo.created.Email)
	assert.NotEqual(t, "pw", repo.created.PasswordHash, "password must be stored hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("pw")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_MissingFields(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := newUserService(t, db, &fakeUsersRepo{})

	cases := map[string][3]string{
		"no username": {"", "a@x.io", "pw"},
		"no email":    {"alice", "", "pw"},
		"no password": {"alice", "a@x.io", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Signup(context.Background(), c[0], c[1], c[2])
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet(), "validation happens before any database work")
}

func TestSignup_PasswordTooLong(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeUsersRepo{})

	_, err := s.Signup(context.Background(), "alice", "a@x.io", strings.Repeat("p", 100))
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestSignup_AlreadyExistsByLookup(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeUsersRepo{findOut: &models.User{ID: "u1", UserName: "alice"}}
	s := newUserService(t, db, repo)

	_, err := s.Signup(context.Background(), "alice", "new@x.io", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Nil(t, repo.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_AlreadyExistsByUniqueIndex(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeUsersRepo{createErr: common.ErrorAlreadyExists})

	_, err := s.Signup(context.Background(), "alice", "a@x.io", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_LookupError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeUsersRepo{findErr: errors.New("db down")})

	_, err := s.Signup(context.Background(), "alice", "a@x.io", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorAlreadyExists))
	assert.False(t, errors.Is(err, common.ErrorValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_BeginError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	s := newUserService(t, db, &fakeUsersRepo{})

	_, err := s.Signup(context.Background(), "alice", "a@x.io", "pw")
	require.Error(t, err)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeUsersRepo{getOut: &models.User{ID: "u-42", Email: "a@x.io", PasswordHash: hashed(t, "pw")}}
	s := newUserService(t, db, repo)

	token, err := s.Login(context.Background(), "a@x.io", "pw")
	require.NoError(t, err)

	id, err := auth.GetUserIDFromToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u-42", id)
}

func TestLogin_Unauthorized(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeUsersRepo{getOut: &models.User{ID: "u-42", Email: "a@x.io", PasswordHash: hashed(t, "pw")}}
	s := newUserService(t, db, repo)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "a@x.io", "nope"},
		{"unknown email", "b@x.io", "pw"},
		{"empty email", "", "pw"},
		{"empty password", "a@x.io", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}
}

func TestLogin_StoreError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeUsersRepo{getErr: errors.New("db down")})

	_, err := s.Login(context.Background(), "a@x.io", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorUnauthorized))
}
