package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/quiz-client/models"
	"golang.org/x/crypto/bcrypt"
)

func newSeededDirectory(t *testing.T) *Directory {
	t.Helper()
	dir := NewDirectory(bcrypt.MinCost)
	require.NoError(t, SeedDefaults(dir))
	return dir
}

func TestDirectory_Authenticate(t *testing.T) {
	dir := newSeededDirectory(t)

	t.Run("by username", func(t *testing.T) {
		acct, err := dir.Authenticate("admin", DefaultAdmin.Password)
		require.NoError(t, err)
		assert.True(t, acct.Identity().IsAdmin())
	})

	t.Run("by email", func(t *testing.T) {
		acct, err := dir.Authenticate("student@example.com", DefaultUser.Password)
		require.NoError(t, err)
		assert.Equal(t, "student", acct.Username)
		assert.Equal(t, models.NewRoleSet(models.RoleUser), acct.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := dir.Authenticate("admin", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := dir.Authenticate("ghost", DefaultAdmin.Password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestDirectory_Register(t *testing.T) {
	valid := models.RegisterRequest{
		Username:         "carol",
		Email:            "carol@example.com",
		Password:         "Carol#2024",
		SecretQuestionID: 2,
		SecretAnswer:     "Smith",
	}

	tests := []struct {
		name    string
		mutate  func(r *models.RegisterRequest)
		wantErr error
	}{
		{name: "valid"},
		{name: "username taken", mutate: func(r *models.RegisterRequest) { r.Username = "admin" }, wantErr: ErrAccountExists},
		{name: "email taken", mutate: func(r *models.RegisterRequest) { r.Email = "student@example.com" }, wantErr: ErrAccountExists},
		{name: "no uppercase", mutate: func(r *models.RegisterRequest) { r.Password = "carol#2024" }, wantErr: ErrWeakPassword},
		{name: "no digit", mutate: func(r *models.RegisterRequest) { r.Password = "Carol#abcd" }, wantErr: ErrWeakPassword},
		{name: "no symbol", mutate: func(r *models.RegisterRequest) { r.Password = "Carol2024" }, wantErr: ErrWeakPassword},
		{name: "unknown question", mutate: func(r *models.RegisterRequest) { r.SecretQuestionID = 99 }, wantErr: ErrUnknownQuestion},
		{
			name: "taken beats weak password",
			mutate: func(r *models.RegisterRequest) {
				r.Username = "admin"
				r.Password = "weak"
			},
			wantErr: ErrAccountExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newSeededDirectory(t)
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			acct, err := dir.Register(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 2, dir.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.NewRoleSet(models.RoleUser), acct.Roles)
			assert.Equal(t, 3, dir.Len())

			_, err = dir.Authenticate(req.Email, req.Password)
			assert.NoError(t, err)
		})
	}
}

func TestAccount_SecretKey(t *testing.T) {
	acct := &Account{ID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427"}
	assert.Equal(t, "2fa1-11d2-883f", acct.SecretKey())

	assert.Empty(t, (&Account{ID: "short"}).SecretKey())
}

func TestDirectory_Questions(t *testing.T) {
	dir := NewDirectory(bcrypt.MinCost)

	questions := dir.Questions()
	require.Len(t, questions, len(DefaultSecretQuestions))
	for i, q := range questions {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, DefaultSecretQuestions[i], q.Text)
	}

	text, ok := dir.Question(4)
	assert.True(t, ok)
	assert.Equal(t, "In what city were you born?", text)

	_, ok = dir.Question(0)
	assert.False(t, ok)
}

func TestDirectory_ResetPassword(t *testing.T) {
	dir := newSeededDirectory(t)
	acct, ok := dir.FindByEmail(DefaultUser.Email)
	require.True(t, ok)

	base := models.ResetPasswordRequest{
		Email:        DefaultUser.Email,
		SecretAnswer: "  medellin ",
		SecretKey:    acct.SecretKey(),
		NewPassword:  "Fresh!Start9",
	}

	t.Run("mismatches look alike", func(t *testing.T) {
		for name, mutate := range map[string]func(*models.ResetPasswordRequest){
			"unknown email": func(r *models.ResetPasswordRequest) { r.Email = "ghost@example.com" },
			"wrong answer":  func(r *models.ResetPasswordRequest) { r.SecretAnswer = "bogota" },
			"wrong key":     func(r *models.ResetPasswordRequest) { r.SecretKey = "0000-0000-0000" },
		} {
			req := base
			mutate(&req)
			assert.ErrorIs(t, dir.ResetPassword(req), ErrRecoveryMismatch, name)
		}
	})

	t.Run("weak new password", func(t *testing.T) {
		req := base
		req.NewPassword = "weakpassword"
		assert.ErrorIs(t, dir.ResetPassword(req), ErrWeakPassword)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, dir.ResetPassword(base))

		_, err := dir.Authenticate(DefaultUser.Username, DefaultUser.Password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = dir.Authenticate(DefaultUser.Username, base.NewPassword)
		assert.NoError(t, err)
	})
}

func TestIssuer(t *testing.T) {
	dir := newSeededDirectory(t)
	admin, err := dir.Authenticate("admin", DefaultAdmin.Password)
	require.NoError(t, err)

	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue(admin)
		require.NoError(t, err)

		parsed, err := issuer.ValidateToken(t.Context(), token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, parsed.Subject)
		assert.Equal(t, "admin", parsed.Username)
		assert.True(t, parsed.Roles.Has(models.RoleAdmin))
		assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.ExpiresAt, time.Minute)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewIssuer("another-secret", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(admin)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(t.Context(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past, err := NewIssuer("test-secret", time.Minute)
		require.NoError(t, err)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue(admin)
		require.NoError(t, err)

		_, err = issuer.ValidateToken(t.Context(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ValidateToken(t.Context(), strings.Repeat("x", 20))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("bad construction", func(t *testing.T) {
		_, err := NewIssuer("", time.Hour)
		assert.Error(t, err)
		_, err = NewIssuer("k", 0)
		assert.Error(t, err)
	})
}
