// Package auth is the account side of the local development API: an
// in-memory account directory, the token issuer and the HTTP handlers for
// the /auth endpoints.
package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("username or email already exists")
	ErrWeakPassword       = errors.New("password is not strong enough")
	ErrUnknownQuestion    = errors.New("invalid secret question")
	ErrRecoveryMismatch   = errors.New("recovery details do not match")
)

// DefaultSecretQuestions are offered at registration
var DefaultSecretQuestions = []string{
	"What was the name of your first pet?",
	"What is your mother's maiden name?",
	"What was the name of your elementary school?",
	"In what city were you born?",
	"What is your favorite book?",
}

// Account is a registered user
type Account struct {
	ID               string
	Username         string
	Email            string
	Roles            models.RoleSet
	SecretQuestionID int

	passwordHash     []byte
	secretAnswerHash []byte
}

// SecretKey is the recovery key handed out once at registration: the
// middle three groups of the account id.
func (a *Account) SecretKey() string {
	parts := strings.Split(a.ID, "-")
	if len(parts) < 4 {
		return ""
	}
	return strings.Join(parts[1:4], "-")
}

// Identity returns the identity embedded in the account's tokens
func (a *Account) Identity() models.Identity {
	return models.Identity{Username: a.Username, Roles: a.Roles}
}

// Directory is an in-memory account store
type Directory struct {
	mu        sync.RWMutex
	cost      int
	accounts  map[string]*Account // by id
	questions map[int]string
}

// NewDirectory creates an empty directory with the default questions.
// A cost of zero selects bcrypt.DefaultCost.
func NewDirectory(cost int) *Directory {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{
		cost:      cost,
		accounts:  make(map[string]*Account),
		questions: make(map[int]string, len(DefaultSecretQuestions)),
	}
	for i, text := range DefaultSecretQuestions {
		d.questions[i+1] = text
	}
	return d
}

// Questions lists the secret questions ordered by id
func (d *Directory) Questions() []models.SecretQuestion {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.SecretQuestion, 0, len(d.questions))
	for id, text := range d.questions {
		out = append(out, models.SecretQuestion{ID: id, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Question returns the text of a secret question
func (d *Directory) Question(id int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.questions[id]
	return text, ok
}

// Authenticate checks a password against the account matching login,
// which may be a username or an email.
func (d *Directory) Authenticate(login, password string) (*Account, error) {
	d.mu.RLock()
	acct := d.findLocked(func(a *Account) bool { return a.Username == login || a.Email == login })
	d.mu.RUnlock()

	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return acct, nil
}

// Register creates a user account. The checks run in the order the
// registration form reports them.
func (d *Directory) Register(req models.RegisterRequest) (*Account, error) {
	return d.create(req, models.NewRoleSet(models.RoleUser))
}

// Seed creates an account with explicit roles, for bootstrap users
func (d *Directory) Seed(req models.RegisterRequest, roles ...models.Role) (*Account, error) {
	return d.create(req, models.NewRoleSet(roles...))
}

func (d *Directory) create(req models.RegisterRequest, roles models.RoleSet) (*Account, error) {
	d.mu.RLock()
	exists := d.findLocked(func(a *Account) bool { return a.Username == req.Username || a.Email == req.Email }) != nil
	_, questionOK := d.questions[req.SecretQuestionID]
	d.mu.RUnlock()

	if exists {
		return nil, ErrAccountExists
	}
	if !utils.IsStrongPassword(req.Password) {
		return nil, ErrWeakPassword
	}
	if !questionOK {
		return nil, ErrUnknownQuestion
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(req.SecretAnswer)), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret answer: %w", err)
	}

	acct := &Account{
		ID:               uuid.NewString(),
		Username:         req.Username,
		Email:            req.Email,
		Roles:            roles,
		SecretQuestionID: req.SecretQuestionID,
		passwordHash:     passwordHash,
		secretAnswerHash: answerHash,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// re-check under the write lock, hashing ran unlocked
	if d.findLocked(func(a *Account) bool { return a.Username == req.Username || a.Email == req.Email }) != nil {
		return nil, ErrAccountExists
	}
	d.accounts[acct.ID] = acct
	return acct, nil
}

// FindByEmail looks an account up by email
func (d *Directory) FindByEmail(email string) (*Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct := d.findLocked(func(a *Account) bool { return a.Email == email })
	return acct, acct != nil
}

// FindByID looks an account up by id
func (d *Directory) FindByID(id string) (*Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[id]
	return acct, ok
}

// ResetPassword replaces the password when the email, secret answer and
// secret key all match. Mismatches are indistinguishable from each other.
func (d *Directory) ResetPassword(req models.ResetPasswordRequest) error {
	acct, ok := d.FindByEmail(req.Email)
	if !ok {
		return ErrRecoveryMismatch
	}
	if bcrypt.CompareHashAndPassword(acct.secretAnswerHash, []byte(normalizeAnswer(req.SecretAnswer))) != nil {
		return ErrRecoveryMismatch
	}
	if req.SecretKey != acct.SecretKey() {
		return ErrRecoveryMismatch
	}
	if !utils.IsStrongPassword(req.NewPassword) {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), d.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	acct.passwordHash = hash
	return nil
}

// Len returns the number of accounts
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}

func (d *Directory) findLocked(match func(*Account) bool) *Account {
	for _, a := range d.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
