package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
	"go.uber.org/zap"
)

// Response messages the quiz frontend displays verbatim
const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgAccountExists       = "Username or email already exists"
	MsgWeakPassword        = "Password is not strong enough."
	MsgUnknownQuestion     = "Invalid secret question selected"
	MsgRegistered          = "Registration successful!"
	MsgRecoveryContinues   = "If a user with that email exists, the process will continue."
	MsgInvalidRecovery     = "Invalid details provided. Please try again."
	MsgWeakNewPassword     = "Your new password is not strong enough."
	MsgPasswordReset       = "Password has been reset successfully."
	msgInvalidRequestBody  = "Invalid request body"
	msgInternalServerError = "An internal server error occurred."
)

// TokenIssuer creates access tokens for authenticated accounts
type TokenIssuer interface {
	Issue(acct *Account) (string, error)
}

// Handler serves the /auth endpoints
type Handler struct {
	dir    *Directory
	issuer TokenIssuer
	logger *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(dir *Directory, issuer TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{
		dir:    dir,
		issuer: issuer,
		logger: logger,
	}
}

// HandleLogin exchanges a username or email and password for a token
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := utils.DecodeJSON(r, &creds); err != nil {
		_ = utils.WriteBadRequest(w, msgInvalidRequestBody)
		return
	}

	acct, err := h.dir.Authenticate(strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error("authentication failed", zap.Error(err))
		}
		h.logger.Info("login rejected", zap.String("login", creds.Username))
		_ = utils.WriteUnauthorized(w, MsgInvalidCredentials)
		return
	}

	token, err := h.issuer.Issue(acct)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, msgInternalServerError)
		return
	}

	h.logger.Info("login succeeded",
		zap.String("username", acct.Username),
		zap.Strings("roles", acct.Roles.Strings()))
	_ = utils.WriteOK(w, models.LoginResponse{AccessToken: token})
}

// HandleSecretQuestions lists the recovery questions
func (h *Handler) HandleSecretQuestions(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.dir.Questions())
}

// HandleRegister creates a user account. The new token is returned but
// the caller is expected to sign in separately.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteValidationError(w, err)
		return
	}

	acct, err := h.dir.Register(req)
	switch {
	case errors.Is(err, ErrAccountExists):
		_ = utils.WriteBadRequest(w, MsgAccountExists)
		return
	case errors.Is(err, ErrWeakPassword):
		_ = utils.WriteBadRequest(w, MsgWeakPassword)
		return
	case errors.Is(err, ErrUnknownQuestion):
		_ = utils.WriteBadRequest(w, MsgUnknownQuestion)
		return
	case err != nil:
		h.logger.Error("registration failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, msgInternalServerError)
		return
	}

	token, err := h.issuer.Issue(acct)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, msgInternalServerError)
		return
	}

	h.logger.Info("account registered", zap.String("username", acct.Username))
	_ = utils.WriteJSON(w, http.StatusCreated, models.RegisterResponse{
		Message:     MsgRegistered,
		SecretKey:   acct.SecretKey(),
		AccessToken: token,
	})
}

// HandleGetQuestion returns the secret question bound to an email. Unknown
// emails get the same 200 with a neutral message.
func (h *Handler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.SecretQuestionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteValidationError(w, err)
		return
	}

	if acct, ok := h.dir.FindByEmail(req.Email); ok {
		if text, ok := h.dir.Question(acct.SecretQuestionID); ok {
			_ = utils.WriteOK(w, models.SecretQuestionPrompt{
				Username:       acct.Username,
				SecretQuestion: text,
			})
			return
		}
	}
	_ = utils.WriteOK(w, models.SecretQuestionPrompt{Message: MsgRecoveryContinues})
}

// HandleResetPassword completes password recovery
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteValidationError(w, err)
		return
	}

	err := h.dir.ResetPassword(req)
	switch {
	case errors.Is(err, ErrRecoveryMismatch):
		h.logger.Info("password reset rejected", zap.String("email", req.Email))
		_ = utils.WriteBadRequest(w, MsgInvalidRecovery)
		return
	case errors.Is(err, ErrWeakPassword):
		_ = utils.WriteBadRequest(w, MsgWeakNewPassword)
		return
	case err != nil:
		h.logger.Error("password reset failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, msgInternalServerError)
		return
	}

	_ = utils.WriteMessage(w, http.StatusOK, MsgPasswordReset)
}
