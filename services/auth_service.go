package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
)

// API is the subset of the request pipeline the services call
type API interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
}

// AuthService calls the quiz API authentication endpoints
type AuthService struct {
	api API
}

// NewAuthService creates a new auth service
func NewAuthService(api API) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for an access token
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (string, error) {
	if err := utils.ValidateStruct(creds); err != nil {
		return "", WrapValidation(err)
	}

	var resp models.LoginResponse
	if err := s.api.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return "", FromHTTPError(err)
	}

	token := strings.TrimSpace(resp.AccessToken)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Register creates an account and returns the server payload untouched
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, WrapValidation(err)
	}

	var resp models.RegisterResponse
	if err := s.api.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, FromHTTPError(err)
	}
	return &resp, nil
}

// SecretQuestions lists the recovery questions offered at registration
func (s *AuthService) SecretQuestions(ctx context.Context) ([]models.SecretQuestion, error) {
	var questions []models.SecretQuestion
	if err := s.api.Get(ctx, "/auth/secret-questions", nil, &questions); err != nil {
		return nil, FromHTTPError(err)
	}
	return questions, nil
}

// GetSecretQuestion starts the recovery flow for an email
func (s *AuthService) GetSecretQuestion(ctx context.Context, email string) (*models.SecretQuestionPrompt, error) {
	req := models.SecretQuestionRequest{Email: strings.TrimSpace(email)}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, WrapValidation(err)
	}

	var prompt models.SecretQuestionPrompt
	if err := s.api.Post(ctx, "/auth/forgot-password/get-question", req, &prompt); err != nil {
		return nil, FromHTTPError(err)
	}
	return &prompt, nil
}

// ResetPassword completes the recovery flow
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, WrapValidation(err)
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/auth/forgot-password/reset", req, &resp); err != nil {
		return nil, FromHTTPError(err)
	}
	return &resp, nil
}
