package models

// Credentials is the login payload. Username accepts a username or an email.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=64"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	SecretQuestionID int    `json:"secret_question_id" validate:"required,gt=0"`
	SecretAnswer     string `json:"secret_answer" validate:"required"`
}

// RegisterResponse is returned by POST /auth/register. The access token is
// handed back to the caller untouched; registering does not log in.
type RegisterResponse struct {
	Message     string `json:"message"`
	SecretKey   string `json:"secret_key,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// SecretQuestion is one of the recovery questions offered at registration
type SecretQuestion struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// SecretQuestionRequest asks for the recovery question bound to an email
type SecretQuestionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SecretQuestionPrompt is returned by the get-question endpoint. Unknown
// emails produce only a Message so accounts cannot be enumerated.
type SecretQuestionPrompt struct {
	Username       string `json:"username,omitempty"`
	SecretQuestion string `json:"secret_question,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Found reports whether the server returned a question
func (p SecretQuestionPrompt) Found() bool {
	return p.SecretQuestion != ""
}

// ResetPasswordRequest completes the recovery flow
type ResetPasswordRequest struct {
	Email        string `json:"email" validate:"required,email"`
	SecretAnswer string `json:"secret_answer" validate:"required"`
	SecretKey    string `json:"secret_key" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=6"`
}

// MessageResponse is the generic {"message": "..."} body
type MessageResponse struct {
	Message string `json:"message"`
}
