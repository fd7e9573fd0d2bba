package auth

import (
	"fmt"

	"github.com/upb/quiz-client/models"
)

// Bootstrap accounts of the development API
var (
	DefaultAdmin = models.RegisterRequest{
		Username:         "admin",
		Email:            "admin@example.com",
		Password:         "Thisisadmin@123",
		SecretQuestionID: 1,
		SecretAnswer:     "adminpet",
	}
	DefaultUser = models.RegisterRequest{
		Username:         "student",
		Email:            "student@example.com",
		Password:         "Student@123",
		SecretQuestionID: 4,
		SecretAnswer:     "Medellin",
	}
)

// SeedDefaults creates the bootstrap admin and user
func SeedDefaults(dir *Directory) error {
	if _, err := dir.Seed(DefaultAdmin, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := dir.Seed(DefaultUser, models.RoleUser); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	return nil
}
