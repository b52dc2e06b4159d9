package api

import (
	"context"

	"github.com/dmitrijs2005/syllabify/internal/client/models"
)

// Client is the API surface the auth service depends on.
type Client interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	SecuritySetup(ctx context.Context, token string, questions []models.SecurityQuestion) error
	Me(ctx context.Context, token string) *models.User
}
