package ports

import (
	"context"

	"github.com/feedr/routing-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, driverID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
