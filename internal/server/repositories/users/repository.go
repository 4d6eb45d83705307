package users

import (
	"context"

	"github.com/dmitrijs2005/emphub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, userName string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
