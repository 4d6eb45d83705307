package employees

import (
	"context"

	"github.com/dmitrijs2005/emphub/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, fields models.EmployeeFields) (*models.Employee, error)
	Update(ctx context.Context, id string, fields models.EmployeeFields) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}
