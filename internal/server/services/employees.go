package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/repomanager"
)

// EmployeeService exposes the employee directory operations. Every method is a
// single repository call; common.ErrorNotFound is passed through unchanged.
type EmployeeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEmployeeService(db *sql.DB, m repomanager.RepositoryManager) *EmployeeService {
	return &EmployeeService{db: db, repomanager: m}
}

// List returns the employees matching filter; an empty filter matches all.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error) {
	list, err := s.repomanager.Employees(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing employees: %w", err)
	}
	return list, nil
}

func (s *EmployeeService) Create(ctx context.Context, fields models.EmployeeFields) (*models.Employee, error) {
	e, err := s.repomanager.Employees(s.db).Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("error creating employee: %w", err)
	}
	return e, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	if id == "" {
		return nil, common.ErrorNotFound
	}
	e, err := s.repomanager.Employees(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching employee: %w", err)
	}
	return e, nil
}

// Update applies the supplied fields and returns the stored result.
func (s *EmployeeService) Update(ctx context.Context, id string, fields models.EmployeeFields) (*models.Employee, error) {
	if id == "" {
		return nil, common.ErrorNotFound
	}
	e, err := s.repomanager.Employees(s.db).Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("error updating employee: %w", err)
	}
	return e, nil
}

// Delete removes the employee. An empty id matches nothing.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Employees(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting employee: %w", err)
	}
	return nil
}
