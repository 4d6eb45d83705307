package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/dbx"
	"github.com/dmitrijs2005/emphub/internal/server/models"
)

const selectColumns = `id, first_name, last_name, email, position, salary, date_of_joining, department, profile_image, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type assignment struct {
	column string
	value  any
}

// assignments returns the non-nil fields in column order. Only the columns
// named here can ever be written by a client.
func assignments(f models.EmployeeFields) []assignment {
	var out []assignment
	add := func(column string, set bool, value any) {
		if set {
			out = append(out, assignment{column: column, value: value})
		}
	}
	add("first_name", f.FirstName != nil, f.FirstName)
	add("last_name", f.LastName != nil, f.LastName)
	add("email", f.Email != nil, f.Email)
	add("position", f.Position != nil, f.Position)
	add("salary", f.Salary != nil, f.Salary)
	add("date_of_joining", f.DateOfJoining != nil, f.DateOfJoining)
	add("department", f.Department != nil, f.Department)
	add("profile_image", f.ProfileImage != nil, f.ProfileImage)
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*models.Employee, error) {
	e := &models.Employee{}
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Salary,
		&e.DateOfJoining, &e.Department, &e.ProfileImage, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Position != "" {
		args = append(args, filter.Position)
		conds = append(conds, fmt.Sprintf("position = $%d", len(args)))
	}

	query := `SELECT ` + selectColumns + ` FROM employees`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT ` + selectColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f models.EmployeeFields) (*models.Employee, error) {

	query :=
		`INSERT INTO employees (first_name, last_name, email, position, salary, date_of_joining, department, profile_image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING ` + selectColumns

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query,
		f.FirstName, f.LastName, f.Email, f.Position, f.Salary, f.DateOfJoining, f.Department, f.ProfileImage))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update writes only the supplied fields and returns the record as stored
// afterwards. updated_at is left as it was.
func (r *PostgresRepository) Update(ctx context.Context, id string, f models.EmployeeFields) (*models.Employee, error) {
	if f.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	set := assignments(f)

	args := []any{id}
	parts := make([]string, 0, len(set))
	for _, a := range set {
		args = append(args, a.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", a.column, len(args)))
	}

	query := `UPDATE employees SET ` + strings.Join(parts, ", ") +
		` WHERE id = $1 RETURNING ` + selectColumns

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
