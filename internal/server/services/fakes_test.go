package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/dbx"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	employeesrepo "github.com/dmitrijs2005/emphub/internal/server/repositories/employees"
	usersrepo "github.com/dmitrijs2005/emphub/internal/server/repositories/users"
	"github.com/google/uuid"
)

type fakeUsersRepo struct {
	findOut *models.User
	findErr error

	createErr error
	created   *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = uuid.NewString()
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) FindByEmailOrUsername(ctx context.Context, email, userName string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findOut == nil {
		return nil, common.ErrorNotFound
	}
	return f.findOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil || f.getOut.Email != email {
		return nil, common.ErrorNotFound
	}
	return f.getOut, nil
}

// memEmployees is an in-memory employees.Repository.
type memEmployees struct {
	mu   sync.Mutex
	rows map[string]*models.Employee
	err  error
}

func newMemEmployees() *memEmployees {
	return &memEmployees{rows: map[string]*models.Employee{}}
}

func (m *memEmployees) List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.Employee, 0)
	for _, e := range m.rows {
		if filter.Department != "" && (e.Department == nil || *e.Department != filter.Department) {
			continue
		}
		if filter.Position != "" && (e.Position == nil || *e.Position != filter.Position) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memEmployees) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (m *memEmployees) Create(ctx context.Context, f models.EmployeeFields) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	now := time.Now().Add(time.Duration(len(m.rows)) * time.Millisecond)
	e := &models.Employee{ID: uuid.NewString(), EmployeeFields: f, CreatedAt: now, UpdatedAt: now}
	m.rows[e.ID] = e
	c := *e
	return &c, nil
}

func (m *memEmployees) Update(ctx context.Context, id string, f models.EmployeeFields) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	merge := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	merge(&e.FirstName, f.FirstName)
	merge(&e.LastName, f.LastName)
	merge(&e.Email, f.Email)
	merge(&e.Position, f.Position)
	merge(&e.Department, f.Department)
	merge(&e.ProfileImage, f.ProfileImage)
	if f.Salary != nil {
		e.Salary = f.Salary
	}
	if f.DateOfJoining != nil {
		e.DateOfJoining = f.DateOfJoining
	}
	c := *e
	return &c, nil
}

func (m *memEmployees) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	e *memEmployees
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Employees(db dbx.DBTX) employeesrepo.Repository { return m.e }
