package httpx

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User // by email
	pass  map[string]string
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, pass: map[string]string{}}
}

func (f *fakeUsers) Signup(ctx context.Context, userName, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if userName == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}
	for _, u := range f.users {
		if u.Email == email || u.UserName == userName {
			return nil, common.ErrorAlreadyExists
		}
	}
	u := &models.User{ID: uuid.NewString(), UserName: userName, Email: email}
	f.users[email] = u
	f.pass[email] = password
	return u, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	u, ok := f.users[email]
	if !ok || f.pass[email] != password {
		return "", common.ErrorUnauthorized
	}
	return "token-for-" + u.ID, nil
}

var errMalformedID = errors.New(`invalid input syntax for type uuid`)

type fakeEmployees struct {
	mu   sync.Mutex
	rows map[string]*models.Employee
	seq  int
	err  error
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{rows: map[string]*models.Employee{}}
}

func (f *fakeEmployees) checkID(id string) error {
	if id == "" {
		return common.ErrorNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return errMalformedID
	}
	return nil
}

func (f *fakeEmployees) List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Employee
	for _, e := range f.rows {
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

func (f *fakeEmployees) Create(ctx context.Context, fields models.EmployeeFields) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	now := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	e := &models.Employee{ID: uuid.NewString(), EmployeeFields: fields, CreatedAt: now, UpdatedAt: now}
	f.rows[e.ID] = e
	c := *e
	return &c, nil
}

func (f *fakeEmployees) Get(ctx context.Context, id string) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkID(id); err != nil {
		return nil, err
	}
	e, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEmployees) Update(ctx context.Context, id string, fields models.EmployeeFields) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkID(id); err != nil {
		return nil, err
	}
	e, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	set(&e.FirstName, fields.FirstName)
	set(&e.LastName, fields.LastName)
	set(&e.Email, fields.Email)
	set(&e.Position, fields.Position)
	set(&e.Department, fields.Department)
	set(&e.ProfileImage, fields.ProfileImage)
	if fields.Salary != nil {
		e.Salary = fields.Salary
	}
	if fields.DateOfJoining != nil {
		e.DateOfJoining = fields.DateOfJoining
	}
	c := *e
	return &c, nil
}

func (f *fakeEmployees) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkID(id); err != nil {
		return err
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}
