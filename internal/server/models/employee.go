// Package models defines server-side data models persisted in the database.
package models

import "time"

// Employee is a stored employee record. Attribute fields are nullable and are
// omitted from JSON when unset.
type Employee struct {
	ID string `json:"id"`
	EmployeeFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeFields lists every client-writable employee attribute. On create a
// nil field is stored as NULL; on update a nil field is left untouched.
type EmployeeFields struct {
	FirstName     *string    `json:"first_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Position      *string    `json:"position,omitempty"`
	Salary        *float64   `json:"salary,omitempty"`
	DateOfJoining *time.Time `json:"date_of_joining,omitempty"`
	Department    *string    `json:"department,omitempty"`
	ProfileImage  *string    `json:"profile_image,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f EmployeeFields) IsEmpty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Email == nil &&
		f.Position == nil && f.Salary == nil && f.DateOfJoining == nil &&
		f.Department == nil && f.ProfileImage == nil
}

// EmployeeFilter is an equality filter; empty members impose no constraint.
type EmployeeFilter struct {
	Department string
	Position   string
}
