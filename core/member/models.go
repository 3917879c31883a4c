// Package member covers the user-administration endpoints: lecturers,
// students and the role catalogue.
package member

import (
	"time"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

// Lecturer is the canonical name for what the wire calls a "teacher".
type Lecturer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Student struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	StudentCode string    `json:"student_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMember contains information needed to create a Lecturer or Student
// account. The server issues the initial password when none is provided.
type NewMember struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (nm *NewMember) Validate() error {
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	return core.TranslateError(core.Validate.Struct(nm))
}

// UpdateMember defines what may be modified on an existing account; empty
// fields keep their current value.
type UpdateMember struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (um *UpdateMember) Validate() error {
	um.Email = core.CleanString(um.Email, true /* lower */)
	um.FirstName = core.CleanString(um.FirstName)
	um.LastName = core.CleanString(um.LastName)
	return core.TranslateError(core.Validate.Struct(um))
}

// roleData is the wire shape of GET /users/roles entries.
type roleData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (rd roleData) info() session.RoleInfo {
	return session.RoleInfo{Name: rd.Name, Value: session.ParseRole(rd.Value)}
}
