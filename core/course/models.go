package course

import (
	"time"

	"github.com/huynhmanh219/project-course-sub001/core"
)

// Course is a transient, possibly-stale copy of a server-owned course. The
// server remains authoritative for every field.
type Course struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	OwnerLecturerID string `json:"lecturer_id"`
	// ActiveClassCount gates deletion: a course with active class
	// sections cannot be deleted.
	ActiveClassCount int       `json:"active_class_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OwnerID satisfies the authorization gate's ownership contract.
func (c Course) OwnerID() string { return c.OwnerLecturerID }

// ClassSection is a scheduled, capacity-bounded instance of a course.
// 0 <= EnrolledCount <= MaxStudents at all times.
type ClassSection struct {
	ID              string `json:"id"`
	CourseID        string `json:"course_id"`
	Name            string `json:"name"`
	OwnerLecturerID string `json:"lecturer_id"`
	MaxStudents     int    `json:"max_students"`
	EnrolledCount   int    `json:"enrolled_count"`
}

func (s ClassSection) OwnerID() string { return s.OwnerLecturerID }

// SeatsLeft returns the remaining capacity of the section.
func (s ClassSection) SeatsLeft() int {
	if left := s.MaxStudents - s.EnrolledCount; left > 0 {
		return left
	}
	return 0
}

// RosterStudent is one student occupying a seat in a class section.
type RosterStudent struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Code            string `json:"code" validate:"required,alphanum_"`
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	OwnerLecturerID string `json:"lecturer_id" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	return core.TranslateError(core.Validate.Struct(nc))
}

// UpdateCourse defines what may be modified on an existing Course; empty
// fields keep their current value.
type UpdateCourse struct {
	Code            string `json:"code,omitempty" validate:"omitempty,alphanum_"`
	Name            string `json:"name,omitempty"`
	Description     string `json:"description,omitempty"`
	OwnerLecturerID string `json:"lecturer_id,omitempty"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Code = core.CleanString(uc.Code)
	uc.Name = core.CleanString(uc.Name)
	return core.TranslateError(core.Validate.Struct(uc))
}

// NewClassSection contains information needed to create a ClassSection.
type NewClassSection struct {
	CourseID        string `json:"course_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	OwnerLecturerID string `json:"lecturer_id" validate:"required"`
	MaxStudents     int    `json:"max_students" validate:"required,min=1"`
}

func (ns *NewClassSection) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.TranslateError(core.Validate.Struct(ns))
}

// UpdateClassSection defines what may be modified on an existing section.
// Capacity may never drop below the current enrolled count; the server
// enforces that, the guard pre-checks it.
type UpdateClassSection struct {
	Name        string `json:"name,omitempty"`
	MaxStudents int    `json:"max_students,omitempty" validate:"omitempty,min=1"`
}

func (us *UpdateClassSection) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.TranslateError(core.Validate.Struct(us))
}

// EnrollStudents adds the listed students to a section's roster in one
// all-or-nothing operation.
type EnrollStudents struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

func (es *EnrollStudents) Validate() error {
	return core.TranslateError(core.Validate.Struct(es))
}
