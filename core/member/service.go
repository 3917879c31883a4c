package member

import (
	"context"
	"net/http"
	"net/url"

	"github.com/huynhmanh219/project-course-sub001/core/session"
)

type (
	// Gateway is the authorized network surface the Service consumes.
	Gateway interface {
		Do(ctx context.Context, method, path string, body, out interface{}, authorized bool) error
	}

	Service struct {
		api Gateway
	}
)

func NewService(api Gateway) *Service {
	return &Service{api: api}
}

// Lecturers; the wire paths keep the legacy "teachers" identifier.

func (svc *Service) Lecturers(ctx context.Context) ([]Lecturer, error) {
	var lecturers []Lecturer
	err := svc.api.Do(ctx, http.MethodGet, "/users/teachers", nil, &lecturers, true)
	return lecturers, err
}

func (svc *Service) CreateLecturer(ctx context.Context, nm NewMember) (Lecturer, error) {
	if err := nm.Validate(); err != nil {
		return Lecturer{}, err
	}
	var lecturer Lecturer
	err := svc.api.Do(ctx, http.MethodPost, "/users/teachers", &nm, &lecturer, true)
	return lecturer, err
}

func (svc *Service) UpdateLecturer(ctx context.Context, id string, um UpdateMember) (Lecturer, error) {
	if err := um.Validate(); err != nil {
		return Lecturer{}, err
	}
	var lecturer Lecturer
	err := svc.api.Do(ctx, http.MethodPut, "/users/teachers/"+url.PathEscape(id), &um, &lecturer, true)
	return lecturer, err
}

func (svc *Service) DeleteLecturer(ctx context.Context, id string) error {
	return svc.api.Do(ctx, http.MethodDelete, "/users/teachers/"+url.PathEscape(id), nil, nil, true)
}

// Students

func (svc *Service) Students(ctx context.Context) ([]Student, error) {
	var students []Student
	err := svc.api.Do(ctx, http.MethodGet, "/users/students", nil, &students, true)
	return students, err
}

func (svc *Service) CreateStudent(ctx context.Context, nm NewMember) (Student, error) {
	if err := nm.Validate(); err != nil {
		return Student{}, err
	}
	var student Student
	err := svc.api.Do(ctx, http.MethodPost, "/users/students", &nm, &student, true)
	return student, err
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, um UpdateMember) (Student, error) {
	if err := um.Validate(); err != nil {
		return Student{}, err
	}
	var student Student
	err := svc.api.Do(ctx, http.MethodPut, "/users/students/"+url.PathEscape(id), &um, &student, true)
	return student, err
}

func (svc *Service) DeleteStudent(ctx context.Context, id string) error {
	return svc.api.Do(ctx, http.MethodDelete, "/users/students/"+url.PathEscape(id), nil, nil, true)
}

// Roles returns the role catalogue, normalized to canonical identifiers.
func (svc *Service) Roles(ctx context.Context) ([]session.RoleInfo, error) {
	var raw []roleData
	if err := svc.api.Do(ctx, http.MethodGet, "/users/roles", nil, &raw, true); err != nil {
		return nil, err
	}
	infos := make([]session.RoleInfo, 0, len(raw))
	for _, rd := range raw {
		infos = append(infos, rd.info())
	}
	return infos, nil
}
