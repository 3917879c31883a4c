package course

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type (
	// Gateway is the authorized network surface the Service consumes; the
	// API client implements it.
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

// Courses

func (svc *Service) List(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := svc.api.Do(ctx, http.MethodGet, "/courses", nil, &courses, true)
	return courses, err
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	var crs Course
	err := svc.api.Do(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, &crs, true)
	return crs, err
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}
	var crs Course
	err := svc.api.Do(ctx, http.MethodPost, "/courses", &nc, &crs, true)
	return crs, err
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	if err := uc.Validate(); err != nil {
		return Course{}, err
	}
	var crs Course
	err := svc.api.Do(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), &uc, &crs, true)
	return crs, err
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.api.Do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil, true)
}

// Class sections

// Classes lists the class sections of a course; an empty courseID lists all
// sections visible to the caller.
func (svc *Service) Classes(ctx context.Context, courseID string) ([]ClassSection, error) {
	path := "/courses/classes"
	if courseID != "" {
		path += "?course_id=" + url.QueryEscape(courseID)
	}
	var sections []ClassSection
	err := svc.api.Do(ctx, http.MethodGet, path, nil, &sections, true)
	return sections, err
}

func (svc *Service) GetClass(ctx context.Context, id string) (ClassSection, error) {
	var section ClassSection
	err := svc.api.Do(ctx, http.MethodGet, "/courses/classes/"+url.PathEscape(id), nil, &section, true)
	return section, err
}

func (svc *Service) CreateClass(ctx context.Context, ns NewClassSection) (ClassSection, error) {
	if err := ns.Validate(); err != nil {
		return ClassSection{}, err
	}
	var section ClassSection
	err := svc.api.Do(ctx, http.MethodPost, "/courses/classes", &ns, &section, true)
	return section, err
}

func (svc *Service) UpdateClass(ctx context.Context, id string, us UpdateClassSection) (ClassSection, error) {
	if err := us.Validate(); err != nil {
		return ClassSection{}, err
	}
	var section ClassSection
	err := svc.api.Do(ctx, http.MethodPut, "/courses/classes/"+url.PathEscape(id), &us, &section, true)
	return section, err
}

func (svc *Service) DeleteClass(ctx context.Context, id string) error {
	return svc.api.Do(ctx, http.MethodDelete, "/courses/classes/"+url.PathEscape(id), nil, nil, true)
}

// Roster

func (svc *Service) Roster(ctx context.Context, classID string) ([]RosterStudent, error) {
	var students []RosterStudent
	err := svc.api.Do(ctx, http.MethodGet, classRosterPath(classID), nil, &students, true)
	return students, err
}

// Enroll adds students to a section all-or-nothing; the server rejects the
// whole batch when capacity would be exceeded.
func (svc *Service) Enroll(ctx context.Context, classID string, es EnrollStudents) error {
	if err := es.Validate(); err != nil {
		return err
	}
	return svc.api.Do(ctx, http.MethodPost, classRosterPath(classID), &es, nil, true)
}

func (svc *Service) Unenroll(ctx context.Context, classID, studentID string) error {
	path := classRosterPath(classID) + "/" + url.PathEscape(studentID)
	return svc.api.Do(ctx, http.MethodDelete, path, nil, nil, true)
}

func classRosterPath(classID string) string {
	return fmt.Sprintf("/courses/classes/%s/students", url.PathEscape(classID))
}
