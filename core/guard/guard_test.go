package guard

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/authz"
	"github.com/huynhmanh219/project-course-sub001/core/course"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

var (
	admin     = session.User{ID: "a1", Role: session.RoleAdmin}
	lecturerA = session.User{ID: "l1", Role: session.RoleLecturer}
	lecturerB = session.User{ID: "l2", Role: session.RoleLecturer}
)

// fakeReader serves counts from memory and counts its fetches.
type fakeReader struct {
	courses  map[string]course.Course
	sections map[string]course.ClassSection

	getCalls     int
	classesCalls int
	getClassCall int
	err          error
}

func (r *fakeReader) Get(ctx context.Context, id string) (course.Course, error) {
	r.getCalls++
	if r.err != nil {
		return course.Course{}, r.err
	}
	crs, ok := r.courses[id]
	if !ok {
		return course.Course{}, core.ErrNotFound
	}
	return crs, nil
}

func (r *fakeReader) Classes(ctx context.Context, courseID string) ([]course.ClassSection, error) {
	r.classesCalls++
	if r.err != nil {
		return nil, r.err
	}
	var out []course.ClassSection
	for _, section := range r.sections {
		if section.CourseID == courseID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (r *fakeReader) GetClass(ctx context.Context, id string) (course.ClassSection, error) {
	r.getClassCall++
	if r.err != nil {
		return course.ClassSection{}, r.err
	}
	section, ok := r.sections[id]
	if !ok {
		return course.ClassSection{}, core.ErrNotFound
	}
	return section, nil
}

func setup() (*Guard, *fakeReader) {
	reader := &fakeReader{
		courses: map[string]course.Course{
			"c1": {ID: "c1", Name: "Databases", OwnerLecturerID: lecturerA.ID, ActiveClassCount: 2},
			"c2": {ID: "c2", Name: "Networks", OwnerLecturerID: lecturerA.ID, ActiveClassCount: 0},
		},
		sections: map[string]course.ClassSection{
			"k1": {ID: "k1", CourseID: "c1", Name: "DB-A", OwnerLecturerID: lecturerA.ID, MaxStudents: 50, EnrolledCount: 48},
			"k2": {ID: "k2", CourseID: "c1", Name: "DB-B", OwnerLecturerID: lecturerA.ID, MaxStudents: 30, EnrolledCount: 0},
		},
	}
	return NewGuard(reader, authz.NewGate()), reader
}

func TestCanDeleteCourseBlocked(t *testing.T) {
	guard, _ := setup()

	// admin deleting a course with 2 active sections: blocked, and the
	// decision names both sections
	decision, err := guard.CanDeleteCourse(context.Background(), admin, "c1")
	if err != nil {
		t.Fatalf("CanDeleteCourse() failed: %v", err)
	}
	if decision.Allowed {
		t.Fatal("deletion of a course with active sections was allowed")
	}
	if len(decision.Blocking) != 2 {
		t.Fatalf("blocking refs = %d, want 2", len(decision.Blocking))
	}
	seen := map[string]bool{}
	for _, ref := range decision.Blocking {
		if ref.Kind != "class_section" {
			t.Errorf("blocking ref kind = %q, want class_section", ref.Kind)
		}
		seen[ref.ID] = true
	}
	if !seen["k1"] || !seen["k2"] {
		t.Errorf("blocking refs = %v, want k1 and k2", decision.Blocking)
	}
	if !core.IsConflictError(decision.Conflict()) {
		t.Error("blocked decision must convert to a ConflictError")
	}
}

func TestCanDeleteCourseAllowed(t *testing.T) {
	guard, reader := setup()

	decision, err := guard.CanDeleteCourse(context.Background(), lecturerA, "c2")
	if err != nil {
		t.Fatalf("CanDeleteCourse() failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("deletion blocked: %s", decision.Reason)
	}
	if decision.Conflict() != nil {
		t.Error("allowed decision must not convert to an error")
	}
	// no point fetching the section list when the count is zero
	if reader.classesCalls != 0 {
		t.Errorf("classes fetches = %d, want 0", reader.classesCalls)
	}
}

func TestCanDeleteCourseOwnership(t *testing.T) {
	guard, _ := setup()

	// lecturer B does not own c2
	decision, err := guard.CanDeleteCourse(context.Background(), lecturerB, "c2")
	if err != nil {
		t.Fatalf("CanDeleteCourse() failed: %v", err)
	}
	if decision.Allowed {
		t.Error("non-owner was allowed to delete")
	}
	if decision.Reason != "permission denied" {
		t.Errorf("reason = %q, want permission denied", decision.Reason)
	}
}

func TestCanDeleteClassSection(t *testing.T) {
	guard, _ := setup()

	decision, err := guard.CanDeleteClassSection(context.Background(), lecturerA, "k1")
	if err != nil {
		t.Fatalf("CanDeleteClassSection() failed: %v", err)
	}
	if decision.Allowed {
		t.Fatal("deletion of a section with enrolled students was allowed")
	}
	if len(decision.Blocking) != 1 || decision.Blocking[0].Kind != "roster" {
		t.Errorf("blocking refs = %v, want the roster of k1", decision.Blocking)
	}

	decision, err = guard.CanDeleteClassSection(context.Background(), lecturerA, "k2")
	if err != nil {
		t.Fatalf("CanDeleteClassSection() failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("deletion of an empty section blocked: %s", decision.Reason)
	}
}

func TestCanEnroll(t *testing.T) {
	guard, _ := setup()
	ctx := context.Background()

	tests := []struct {
		name       string
		classID    string
		additional int
		want       bool
	}{
		{name: "over capacity", classID: "k1", additional: 5, want: false}, // 48+5 > 50
		{name: "exactly to capacity", classID: "k1", additional: 2, want: true},
		{name: "single over", classID: "k1", additional: 3, want: false},
		{name: "plenty of room", classID: "k2", additional: 30, want: true},
		{name: "zero students", classID: "k2", additional: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := guard.CanEnroll(ctx, lecturerA, tt.classID, tt.additional)
			if err != nil {
				t.Fatalf("CanEnroll() failed: %v", err)
			}
			if decision.Allowed != tt.want {
				t.Errorf("CanEnroll() allowed = %v, want %v (%s)", decision.Allowed, tt.want, decision.Reason)
			}
		})
	}
}

func TestCanEnrollOwnership(t *testing.T) {
	guard, _ := setup()

	decision, err := guard.CanEnroll(context.Background(), lecturerB, "k2", 1)
	if err != nil {
		t.Fatalf("CanEnroll() failed: %v", err)
	}
	if decision.Allowed {
		t.Error("non-owner was allowed to enroll students")
	}
}

func TestReaderFailurePropagates(t *testing.T) {
	guard, reader := setup()
	reader.err = errors.New("connection refused")

	// network failure is "unknown - do not proceed", not a blocked decision
	if _, err := guard.CanDeleteCourse(context.Background(), admin, "c1"); err == nil {
		t.Error("CanDeleteCourse() swallowed the reader failure")
	}
	if _, err := guard.CanDeleteClassSection(context.Background(), admin, "k1"); err == nil {
		t.Error("CanDeleteClassSection() swallowed the reader failure")
	}
	if _, err := guard.CanEnroll(context.Background(), admin, "k1", 1); err == nil {
		t.Error("CanEnroll() swallowed the reader failure")
	}
}
