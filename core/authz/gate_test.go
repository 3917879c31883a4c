package authz

import (
	"testing"

	"github.com/huynhmanh219/project-course-sub001/core/course"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

var (
	admin     = session.User{ID: "a1", Role: session.RoleAdmin}
	lecturerA = session.User{ID: "l1", Role: session.RoleLecturer}
	lecturerB = session.User{ID: "l2", Role: session.RoleLecturer}
	student   = session.User{ID: "s1", Role: session.RoleStudent}
	nobody    = session.User{ID: "x1"} // no role
)

func TestHasRole(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name     string
		usr      session.User
		required session.Role
		want     bool
	}{
		// the hierarchy is monotonic: every rank satisfies the ranks below it
		{name: "admin has admin", usr: admin, required: session.RoleAdmin, want: true},
		{name: "admin has lecturer", usr: admin, required: session.RoleLecturer, want: true},
		{name: "admin has student", usr: admin, required: session.RoleStudent, want: true},
		{name: "lecturer lacks admin", usr: lecturerA, required: session.RoleAdmin, want: false},
		{name: "lecturer has lecturer", usr: lecturerA, required: session.RoleLecturer, want: true},
		{name: "lecturer has student", usr: lecturerA, required: session.RoleStudent, want: true},
		{name: "student lacks admin", usr: student, required: session.RoleAdmin, want: false},
		{name: "student lacks lecturer", usr: student, required: session.RoleLecturer, want: false},
		{name: "student has student", usr: student, required: session.RoleStudent, want: true},
		{name: "no role has nothing", usr: nobody, required: session.RoleStudent, want: false},
		{name: "unknown requirement denies", usr: admin, required: "principal", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.HasRole(tt.usr, tt.required); got != tt.want {
				t.Errorf("HasRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasOwnership(t *testing.T) {
	gate := NewGate()
	crs := course.Course{ID: "c1", OwnerLecturerID: lecturerA.ID}
	section := course.ClassSection{ID: "k1", OwnerLecturerID: lecturerB.ID}
	orphan := course.Course{ID: "c2"} // no owner recorded

	tests := []struct {
		name string
		usr  session.User
		res  Owned
		want bool
	}{
		{name: "admin owns everything", usr: admin, res: crs, want: true},
		{name: "owner lecturer", usr: lecturerA, res: crs, want: true},
		{name: "other lecturer", usr: lecturerB, res: crs, want: false},
		{name: "owner of section", usr: lecturerB, res: section, want: true},
		{name: "students never own", usr: student, res: crs, want: false},
		{name: "unowned resource", usr: lecturerA, res: orphan, want: false},
		{name: "nil resource", usr: lecturerA, res: nil, want: false},
		{name: "nil resource admin", usr: admin, res: nil, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.HasOwnership(tt.usr, tt.res); got != tt.want {
				t.Errorf("HasOwnership() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCan(t *testing.T) {
	gate := NewGate()
	crs := course.Course{ID: "c1", OwnerLecturerID: lecturerA.ID}
	section := course.ClassSection{ID: "k1", CourseID: crs.ID, OwnerLecturerID: lecturerA.ID}

	tests := []struct {
		name   string
		usr    session.User
		action Action
		res    Owned
		want   bool
	}{
		{name: "anyone signed in views courses", usr: student, action: ActionViewCourses, want: true},
		{name: "no role views nothing", usr: nobody, action: ActionViewCourses, want: false},
		{name: "only admin creates courses", usr: lecturerA, action: ActionCreateCourse, want: false},
		{name: "admin creates courses", usr: admin, action: ActionCreateCourse, want: true},
		{name: "owner edits own section", usr: lecturerA, action: ActionEditClass, res: section, want: true},
		{name: "other lecturer cannot edit section", usr: lecturerB, action: ActionEditClass, res: section, want: false},
		{name: "admin edits any section", usr: admin, action: ActionEditClass, res: section, want: true},
		{name: "owner deletes own course", usr: lecturerA, action: ActionDeleteCourse, res: crs, want: true},
		{name: "student cannot enroll others", usr: student, action: ActionEnrollStudent, res: section, want: false},
		{name: "ownership action without resource", usr: lecturerA, action: ActionDeleteCourse, res: nil, want: false},
		{name: "members are admin-only", usr: lecturerA, action: ActionViewMembers, want: false},
		{name: "admin views members", usr: admin, action: ActionViewMembers, want: true},
		{name: "unknown action denies", usr: admin, action: "course:vaporize", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Can(tt.usr, tt.action, tt.res); got != tt.want {
				t.Errorf("Can(%s) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}
