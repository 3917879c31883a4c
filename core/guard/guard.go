// Package guard blocks mutations that would violate referential-integrity
// or capacity invariants, using counts fetched immediately before each
// check. The guard is advisory: it saves a doomed round trip, but the server
// re-checks and remains the final arbiter.
package guard

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/authz"
	"github.com/huynhmanh219/project-course-sub001/core/course"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

type (
	// CourseReader is the read surface used to fetch fresh counts; the
	// course Service implements it.
	CourseReader interface {
		Get(ctx context.Context, id string) (course.Course, error)
		Classes(ctx context.Context, courseID string) ([]course.ClassSection, error)
		GetClass(ctx context.Context, id string) (course.ClassSection, error)
	}

	// Guard runs the pre-flight checks. Fetched counts are never cached
	// beyond a single check-then-act sequence.
	Guard struct {
		courses CourseReader
		gate    authz.Gate
	}

	// Decision is the outcome of a pre-flight check. Blocked is a normal,
	// expected result, not an error; Blocking names the resources the user
	// must resolve first.
	Decision struct {
		Allowed  bool
		Reason   string
		Blocking []core.ResourceRef
	}
)

func NewGuard(courses CourseReader, gate authz.Gate) *Guard {
	return &Guard{courses: courses, gate: gate}
}

func allowed() Decision { return Decision{Allowed: true} }

func blocked(reason string, refs ...core.ResourceRef) Decision {
	return Decision{Reason: reason, Blocking: refs}
}

// Conflict converts a blocked Decision into the ConflictError surfaced to
// screens that skipped their own pre-flight check.
func (d Decision) Conflict() error {
	if d.Allowed {
		return nil
	}
	return core.NewConflictError(errors.New(d.Reason), d.Reason, d.Blocking...)
}

// CanDeleteCourse re-fetches the course and reports whether deleting it now
// would orphan active class sections. A blocked decision names the sections
// so the caller can redirect the user to resolve them first.
func (g *Guard) CanDeleteCourse(ctx context.Context, usr session.User, courseID string) (Decision, error) {
	crs, err := g.courses.Get(ctx, courseID)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "fetching course %s", courseID)
	}
	if !g.gate.Can(usr, authz.ActionDeleteCourse, crs) {
		return blocked("permission denied"), nil
	}
	if crs.ActiveClassCount == 0 {
		return allowed(), nil
	}

	sections, err := g.courses.Classes(ctx, courseID)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "fetching class sections of course %s", courseID)
	}
	refs := make([]core.ResourceRef, 0, len(sections))
	for _, section := range sections {
		refs = append(refs, core.ResourceRef{Kind: "class_section", ID: section.ID, Label: section.Name})
	}
	reason := fmt.Sprintf(
		"course %q has %d active class section(s); delete or archive them first",
		crs.Name, crs.ActiveClassCount,
	)
	return blocked(reason, refs...), nil
}

// CanDeleteClassSection re-fetches the section and reports whether deleting
// it now would drop enrolled students. Remediation points at the roster.
func (g *Guard) CanDeleteClassSection(ctx context.Context, usr session.User, classID string) (Decision, error) {
	section, err := g.courses.GetClass(ctx, classID)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "fetching class section %s", classID)
	}
	if !g.gate.Can(usr, authz.ActionDeleteClass, section) {
		return blocked("permission denied"), nil
	}
	if section.EnrolledCount == 0 {
		return allowed(), nil
	}
	reason := fmt.Sprintf(
		"class section %q still has %d enrolled student(s); unenroll them from the roster first",
		section.Name, section.EnrolledCount,
	)
	return blocked(reason, core.ResourceRef{Kind: "roster", ID: section.ID, Label: section.Name}), nil
}

// CanEnroll re-fetches the section and reports whether enrolling additional
// students now would exceed its capacity. Filling the section exactly to
// MaxStudents is allowed.
func (g *Guard) CanEnroll(ctx context.Context, usr session.User, classID string, additional int) (Decision, error) {
	if additional <= 0 {
		return blocked("nothing to enroll"), nil
	}
	section, err := g.courses.GetClass(ctx, classID)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "fetching class section %s", classID)
	}
	if !g.gate.Can(usr, authz.ActionEnrollStudent, section) {
		return blocked("permission denied"), nil
	}
	if section.EnrolledCount+additional > section.MaxStudents {
		reason := fmt.Sprintf(
			"class section %q has %d of %d seats taken; only %d more student(s) fit",
			section.Name, section.EnrolledCount, section.MaxStudents, section.SeatsLeft(),
		)
		return blocked(reason, core.ResourceRef{Kind: "class_section", ID: section.ID, Label: section.Name}), nil
	}
	return allowed(), nil
}
