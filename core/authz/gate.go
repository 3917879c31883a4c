// Package authz is the single source of truth for "is this allowed".
// It answers from the session snapshot alone and performs no I/O; screens
// consume its boolean output instead of re-deriving role comparisons.
package authz

import (
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

// Action names a gated operation.
type Action string

const (
	ActionViewCourses   Action = "courses:view"
	ActionCreateCourse  Action = "courses:create"
	ActionEditCourse    Action = "courses:edit"
	ActionDeleteCourse  Action = "courses:delete"
	ActionCreateClass   Action = "classes:create"
	ActionEditClass     Action = "classes:edit"
	ActionDeleteClass   Action = "classes:delete"
	ActionViewRoster    Action = "roster:view"
	ActionEnrollStudent Action = "roster:enroll"
	ActionViewMembers   Action = "members:view"
	ActionManageMembers Action = "members:manage"
)

// Owned is any resource carrying an owner lecturer id.
type Owned interface {
	OwnerID() string
}

// requirement couples the minimum role an action demands with whether
// resource ownership is also required.
type requirement struct {
	minRole   session.Role
	ownership bool
}

var requirements = map[Action]requirement{
	ActionViewCourses:   {minRole: session.RoleStudent},
	ActionCreateCourse:  {minRole: session.RoleAdmin},
	ActionEditCourse:    {minRole: session.RoleLecturer, ownership: true},
	ActionDeleteCourse:  {minRole: session.RoleLecturer, ownership: true},
	ActionCreateClass:   {minRole: session.RoleLecturer, ownership: true}, // ownership of the parent course
	ActionEditClass:     {minRole: session.RoleLecturer, ownership: true},
	ActionDeleteClass:   {minRole: session.RoleLecturer, ownership: true},
	ActionViewRoster:    {minRole: session.RoleLecturer, ownership: true},
	ActionEnrollStudent: {minRole: session.RoleLecturer, ownership: true},
	ActionViewMembers:   {minRole: session.RoleAdmin},
	ActionManageMembers: {minRole: session.RoleAdmin},
}

// Gate evaluates role-hierarchy and resource-ownership predicates. Zero
// value is ready to use; it is stateless and never returns an error.
// Anything it cannot establish is simply not allowed.
type Gate struct{}

func NewGate() Gate { return Gate{} }

// HasRole is true iff usr's role ranks at least as high as required in the
// student < lecturer < admin order.
func (Gate) HasRole(usr session.User, required session.Role) bool {
	if !required.Valid() {
		return false
	}
	return usr.Role.Priority() >= required.Priority()
}

// HasOwnership is true iff usr is an admin, or usr is the owner lecturer of
// res. Students never own courses or class sections.
func (Gate) HasOwnership(usr session.User, res Owned) bool {
	if usr.IsAdmin() {
		return true
	}
	if res == nil || !usr.IsLecturer() {
		return false
	}
	owner := res.OwnerID()
	return owner != "" && owner == usr.ID
}

// Can composes the two predicates for a named action. Actions that are
// resource-scoped also need res; passing nil for those denies.
func (g Gate) Can(usr session.User, action Action, res Owned) bool {
	req, ok := requirements[action]
	if !ok {
		return false
	}
	if !g.HasRole(usr, req.minRole) {
		return false
	}
	if req.ownership && !g.HasOwnership(usr, res) {
		return false
	}
	return true
}
