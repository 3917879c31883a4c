package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
)

// Roles, totally ordered for endpoint-wide permission checks.
const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"

	// roleTeacherAlias is accepted on the wire as a synonym of RoleLecturer.
	// The API uses both identifiers interchangeably.
	roleTeacherAlias = "teacher"
)

var (
	rolePriorities = map[Role]int{
		RoleAdmin:    21,
		RoleLecturer: 11,
		RoleStudent:  1,
	}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Lecturer", Value: RoleLecturer},
		{Name: "Admin", Value: RoleAdmin},
	}

	errInvalidToken = errors.New("invalid token")
)

type Role string

// Priority returns the role's rank in the student < lecturer < admin order.
// Unknown roles rank 0, below every valid role.
func (r Role) Priority() int {
	return rolePriorities[r]
}

func (r Role) Valid() bool {
	return r.Priority() > 0
}

// ParseRole maps a wire identifier to its canonical Role.
// "teacher" is treated as a compatibility alias for RoleLecturer.
// Unknown identifiers map to the empty Role.
func ParseRole(s string) Role {
	switch Role(core.CleanString(s, true /* lower */)) {
	case RoleStudent:
		return RoleStudent
	case RoleLecturer, roleTeacherAlias:
		return RoleLecturer
	case RoleAdmin:
		return RoleAdmin
	}
	return ""
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

// User is the authenticated identity attached to the Session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

func (u User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u User) IsLecturer() bool { return u.Role == RoleLecturer }
func (u User) IsStudent() bool  { return u.Role == RoleStudent }

// Session is the current user's token and identity. Exactly one exists per
// client instance; it is created on login, replaced on refresh and destroyed
// on logout or unrecoverable refresh failure.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token expiry falls within leeway from now.
// A session without a readable expiry claim is always expired.
func (s Session) Expired(leeway time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return true
	}
	return !time.Now().Add(leeway).Before(s.ExpiresAt)
}

// NewSession builds a Session for usr, reading the issue and expiry times off
// the token's claims. A token whose claims cannot be decoded yields a session
// that is already expired.
func NewSession(token string, usr User) Session {
	sess := Session{Token: token, User: usr}
	if claims, err := DecodeClaims(token); err == nil {
		if claims.IssuedAt > 0 {
			sess.IssuedAt = time.Unix(claims.IssuedAt, 0)
		}
		if claims.ExpiresAt > 0 {
			sess.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
		}
	}
	return sess
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// DecodeClaims parses the token's claims without verifying its signature.
// The server is the only party that verifies tokens; the client reads claims
// solely to learn the expiry and identity hints.
func DecodeClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// TokenExpired reports whether the token's expiry claim falls within leeway
// from now. Malformed tokens and tokens without an expiry claim are expired.
func TokenExpired(token string, leeway time.Duration) bool {
	claims, err := DecodeClaims(token)
	if err != nil || claims.ExpiresAt == 0 {
		return true
	}
	return !time.Now().Add(leeway).Before(time.Unix(claims.ExpiresAt, 0))
}

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.TranslateError(core.Validate.Struct(c))
}

// PasswordChange is the change-password input.
type PasswordChange struct {
	Current         string `json:"current_password" validate:"required"`
	Password        string `json:"new_password" validate:"required"`
	PasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=Password"`
}

func (pc *PasswordChange) Validate(usr User) error {
	if err := core.TranslateError(core.Validate.Struct(pc)); err != nil {
		return err
	}
	return validatePassword(pc.Password, usr)
}
