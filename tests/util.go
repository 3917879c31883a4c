// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/session"
	logsvc "github.com/huynhmanh219/project-course-sub001/services/logger"
)

var tokenSigningKey = []byte("secret")

// Logger returns a discarding logger for tests.
func Logger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(io.Discard, "", 0), false)
}

// Config returns a config with zero refresh leeway so that expiry checks in
// tests match the raw expiry claim.
func Config() *core.Config {
	return &core.Config{
		AppName:    "Academia",
		Env:        "TEST",
		APITimeout: 5 * time.Second,
	}
}

// MakeToken signs a token carrying the given subject, role and expiry.
// A zero expiresAt leaves the expiry claim out.
func MakeToken(t *testing.T, userID string, role session.Role, expiresAt time.Time) string {
	t.Helper()

	claims := &session.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:  userID,
			IssuedAt: time.Now().Unix(),
		},
		Role: string(role),
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = expiresAt.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSigningKey)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	return token
}

// NewSession builds a Session around a freshly signed token.
func NewSession(t *testing.T, usr session.User, expiresAt time.Time) session.Session {
	t.Helper()
	return session.NewSession(MakeToken(t, usr.ID, usr.Role, expiresAt), usr)
}

// Lecturer and friends return ready-made identities.
func Lecturer(id string) session.User {
	return session.User{ID: id, Email: id + "@test.test", FirstName: "Lect", LastName: id, Role: session.RoleLecturer}
}

func Student(id string) session.User {
	return session.User{ID: id, Email: id + "@test.test", FirstName: "Stu", LastName: id, Role: session.RoleStudent}
}

func Admin(id string) session.User {
	return session.User{ID: id, Email: id + "@test.test", FirstName: "Adm", LastName: id, Role: session.RoleAdmin}
}
