package api

import (
	"context"
	"net/http"

	"github.com/huynhmanh219/project-course-sub001/core/session"
)

// auth endpoints; Client satisfies session.Backend.
var _ session.Backend = (*Client)(nil)

type (
	loginPayload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	refreshPayload struct {
		Token string `json:"token"`
	}

	changePasswordPayload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	// authData is the payload of /auth/login and /auth/refresh-token.
	// The role travels both inside user and as a sibling key; older server
	// builds only populate the latter.
	authData struct {
		Token string   `json:"token"`
		User  authUser `json:"user"`
		Role  string   `json:"role"`
	}

	authUser struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	}
)

func (d authData) session() session.Session {
	role := d.User.Role
	if role == "" {
		role = d.Role
	}
	usr := session.User{
		ID:        d.User.ID,
		Email:     d.User.Email,
		FirstName: d.User.FirstName,
		LastName:  d.User.LastName,
		Role:      session.ParseRole(role),
	}
	return session.NewSession(d.Token, usr)
}

// LoginSession exchanges credentials for a Session via POST /auth/login.
func (c *Client) LoginSession(ctx context.Context, email, password string) (session.Session, error) {
	var data authData
	payload := loginPayload{Email: email, Password: password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", payload, &data, false); err != nil {
		return session.Session{}, err
	}
	return data.session(), nil
}

// RefreshSession exchanges a stale token for a fresh Session via
// POST /auth/refresh-token. It deliberately bypasses the token source: the
// token being refreshed is the one that just expired.
func (c *Client) RefreshSession(ctx context.Context, token string) (session.Session, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", token, refreshPayload{Token: token}, &data, false); err != nil {
		return session.Session{}, err
	}
	return data.session(), nil
}

// LogoutSession revokes the current token via POST /auth/logout.
func (c *Client) LogoutSession(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
}

// ChangePassword submits PUT /auth/change-password.
func (c *Client) ChangePassword(ctx context.Context, current, password string) error {
	payload := changePasswordPayload{CurrentPassword: current, NewPassword: password}
	return c.Do(ctx, http.MethodPut, "/auth/change-password", payload, nil, true)
}
