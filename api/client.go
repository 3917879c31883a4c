// Package api is the single point through which every network call to the
// learning platform passes. It attaches credentials, parses the uniform
// response envelope and maps transport and HTTP failures onto the typed
// error taxonomy in core.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/huynhmanh219/project-course-sub001/core"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	headerRequestID = "X-Request-ID"
)

type (
	// TokenSource provides valid tokens for authorized calls and receives
	// the forced-logout signal when the server rejects our credentials.
	// The session Manager implements it.
	TokenSource interface {
		ValidToken(ctx context.Context) (string, error)
		ForceLogout(ctx context.Context)
	}

	// Client is the API gateway.
	Client struct {
		base   *url.URL
		http   *http.Client
		log    core.Logger
		tokens TokenSource
	}

	// envelope is the uniform response shape of every endpoint.
	envelope struct {
		Status  string            `json:"status"`
		Data    json.RawMessage   `json:"data,omitempty"`
		Message string            `json:"message,omitempty"`
		Errors  []core.FieldError `json:"errors,omitempty"`
	}
)

func NewClient(conf *core.Config, logger core.Logger) (*Client, error) {
	base, err := url.Parse(conf.APIBaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing API base URL %q", conf.APIBaseURL)
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: conf.APITimeout},
		log:  logger,
	}, nil
}

// SetTokenSource wires the session Manager in after construction; the
// Manager itself needs the Client for its refresh call.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Do issues one request. For authorized calls the token source must yield a
// valid token first; a caller without a session short-circuits here, before
// any network round trip. Business calls are never retried automatically.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, authorized bool) error {
	token := ""
	if authorized {
		if c.tokens == nil {
			return core.NewAuthenticationError(errors.New("no token source configured"))
		}
		var err error
		if token, err = c.tokens.ValidToken(ctx); err != nil {
			return err
		}
	}
	return c.do(ctx, method, path, token, body, out, authorized)
}

// do issues the request with an explicit token ("" for unauthenticated
// calls). The session refresh call uses this path directly so that the stale
// token can still be presented.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}, authorized bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reqBody)
	if err != nil {
		return errors.Wrapf(err, "building request %s %s", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.New().String())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewNetworkError(errors.Wrapf(err, "%s %s", method, path))
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return core.NewNetworkError(errors.Wrapf(err, "reading response of %s %s", method, path))
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return core.NewNetworkError(errors.Wrapf(err, "malformed envelope from %s %s", method, path))
		}
	}

	if err := c.mapError(ctx, resp.StatusCode, &env, authorized); err != nil {
		return err
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return core.NewNetworkError(errors.Wrapf(err, "decoding data of %s %s", method, path))
		}
	}
	return nil
}

// mapError converts the HTTP status and envelope into the error taxonomy.
func (c *Client) mapError(ctx context.Context, code int, env *envelope, authorized bool) error {
	if code >= 200 && code < 300 {
		if env.Status == statusError {
			// a 2xx carrying an error envelope is a server contract violation
			return core.NewNetworkError(errors.Errorf("inconsistent envelope: %s", env.Message))
		}
		return nil
	}

	msg := env.Message
	if msg == "" {
		msg = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized:
		// the server itself rejected our credentials: same forced-logout
		// path as a failed refresh
		if authorized && c.tokens != nil {
			c.tokens.ForceLogout(ctx)
		}
		return core.NewAuthenticationError(errors.New(msg))
	case code == http.StatusForbidden:
		return core.NewAuthorizationError(msg)
	case code == http.StatusNotFound:
		return errors.Wrap(core.ErrNotFound, msg)
	case code == http.StatusConflict:
		return core.NewConflictError(errors.New(msg), msg)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return core.NewValidationError(errors.New(msg), env.Errors...)
	default:
		return core.NewNetworkError(errors.Errorf("server error (%d): %s", code, msg))
	}
}

func (c *Client) resolve(path string) string {
	u := *c.base
	if i := strings.IndexByte(path, '?'); i >= 0 {
		u.RawQuery = path[i+1:]
		path = path[:i]
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}

// convenience wrappers

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, true)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out, true)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out, true)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, true)
}
