// Package client is a Go client for the task manager API. It keeps a
// persisted Session and renews the access token transparently through
// Transport.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Errors     *ValidationDetails
}

type ValidationDetails struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type TaskList struct {
	Data []Task   `json:"data"`
	Meta TaskMeta `json:"meta"`
}

type TaskQuery struct {
	Page   int
	Limit  int
	Status string
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// UserRecord is the admin view of a user.
type UserRecord struct {
	User
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type UserList struct {
	Data       []UserRecord `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

type UserQuery struct {
	Page   int
	Limit  int
	Role   string
	Status string
	Search string
}

type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
	FullName *string `json:"fullName,omitempty"`
}

// Client calls the API on behalf of one Session.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

type options struct {
	base    http.RoundTripper
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*options)

// WithBaseTransport sets the transport wrapped by the refresh interceptor.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	o := options{timeout: defaultTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		session: session,
		http: &http.Client{
			Timeout:   o.timeout,
			Transport: NewTransport(baseURL, session, o.base, o.log),
		},
	}
}

func (c *Client) Session() *Session { return c.session }

// --- Auth ---

func (c *Client) Register(ctx context.Context, fullName, email, password string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	in := map[string]string{"fullName": fullName, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login stores the returned identity and both tokens in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         User   `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetAuth(out.User, out.AccessToken, out.RefreshToken); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Refresh renews the access token explicitly.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.doWithToken(ctx, http.MethodPost, "/api/auth/refresh", c.session.RefreshToken(), &out); err != nil {
		return "", err
	}
	if err := c.session.UpdateAccessToken(out.AccessToken); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout revokes the refresh token server-side and always clears the
// local session.
func (c *Client) Logout(ctx context.Context) error {
	var apiErr error
	if rt := c.session.RefreshToken(); rt != "" {
		apiErr = c.doWithToken(ctx, http.MethodPost, "/api/auth/logout", rt, nil)
	}
	if err := c.session.Logout(); err != nil {
		return err
	}
	return apiErr
}

// --- Profile ---

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fullName string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/users/me", nil, map[string]string{"fullName": fullName}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// --- Tasks ---

func (c *Client) CreateTask(ctx context.Context, in CreateTaskRequest) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (*TaskList, error) {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "status", q.Status)

	var out TaskList
	if err := c.do(ctx, http.MethodGet, "/api/tasks", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, in UpdateTaskRequest) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// --- Admin ---

func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*UserList, error) {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "role", q.Role)
	setString(v, "status", q.Status)
	setString(v, "search", q.Search)

	var out UserList
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	var out UserRecord
	if err := c.do(ctx, http.MethodGet, "/api/admin/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in UpdateUserRequest) (*UserRecord, error) {
	var out struct {
		User UserRecord `json:"user"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// DeleteUser deactivates the account.
func (c *Client) DeleteUser(ctx context.Context, id string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// doWithToken sends a bodiless auth call carrying token instead of the
// session's access token.
func (c *Client) doWithToken(ctx context.Context, method, path, token string, out any) error {
	req, err := c.newRequest(ctx, method, path, nil, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		var re *RefreshError
		if errors.As(err, &re) {
			return re
		}
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string             `json:"message"`
			Errors  *ValidationDetails `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Message, Errors: body.Errors}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
