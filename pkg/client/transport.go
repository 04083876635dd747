package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const refreshPath = "/api/auth/refresh"

// authPaths never go through the refresh-and-retry path.
var authPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	refreshPath,
	"/api/auth/logout",
}

// RefreshError reports a failed token renewal. The session has already been
// logged out when it is returned.
type RefreshError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RefreshError) Error() string {
	switch {
	case e.Err != nil:
		return "token refresh failed: " + e.Err.Error()
	case e.Message != "":
		return fmt.Sprintf("token refresh failed: %d %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("token refresh failed: status %d", e.StatusCode)
	}
}

func (e *RefreshError) Unwrap() error { return e.Err }

type retriedKey struct{}

func alreadyRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// Transport attaches the session's access token to every request. A 401
// on a non-auth endpoint triggers at most one refresh followed by one
// replay of the original request.
type Transport struct {
	base    http.RoundTripper
	session *Session
	baseURL string
	log     zerolog.Logger
}

// NewTransport wraps base. A nil base means http.DefaultTransport.
func NewTransport(baseURL string, session *Session, base http.RoundTripper, log zerolog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:    base,
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.authorize(req.Context(), req, t.session.AccessToken()))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if isAuthPath(req.URL.Path) || alreadyRetried(req.Context()) || !replayable(req) {
		return resp, nil
	}

	refresh := t.session.RefreshToken()
	if refresh == "" {
		t.logout()
		return resp, nil
	}
	drain(resp)

	access, rerr := t.refresh(req.Context(), refresh)
	if rerr != nil {
		t.log.Warn().Err(rerr).Str("path", req.URL.Path).Msg("token refresh failed, logging out")
		t.logout()
		return nil, rerr
	}
	if err := t.session.UpdateAccessToken(access); err != nil {
		t.log.Warn().Err(err).Msg("persist refreshed access token")
	}

	retry := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	retry.Header.Set("Authorization", "Bearer "+access)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "replay request body")
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// authorize clones req so the caller's request is never mutated. An
// Authorization header set by the caller is kept.
func (t *Transport) authorize(ctx context.Context, req *http.Request, token string) *http.Request {
	out := req.Clone(ctx)
	if token != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out
}

func (t *Transport) refresh(ctx context.Context, refreshToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+refreshPath, http.NoBody)
	if err != nil {
		return "", &RefreshError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", &RefreshError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return "", &RefreshError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &RefreshError{StatusCode: resp.StatusCode, Err: errors.Wrap(err, "decode refresh response")}
	}
	if body.AccessToken == "" {
		return "", &RefreshError{StatusCode: resp.StatusCode, Message: "empty access token"}
	}
	return body.AccessToken, nil
}

func (t *Transport) logout() {
	if err := t.session.Logout(); err != nil {
		t.log.Warn().Err(err).Msg("clear session")
	}
}

func isAuthPath(p string) bool {
	for _, ap := range authPaths {
		if strings.HasSuffix(p, ap) {
			return true
		}
	}
	return false
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
