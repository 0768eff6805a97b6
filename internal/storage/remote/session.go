package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Session is what the CLI persists after a successful login: enough to
// rebuild a ForUser client later.
type Session struct {
	Server      string `json:"server"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	UserKey     string `json:"userKey"`
	Token       string `json:"token"`
}

type authRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password"`
}

type authResponse struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		UserKey     string `json:"userKey"`
		CreatedAt   int64  `json:"createdAt"`
	} `json:"user"`
	Token string `json:"token"`
}

func authCall(ctx context.Context, serverURL, path string, reqBody authRequest) (Session, error) {
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := strings.TrimRight(serverURL, "/") + "/api/v1/auth/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return Session{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Session{}, decodeError(resp)
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Session{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return Session{
		Server:      strings.TrimRight(serverURL, "/"),
		Email:       body.User.Email,
		DisplayName: body.User.DisplayName,
		UserKey:     body.User.UserKey,
		Token:       body.Token,
	}, nil
}

// Register creates an account on the sync server and returns a live session.
func Register(ctx context.Context, serverURL, email, displayName, password string) (Session, error) {
	return authCall(ctx, serverURL, "register", authRequest{Email: email, DisplayName: displayName, Password: password})
}

// Login authenticates against the sync server and returns a live session.
func Login(ctx context.Context, serverURL, email, password string) (Session, error) {
	return authCall(ctx, serverURL, "login", authRequest{Email: email, Password: password})
}

// Client builds the per-user document client for this session.
func (s Session) Client() *Client {
	return ForUser(s.Server, s.Token, s.UserKey)
}
