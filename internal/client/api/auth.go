package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TokenResponse is the body of a successful POST /api/token/. Only Access
// is guaranteed; the other fields are extensions some backends add.
type TokenResponse struct {
	Access   string  `json:"access"`
	Refresh  string  `json:"refresh,omitempty"`
	ID       *int64  `json:"id,omitempty"`
	Username string  `json:"username,omitempty"`
	Building *string `json:"building,omitempty"`
}

// ObtainToken exchanges credentials for an access token.
func (c *Client) ObtainToken(ctx context.Context, username string, password []byte) (*TokenResponse, error) {
	r, err := jsonRequest(http.MethodPost, pathToken, map[string]string{
		"username": username,
		"password": string(password),
	})
	if err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}

	var tr TokenResponse
	if err := c.do(ctx, r, &tr); err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	if tr.Access == "" {
		return nil, fmt.Errorf("obtain token: %w: no access token", ErrInvalidFormat)
	}
	return &tr, nil
}

// RegisterRequest is the body of POST /api/register/.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	BuildingID int64  `json:"building_id"`
}

// Register creates an account. A 400 whose body flags the username field
// is reported as ErrUsernameTaken.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	r, err := jsonRequest(http.MethodPost, pathRegister, req)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	err = c.do(ctx, r, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest && flagsField(se.Body, "username") {
		return fmt.Errorf("register: %w: %w", ErrUsernameTaken, err)
	}
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// flagsField reports whether a validation error body mentions field.
func flagsField(body []byte, field string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	_, ok := fields[field]
	return ok
}
