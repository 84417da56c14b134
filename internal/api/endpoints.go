package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Health checks that the backend is up
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		OK *bool `json:"ok"`
	}
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp)
	var be *BackendError
	// A 200 without a JSON body still means the backend is up.
	if errors.As(err, &be) && be.Status == http.StatusOK {
		return nil
	}
	if err != nil {
		return err
	}
	if resp.OK != nil && !*resp.OK {
		return &BackendError{Status: http.StatusOK, Message: "backend reported not ok"}
	}
	return nil
}

// Authenticate registers the Telegram user with the backend
func (c *Client) Authenticate(ctx context.Context, req AuthRequest) (*User, error) {
	if req.IdentityToken == "" {
		req.IdentityToken = c.initData
	}

	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &BackendError{Status: http.StatusOK, Message: "no user in auth response"}
	}
	return resp.User, nil
}

// FetchUser returns the user record and usage stats
func (c *Client) FetchUser(ctx context.Context, userID int64) (*User, *Stats, error) {
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}

	var resp struct {
		User  *User  `json:"user"`
		Stats *Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user", query, nil, &resp); err != nil {
		return nil, nil, err
	}
	if resp.User == nil {
		return nil, nil, &BackendError{Status: http.StatusOK, Message: "no user in response"}
	}
	return resp.User, resp.Stats, nil
}

// CreateReading asks the backend to interpret a hand
func (c *Client) CreateReading(ctx context.Context, req ReadingRequest) (*Reading, error) {
	var resp struct {
		Reading *Reading `json:"reading"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/reading", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Reading == nil {
		return nil, &BackendError{Status: http.StatusOK, Message: "no reading in response"}
	}
	return resp.Reading, nil
}

// CreatePayment records a pending payment and returns its payment link
func (c *Client) CreatePayment(ctx context.Context, userID int64, packageKey string) (*Payment, error) {
	body := struct {
		UserID     int64  `json:"user_id"`
		PackageKey string `json:"package_key"`
	}{userID, packageKey}

	var resp struct {
		Payment *Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/payment", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Payment == nil || resp.Payment.URL == "" {
		return nil, &BackendError{Status: http.StatusOK, Message: "no payment link in response"}
	}
	return resp.Payment, nil
}

// ListRates returns the purchasable packages
func (c *Client) ListRates(ctx context.Context) ([]Rate, error) {
	var resp struct {
		Rates []Rate `json:"rates"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/rates", nil, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Rates) == 0 {
		return nil, &BackendError{Status: http.StatusOK, Message: "no rates in response"}
	}
	return resp.Rates, nil
}

// History returns one page of readings and payments
func (c *Client) History(ctx context.Context, userID int64, page, limit int) (*History, error) {
	query := url.Values{
		"user_id": {strconv.FormatInt(userID, 10)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(limit)},
	}

	var resp struct {
		History    []ReadingRecord `json:"history"`
		Payments   []PaymentRecord `json:"payments"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history", query, nil, &resp); err != nil {
		return nil, err
	}
	return &History{
		Readings: resp.History,
		Payments: resp.Payments,
		Total:    resp.Pagination.Total,
	}, nil
}

// Achievements returns the user's achievements and level
func (c *Client) Achievements(ctx context.Context, userID int64) (*Achievements, error) {
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}

	resp := Achievements{Level: Level{Level: 1}}
	if err := c.do(ctx, http.MethodGet, "/api/achievements", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClaimAchievement claims the reward of a completed achievement
func (c *Client) ClaimAchievement(ctx context.Context, userID int64, key string) error {
	body := struct {
		UserID int64  `json:"user_id"`
		Key    string `json:"achievement_key"`
	}{userID, key}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/achievements/claim", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &BackendError{Status: http.StatusOK, Message: "achievement was not claimed"}
	}
	return nil
}
