// Package host exposes the Telegram Mini App launch context: who the user is,
// feedback triggers and link opening. Outside Telegram it falls back to a
// placeholder identity and silent feedback.
package host

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// User is the Telegram user from the launch data
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DisplayName returns the name shown in the profile
func (u User) DisplayName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// PlaceholderUser is used when no Telegram user is available
var PlaceholderUser = User{
	ID:           123456789,
	FirstName:    "Luna",
	LastName:     "Tarot",
	Username:     "lunatarot",
	LanguageCode: "ru",
	IsPremium:    true,
}

// Host is the launch context of the app
type Host struct {
	initData   string
	user       *User
	authDate   time.Time
	startParam string

	feedback Feedback
	opener   Opener
}

// Option configures a Host
type Option func(*Host)

// WithFeedback sets the feedback implementation
func WithFeedback(f Feedback) Option {
	return func(h *Host) {
		if f != nil {
			h.feedback = f
		}
	}
}

// WithOpener sets how links are opened
func WithOpener(o Opener) Option {
	return func(h *Host) {
		if o != nil {
			h.opener = o
		}
	}
}

// New builds a Host from Telegram initData. Malformed launch data is logged
// and treated as missing, never as a fatal error.
func New(initData string, options ...Option) *Host {
	h := &Host{
		feedback: Noop{},
		opener:   PrintOpener{},
	}
	for _, opt := range options {
		opt(h)
	}

	if initData == "" {
		return h
	}

	parsed, err := Parse(initData)
	if err != nil {
		log.WithError(err).Warn("Ignoring malformed Telegram launch data")
		return h
	}
	h.initData = parsed.Raw
	h.user = parsed.User
	h.authDate = parsed.AuthDate
	h.startParam = parsed.StartParam
	return h
}

// Launch is parsed Telegram initData
type Launch struct {
	Raw        string
	User       *User
	AuthDate   time.Time
	StartParam string
	Hash       string
}

// Parse reads a Telegram initData query string
func Parse(initData string) (*Launch, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("error parsing init data: %w", err)
	}

	launch := &Launch{
		Raw:        initData,
		StartParam: values.Get("start_param"),
		Hash:       values.Get("hash"),
	}

	if raw := values.Get("user"); raw != "" {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("error decoding init data user: %w", err)
		}
		launch.User = &u
	}

	if raw := values.Get("auth_date"); raw != "" {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid auth_date %q: %w", raw, err)
		}
		launch.AuthDate = time.Unix(sec, 0)
	}

	return launch, nil
}

// InHost reports whether the app was launched from Telegram with launch data
func (h *Host) InHost() bool {
	return h.initData != ""
}

// InitData returns the raw launch data sent to the backend as identity token
func (h *Host) InitData() string {
	return h.initData
}

// StartParam returns the deep-link start parameter, if any
func (h *Host) StartParam() string {
	return h.startParam
}

// Identity returns the Telegram user or the placeholder user
func (h *Host) Identity() User {
	if h.user != nil {
		return *h.user
	}
	return PlaceholderUser
}

// Feedback returns the feedback implementation, never nil
func (h *Host) Feedback() Feedback {
	return h.feedback
}

// OpenLink opens url through the configured opener
func (h *Host) OpenLink(url string) error {
	return h.opener.Open(url)
}

// Ready signals that the interface is ready to be shown
func (h *Host) Ready() {
	log.WithFields(log.Fields{
		"in_host":   h.InHost(),
		"user_id":   h.Identity().ID,
		"auth_date": h.authDate,
	}).Debug("Viewport ready")
}

// ConsumePaymentMarker strips the from_payment marker from a launch URL.
// It returns the cleaned URL and whether the user came back from a payment.
func ConsumePaymentMarker(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}

	query := u.Query()
	if !query.Has("from_payment") {
		return rawURL, false
	}

	fromPayment := query.Get("from_payment") == "true"
	query.Del("from_payment")
	u.RawQuery = query.Encode()
	return u.String(), fromPayment
}
