// Package client talks to the booking API over HTTP. It implements the
// wizard's Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/wizard"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken books as a provider: commits go to /api/me/appointments.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ======================================================
// BACKEND
// ======================================================

func (c *Client) Salon(ctx context.Context, slug string) (*models.Salon, error) {
	var out models.Salon
	if err := c.do(ctx, http.MethodGet, "/api/salons/"+url.PathEscape(slug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Providers(ctx context.Context, slug string) ([]models.Provider, error) {
	var out []models.Provider
	err := c.do(ctx, http.MethodGet, "/api/salons/"+url.PathEscape(slug)+"/providers", nil, nil, &out)
	return out, err
}

func (c *Client) Services(ctx context.Context, providerID uint) ([]models.Service, error) {
	var out []models.Service
	err := c.do(ctx, http.MethodGet, providerPath(providerID, "services"), nil, nil, &out)
	return out, err
}

func (c *Client) Availability(ctx context.Context, providerID, serviceID uint, date string) ([]string, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("service_id", strconv.FormatUint(uint64(serviceID), 10))

	var out []string
	err := c.do(ctx, http.MethodGet, providerPath(providerID, "availability")+"?"+q.Encode(), nil, nil, &out)
	return out, err
}

// WorkingHours returns the provider's opening and closing hour on date.
func (c *Client) WorkingHours(ctx context.Context, providerID uint, date string) (opening, closing int, err error) {
	var out struct {
		OpeningHour int `json:"openingHour"`
		ClosingHour int `json:"closingHour"`
	}
	q := url.Values{"date": {date}}
	if err := c.do(ctx, http.MethodGet, providerPath(providerID, "working-hours")+"?"+q.Encode(), nil, nil, &out); err != nil {
		return 0, 0, err
	}
	return out.OpeningHour, out.ClosingHour, nil
}

type customerBody struct {
	UserID uint   `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type commitBody struct {
	ProviderID uint          `json:"provider_id"`
	ServiceID  uint          `json:"service_id"`
	Date       string        `json:"appointment_date"`
	Time       string        `json:"appointment_time"`
	Comment    string        `json:"comment,omitempty"`
	Customer   *customerBody `json:"customer,omitempty"`
}

func (c *Client) Commit(ctx context.Context, req wizard.CommitRequest, idempotencyKey string) (*dto.AppointmentCreatedDTO, error) {
	body := commitBody{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Comment:    req.Comment,
	}
	if req.Customer != (wizard.Customer{}) {
		body.Customer = &customerBody{
			UserID: req.Customer.UserID,
			Name:   req.Customer.Name,
			Email:  req.Customer.Email,
			Phone:  req.Customer.Phone,
		}
	}

	path := "/api/appointments"
	if c.token != "" {
		path = "/api/me/appointments"
	}

	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var out dto.AppointmentCreatedDTO
	if err := c.do(ctx, http.MethodPost, path, headers, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancels a booking with the token handed out at creation.
func (c *Client) Cancel(ctx context.Context, appointmentID uint, manageToken string) (*dto.StatusChangeDTO, error) {
	path := "/api/appointments/" + strconv.FormatUint(uint64(appointmentID), 10)
	headers := map[string]string{"X-Manage-Token": manageToken}

	var out dto.StatusChangeDTO
	if err := c.do(ctx, http.MethodDelete, path, headers, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ======================================================
// TRANSPORT
// ======================================================

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr httperr.HTTPError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Code == "" {
			return &httperr.TransportError{Status: resp.StatusCode, Code: strings.TrimSpace(string(raw))}
		}
		return httperr.FromResponse(resp.StatusCode, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsTransport reports whether err came from the network or a non-business
// status rather than from a booking rule.
func IsTransport(err error) bool {
	var te *httperr.TransportError
	return errors.As(err, &te)
}

func providerPath(providerID uint, leaf string) string {
	return "/api/providers/" + strconv.FormatUint(uint64(providerID), 10) + "/" + leaf
}

var _ wizard.Backend = (*Client)(nil)
