// Package api es el cliente tipado de la API REST de medtrack.
// El token se inyecta explícitamente en cada llamada; acá no existe
// ningún header default mutable compartido.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"medtrack/internal/platform/httpclient"
)

var (
	// ErrNetwork indica que no hubo respuesta del servidor.
	ErrNetwork = errors.New("no response from server")

	ErrNotFound = errors.New("not found")
)

// AuthError es un rechazo del servidor con mensaje propio (401/credenciales).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// APIError es cualquier otra respuesta no-2xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

type Config struct {
	BaseURL string
	Timeout time.Duration

	// Opcional: transport inyectable para tests.
	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

func New(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithTransport(cfg.BaseURL, cfg.Timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}
	if hc.BaseURL == "" {
		return nil, errors.New("api: base url required")
	}
	return &Client{http: hc}, nil
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials es la respuesta de /auth: identidad + token juntos.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Medication struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Frequency     string     `json:"frequency"`
	InitialSupply int        `json:"initialSupply"`
	CurrentSupply int        `json:"currentSupply"`
	RefillAt      int        `json:"refillAt"`
	Instructions  string     `json:"instructions,omitempty"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Active        bool       `json:"active"`
	Color         string     `json:"color"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type DoseLog struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Status        string     `json:"status"`
	Timestamp     time.Time  `json:"timestamp"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var out Credentials
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	var out Credentials
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Medications(ctx context.Context, token string) ([]Medication, error) {
	var out []Medication
	err := c.do(ctx, http.MethodGet, "/medications", token, nil, &out)
	return out, err
}

func (c *Client) MedicationsForToday(ctx context.Context, token string) ([]Medication, error) {
	var out []Medication
	err := c.do(ctx, http.MethodGet, "/medications/today", token, nil, &out)
	return out, err
}

func (c *Client) MedicationsForDate(ctx context.Context, token string, date time.Time) ([]Medication, error) {
	var out []Medication
	err := c.do(ctx, http.MethodGet, "/medications/date/"+date.Format("2006-01-02"), token, nil, &out)
	return out, err
}

// CreateInput replica el body de POST /medications; los campos numéricos
// van como punteros para que el server aplique sus defaults.
type CreateInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`

	InitialSupply *int `json:"initialSupply,omitempty"`
	CurrentSupply *int `json:"currentSupply,omitempty"`
	RefillAt      *int `json:"refillAt,omitempty"`

	Instructions string `json:"instructions,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Color        string `json:"color,omitempty"`
}

func (c *Client) CreateMedication(ctx context.Context, token string, in CreateInput) (Medication, error) {
	var out Medication
	err := c.do(ctx, http.MethodPost, "/medications", token, in, &out)
	return out, err
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name      *string `json:"name,omitempty"`
	Dosage    *string `json:"dosage,omitempty"`
	Frequency *string `json:"frequency,omitempty"`

	InitialSupply *int `json:"initialSupply,omitempty"`
	CurrentSupply *int `json:"currentSupply,omitempty"`
	RefillAt      *int `json:"refillAt,omitempty"`

	Instructions *string `json:"instructions,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	Color        *string `json:"color,omitempty"`
}

func (c *Client) UpdateMedication(ctx context.Context, token, id string, in UpdateInput) (Medication, error) {
	var out Medication
	err := c.do(ctx, http.MethodPut, "/medications/"+url.PathEscape(id), token, in, &out)
	return out, err
}

func (c *Client) DeleteMedication(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/medications/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) TakeMedication(ctx context.Context, token, id string) (Medication, error) {
	var out Medication
	err := c.do(ctx, http.MethodPost, "/medications/"+url.PathEscape(id)+"/take", token, nil, &out)
	return out, err
}

func (c *Client) MissMedication(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, "/medications/"+url.PathEscape(id)+"/miss", token, nil, nil)
}

// History lista el historial; status "" o "all" = todos.
func (c *Client) History(ctx context.Context, token, status string) ([]DoseLog, error) {
	path := "/medications/history"
	if status != "" && status != "all" {
		path += "?type=" + url.QueryEscape(status)
	}
	var out []DoseLog
	err := c.do(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

func (c *Client) ClearHistory(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/medications/history", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}

	err := c.http.DoJSON(ctx, method, path, headers, in, out)
	if err == nil {
		return nil
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		msg := serverMessage(httpErr.Body)
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return &AuthError{Message: msg}
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		default:
			return &APIError{Status: httpErr.StatusCode, Message: msg}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, urlErr)
	}
	return err
}

// serverMessage extrae {"message": ...} del body de error, si lo hay.
func serverMessage(body string) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &m); err == nil && m.Message != "" {
		return m.Message
	}
	return body
}
