package medications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medtrack/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Repos que simulan el storage caído: todo devuelve ErrUnavailable
// envuelto, igual que lo hacen los adapters de postgres.

type downMedsRepo struct{}

func (downMedsRepo) Create(ctx context.Context, m Medication) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downMedsRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	return Medication{}, fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downMedsRepo) ListByOwner(ctx context.Context, userID string) ([]Medication, error) {
	return nil, fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downMedsRepo) Update(ctx context.Context, m Medication) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downMedsRepo) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

type downLogsRepo struct{}

func (downLogsRepo) Append(ctx context.Context, l DoseLog) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downLogsRepo) ListByOwner(ctx context.Context, userID string, filter LogFilter) ([]DoseLog, error) {
	return nil, fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downLogsRepo) DeleteByMedication(ctx context.Context, medicationID, userID string) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func (downLogsRepo) DeleteByOwner(ctx context.Context, userID string) error {
	return fmt.Errorf("%w: conexión rechazada", ErrUnavailable)
}

func newDownServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, NewService(downMedsRepo{}, downLogsRepo{}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandlers_StorageDownRespond503(t *testing.T) {
	srv := newDownServer(t)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/medications", ""},
		{http.MethodPost, "/medications", `{"name":"Abc","dosage":"500mg","frequency":"once_daily"}`},
		{http.MethodPut, "/medications/med-1", `{"name":"Abc"}`},
		{http.MethodDelete, "/medications/med-1", ""},
		{http.MethodPost, "/medications/med-1/take", ""},
		{http.MethodPost, "/medications/med-1/miss", ""},
		{http.MethodGet, "/medications/history", ""},
		{http.MethodDelete, "/medications/history", ""},
	}

	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("%s %s: new request: %v", tc.method, tc.path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Debug-User-ID", "user-1")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}

		var body messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s %s: decode body: %v", tc.method, tc.path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("%s %s: expected 503, got %d", tc.method, tc.path, resp.StatusCode)
		}
		if body.Message != "Database service unavailable. Please try again later." {
			t.Fatalf("%s %s: unexpected message %q", tc.method, tc.path, body.Message)
		}
	}
}
