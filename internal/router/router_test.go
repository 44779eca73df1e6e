package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medtrack/internal/adapters/auth/token"
)

type authPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type medPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	InitialSupply int    `json:"initialSupply"`
	CurrentSupply int    `json:"currentSupply"`
	RefillAt      int    `json:"refillAt"`
	Active        bool   `json:"active"`
}

type logPayload struct {
	ID         string `json:"id"`
	Medication string `json:"medication"`
	Name       string `json:"name"`
	Dosage     string `json:"dosage"`
	Status     string `json:"status"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	provider, err := token.NewProvider(token.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	srv := httptest.NewServer(NewRouter(Options{
		Issuer:   provider,
		Verifier: provider,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, tok string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s %s: %v", method, url, err)
		}
	}
	return resp
}

func registerUser(t *testing.T, srv *httptest.Server, email string) authPayload {
	t.Helper()

	var out authPayload
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	if out.Token == "" || out.User.ID == "" {
		t.Fatalf("register: incomplete payload %+v", out)
	}
	return out
}

func TestAPI_RegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	reg := registerUser(t, srv, "ana@example.com")

	var login authPayload
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "secret123",
	}, &login)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	if login.User.ID != reg.User.ID {
		t.Fatalf("login returned a different user: %s vs %s", login.User.ID, reg.User.ID)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-pass",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"name":     "Otra",
		"email":    "ana@example.com",
		"password": "secret456",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/medications", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/medications", "not-a-jwt", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", resp.StatusCode)
	}
}

func TestAPI_MedicationLifecycle(t *testing.T) {
	srv := newTestServer(t)
	sess := registerUser(t, srv, "ana@example.com")

	var created medPayload
	resp := doJSON(t, http.MethodPost, srv.URL+"/medications", sess.Token, map[string]any{
		"name":      "Abc",
		"dosage":    "500mg",
		"frequency": "once_daily",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	if created.InitialSupply != 30 || created.CurrentSupply != 30 || created.RefillAt != 10 {
		t.Fatalf("create: unexpected defaults %+v", created)
	}

	var taken medPayload
	resp = doJSON(t, http.MethodPost, srv.URL+"/medications/"+created.ID+"/take", sess.Token, nil, &taken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("take: expected 200, got %d", resp.StatusCode)
	}
	if taken.CurrentSupply != 29 {
		t.Fatalf("take: expected supply 29, got %d", taken.CurrentSupply)
	}

	var updated medPayload
	resp = doJSON(t, http.MethodPut, srv.URL+"/medications/"+created.ID, sess.Token, map[string]any{
		"name": "Abc forte",
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	if updated.Name != "Abc forte" || updated.CurrentSupply != 29 {
		t.Fatalf("update: unexpected payload %+v", updated)
	}

	var history []logPayload
	resp = doJSON(t, http.MethodGet, srv.URL+"/medications/history", sess.Token, nil, &history)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", resp.StatusCode)
	}
	if len(history) != 1 || history[0].Status != "taken" || history[0].Dosage != "500mg" {
		t.Fatalf("history: unexpected entries %+v", history)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/medications/"+created.ID, sess.Token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	// El borrado arrastra el historial
	history = nil
	doJSON(t, http.MethodGet, srv.URL+"/medications/history", sess.Token, nil, &history)
	if len(history) != 0 {
		t.Fatalf("expected history cleared after delete, got %+v", history)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/medications/"+created.ID+"/take", sess.Token, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("take after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestAPI_OwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	ana := registerUser(t, srv, "ana@example.com")
	bruno := registerUser(t, srv, "bruno@example.com")

	var created medPayload
	doJSON(t, http.MethodPost, srv.URL+"/medications", ana.Token, map[string]any{
		"name":      "Abc",
		"dosage":    "500mg",
		"frequency": "once_daily",
	}, &created)

	// Bruno no ve ni toca lo de Ana: siempre 404, nunca 403
	for _, tc := range []struct {
		method string
		url    string
	}{
		{http.MethodPut, srv.URL + "/medications/" + created.ID},
		{http.MethodDelete, srv.URL + "/medications/" + created.ID},
		{http.MethodPost, srv.URL + "/medications/" + created.ID + "/take"},
		{http.MethodPost, srv.URL + "/medications/" + created.ID + "/miss"},
	} {
		var body any
		if tc.method == http.MethodPut {
			body = map[string]any{"name": "hijacked"}
		}
		resp := doJSON(t, tc.method, tc.url, bruno.Token, body, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404 for foreign user, got %d", tc.method, tc.url, resp.StatusCode)
		}
	}

	var list []medPayload
	doJSON(t, http.MethodGet, srv.URL+"/medications", bruno.Token, nil, &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list for bruno, got %+v", list)
	}
}

func TestAPI_HistoryFilterAndClear(t *testing.T) {
	srv := newTestServer(t)
	sess := registerUser(t, srv, "ana@example.com")

	var created medPayload
	doJSON(t, http.MethodPost, srv.URL+"/medications", sess.Token, map[string]any{
		"name":      "Abc",
		"dosage":    "500mg",
		"frequency": "once_daily",
	}, &created)

	for i := 0; i < 3; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/medications/"+created.ID+"/take", sess.Token, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("take #%d: got %d", i+1, resp.StatusCode)
		}
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/medications/"+created.ID+"/miss", sess.Token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("miss: got %d", resp.StatusCode)
	}

	var missed []logPayload
	doJSON(t, http.MethodGet, srv.URL+"/medications/history?type=missed", sess.Token, nil, &missed)
	if len(missed) != 1 || missed[0].Status != "missed" {
		t.Fatalf("expected one missed entry, got %+v", missed)
	}

	var all []logPayload
	doJSON(t, http.MethodGet, srv.URL+"/medications/history?type=all", sess.Token, nil, &all)
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/medications/history", sess.Token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear history: got %d", resp.StatusCode)
	}
	all = nil
	doJSON(t, http.MethodGet, srv.URL+"/medications/history", sess.Token, nil, &all)
	if len(all) != 0 {
		t.Fatalf("expected empty history after clear, got %+v", all)
	}
}

func TestAPI_DateRoutes(t *testing.T) {
	srv := newTestServer(t)
	sess := registerUser(t, srv, "ana@example.com")

	doJSON(t, http.MethodPost, srv.URL+"/medications", sess.Token, map[string]any{
		"name":      "Abc",
		"dosage":    "500mg",
		"frequency": "once_daily",
		"startDate": "2025-01-01T00:00:00Z",
		"endDate":   "2025-01-31T00:00:00Z",
	}, nil)

	var due []medPayload
	resp := doJSON(t, http.MethodGet, srv.URL+"/medications/date/2025-01-15", sess.Token, nil, &due)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("date route: got %d", resp.StatusCode)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due medication on 2025-01-15, got %d", len(due))
	}

	due = nil
	doJSON(t, http.MethodGet, srv.URL+"/medications/date/2025-02-15", sess.Token, nil, &due)
	if len(due) != 0 {
		t.Fatalf("expected nothing due after end date, got %d", len(due))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/medications/date/15-01-2025", sess.Token, nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date format: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/medications/today", sess.Token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("today route: got %d", resp.StatusCode)
	}
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
}
