package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medtrack/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listHandler(svc))
		mr.Post("/", createHandler(svc))

		// Vigentes hoy / en una fecha dada (YYYY-MM-DD)
		mr.Get("/today", todayHandler(svc))
		mr.Get("/date/{date}", dateHandler(svc))

		// Historial de tomas (rutas estáticas antes que {id})
		mr.Get("/history", historyHandler(svc))
		mr.Delete("/history", clearHistoryHandler(svc))

		mr.Put("/{id}", updateHandler(svc))
		mr.Delete("/{id}", deleteHandler(svc))
		mr.Post("/{id}/take", takeHandler(svc))
		mr.Post("/{id}/miss", missHandler(svc))
	})
}

type createRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`

	InitialSupply *int `json:"initialSupply"`
	CurrentSupply *int `json:"currentSupply"`
	RefillAt      *int `json:"refillAt"`

	Instructions string `json:"instructions"`
	StartDate    string `json:"startDate"` // RFC3339 opcional
	EndDate      string `json:"endDate"`   // RFC3339 opcional
	Color        string `json:"color"`
}

type updateRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string `json:"name"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`

	InitialSupply *int `json:"initialSupply"`
	CurrentSupply *int `json:"currentSupply"`
	RefillAt      *int `json:"refillAt"`

	Instructions *string `json:"instructions"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"` // "" o null explícito no limpian; ver endDate en raw
	Active       *bool   `json:"active"`
	Color        *string `json:"color"`
}

type medicationResponse struct {
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

type logResponse struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Status        LogStatus  `json:"status"`
	Timestamp     time.Time  `json:"timestamp"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// createHandler godoc
// @Summary Registrar medicamento
// @Description Crea un medicamento para el usuario autenticado. initialSupply default 30, currentSupply default initialSupply, refillAt default 10.
// @Tags medications
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param payload body createRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Router /medications [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		start, err := parseOptionalTime(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
			return
		}
		end, err := parseOptionalTime(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
			return
		}

		m, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:          req.Name,
			Dosage:        req.Dosage,
			Frequency:     req.Frequency,
			InitialSupply: req.InitialSupply,
			CurrentSupply: req.CurrentSupply,
			RefillAt:      req.RefillAt,
			Instructions:  req.Instructions,
			StartDate:     start,
			EndDate:       end,
			Color:         req.Color,
		})
		if err != nil {
			respondErr(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(m))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func todayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		items, err := svc.ListForDate(r.Context(), claims.UserID, time.Now())
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func dateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		items, err := svc.ListForDate(r.Context(), claims.UserID, date)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		// Para distinguir "endDate": null (limpiar) de "no enviado",
		// decodificamos primero a raw y detectamos presencia del campo.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var req updateRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json")
				return
			}
		}

		in := UpdateInput{
			Name:          req.Name,
			Dosage:        req.Dosage,
			Frequency:     req.Frequency,
			InitialSupply: req.InitialSupply,
			CurrentSupply: req.CurrentSupply,
			RefillAt:      req.RefillAt,
			Instructions:  req.Instructions,
			Active:        req.Active,
			Color:         req.Color,
		}

		if req.StartDate != nil {
			t, err := time.Parse(time.RFC3339, *req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
				return
			}
			in.StartDate = &t
		}
		if v, exists := raw["endDate"]; exists {
			if string(v) == "null" {
				in.ClearEndDate = true
			} else {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					writeError(w, http.StatusBadRequest, "endDate must be RFC3339 or null")
					return
				}
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					writeError(w, http.StatusBadRequest, "endDate must be RFC3339 or null")
					return
				}
				in.EndDate = &t
			}
		}

		m, err := svc.Update(r.Context(), chi.URLParam(r, "id"), claims.UserID, in)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Medication deleted"})
	}
}

// takeHandler godoc
// @Summary Marcar toma
// @Description Decrementa el supply en 1 (clavado en 0) y agrega una entrada taken al historial.
// @Tags medications
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 401 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /medications/{id}/take [post]
func takeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		m, err := svc.Take(r.Context(), chi.URLParam(r, "id"), claims.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m))
	}
}

func missHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		if err := svc.Miss(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Medication marked as missed"})
	}
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		var status LogStatus
		if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" && t != "all" {
			status = LogStatus(t)
		}

		logs, err := svc.History(r.Context(), claims.UserID, status)
		if err != nil {
			respondErr(w, err)
			return
		}

		out := make([]logResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, logResponse{
				ID:            l.ID,
				MedicationID:  l.MedicationID,
				Name:          l.Name,
				Dosage:        l.Dosage,
				Status:        l.Status,
				Timestamp:     l.Timestamp,
				ScheduledTime: l.ScheduledTime,
				Notes:         l.Notes,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func clearHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAuth(w, r)
		if !ok {
			return
		}

		if err := svc.ClearHistory(r.Context(), claims.UserID); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Medication history cleared"})
	}
}

type authedUser struct {
	UserID string
}

func requireAuth(w http.ResponseWriter, r *http.Request) (authedUser, bool) {
	c, found := middleware.GetClaims(r.Context())
	if !found || strings.TrimSpace(c.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return authedUser{}, false
	}
	return authedUser{UserID: c.UserID}, true
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Medication not found")
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Database service unavailable. Please try again later.")
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong on the server!")
	}
}

func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Dosage:        m.Dosage,
		Frequency:     m.Frequency,
		InitialSupply: m.InitialSupply,
		CurrentSupply: m.CurrentSupply,
		RefillAt:      m.RefillAt,
		Instructions:  m.Instructions,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Active:        m.Active,
		Color:         m.Color,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toResponses(items []Medication) []medicationResponse {
	out := make([]medicationResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toResponse(m))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}
