package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"medtrack/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc, issuer))
		ar.Post("/login", loginHandler(svc, issuer))
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// authResponse es el contrato del cliente: identidad + credencial juntas.
type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// registerHandler godoc
// @Summary Registrar cuenta
// @Description Crea la cuenta y devuelve token + usuario. Email duplicado responde 409.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de la cuenta"
// @Success 201 {object} authResponse
// @Failure 400 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /auth/register [post]
func registerHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrEmailTaken):
				writeError(w, http.StatusConflict, "Email already registered")
			case errors.Is(err, ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "name, email and password are required")
			case errors.Is(err, ErrUnavailable):
				writeError(w, http.StatusServiceUnavailable, "Database service unavailable. Please try again later.")
			default:
				writeError(w, http.StatusInternalServerError, "Something went wrong on the server!")
			}
			return
		}

		issueSession(w, r, issuer, u, http.StatusCreated)
	}
}

func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidCredentials):
				writeError(w, http.StatusUnauthorized, "Invalid email or password")
			case errors.Is(err, ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "email and password are required")
			case errors.Is(err, ErrUnavailable):
				writeError(w, http.StatusServiceUnavailable, "Database service unavailable. Please try again later.")
			default:
				writeError(w, http.StatusInternalServerError, "Something went wrong on the server!")
			}
			return
		}

		issueSession(w, r, issuer, u, http.StatusOK)
	}
}

func issueSession(w http.ResponseWriter, r *http.Request, issuer auth.TokenIssuer, u User, status int) {
	if issuer == nil {
		writeError(w, http.StatusInternalServerError, "auth not configured")
		return
	}
	token, err := issuer.Issue(r.Context(), auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Something went wrong on the server!")
		return
	}

	writeJSON(w, status, authResponse{
		Token: token,
		User:  userResponse{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}
