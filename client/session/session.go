// Package session maneja la sesión autenticada del cliente: identidad
// y token se persisten juntos bajo una sola clave, y se limpian juntos.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"medtrack/client/api"
	"medtrack/client/storage"
)

var (
	ErrInvalidInput     = errors.New("email and password are required")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Credenciales reservadas del modo desarrollo. Solo funcionan con
// Config.AllowMockLogin en true; un build de producción nunca lo setea.
const (
	mockEmail    = "test@example.com"
	mockPassword = "password123"
	mockToken    = "mock-jwt-token"
)

type Config struct {
	Store storage.Store
	API   *api.Client

	// AllowMockLogin habilita el par de credenciales de desarrollo.
	// Default (zero value): deshabilitado.
	AllowMockLogin bool
}

// persisted es el blob que va al shim: identidad + token juntos.
type persisted struct {
	User  api.User `json:"user"`
	Token string   `json:"token"`
}

type Session struct {
	store     storage.Store
	api       *api.Client
	allowMock bool

	mu    sync.RWMutex
	user  api.User
	token string
	authd bool
}

func New(cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: store required")
	}
	if cfg.API == nil {
		return nil, errors.New("session: api client required")
	}
	return &Session{
		store:     cfg.Store,
		api:       cfg.API,
		allowMock: cfg.AllowMockLogin,
	}, nil
}

// Restore intenta recargar la sesión persistida al arrancar.
// Si falta o no deserializa, la sesión arranca sin autenticar y se
// limpia cualquier estado parcial.
func (s *Session) Restore(ctx context.Context) error {
	var p persisted
	err := s.store.Load(ctx, storage.KeySession, &p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		// Blob corrupto: mejor sesión limpia que estado a medias.
		_ = s.store.Remove(ctx, storage.KeySession)
		return nil
	}

	if strings.TrimSpace(p.Token) == "" || strings.TrimSpace(p.User.ID) == "" {
		_ = s.store.Remove(ctx, storage.KeySession)
		return nil
	}

	s.mu.Lock()
	s.user = p.User
	s.token = p.Token
	s.authd = true
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// Camino mock, solo dev. Aislado acá para que no se mezcle con el real.
	if s.allowMock && email == mockEmail && password == mockPassword {
		return s.setAuthenticated(ctx, api.User{
			ID:    "1",
			Name:  "Test User",
			Email: mockEmail,
		}, mockToken)
	}

	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		// AuthError / ErrNetwork suben tal cual; no se persiste nada.
		return err
	}
	return s.setAuthenticated(ctx, creds.User, creds.Token)
}

func (s *Session) Register(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return ErrInvalidInput
	}

	creds, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.setAuthenticated(ctx, creds.User, creds.Token)
}

// Logout limpia persistencia y estado en memoria, incondicional.
// No llama a ningún endpoint remoto.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, storage.KeySession); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = api.User{}
	s.token = ""
	s.authd = false
	s.mu.Unlock()
	return nil
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authd
}

func (s *Session) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authd
}

// Token devuelve la credencial para inyectar en cada llamada saliente.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authd {
		return "", ErrNotAuthenticated
	}
	return s.token, nil
}

// setAuthenticated persiste primero y recién después marca la sesión:
// si la escritura falla, la sesión queda como estaba.
func (s *Session) setAuthenticated(ctx context.Context, u api.User, token string) error {
	if err := s.store.Save(ctx, storage.KeySession, persisted{User: u, Token: token}); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = u
	s.token = token
	s.authd = true
	s.mu.Unlock()
	return nil
}
