// Package medstore es el repositorio local de medicamentos del cliente:
// las colecciones completas viven en el shim de storage y se reescriben
// enteras en cada mutación (read-modify-write, sin escrituras parciales).
package medstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"medtrack/client/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
)

const (
	DefaultInitialSupply = 30
	DefaultRefillAt      = 10
)

// Medication es el registro local. El shape replica el blob que el
// cliente ya persistía (incluido el id legado bajo "_id"), así datos
// viejos siguen cargando.
type Medication struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Frequency     string     `json:"frequency"`
	InitialSupply int        `json:"initialSupply"`
	CurrentSupply int        `json:"currentSupply"`
	RefillAt      int        `json:"refillAt"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// DoseLog es una entrada inmutable del historial local. Name y Dosage
// se copian del medicamento al crearla: el historial conserva cómo era
// el medicamento en esa toma aunque después se edite o borre.
type DoseLog struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Status        string     `json:"status"` // taken | missed | skipped
	Timestamp     time.Time  `json:"timestamp"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

const (
	StatusTaken  = "taken"
	StatusMissed = "missed"
)

// Los blobs viejos guardaban el id bajo "_id" (estilo documento).
// Al deserializar aceptamos ambos; al serializar siempre va "id".

func (m *Medication) UnmarshalJSON(b []byte) error {
	type plain Medication
	aux := struct {
		*plain
		LegacyID string `json:"_id"`
	}{plain: (*plain)(m)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.LegacyID
	}
	return nil
}

func (l *DoseLog) UnmarshalJSON(b []byte) error {
	type plain DoseLog
	aux := struct {
		*plain
		LegacyID string `json:"_id"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = aux.LegacyID
	}
	return nil
}

// Store serializa todas las mutaciones detrás de un solo mutex: dos
// caminos de código independientes no pueden pisarse la colección.
type Store struct {
	kv storage.Store

	mu         sync.Mutex
	meds       []Medication
	medsLoaded bool
	logs       []DoseLog
	logsLoaded bool

	now   func() time.Time
	newID func() string
}

func New(kv storage.Store) *Store {
	return &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List devuelve la colección completa, cargándola del shim la primera vez.
func (s *Store) List(ctx context.Context) ([]Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return nil, err
	}
	out := make([]Medication, len(s.meds))
	copy(out, s.meds)
	return out, nil
}

type Draft struct {
	Name      string
	Dosage    string
	Frequency string

	InitialSupply *int // nil => 30
	CurrentSupply *int // nil => initialSupply
	RefillAt      *int // nil => 10

	StartDate *time.Time // nil => now
	EndDate   *time.Time
}

func (s *Store) Add(ctx context.Context, d Draft) (Medication, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Medication{}, ErrInvalidInput
	}

	initial := DefaultInitialSupply
	if d.InitialSupply != nil {
		if *d.InitialSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		initial = *d.InitialSupply
	}
	current := initial
	if d.CurrentSupply != nil {
		if *d.CurrentSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		current = *d.CurrentSupply
	}
	refillAt := DefaultRefillAt
	if d.RefillAt != nil {
		if *d.RefillAt < 0 {
			return Medication{}, ErrInvalidInput
		}
		refillAt = *d.RefillAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return Medication{}, err
	}

	now := s.now()
	start := now
	if d.StartDate != nil {
		start = *d.StartDate
	}

	m := Medication{
		ID:            s.newID(),
		Name:          strings.TrimSpace(d.Name),
		Dosage:        strings.TrimSpace(d.Dosage),
		Frequency:     strings.TrimSpace(d.Frequency),
		InitialSupply: initial,
		CurrentSupply: current,
		RefillAt:      refillAt,
		StartDate:     start,
		EndDate:       d.EndDate,
		Active:        true,
		CreatedAt:     now,
	}

	// Construimos la colección nueva completa y recién ahí persistimos:
	// si Save falla, el estado en memoria queda como estaba.
	next := append(append([]Medication{}, s.meds...), m)
	if err := s.kv.Save(ctx, storage.KeyMedications, next); err != nil {
		return Medication{}, err
	}
	s.meds = next
	return m, nil
}

// Patch usa punteros: nil = no tocar (merge superficial).
type Patch struct {
	Name      *string
	Dosage    *string
	Frequency *string

	InitialSupply *int
	CurrentSupply *int
	RefillAt      *int

	StartDate *time.Time
	EndDate   *time.Time
	Active    *bool
}

func (s *Store) Update(ctx context.Context, id string, p Patch) (Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return Medication{}, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return Medication{}, ErrNotFound
	}

	m := s.meds[idx]
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Dosage != nil {
		m.Dosage = strings.TrimSpace(*p.Dosage)
	}
	if p.Frequency != nil {
		m.Frequency = strings.TrimSpace(*p.Frequency)
	}
	if p.InitialSupply != nil {
		if *p.InitialSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.InitialSupply = *p.InitialSupply
	}
	if p.CurrentSupply != nil {
		if *p.CurrentSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.CurrentSupply = *p.CurrentSupply
	}
	if p.RefillAt != nil {
		if *p.RefillAt < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.RefillAt = *p.RefillAt
	}
	if p.StartDate != nil {
		m.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		m.EndDate = p.EndDate
	}
	if p.Active != nil {
		m.Active = *p.Active
	}

	next := make([]Medication, len(s.meds))
	copy(next, s.meds)
	next[idx] = m

	if err := s.kv.Save(ctx, storage.KeyMedications, next); err != nil {
		return Medication{}, err
	}
	s.meds = next
	return m, nil
}

// Delete borra el medicamento y, en cascada, todas sus entradas del historial.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return err
	}
	if err := s.loadLogs(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	nextMeds := make([]Medication, 0, len(s.meds)-1)
	nextMeds = append(nextMeds, s.meds[:idx]...)
	nextMeds = append(nextMeds, s.meds[idx+1:]...)

	nextLogs := make([]DoseLog, 0, len(s.logs))
	for _, l := range s.logs {
		if l.MedicationID == id {
			continue
		}
		nextLogs = append(nextLogs, l)
	}

	if err := s.kv.Save(ctx, storage.KeyMedications, nextMeds); err != nil {
		return err
	}
	if err := s.kv.Save(ctx, storage.KeyHistory, nextLogs); err != nil {
		return err
	}
	s.meds = nextMeds
	s.logs = nextLogs
	return nil
}

// Take decrementa el supply en 1 (clavado en 0) y agrega una entrada
// taken al historial. Son dos escrituras al shim, sin transacción.
func (s *Store) Take(ctx context.Context, id string) (Medication, error) {
	return s.logDose(ctx, id, StatusTaken, true)
}

// Miss agrega una entrada missed. No toca el supply.
func (s *Store) Miss(ctx context.Context, id string) (Medication, error) {
	return s.logDose(ctx, id, StatusMissed, false)
}

func (s *Store) logDose(ctx context.Context, id, status string, decrement bool) (Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return Medication{}, err
	}
	if err := s.loadLogs(ctx); err != nil {
		return Medication{}, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return Medication{}, ErrNotFound
	}

	m := s.meds[idx]
	if decrement {
		if m.CurrentSupply > 0 {
			m.CurrentSupply--
		}

		nextMeds := make([]Medication, len(s.meds))
		copy(nextMeds, s.meds)
		nextMeds[idx] = m

		if err := s.kv.Save(ctx, storage.KeyMedications, nextMeds); err != nil {
			return Medication{}, err
		}
		s.meds = nextMeds
	}

	entry := DoseLog{
		ID:           s.newID(),
		MedicationID: m.ID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Status:       status,
		Timestamp:    s.now(),
	}

	// Más reciente primero, igual que el blob histórico del cliente.
	nextLogs := append([]DoseLog{entry}, s.logs...)
	if err := s.kv.Save(ctx, storage.KeyHistory, nextLogs); err != nil {
		return Medication{}, err
	}
	s.logs = nextLogs
	return m, nil
}

// History devuelve el historial local completo, con filtro opcional
// por estado ("" o "all" = todos). Acá no hay tope de 100: es data
// del propio dispositivo.
func (s *Store) History(ctx context.Context, status string) ([]DoseLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLogs(ctx); err != nil {
		return nil, err
	}

	out := make([]DoseLog, 0, len(s.logs))
	for _, l := range s.logs {
		if status != "" && status != "all" && l.Status != status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storage.KeyHistory); err != nil {
		return err
	}
	s.logs = nil
	s.logsLoaded = true
	return nil
}

// ForToday devuelve los medicamentos vigentes hoy.
func (s *Store) ForToday(ctx context.Context) ([]Medication, error) {
	return s.ForDate(ctx, s.now())
}

// ForDate filtra por vigencia: activos, con StartDate <= fecha y
// EndDate (si existe) >= fecha. Un registro sin fechas (data vieja)
// está vigente todos los días.
func (s *Store) ForDate(ctx context.Context, date time.Time) ([]Medication, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Medication, 0, len(all))
	for _, m := range all {
		if m.DueOn(date) {
			out = append(out, m)
		}
	}
	return out, nil
}

// DueOn indica si el medicamento está vigente en la fecha dada.
func (m Medication) DueOn(date time.Time) bool {
	// Data vieja sin campo active deserializa en false; un registro
	// zero-value completo se considera vigente igual.
	if !m.Active && !m.StartDate.IsZero() {
		return false
	}
	y, mo, d := date.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	if !m.StartDate.IsZero() && !m.StartDate.Before(dayEnd) {
		return false
	}
	if m.EndDate != nil && m.EndDate.Before(dayStart) {
		return false
	}
	return true
}

// NeedsRefill indica si el supply cayó al umbral RefillAt (porcentaje).
func (m Medication) NeedsRefill() bool {
	if m.InitialSupply <= 0 {
		return false
	}
	return m.CurrentSupply*100 <= m.RefillAt*m.InitialSupply
}

// Refill repone el supply al valor inicial.
func (s *Store) Refill(ctx context.Context, id string) (Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadMeds(ctx); err != nil {
		return Medication{}, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return Medication{}, ErrNotFound
	}

	m := s.meds[idx]
	m.CurrentSupply = m.InitialSupply

	next := make([]Medication, len(s.meds))
	copy(next, s.meds)
	next[idx] = m

	if err := s.kv.Save(ctx, storage.KeyMedications, next); err != nil {
		return Medication{}, err
	}
	s.meds = next
	return m, nil
}

// indexOf asume mu tomado.
func (s *Store) indexOf(id string) int {
	for i, m := range s.meds {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// loadMeds asume mu tomado. Clave ausente = colección vacía.
func (s *Store) loadMeds(ctx context.Context) error {
	if s.medsLoaded {
		return nil
	}
	var meds []Medication
	if err := s.kv.Load(ctx, storage.KeyMedications, &meds); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	s.meds = meds
	s.medsLoaded = true
	return nil
}

// loadLogs asume mu tomado.
func (s *Store) loadLogs(ctx context.Context) error {
	if s.logsLoaded {
		return nil
	}
	var logs []DoseLog
	if err := s.kv.Load(ctx, storage.KeyHistory, &logs); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	s.logs = logs
	s.logsLoaded = true
	return nil
}
