package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")

	// ErrUnavailable lo envuelven los adapters cuando el storage no responde.
	ErrUnavailable = errors.New("storage unavailable")
)

const (
	DefaultInitialSupply = 30
	DefaultRefillAt      = 10
	DefaultColor         = "#4A90E2"

	// HistoryLimit es el tope server-side: las 100 entradas más recientes.
	HistoryLimit = 100
)

type Service struct {
	meds  Repository
	logs  LogRepository
	now   func() time.Time
	newID func() string
}

func NewService(meds Repository, logs LogRepository) *Service {
	return &Service{
		meds:  meds,
		logs:  logs,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type CreateInput struct {
	Name      string
	Dosage    string
	Frequency string

	InitialSupply *int // nil => 30
	CurrentSupply *int // nil => initialSupply
	RefillAt      *int // nil => 10

	Instructions string
	StartDate    *time.Time // nil => now
	EndDate      *time.Time
	Color        string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Frequency) == "" {
		return Medication{}, ErrInvalidInput
	}

	initial := DefaultInitialSupply
	if in.InitialSupply != nil {
		if *in.InitialSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		initial = *in.InitialSupply
	}
	current := initial
	if in.CurrentSupply != nil {
		if *in.CurrentSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		current = *in.CurrentSupply
	}
	refillAt := DefaultRefillAt
	if in.RefillAt != nil {
		if *in.RefillAt < 0 {
			return Medication{}, ErrInvalidInput
		}
		refillAt = *in.RefillAt
	}

	now := s.now()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = DefaultColor
	}

	m := Medication{
		ID:            s.newID(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Dosage:        strings.TrimSpace(in.Dosage),
		Frequency:     strings.TrimSpace(in.Frequency),
		InitialSupply: initial,
		CurrentSupply: current,
		RefillAt:      refillAt,
		Instructions:  strings.TrimSpace(in.Instructions),
		StartDate:     start,
		EndDate:       in.EndDate,
		Active:        true,
		Color:         color,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.meds.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Medication, error) {
	return s.meds.ListByOwner(ctx, userID)
}

// ListForDate devuelve los medicamentos vigentes en la fecha dada:
// activos, con StartDate <= fecha y EndDate (si existe) >= fecha.
// Un registro sin fechas de vigencia está vigente todos los días.
func (s *Service) ListForDate(ctx context.Context, userID string, date time.Time) ([]Medication, error) {
	all, err := s.meds.ListByOwner(ctx, userID)
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
	if !m.Active {
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

// NeedsRefill indica si el supply actual cayó al umbral RefillAt (porcentaje).
func (m Medication) NeedsRefill() bool {
	if m.InitialSupply <= 0 {
		return false
	}
	return m.CurrentSupply*100 <= m.RefillAt*m.InitialSupply
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name      *string
	Dosage    *string
	Frequency *string

	InitialSupply *int
	CurrentSupply *int
	RefillAt      *int

	Instructions *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Active       *bool
	Color        *string
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Medication, error) {
	m, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Dosage != nil {
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		m.Frequency = strings.TrimSpace(*in.Frequency)
	}
	if in.InitialSupply != nil {
		if *in.InitialSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.InitialSupply = *in.InitialSupply
	}
	if in.CurrentSupply != nil {
		if *in.CurrentSupply < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.CurrentSupply = *in.CurrentSupply
	}
	if in.RefillAt != nil {
		if *in.RefillAt < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.RefillAt = *in.RefillAt
	}
	if in.Instructions != nil {
		m.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.StartDate != nil {
		m.StartDate = *in.StartDate
	}
	if in.ClearEndDate {
		m.EndDate = nil
	} else if in.EndDate != nil {
		m.EndDate = in.EndDate
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	if in.Color != nil {
		m.Color = strings.TrimSpace(*in.Color)
	}

	m.UpdatedAt = s.now()

	if err := s.meds.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Delete borra el medicamento y, en cascada, todo su historial de tomas.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	m, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.meds.Delete(ctx, m.ID); err != nil {
		return err
	}
	return s.logs.DeleteByMedication(ctx, m.ID, userID)
}

// Take registra una toma: decrementa el supply (clavado en 0) y
// agrega una entrada taken al historial.
// Son dos escrituras separadas, sin transacción entre ambas.
func (s *Service) Take(ctx context.Context, id, userID string) (Medication, error) {
	m, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Medication{}, err
	}

	if m.CurrentSupply > 0 {
		m.CurrentSupply--
	}
	m.UpdatedAt = s.now()

	if err := s.meds.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	if err := s.appendLog(ctx, m, StatusTaken); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Miss registra una toma perdida. No toca el supply.
func (s *Service) Miss(ctx context.Context, id, userID string) error {
	m, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.appendLog(ctx, m, StatusMissed)
}

// History devuelve el historial del usuario, más reciente primero,
// con filtro opcional por estado y tope de HistoryLimit entradas.
func (s *Service) History(ctx context.Context, userID string, status LogStatus) ([]DoseLog, error) {
	if status != "" && !ValidLogStatus(status) {
		return nil, ErrInvalidInput
	}
	return s.logs.ListByOwner(ctx, userID, LogFilter{
		Status: status,
		Limit:  HistoryLimit,
	})
}

func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	return s.logs.DeleteByOwner(ctx, userID)
}

// getOwned resuelve id + ownership en un paso.
// Un registro de otro usuario responde ErrNotFound, nunca "forbidden":
// no filtramos existencia de registros ajenos.
func (s *Service) getOwned(ctx context.Context, id, userID string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}
	m, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.UserID != userID {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) appendLog(ctx context.Context, m Medication, status LogStatus) error {
	return s.logs.Append(ctx, DoseLog{
		ID:           s.newID(),
		MedicationID: m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Status:       status,
		Timestamp:    s.now(),
	})
}
