package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByOwner(ctx context.Context, userID string) ([]Medication, error)
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string) error
}

// LogRepository guarda el historial append-only de tomas.
// Las entradas no se actualizan nunca; solo se crean y se borran en bloque.
type LogRepository interface {
	Append(ctx context.Context, l DoseLog) error
	ListByOwner(ctx context.Context, userID string, filter LogFilter) ([]DoseLog, error)
	DeleteByMedication(ctx context.Context, medicationID, userID string) error
	DeleteByOwner(ctx context.Context, userID string) error
}

type LogFilter struct {
	Status LogStatus // vacío = todos
	Limit  int       // 0 = sin límite
}
