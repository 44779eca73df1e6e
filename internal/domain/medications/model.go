package medications

import "time"

// Medication representa un medicamento registrado por un usuario.
type Medication struct {
	ID     string
	UserID string

	Name      string
	Dosage    string
	Frequency string // etiqueta de frecuencia (ver Frequency)

	InitialSupply int // default 30
	CurrentSupply int // nunca negativo: todo decremento clava en 0
	RefillAt      int // umbral de reposición en porcentaje, default 10

	Instructions string
	StartDate    time.Time
	EndDate      *time.Time
	Active       bool
	Color        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DoseLog es una entrada inmutable del historial de tomas.
// Name y Dosage se copian del medicamento al momento de crearla:
// el historial refleja el medicamento tal como era en esa toma,
// aunque después se edite o borre.
type DoseLog struct {
	ID           string
	MedicationID string
	UserID       string

	Name   string
	Dosage string

	Status        LogStatus
	Timestamp     time.Time
	ScheduledTime *time.Time
	Notes         string
}
