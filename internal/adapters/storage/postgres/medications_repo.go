package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medtrack/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, user_id,
			name, dosage, frequency,
			initial_supply, current_supply, refill_at,
			instructions, start_date, end_date, active, color,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.InitialSupply,
		m.CurrentSupply,
		m.RefillAt,
		m.Instructions,
		m.StartDate,
		toNullTime(m.EndDate),
		m.Active,
		m.Color,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return wrapErr(err)
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency,
			initial_supply, current_supply, refill_at,
			instructions, start_date, end_date, active, color,
			created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, wrapErr(err)
	}
	return m, nil
}

func (r *MedicationsRepo) ListByOwner(ctx context.Context, userID string) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency,
			initial_supply, current_supply, refill_at,
			instructions, start_date, end_date, active, color,
			created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, m)
	}
	return out, wrapErr(rows.Err())
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			dosage = $3,
			frequency = $4,
			initial_supply = $5,
			current_supply = $6,
			refill_at = $7,
			instructions = $8,
			start_date = $9,
			end_date = $10,
			active = $11,
			color = $12,
			updated_at = $13
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.InitialSupply,
		m.CurrentSupply,
		m.RefillAt,
		m.Instructions,
		m.StartDate,
		toNullTime(m.EndDate),
		m.Active,
		m.Color,
		m.UpdatedAt,
	)
	if err != nil {
		return wrapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var end sql.NullTime
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.InitialSupply,
		&m.CurrentSupply,
		&m.RefillAt,
		&m.Instructions,
		&m.StartDate,
		&end,
		&m.Active,
		&m.Color,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}
	if end.Valid {
		t := end.Time
		m.EndDate = &t
	}
	return m, nil
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", medications.ErrUnavailable, err)
	}
	return err
}
