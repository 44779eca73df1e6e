package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"medtrack/internal/domain/medications"
)

type DoseLogsRepo struct {
	db *sql.DB
}

func NewDoseLogsRepo(db *sql.DB) *DoseLogsRepo {
	return &DoseLogsRepo{db: db}
}

func (r *DoseLogsRepo) Append(ctx context.Context, l medications.DoseLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_logs (
			id, medication_id, user_id,
			name, dosage, status,
			ts, scheduled_time, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		l.ID,
		l.MedicationID,
		l.UserID,
		l.Name,
		l.Dosage,
		string(l.Status),
		l.Timestamp,
		toNullTime(l.ScheduledTime),
		l.Notes,
	)
	return wrapErr(err)
}

func (r *DoseLogsRepo) ListByOwner(ctx context.Context, userID string, filter medications.LogFilter) ([]medications.DoseLog, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	q := `
		SELECT
			id, medication_id, user_id,
			name, dosage, status,
			ts, scheduled_time, notes
		FROM dose_logs
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.Status != "" {
		q += ` AND status = $2`
		args = append(args, string(filter.Status))
	}
	q += ` ORDER BY ts DESC`
	if filter.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := make([]medications.DoseLog, 0)
	for rows.Next() {
		var l medications.DoseLog
		var status string
		var sched sql.NullTime
		if err := rows.Scan(
			&l.ID,
			&l.MedicationID,
			&l.UserID,
			&l.Name,
			&l.Dosage,
			&status,
			&l.Timestamp,
			&sched,
			&l.Notes,
		); err != nil {
			return nil, wrapErr(err)
		}
		l.Status = medications.LogStatus(status)
		if sched.Valid {
			t := sched.Time
			l.ScheduledTime = &t
		}
		out = append(out, l)
	}
	return out, wrapErr(rows.Err())
}

func (r *DoseLogsRepo) DeleteByMedication(ctx context.Context, medicationID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM dose_logs WHERE medication_id = $1 AND user_id = $2
	`, medicationID, userID)
	return wrapErr(err)
}

func (r *DoseLogsRepo) DeleteByOwner(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dose_logs WHERE user_id = $1`, userID)
	return wrapErr(err)
}
