package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medtrack/internal/domain/medications"
)

type doseLogsRepo struct {
	mu   sync.RWMutex
	logs []medications.DoseLog
}

func NewDoseLogsRepo() medications.LogRepository {
	return &doseLogsRepo{
		logs: make([]medications.DoseLog, 0),
	}
}

func (r *doseLogsRepo) Append(ctx context.Context, l medications.DoseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("log id required")
	}
	r.logs = append(r.logs, l)
	return nil
}

func (r *doseLogsRepo) ListByOwner(ctx context.Context, userID string, filter medications.LogFilter) ([]medications.DoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.DoseLog, 0)
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *doseLogsRepo) DeleteByMedication(ctx context.Context, medicationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.logs[:0]
	for _, l := range r.logs {
		if l.MedicationID == medicationID && l.UserID == userID {
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return nil
}

func (r *doseLogsRepo) DeleteByOwner(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.logs[:0]
	for _, l := range r.logs {
		if l.UserID == userID {
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return nil
}
