package medstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"medtrack/client/storage"
)

func newTestStore(t *testing.T) (*Store, storage.Store) {
	t.Helper()

	kv, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	s := New(kv)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.now = func() time.Time {
		return time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	}
	return s, kv
}

func TestStore_Add_AppliesDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	m, err := s.Add(context.Background(), Draft{Name: "Abc", Dosage: "500mg", Frequency: "once_daily"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if m.InitialSupply != 30 || m.CurrentSupply != 30 || m.RefillAt != 10 {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if !m.Active {
		t.Fatalf("expected new medication active")
	}

	if _, err := s.Add(context.Background(), Draft{Dosage: "500mg"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput without name, got %v", err)
	}
}

func TestStore_TakeScenario(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	m, err := s.Add(ctx, Draft{Name: "Abc", Dosage: "500mg", Frequency: "once_daily"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	m, err = s.Take(ctx, m.ID)
	if err != nil {
		t.Fatalf("Take error: %v", err)
	}
	if m.CurrentSupply != 29 {
		t.Fatalf("expected supply 29, got %d", m.CurrentSupply)
	}

	logs, err := s.History(ctx, "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
	if logs[0].Status != StatusTaken || logs[0].Dosage != "500mg" {
		t.Fatalf("unexpected log entry: %+v", logs[0])
	}

	for i := 0; i < 29; i++ {
		if m, err = s.Take(ctx, m.ID); err != nil {
			t.Fatalf("Take #%d error: %v", i+2, err)
		}
	}
	if m.CurrentSupply != 0 {
		t.Fatalf("expected supply 0, got %d", m.CurrentSupply)
	}

	// Clavado en 0: una toma más no baja el supply pero sí loguea
	m, err = s.Take(ctx, m.ID)
	if err != nil {
		t.Fatalf("Take past zero error: %v", err)
	}
	if m.CurrentSupply != 0 {
		t.Fatalf("expected supply to stay 0, got %d", m.CurrentSupply)
	}
	logs, _ = s.History(ctx, "")
	if len(logs) != 31 {
		t.Fatalf("expected 31 entries, got %d", len(logs))
	}
}

func TestStore_HistoryNewestFirstAndFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	m, _ := s.Add(ctx, Draft{Name: "Abc", Dosage: "500mg"})
	if _, err := s.Take(ctx, m.ID); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if _, err := s.Miss(ctx, m.ID); err != nil {
		t.Fatalf("Miss: %v", err)
	}

	all, err := s.History(ctx, "all")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].Status != StatusMissed || all[1].Status != StatusTaken {
		t.Fatalf("expected newest first (missed, taken), got %s, %s", all[0].Status, all[1].Status)
	}

	missed, err := s.History(ctx, StatusMissed)
	if err != nil {
		t.Fatalf("History(missed) error: %v", err)
	}
	if len(missed) != 1 || missed[0].Status != StatusMissed {
		t.Fatalf("unexpected filtered history: %+v", missed)
	}
}

func TestStore_Delete_CascadesHistory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	m1, _ := s.Add(ctx, Draft{Name: "A", Dosage: "1mg"})
	m2, _ := s.Add(ctx, Draft{Name: "B", Dosage: "2mg"})
	_, _ = s.Take(ctx, m1.ID)
	_, _ = s.Take(ctx, m2.ID)

	if err := s.Delete(ctx, m1.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	list, _ := s.List(ctx)
	if len(list) != 1 || list[0].ID != m2.ID {
		t.Fatalf("expected only m2 to survive, got %+v", list)
	}

	logs, _ := s.History(ctx, "")
	if len(logs) != 1 || logs[0].MedicationID != m2.ID {
		t.Fatalf("expected only m2 logs to survive, got %+v", logs)
	}

	if err := s.Delete(ctx, m1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_ClearHistory(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	m, _ := s.Add(ctx, Draft{Name: "A", Dosage: "1mg"})
	_, _ = s.Take(ctx, m.ID)

	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory error: %v", err)
	}

	logs, err := s.History(ctx, "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected empty history, got %+v", logs)
	}

	// La clave desaparece del shim, no queda un blob vacío
	var raw []DoseLog
	if err := kv.Load(ctx, storage.KeyHistory, &raw); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected history key removed, got %v", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	first := New(kv)
	m, err := first.Add(ctx, Draft{Name: "Abc", Dosage: "500mg"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, err := first.Take(ctx, m.ID); err != nil {
		t.Fatalf("Take error: %v", err)
	}

	// Instancia nueva sobre el mismo directorio: misma data
	kv2, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	second := New(kv2)

	list, err := second.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Abc" || list[0].CurrentSupply != 29 {
		t.Fatalf("unexpected reloaded collection: %+v", list)
	}

	logs, err := second.History(ctx, "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != StatusTaken {
		t.Fatalf("unexpected reloaded history: %+v", logs)
	}
}

func TestStore_ForDate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

	within, _ := s.Add(ctx, Draft{Name: "A", Dosage: "1mg", StartDate: &start, EndDate: &end})
	later := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	_, _ = s.Add(ctx, Draft{Name: "B", Dosage: "1mg", StartDate: &later})

	due, err := s.ForDate(ctx, time.Date(2025, 12, 22, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ForDate error: %v", err)
	}
	if len(due) != 1 || due[0].ID != within.ID {
		t.Fatalf("expected only the in-window medication, got %+v", due)
	}

	none, _ := s.ForDate(ctx, time.Date(2025, 12, 26, 9, 0, 0, 0, time.UTC))
	if len(none) != 0 {
		t.Fatalf("expected nothing due after end date, got %+v", none)
	}
}

func TestStore_RefillAndThreshold(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	supply := 10
	m, _ := s.Add(ctx, Draft{Name: "A", Dosage: "1mg", InitialSupply: &supply})

	for i := 0; i < 9; i++ {
		var err error
		if m, err = s.Take(ctx, m.ID); err != nil {
			t.Fatalf("Take #%d: %v", i+1, err)
		}
	}
	if !m.NeedsRefill() {
		t.Fatalf("expected refill needed at supply %d of %d", m.CurrentSupply, m.InitialSupply)
	}

	m, err := s.Refill(ctx, m.ID)
	if err != nil {
		t.Fatalf("Refill error: %v", err)
	}
	if m.CurrentSupply != 10 {
		t.Fatalf("expected supply restored to 10, got %d", m.CurrentSupply)
	}
	if m.NeedsRefill() {
		t.Fatalf("did not expect refill needed after refill")
	}
}

// Blob viejo: id bajo "_id" y sin los campos nuevos. Tiene que cargar
// con el id resuelto, estar vigente y aceptar mutaciones.
func TestStore_LoadsLegacyBlob(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	legacyMeds := []map[string]any{{
		"_id":           "legacy-1",
		"name":          "Old Med",
		"dosage":        "5mg",
		"frequency":     "once_daily",
		"initialSupply": 30,
		"currentSupply": 12,
		"refillAt":      10,
		"createdAt":     "2024-03-01T09:00:00Z",
	}}
	if err := kv.Save(ctx, storage.KeyMedications, legacyMeds); err != nil {
		t.Fatalf("seed legacy medications: %v", err)
	}
	legacyLogs := []map[string]any{{
		"_id":        "legacy-log-1",
		"medication": "legacy-1",
		"name":       "Old Med",
		"dosage":     "5mg",
		"status":     "taken",
		"timestamp":  "2024-03-02T09:00:00Z",
	}}
	if err := kv.Save(ctx, storage.KeyHistory, legacyLogs); err != nil {
		t.Fatalf("seed legacy history: %v", err)
	}

	s := New(kv)
	due, err := s.ForDate(ctx, time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ForDate error: %v", err)
	}
	if len(due) != 1 || due[0].ID != "legacy-1" {
		t.Fatalf("expected legacy record with resolved id, got %+v", due)
	}

	logs, err := s.History(ctx, "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != "legacy-log-1" || logs[0].MedicationID != "legacy-1" {
		t.Fatalf("expected legacy log with resolved id, got %+v", logs)
	}

	// El id resuelto sirve para mutar: take encuentra el registro
	m, err := s.Take(ctx, "legacy-1")
	if err != nil {
		t.Fatalf("Take on legacy record error: %v", err)
	}
	if m.CurrentSupply != 11 {
		t.Fatalf("expected supply 11, got %d", m.CurrentSupply)
	}
}
