package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"medtrack/internal/domain/medications"
	"medtrack/internal/domain/users"
)

func TestMedicationsRepo_ListByOwnerOrdersByCreatedAt(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	// Insertadas fuera de orden; el listado sale por CreatedAt ascendente
	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	for _, m := range []medications.Medication{
		{ID: "m-3", UserID: "user-1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m-1", UserID: "user-1", CreatedAt: base},
		{ID: "m-2", UserID: "user-1", CreatedAt: base.Add(time.Minute)},
	} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create %s: %v", m.ID, err)
		}
	}

	list, err := repo.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 medications, got %d", len(list))
	}
	for i, want := range []string{"m-1", "m-2", "m-3"} {
		if list[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}
}

func TestMedicationsRepo_Sentinels(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, medications.ErrNotFound) {
		t.Fatalf("GetByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, medications.Medication{ID: "nope"}); !errors.Is(err, medications.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "nope"); !errors.Is(err, medications.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestDoseLogsRepo_ListFiltersAndOrders(t *testing.T) {
	repo := NewDoseLogsRepo()
	ctx := context.Background()

	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	entries := []medications.DoseLog{
		{ID: "l-1", MedicationID: "m-1", UserID: "user-1", Status: medications.StatusTaken, Timestamp: base},
		{ID: "l-2", MedicationID: "m-1", UserID: "user-1", Status: medications.StatusMissed, Timestamp: base.Add(time.Minute)},
		{ID: "l-3", MedicationID: "m-2", UserID: "user-1", Status: medications.StatusTaken, Timestamp: base.Add(2 * time.Minute)},
		{ID: "l-4", MedicationID: "m-9", UserID: "user-2", Status: medications.StatusTaken, Timestamp: base.Add(3 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append %s: %v", e.ID, err)
		}
	}

	all, err := repo.ListByOwner(ctx, "user-1", medications.LogFilter{})
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries for user-1, got %d", len(all))
	}
	if all[0].ID != "l-3" || all[2].ID != "l-1" {
		t.Fatalf("expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	missed, _ := repo.ListByOwner(ctx, "user-1", medications.LogFilter{Status: medications.StatusMissed})
	if len(missed) != 1 || missed[0].ID != "l-2" {
		t.Fatalf("unexpected filtered result: %+v", missed)
	}

	limited, _ := repo.ListByOwner(ctx, "user-1", medications.LogFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected limit applied, got %d", len(limited))
	}

	if err := repo.DeleteByMedication(ctx, "m-1", "user-1"); err != nil {
		t.Fatalf("DeleteByMedication error: %v", err)
	}
	rest, _ := repo.ListByOwner(ctx, "user-1", medications.LogFilter{})
	if len(rest) != 1 || rest[0].ID != "l-3" {
		t.Fatalf("expected only l-3 to survive, got %+v", rest)
	}

	if err := repo.DeleteByOwner(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByOwner error: %v", err)
	}
	rest, _ = repo.ListByOwner(ctx, "user-1", medications.LogFilter{})
	if len(rest) != 0 {
		t.Fatalf("expected empty after DeleteByOwner, got %+v", rest)
	}
	// Lo de user-2 no se toca
	other, _ := repo.ListByOwner(ctx, "user-2", medications.LogFilter{})
	if len(other) != 1 {
		t.Fatalf("expected user-2 entries intact, got %+v", other)
	}
}

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u := users.User{ID: "user-1", Name: "Ana", Email: "ana@example.com"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	dup := users.User{ID: "user-2", Name: "Otra", Email: "ana@example.com"}
	if err := repo.Create(ctx, dup); !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "user-1" {
		t.Fatalf("expected user-1, got %s", got.ID)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
