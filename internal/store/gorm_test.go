package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/igreja-retiro/retiro-api/internal/database"
	"github.com/igreja-retiro/retiro-api/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewGormStore(db)
}

func registrant(name string, churchID uint) models.Registrant {
	return models.Registrant{
		RegistrantFields: models.RegistrantFields{
			FullName:      name,
			Phone:         "11987654321",
			ChurchID:      churchID,
			PaymentStatus: models.PaymentStatusPending,
		},
		BirthDate:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		SleepAtRetreat: models.SleepAtRetreatNo,
		DaysCount:      2,
		SelectedDays:   []string{"2024-11-15", "2024-11-16"},
		PaymentMethod:  "pix",
		SubmissionID:   "batch-1",
		Fee:            190,
		PreFee:         15,
	}
}

func TestChurches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sion := models.Church{Name: "Sião", Spots: 10}
	if err := s.CreateChurch(ctx, &sion); err != nil {
		t.Fatalf("CreateChurch failed: %v", err)
	}
	if err := s.CreateChurch(ctx, &models.Church{Name: "Betel", Spots: 0}); err != nil {
		t.Fatalf("CreateChurch failed: %v", err)
	}

	churches, err := s.ListChurches(ctx)
	if err != nil {
		t.Fatalf("ListChurches failed: %v", err)
	}
	if len(churches) != 2 || churches[0].Name != "Betel" {
		t.Fatalf("expected churches ordered by name, got %+v", churches)
	}

	spots := 3
	updated, err := s.UpdateChurch(ctx, sion.ID, ChurchPatch{Spots: &spots})
	if err != nil {
		t.Fatalf("UpdateChurch failed: %v", err)
	}
	if updated.Spots != 3 || updated.Name != "Sião" {
		t.Errorf("unexpected church after update: %+v", updated)
	}

	if _, err := s.UpdateChurch(ctx, 999, ChurchPatch{Spots: &spots}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteChurch(ctx, sion.ID); err != nil {
		t.Fatalf("DeleteChurch failed: %v", err)
	}
	if err := s.DeleteChurch(ctx, sion.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.GetChurch(ctx, sion.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted church to be gone, got %v", err)
	}
}

func TestInsertRegistrants_Atomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rows := []models.Registrant{registrant("Ana", 1), registrant("Bruno", 1)}
	if err := s.InsertRegistrants(ctx, rows); err != nil {
		t.Fatalf("InsertRegistrants failed: %v", err)
	}

	// Both rows claim the same primary key, so the whole batch must fail.
	bad := []models.Registrant{registrant("Carla", 1), registrant("Duda", 1)}
	bad[0].ID = 1000
	bad[1].ID = 1000
	if err := s.InsertRegistrants(ctx, bad); err == nil {
		t.Fatal("expected duplicate primary key to fail the batch")
	}

	all, err := s.ListRegistrants(ctx, RegistrantFilter{})
	if err != nil {
		t.Fatalf("ListRegistrants failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 registrants after failed batch, got %d", len(all))
	}
	if all[0].FullName != "Ana" || len(all[0].SelectedDays) != 2 {
		t.Errorf("unexpected first registrant: %+v", all[0])
	}
}

func TestListRegistrants_Filter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	paid := registrant("Paga", 2)
	paid.PaymentStatus = models.PaymentStatusPaid
	s.InsertRegistrants(ctx, []models.Registrant{registrant("Ana", 1), registrant("Bia", 2), paid})

	byChurch, _ := s.ListRegistrants(ctx, RegistrantFilter{ChurchID: 2})
	if len(byChurch) != 2 {
		t.Errorf("expected 2 registrants for church 2, got %d", len(byChurch))
	}

	byStatus, _ := s.ListRegistrants(ctx, RegistrantFilter{PaymentStatus: models.PaymentStatusPaid})
	if len(byStatus) != 1 || byStatus[0].FullName != "Paga" {
		t.Errorf("expected only the paid registrant, got %+v", byStatus)
	}
}

func TestUpdateRegistrant_History(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.InsertRegistrants(ctx, []models.Registrant{registrant("Ana", 1)})
	rows, _ := s.ListRegistrants(ctx, RegistrantFilter{})
	id := rows[0].ID

	status := models.PaymentStatusPaid
	updated, err := s.UpdateRegistrant(ctx, id, RegistrantPatch{PaymentStatus: &status})
	if err != nil {
		t.Fatalf("UpdateRegistrant failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentStatusPaid || updated.FullName != "Ana" {
		t.Errorf("unexpected registrant after update: %+v", updated)
	}

	name := "Ana Clara"
	if _, err := s.UpdateRegistrant(ctx, id, RegistrantPatch{FullName: &name}); err != nil {
		t.Fatalf("UpdateRegistrant failed: %v", err)
	}

	history, err := s.RegistrantHistory(ctx, id)
	if err != nil {
		t.Fatalf("RegistrantHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].FullName != "Ana Clara" || history[1].FullName != "Ana" {
		t.Errorf("expected newest first, got %q then %q", history[0].FullName, history[1].FullName)
	}

	if _, err := s.UpdateRegistrant(ctx, 999, RegistrantPatch{FullName: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sion := models.Church{Name: "Sião", Spots: 10}
	betel := models.Church{Name: "Betel", Spots: 5}
	s.CreateChurch(ctx, &sion)
	s.CreateChurch(ctx, &betel)

	paid := registrant("Paga", sion.ID)
	paid.PaymentStatus = models.PaymentStatusPaid
	s.InsertRegistrants(ctx, []models.Registrant{registrant("Ana", sion.ID), paid, registrant("Orfã", 99)})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Registrants != 3 || stats.Paid != 1 || stats.Pending != 2 || stats.Churches != 2 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if len(stats.PerChurch) != 2 {
		t.Fatalf("expected 2 per-church rows, got %d", len(stats.PerChurch))
	}
	if stats.PerChurch[0].Name != "Betel" || stats.PerChurch[0].Registrations != 0 {
		t.Errorf("unexpected Betel row: %+v", stats.PerChurch[0])
	}
	if stats.PerChurch[1].Name != "Sião" || stats.PerChurch[1].Registrations != 2 {
		t.Errorf("unexpected Sião row: %+v", stats.PerChurch[1])
	}
}

func TestUpsertUser_KeepsAdmin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := models.User{DiscordID: "42", Username: "first"}
	if err := s.UpsertUser(ctx, &u); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if err := s.SetAdmin(ctx, "42", true); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}

	again := models.User{DiscordID: "42", Username: "renamed"}
	if err := s.UpsertUser(ctx, &again); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if again.ID != u.ID || again.Username != "renamed" || !again.IsAdmin {
		t.Errorf("unexpected user after upsert: %+v", again)
	}

	if err := s.SetAdmin(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := models.APIKey{UserID: 1, KeyHash: "hash", Suffix: "abcd", Name: "export"}
	if err := s.CreateAPIKey(ctx, &key); err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}

	found, err := s.FindAPIKey(ctx, "hash")
	if err != nil || found.ID != key.ID {
		t.Fatalf("FindAPIKey: got %+v, %v", found, err)
	}

	now := time.Now()
	if err := s.TouchAPIKey(ctx, key.ID, now); err != nil {
		t.Fatalf("TouchAPIKey failed: %v", err)
	}
	keys, _ := s.ListAPIKeys(ctx, 1)
	if len(keys) != 1 || keys[0].LastUsedAt == nil {
		t.Errorf("expected one touched key, got %+v", keys)
	}

	if err := s.DeleteAPIKey(ctx, 2, key.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected other user's delete to miss, got %v", err)
	}
	if err := s.DeleteAPIKey(ctx, 1, key.ID); err != nil {
		t.Errorf("DeleteAPIKey failed: %v", err)
	}
	if _, err := s.FindAPIKey(ctx, "hash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted key to be gone, got %v", err)
	}
}
