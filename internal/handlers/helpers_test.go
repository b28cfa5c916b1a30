package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/database"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

var testNow = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store.NewGormStore(db)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		FrontendURL: "http://localhost:3000",
		EventName:   "Retiro 2024",
		EventDays:   config.DefaultEventDays,
	}
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}

func errorLocations(err error) []string {
	var em *huma.ErrorModel
	if !errors.As(err, &em) {
		return nil
	}
	var locs []string
	for _, d := range em.Errors {
		locs = append(locs, d.Location)
	}
	return locs
}

func hasLocation(err error, loc string) bool {
	for _, l := range errorLocations(err) {
		if l == loc {
			return true
		}
	}
	return false
}

// newAdmin stores a user and returns credentials for it.
func newAdmin(t *testing.T, st *store.GormStore, h *auth.AuthHandler, discordID string, admin bool) auth.AuthInput {
	t.Helper()
	user := models.User{DiscordID: discordID, Username: "user-" + discordID, IsAdmin: admin}
	if err := st.UpsertUser(context.Background(), &user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	token, err := h.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return auth.AuthInput{AuthToken: token}
}

func createChurch(t *testing.T, st *store.GormStore, name string, spots int) models.Church {
	t.Helper()
	church := models.Church{Name: name, Spots: spots}
	if err := st.CreateChurch(context.Background(), &church); err != nil {
		t.Fatalf("CreateChurch failed: %v", err)
	}
	return church
}

func validForm(name string) registration.RegistrantForm {
	return registration.RegistrantForm{
		FullName:          name,
		BirthDate:         registration.DateFromString("10/05/1990"),
		Phone:             "11987654321",
		SleepAtRetreat:    models.SleepAtRetreatYes,
		AccommodationType: "individual",
		PaymentMethod:     "pix",
	}
}
