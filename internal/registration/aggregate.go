package registration

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/igreja-retiro/retiro-api/internal/fees"
	"github.com/igreja-retiro/retiro-api/internal/models"
)

// QuoteDate prices one birth date; dates that cannot be read pay the full fee.
func QuoteDate(d DateInput, schedule fees.Schedule, now time.Time) fees.Quote {
	birth, err := d.Parse()
	if err != nil {
		return schedule.Unknown()
	}
	return schedule.ForBirthDate(birth, now)
}

// QuoteDates prices a whole submission.
func QuoteDates(dates []DateInput, schedule fees.Schedule, now time.Time) fees.Total {
	quotes := make([]fees.Quote, 0, len(dates))
	for _, d := range dates {
		quotes = append(quotes, QuoteDate(d, schedule, now))
	}
	return fees.Sum(quotes)
}

// Batch is a validated submission ready to be stored in one insert.
type Batch struct {
	SubmissionID string
	Rows         []models.Registrant
	Total        fees.Total
}

// BuildBatch turns validated forms into registrant rows that share churchID
// and a fresh submission id. Every row starts as pending.
func BuildBatch(churchID uint, forms []RegistrantForm, schedule fees.Schedule, now time.Time) Batch {
	batch := Batch{
		SubmissionID: uuid.NewString(),
		Rows:         make([]models.Registrant, 0, len(forms)),
	}

	quotes := make([]fees.Quote, 0, len(forms))
	for _, form := range forms {
		quote := QuoteDate(form.BirthDate, schedule, now)
		quotes = append(quotes, quote)

		row := models.Registrant{
			RegistrantFields: models.RegistrantFields{
				FullName:      strings.TrimSpace(form.FullName),
				Phone:         strings.TrimSpace(form.Phone),
				ChurchID:      churchID,
				PaymentStatus: models.PaymentStatusPending,
			},
			SleepAtRetreat:  form.SleepAtRetreat,
			FoodIntolerance: strings.TrimSpace(form.FoodIntolerance),
			PaymentMethod:   form.PaymentMethod,
			SubmissionID:    batch.SubmissionID,
			Fee:             quote.Fee,
			PreFee:          quote.PreFee,
		}
		if birth, err := form.BirthDate.Parse(); err == nil {
			row.BirthDate = birth
		}

		// Only the fields of the chosen branch are kept.
		switch form.SleepAtRetreat {
		case models.SleepAtRetreatYes:
			row.AccommodationType = form.AccommodationType
		case models.SleepAtRetreatNo:
			row.DaysCount, _ = strconv.Atoi(form.DaysCount)
			row.SelectedDays = append([]string(nil), form.SelectedDays...)
		}

		batch.Rows = append(batch.Rows, row)
	}
	batch.Total = fees.Sum(quotes)

	return batch
}
