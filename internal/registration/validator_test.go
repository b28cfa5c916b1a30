package registration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDays = []string{"2024-11-15", "2024-11-16", "2024-11-17"}

func validRegistrant() RegistrantForm {
	return RegistrantForm{
		FullName:          "Maria da Silva",
		BirthDate:         DateFromTime(time.Now().AddDate(-10, 0, 0)),
		Phone:             "11987654321",
		SleepAtRetreat:    "sim",
		AccommodationType: "individual",
		PaymentMethod:     "pix",
	}
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T", err)
	return verr
}

func TestValidateRegistrant_SleepsOver(t *testing.T) {
	v := NewValidator(testDays)

	assert.NoError(t, v.ValidateRegistrant(validRegistrant()))

	form := validRegistrant()
	form.AccommodationType = ""
	verr := validationError(t, v.ValidateRegistrant(form))
	assert.True(t, verr.Has("accommodation_type", "required"))

	// Day fields left over from the other branch are ignored.
	form.AccommodationType = "individual"
	form.DaysCount = "+1"
	form.SelectedDays = []string{"2024-11-15", "2024-11-15"}
	assert.NoError(t, v.ValidateRegistrant(form))

	form.AccommodationType = "suite"
	verr = validationError(t, v.ValidateRegistrant(form))
	assert.True(t, verr.Has("accommodation_type", "oneof"))
}

func TestValidateRegistrant_DayVisitor(t *testing.T) {
	v := NewValidator(testDays)

	base := validRegistrant()
	base.SleepAtRetreat = "nao"
	base.AccommodationType = ""

	tests := []struct {
		name     string
		count    string
		days     []string
		wantErrs [][2]string
	}{
		{name: "within limit", count: "2", days: []string{"2024-11-15", "2024-11-16"}},
		{name: "fewer than limit", count: "3", days: []string{"2024-11-16"}},
		{
			name:     "too many days",
			count:    "2",
			days:     []string{"2024-11-15", "2024-11-16", "2024-11-17"},
			wantErrs: [][2]string{{"selected_days", "max_days"}},
		},
		{
			name:     "nothing chosen",
			wantErrs: [][2]string{{"days_count", "required"}, {"selected_days", "required"}},
		},
		{
			name:     "bad count",
			count:    "zero",
			days:     []string{"2024-11-15"},
			wantErrs: [][2]string{{"days_count", "days_count"}},
		},
		{
			name:     "signed count",
			count:    "+1",
			days:     []string{"2024-11-15"},
			wantErrs: [][2]string{{"days_count", "days_count"}},
		},
		{
			name:     "day outside event",
			count:    "1",
			days:     []string{"2025-01-01"},
			wantErrs: [][2]string{{"selected_days", "unknown_day"}},
		},
		{
			name:     "repeated day",
			count:    "2",
			days:     []string{"2024-11-15", "2024-11-15"},
			wantErrs: [][2]string{{"selected_days", "unique"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base
			form.DaysCount = tt.count
			form.SelectedDays = tt.days

			err := v.ValidateRegistrant(form)
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			verr := validationError(t, err)
			for _, want := range tt.wantErrs {
				assert.True(t, verr.Has(want[0], want[1]), "missing %s/%s in %v", want[0], want[1], verr.Fields)
			}
		})
	}
}

func TestValidateRegistrant_CollectsEveryError(t *testing.T) {
	v := NewValidator(testDays)

	verr := validationError(t, v.ValidateRegistrant(RegistrantForm{}))

	assert.True(t, verr.Has("full_name", "min"))
	assert.True(t, verr.Has("phone", "min"))
	assert.True(t, verr.Has("birth_date", "required"))
	assert.True(t, verr.Has("sleep_at_retreat", "required"))
	assert.True(t, verr.Has("payment_method", "required"))
	assert.Len(t, verr.Fields, 5)
	for _, f := range verr.Fields {
		assert.NotEmpty(t, f.Message)
	}
}

func TestValidateRegistrant_BirthDate(t *testing.T) {
	v := NewValidator(testDays)

	tests := []struct {
		name    string
		input   DateInput
		wantTag string
	}{
		{name: "day month year", input: DateFromString("19/10/2016")},
		{name: "iso date", input: ParseDateInput("2016-10-19")},
		{name: "timestamp", input: ParseDateInput("2016-10-19T03:00:00.000Z")},
		{name: "missing", input: DateInput{}, wantTag: "required"},
		{name: "wrong shape", input: ParseDateInput("2016/10/19"), wantTag: "date_format"},
		{name: "short year", input: DateFromString("19/10/16"), wantTag: "date_format"},
		{name: "no such day", input: DateFromString("31/02/2020"), wantTag: "invalid_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validRegistrant()
			form.BirthDate = tt.input

			err := v.ValidateRegistrant(form)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			verr := validationError(t, err)
			assert.True(t, verr.Has("birth_date", tt.wantTag), "got %v", verr.Fields)
		})
	}
}

func TestDateInput_RoundTrip(t *testing.T) {
	want := time.Date(2016, 10, 19, 0, 0, 0, 0, time.UTC)

	inputs := []DateInput{
		DateFromString("19/10/2016"),
		DateFromTime(time.Date(2016, 10, 19, 15, 30, 0, 0, time.Local)),
		ParseDateInput("2016-10-19"),
		ParseDateInput(" 19/10/2016 "),
	}
	for _, in := range inputs {
		got, err := in.Parse()
		require.NoError(t, err, "input %q", in.String())
		assert.True(t, want.Equal(got), "input %q parsed to %v", in.String(), got)
	}
}

func TestRegistrantForm_UnmarshalJSON(t *testing.T) {
	raw := `{
		"full_name": "João Pereira",
		"birth_date": "05/03/1990",
		"phone": "21999998888",
		"sleep_at_retreat": "nao",
		"days_count": "2",
		"selected_days": ["2024-11-16", "2024-11-17"],
		"payment_method": "dinheiro"
	}`

	var form RegistrantForm
	require.NoError(t, json.Unmarshal([]byte(raw), &form))

	birth, err := form.BirthDate.Parse()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC), birth)
	assert.NoError(t, NewValidator(testDays).ValidateRegistrant(form))

	out, err := json.Marshal(form.BirthDate)
	require.NoError(t, err)
	assert.JSONEq(t, `"05/03/1990"`, string(out))
}

func TestValidateSubmission(t *testing.T) {
	v := NewValidator(testDays)

	t.Run("Valid", func(t *testing.T) {
		s := Submission{ChurchID: 1, Registrants: []RegistrantForm{validRegistrant(), validRegistrant()}}
		assert.NoError(t, v.ValidateSubmission(s))
	})

	t.Run("Empty", func(t *testing.T) {
		verr := validationError(t, v.ValidateSubmission(Submission{}))
		assert.True(t, verr.Has("church_id", "required"))
		assert.True(t, verr.Has("registrants", "min"))
	})

	t.Run("PathsIndexed", func(t *testing.T) {
		second := validRegistrant()
		second.SleepAtRetreat = "nao"
		second.DaysCount = "2"
		second.SelectedDays = []string{"2024-11-15", "2024-11-16", "2024-11-17"}

		s := Submission{ChurchID: 1, Registrants: []RegistrantForm{validRegistrant(), second}}
		verr := validationError(t, v.ValidateSubmission(s))

		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "registrants[1].selected_days", verr.Fields[0].Field)
		assert.Equal(t, "max_days", verr.Fields[0].Tag)
		assert.Contains(t, verr.Fields[0].Message, "too many days")
	})
}

func TestEventDays(t *testing.T) {
	days := EventDays(testDays)

	require.Len(t, days, 3)
	assert.Equal(t, EventDay{ID: "2024-11-15", Label: "Sexta-feira (15/11)"}, days[0])
	assert.Equal(t, EventDay{ID: "2024-11-16", Label: "Sábado (16/11)"}, days[1])
	assert.Equal(t, "Domingo (17/11)", days[2].Label)
}
