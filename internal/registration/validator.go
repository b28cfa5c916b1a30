package registration

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/igreja-retiro/retiro-api/internal/models"
)

var (
	requiredTag = "required"

	dateFormatTag  = "date_format"
	dateFormatText = "{0} must be a date in DD/MM/YYYY format"

	invalidDateTag  = "invalid_date"
	invalidDateText = "{0} is not a valid date"

	daysCountTag  = "days_count"
	daysCountText = "{0} must be a positive whole number"

	maxDaysTag  = "max_days"
	maxDaysText = "too many days selected: {0} allows at most {1} day(s)"

	unknownDayTag  = "unknown_day"
	unknownDayText = "{0} contains a day outside the event: {1}"
)

// FieldError is a single violation, located by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed with tag.
func (e *ValidationError) Has(field, tag string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Tag == tag {
			return true
		}
	}
	return false
}

// Validator checks submissions. It collects every violation instead of
// stopping at the first one.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	days       map[string]bool
}

func NewValidator(eventDays []string) *Validator {
	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")

	v := &Validator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		translator: translator,
		days:       make(map[string]bool, len(eventDays)),
	}
	for _, d := range eventDays {
		v.days[d] = true
	}

	_ = en_translations.RegisterDefaultTranslations(v.validate, translator)

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.validate.RegisterStructValidation(v.registrantStructValidation, RegistrantForm{})
	v.registerTranslation(dateFormatTag, dateFormatText)
	v.registerTranslation(invalidDateTag, invalidDateText)
	v.registerTranslation(daysCountTag, daysCountText)
	v.registerTranslation(maxDaysTag, maxDaysText)
	v.registerTranslation(unknownDayTag, unknownDayText)

	return v
}

func (v *Validator) registerTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

func (v *Validator) ValidateSubmission(s Submission) error {
	return v.check(v.validate.Struct(s))
}

func (v *Validator) ValidateRegistrant(r RegistrantForm) error {
	return v.check(v.validate.Struct(r))
}

// ValidateStruct runs the tag rules of any struct, e.g. admin patches.
func (v *Validator) ValidateStruct(s any) error {
	return v.check(v.validate.Struct(s))
}

func (v *Validator) check(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Tag:     fe.Tag(),
			Message: fe.Translate(v.translator),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace:
// "Submission.registrants[0].phone" becomes "registrants[0].phone".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// registrantStructValidation enforces the rules that depend on more than one
// field: the birth date shape and the sleep-over branches.
func (v *Validator) registrantStructValidation(sl validator.StructLevel) {
	form := sl.Current().Interface().(RegistrantForm)

	if _, err := form.BirthDate.Parse(); err != nil {
		tag := requiredTag
		switch {
		case errors.Is(err, ErrDateFormat):
			tag = dateFormatTag
		case errors.Is(err, ErrInvalidDate):
			tag = invalidDateTag
		}
		sl.ReportError(form.BirthDate.String(), "birth_date", "BirthDate", tag, "")
	}

	switch form.SleepAtRetreat {
	case models.SleepAtRetreatYes:
		if form.AccommodationType == "" {
			sl.ReportError(form.AccommodationType, "accommodation_type", "AccommodationType", requiredTag, "")
		}

	case models.SleepAtRetreatNo:
		limit := -1
		if form.DaysCount == "" {
			sl.ReportError(form.DaysCount, "days_count", "DaysCount", requiredTag, "")
		} else if n, ok := v.dayCount(form.DaysCount); !ok {
			sl.ReportError(form.DaysCount, "days_count", "DaysCount", daysCountTag, "")
		} else {
			limit = n
		}

		if len(form.SelectedDays) == 0 {
			sl.ReportError(form.SelectedDays, "selected_days", "SelectedDays", requiredTag, "")
			return
		}
		if limit >= 0 && len(form.SelectedDays) > limit {
			sl.ReportError(form.SelectedDays, "selected_days", "SelectedDays", maxDaysTag, strconv.Itoa(limit))
		}
		if v.validate.Var(form.SelectedDays, "unique") != nil {
			sl.ReportError(form.SelectedDays, "selected_days", "SelectedDays", "unique", "")
		}
		for _, day := range form.SelectedDays {
			if !v.days[day] {
				sl.ReportError(form.SelectedDays, "selected_days", "SelectedDays", unknownDayTag, day)
				break
			}
		}
	}
}

// dayCount reads a count of plain digits, so "+1" and " 2" are rejected.
func (v *Validator) dayCount(s string) (int, bool) {
	if v.validate.Var(s, "number") != nil {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
