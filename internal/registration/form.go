// Package registration validates retreat sign-up forms and turns them into
// registrant rows.
package registration

// RegistrantForm is one person's entry in a sign-up submission.
type RegistrantForm struct {
	FullName          string    `json:"full_name" required:"false" doc:"Full name" validate:"min=3"`
	BirthDate         DateInput `json:"birth_date" required:"false" doc:"Birth date"`
	Phone             string    `json:"phone" required:"false" doc:"Phone number with area code" validate:"min=10"`
	SleepAtRetreat    string    `json:"sleep_at_retreat" required:"false" doc:"Whether the registrant sleeps at the retreat (sim or nao)" validate:"required,oneof=sim nao"`
	AccommodationType string    `json:"accommodation_type,omitempty" doc:"individual or casal, when sleeping at the retreat" validate:"omitempty,oneof=individual casal"`
	DaysCount         string    `json:"days_count,omitempty" doc:"Number of days attended, when not sleeping at the retreat"`
	SelectedDays      []string  `json:"selected_days,omitempty" doc:"Event days attended"`
	FoodIntolerance   string    `json:"food_intolerance,omitempty" doc:"Food intolerances or allergies"`
	PaymentMethod     string    `json:"payment_method" required:"false" doc:"pix, cartao or dinheiro" validate:"required,oneof=pix cartao dinheiro"`
}

// Submission is everything the public form sends in one request.
type Submission struct {
	ChurchID    uint             `json:"church_id" required:"false" doc:"Church the registrants belong to" validate:"required"`
	Registrants []RegistrantForm `json:"registrants" required:"false" doc:"People being registered" validate:"min=1,dive"`
}
