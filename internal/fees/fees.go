// Package fees prices retreat registrants by age band.
package fees

import "time"

const (
	RegistrationFee    = 190
	JuniorFee          = 105
	PreRegistrationFee = 15

	// Children younger than ChildExemptionAge pay nothing.
	ChildExemptionAge = 7
	JuniorAgeStart    = 7
	JuniorAgeEnd      = 11
)

// Schedule holds the amounts and age bands used to price a registrant.
// Amounts are whole BRL.
type Schedule struct {
	Regular           int `json:"regular"`
	Junior            int `json:"junior"`
	PreRegistration   int `json:"pre_registration"`
	ChildExemptionAge int `json:"child_exemption_age"`
	JuniorAgeStart    int `json:"junior_age_start"`
	JuniorAgeEnd      int `json:"junior_age_end"`
}

var DefaultSchedule = Schedule{
	Regular:           RegistrationFee,
	Junior:            JuniorFee,
	PreRegistration:   PreRegistrationFee,
	ChildExemptionAge: ChildExemptionAge,
	JuniorAgeStart:    JuniorAgeStart,
	JuniorAgeEnd:      JuniorAgeEnd,
}

// Quote is the price of one registrant.
type Quote struct {
	Fee    int `json:"fee"`
	PreFee int `json:"pre_fee"`
}

// Total is the price of a whole submission.
type Total struct {
	Fee       int     `json:"total_fee"`
	PreFee    int     `json:"total_pre_fee"`
	Remaining int     `json:"remaining"`
	Items     []Quote `json:"items"`
}

// Age returns the number of whole years between birth and now. Both are
// read as calendar dates in their own location.
func Age(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

// ForAge prices a registrant of the given age.
func (s Schedule) ForAge(age int) Quote {
	switch {
	case age < s.ChildExemptionAge:
		return Quote{}
	case age >= s.JuniorAgeStart && age <= s.JuniorAgeEnd:
		return Quote{Fee: s.Junior, PreFee: s.PreRegistration}
	default:
		return Quote{Fee: s.Regular, PreFee: s.PreRegistration}
	}
}

// ForBirthDate prices a registrant born on birth, as of now.
func (s Schedule) ForBirthDate(birth, now time.Time) Quote {
	return s.ForAge(Age(birth, now))
}

// Unknown prices a registrant whose birth date could not be read: full fee.
func (s Schedule) Unknown() Quote {
	return Quote{Fee: s.Regular, PreFee: s.PreRegistration}
}

// Sum adds up quotes.
func Sum(quotes []Quote) Total {
	total := Total{Items: quotes}
	for _, q := range quotes {
		total.Fee += q.Fee
		total.PreFee += q.PreFee
	}
	total.Remaining = total.Fee - total.PreFee
	return total
}
