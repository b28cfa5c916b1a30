package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const (
	SleepAtRetreatYes = "sim"
	SleepAtRetreatNo  = "nao"
)

// RegistrantFields are the parts of a registrant an administrator may edit.
type RegistrantFields struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	ChurchID      uint   `json:"church_id" gorm:"index"`
	PaymentStatus string `json:"payment_status" gorm:"default:pending"`
}

type Registrant struct {
	gorm.Model
	RegistrantFields  `gorm:"embedded"`
	BirthDate         time.Time `json:"birth_date"`
	SleepAtRetreat    string    `json:"sleep_at_retreat"`
	AccommodationType string    `json:"accommodation_type,omitempty"`
	DaysCount         int       `json:"days_count,omitempty"`
	SelectedDays      []string  `json:"selected_days,omitempty" gorm:"serializer:json"`
	FoodIntolerance   string    `json:"food_intolerance,omitempty"`
	PaymentMethod     string    `json:"payment_method"`
	SubmissionID      string    `json:"submission_id" gorm:"index"`
	Fee               int       `json:"fee"`
	PreFee            int       `json:"pre_fee"`
}
