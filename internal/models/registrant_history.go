package models

import (
	"gorm.io/gorm"
)

type RegistrantHistory struct {
	gorm.Model
	RegistrantID     uint `json:"registrant_id" gorm:"index"`
	RegistrantFields `gorm:"embedded"`
}
