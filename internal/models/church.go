package models

import (
	"gorm.io/gorm"
)

type Church struct {
	gorm.Model
	Name  string `json:"name"`
	Spots int    `json:"spots"`
}

// Available reports whether the public form may offer this church.
func (c Church) Available() bool {
	return c.Spots > 0
}
