package registration

import (
	"fmt"
	"time"
)

var weekdaysPT = [...]string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"}

// EventDay is a day token offered to registrants who do not sleep over.
type EventDay struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// EventDays labels day tokens such as "2024-11-16" as "Sábado (16/11)".
func EventDays(tokens []string) []EventDay {
	days := make([]EventDay, 0, len(tokens))
	for _, token := range tokens {
		label := token
		if t, err := time.Parse(time.DateOnly, token); err == nil {
			label = fmt.Sprintf("%s (%s)", weekdaysPT[t.Weekday()], t.Format("02/01"))
		}
		days = append(days, EventDay{ID: token, Label: label})
	}
	return days
}
