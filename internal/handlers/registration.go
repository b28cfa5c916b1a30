package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/fees"
	"github.com/igreja-retiro/retiro-api/internal/metrics"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/notifier"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

// RegistrationStore is what the public form needs from storage.
type RegistrationStore interface {
	ListChurches(ctx context.Context) ([]models.Church, error)
	GetChurch(ctx context.Context, id uint) (models.Church, error)
	InsertRegistrants(ctx context.Context, rows []models.Registrant) error
}

type RegistrationHandler struct {
	store     RegistrationStore
	notifier  notifier.Notifier
	validator *registration.Validator
	metrics   *metrics.Metrics
	schedule  fees.Schedule
	eventName string
	eventDays []string
	now       func() time.Time
}

func NewRegistrationHandler(cfg *config.Config, st RegistrationStore, n notifier.Notifier, m *metrics.Metrics) *RegistrationHandler {
	days := cfg.EventDays
	if len(days) == 0 {
		days = config.DefaultEventDays
	}
	return &RegistrationHandler{
		store:     st,
		notifier:  n,
		validator: registration.NewValidator(days),
		metrics:   m,
		schedule:  fees.DefaultSchedule,
		eventName: cfg.EventName,
		eventDays: days,
		now:       time.Now,
	}
}

type PublicChurch struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Spots     int    `json:"spots"`
	Available bool   `json:"available" doc:"Whether the church still accepts registrations"`
}

type PublicChurchesResponse struct {
	Body []PublicChurch
}

// HandleChurches lists every church for the public form. Churches without
// spots are listed but marked unavailable.
func (h *RegistrationHandler) HandleChurches(ctx context.Context, input *struct{}) (*PublicChurchesResponse, error) {
	churches, err := h.store.ListChurches(ctx)
	if err != nil {
		return nil, storeProblem(err, "churches")
	}

	res := &PublicChurchesResponse{Body: make([]PublicChurch, 0, len(churches))}
	for _, c := range churches {
		res.Body = append(res.Body, PublicChurch{
			ID:        c.ID,
			Name:      c.Name,
			Spots:     c.Spots,
			Available: c.Available(),
		})
	}
	return res, nil
}

type EventResponse struct {
	Body struct {
		Name     string                  `json:"name"`
		Days     []registration.EventDay `json:"days"`
		Schedule fees.Schedule           `json:"schedule"`
	}
}

func (h *RegistrationHandler) HandleEvent(ctx context.Context, input *struct{}) (*EventResponse, error) {
	res := &EventResponse{}
	res.Body.Name = h.eventName
	res.Body.Days = registration.EventDays(h.eventDays)
	res.Body.Schedule = h.schedule
	return res, nil
}

type QuoteRequest struct {
	Body struct {
		BirthDates []registration.DateInput `json:"birth_dates" doc:"Birth dates as YYYY-MM-DD or DD/MM/YYYY"`
	}
}

type QuoteResponse struct {
	Body fees.Total
}

// HandleQuote prices a list of birth dates the way a submission would be priced.
func (h *RegistrationHandler) HandleQuote(ctx context.Context, input *QuoteRequest) (*QuoteResponse, error) {
	return &QuoteResponse{Body: registration.QuoteDates(input.Body.BirthDates, h.schedule, h.now())}, nil
}

type SubmitRequest struct {
	Body registration.Submission
}

type SubmitResponse struct {
	Status int
	Body   struct {
		Message      string     `json:"message"`
		SubmissionID string     `json:"submission_id"`
		Count        int        `json:"count"`
		Quote        fees.Total `json:"quote"`
	}
}

// HandleSubmit validates a whole submission and stores every registrant in
// one batch. Nothing is stored unless every registrant is valid.
func (h *RegistrationHandler) HandleSubmit(ctx context.Context, input *SubmitRequest) (res *SubmitResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while processing registration: %v", r)
			h.metrics.Submission(metrics.OutcomeFailed)
			res, err = nil, huma.Error500InternalServerError(genericFailureMessage)
		}
	}()

	submission := input.Body
	if err := h.validator.ValidateSubmission(submission); err != nil {
		h.metrics.Submission(metrics.OutcomeInvalid)
		return nil, validationProblem(err)
	}

	church, err := h.store.GetChurch(ctx, submission.ChurchID)
	if errors.Is(err, store.ErrNotFound) {
		h.metrics.Submission(metrics.OutcomeInvalid)
		return nil, fieldProblem("church_id", "unknown church", submission.ChurchID)
	}
	if err != nil {
		log.Printf("Failed to load church %d: %v", submission.ChurchID, err)
		h.metrics.Submission(metrics.OutcomeFailed)
		return nil, huma.Error500InternalServerError(genericFailureMessage)
	}

	if !church.Available() {
		h.metrics.Submission(metrics.OutcomeFull)
		return nil, fieldProblem("church_id", fmt.Sprintf("%s has no spots available", church.Name), church.ID)
	}
	if len(submission.Registrants) > church.Spots {
		h.metrics.Submission(metrics.OutcomeFull)
		return nil, fieldProblem("registrants",
			fmt.Sprintf("%s has only %d spot(s) available", church.Name, church.Spots), len(submission.Registrants))
	}

	batch := registration.BuildBatch(church.ID, submission.Registrants, h.schedule, h.now())
	if err := h.store.InsertRegistrants(ctx, batch.Rows); err != nil {
		log.Printf("Failed to store registration %s: %v", batch.SubmissionID, err)
		h.metrics.Submission(metrics.OutcomeFailed)
		return nil, huma.Error500InternalServerError(genericFailureMessage)
	}
	h.metrics.Accepted(len(batch.Rows), batch.Total.Fee)

	if h.notifier != nil {
		if err := h.notifier.NotifySubmission(church, batch.Rows, batch.Total); err != nil {
			log.Printf("Failed to send registration notification: %v", err)
		}
	}

	res = &SubmitResponse{Status: http.StatusCreated}
	res.Body.Message = "Registration completed successfully!"
	res.Body.SubmissionID = batch.SubmissionID
	res.Body.Count = len(batch.Rows)
	res.Body.Quote = batch.Total
	return res, nil
}
