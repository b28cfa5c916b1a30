package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

// AdminStore is what the registrant views need from storage.
type AdminStore interface {
	store.Churches
	store.Registrants
}

type RegistrantHandler struct {
	store       AdminStore
	authHandler *auth.AuthHandler
	validator   *registration.Validator
}

func NewRegistrantHandler(st AdminStore, authHandler *auth.AuthHandler, v *registration.Validator) *RegistrantHandler {
	return &RegistrantHandler{store: st, authHandler: authHandler, validator: v}
}

// RegistrantView is a registrant with its church name resolved.
type RegistrantView struct {
	models.Registrant
	ChurchName string `json:"church_name"`
}

const unknownChurchName = "N/A"

type ListRegistrantsInput struct {
	auth.AuthInput
	ChurchID      uint   `query:"church_id" doc:"Only registrants of this church"`
	PaymentStatus string `query:"payment_status" enum:"pending,paid" doc:"Only registrants with this payment status"`
}

type RegistrantListResponse struct {
	Body []RegistrantView
}

type UpdateRegistrantInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		FullName      *string `json:"full_name,omitempty" required:"false" validate:"omitempty,min=2"`
		Phone         *string `json:"phone,omitempty" required:"false" validate:"omitempty,min=10"`
		ChurchID      *uint   `json:"church_id,omitempty" required:"false" validate:"omitempty,min=1"`
		PaymentStatus *string `json:"payment_status,omitempty" required:"false" validate:"omitempty,oneof=pending paid"`
	}
}

type RegistrantIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *RegistrantHandler) list(ctx context.Context, filter store.RegistrantFilter) (*RegistrantListResponse, error) {
	churches, err := h.store.ListChurches(ctx)
	if err != nil {
		return nil, storeProblem(err, "churches")
	}
	names := make(map[uint]string, len(churches))
	for _, c := range churches {
		names[c.ID] = c.Name
	}

	registrants, err := h.store.ListRegistrants(ctx, filter)
	if err != nil {
		return nil, storeProblem(err, "registrants")
	}

	res := &RegistrantListResponse{Body: make([]RegistrantView, 0, len(registrants))}
	for _, r := range registrants {
		name, ok := names[r.ChurchID]
		if !ok {
			name = unknownChurchName
		}
		res.Body = append(res.Body, RegistrantView{Registrant: r, ChurchName: name})
	}
	return res, nil
}

func (h *RegistrantHandler) HandleList(ctx context.Context, input *ListRegistrantsInput) (*RegistrantListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	return h.list(ctx, store.RegistrantFilter{ChurchID: input.ChurchID, PaymentStatus: input.PaymentStatus})
}

// HandleUpdate edits the administrator-editable fields of a registrant and
// returns the refreshed list.
func (h *RegistrantHandler) HandleUpdate(ctx context.Context, input *UpdateRegistrantInput) (*RegistrantListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateStruct(input.Body); err != nil {
		return nil, validationProblem(err)
	}

	if input.Body.ChurchID != nil {
		_, err := h.store.GetChurch(ctx, *input.Body.ChurchID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fieldProblem("church_id", "unknown church", *input.Body.ChurchID)
		}
		if err != nil {
			return nil, storeProblem(err, "church")
		}
	}

	patch := store.RegistrantPatch{
		FullName:      input.Body.FullName,
		Phone:         input.Body.Phone,
		ChurchID:      input.Body.ChurchID,
		PaymentStatus: input.Body.PaymentStatus,
	}
	if _, err := h.store.UpdateRegistrant(ctx, input.ID, patch); err != nil {
		return nil, storeProblem(err, "registrant")
	}
	return h.list(ctx, store.RegistrantFilter{})
}

func (h *RegistrantHandler) HandleDelete(ctx context.Context, input *RegistrantIDInput) (*RegistrantListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if err := h.store.DeleteRegistrant(ctx, input.ID); err != nil {
		return nil, storeProblem(err, "registrant")
	}
	return h.list(ctx, store.RegistrantFilter{})
}

type HistoryInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Diff bool `query:"diff" default:"true" doc:"Only show fields that changed from the previous entry"`
}

// HistoryFields holds the editable fields of one snapshot. With diff enabled,
// unchanged fields are left nil.
type HistoryFields struct {
	FullName      *string `json:"full_name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	ChurchID      *uint   `json:"church_id,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}

type HistoryEntry struct {
	ID        uint          `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Fields    HistoryFields `json:"fields"`
}

type HistoryResponse struct {
	Body []HistoryEntry
}

// HandleHistory lists the snapshots of a registrant, newest first.
func (h *RegistrantHandler) HandleHistory(ctx context.Context, input *HistoryInput) (*HistoryResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if _, err := h.store.GetRegistrant(ctx, input.ID); err != nil {
		return nil, storeProblem(err, "registrant")
	}

	history, err := h.store.RegistrantHistory(ctx, input.ID)
	if err != nil {
		return nil, storeProblem(err, "registrant history")
	}

	res := &HistoryResponse{Body: make([]HistoryEntry, 0, len(history))}
	for i, snap := range history {
		// history is newest first, so the previous state is the next element
		var prev *models.RegistrantFields
		if input.Diff && i+1 < len(history) {
			prev = &history[i+1].RegistrantFields
		}
		res.Body = append(res.Body, HistoryEntry{
			ID:        snap.ID,
			CreatedAt: snap.CreatedAt,
			Fields:    diffFields(prev, snap.RegistrantFields),
		})
	}
	return res, nil
}

func diffFields(prev *models.RegistrantFields, cur models.RegistrantFields) HistoryFields {
	var f HistoryFields
	if prev == nil || prev.FullName != cur.FullName {
		f.FullName = &cur.FullName
	}
	if prev == nil || prev.Phone != cur.Phone {
		f.Phone = &cur.Phone
	}
	if prev == nil || prev.ChurchID != cur.ChurchID {
		f.ChurchID = &cur.ChurchID
	}
	if prev == nil || prev.PaymentStatus != cur.PaymentStatus {
		f.PaymentStatus = &cur.PaymentStatus
	}
	return f
}

type StatsResponse struct {
	Body store.Stats
}

// HandleStats summarises registrants for the dashboard.
func (h *RegistrantHandler) HandleStats(ctx context.Context, input *AdminInput) (*StatsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return nil, storeProblem(err, "stats")
	}
	return &StatsResponse{Body: stats}, nil
}
