package handlers

import (
	"context"

	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

type ChurchHandler struct {
	store       store.Churches
	authHandler *auth.AuthHandler
	validator   *registration.Validator
}

func NewChurchHandler(st store.Churches, authHandler *auth.AuthHandler, v *registration.Validator) *ChurchHandler {
	return &ChurchHandler{store: st, authHandler: authHandler, validator: v}
}

type ChurchBody struct {
	Name  string `json:"name" doc:"Church name" validate:"min=2"`
	Spots int    `json:"spots" doc:"Spots offered to the church" validate:"min=0"`
}

type ChurchListResponse struct {
	Body []models.Church
}

// AdminInput is the input of admin endpoints that take nothing but credentials.
type AdminInput struct {
	auth.AuthInput
}

type CreateChurchInput struct {
	auth.AuthInput
	Body ChurchBody
}

type UpdateChurchInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body ChurchBody
}

type DeleteChurchInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *ChurchHandler) list(ctx context.Context) (*ChurchListResponse, error) {
	churches, err := h.store.ListChurches(ctx)
	if err != nil {
		return nil, storeProblem(err, "churches")
	}
	return &ChurchListResponse{Body: churches}, nil
}

func (h *ChurchHandler) HandleList(ctx context.Context, input *AdminInput) (*ChurchListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	return h.list(ctx)
}

// HandleCreate adds a church and returns the refreshed list.
func (h *ChurchHandler) HandleCreate(ctx context.Context, input *CreateChurchInput) (*ChurchListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateStruct(input.Body); err != nil {
		return nil, validationProblem(err)
	}

	church := models.Church{Name: input.Body.Name, Spots: input.Body.Spots}
	if err := h.store.CreateChurch(ctx, &church); err != nil {
		return nil, storeProblem(err, "church")
	}
	return h.list(ctx)
}

func (h *ChurchHandler) HandleUpdate(ctx context.Context, input *UpdateChurchInput) (*ChurchListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateStruct(input.Body); err != nil {
		return nil, validationProblem(err)
	}

	patch := store.ChurchPatch{Name: &input.Body.Name, Spots: &input.Body.Spots}
	if _, err := h.store.UpdateChurch(ctx, input.ID, patch); err != nil {
		return nil, storeProblem(err, "church")
	}
	return h.list(ctx)
}

func (h *ChurchHandler) HandleDelete(ctx context.Context, input *DeleteChurchInput) (*ChurchListResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if err := h.store.DeleteChurch(ctx, input.ID); err != nil {
		return nil, storeProblem(err, "church")
	}
	return h.list(ctx)
}
