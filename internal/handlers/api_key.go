package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

const apiKeySuffixLen = 4

type APIKeyHandler struct {
	store       store.APIKeys
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(st store.APIKeys, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{store: st, authHandler: authHandler}
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" doc:"What the key is used for"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" required:"false"`
	}
}

type APIKeyResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key" doc:"The full key on creation, masked afterwards"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

type CreateAPIKeyOutput struct {
	Body APIKeyResponse
}

func keyResponse(k models.APIKey, key string) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

// HandleCreate issues a key for the calling administrator. The plain key is
// only ever returned here; storage keeps its hash.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}
	key := hex.EncodeToString(keyBytes)

	apiKey := models.APIKey{
		UserID:    user.ID,
		KeyHash:   auth.HashAPIKey(key),
		Suffix:    key[len(key)-apiKeySuffixLen:],
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.store.CreateAPIKey(ctx, &apiKey); err != nil {
		return nil, storeProblem(err, "API key")
	}

	return &CreateAPIKeyOutput{Body: keyResponse(apiKey, key)}, nil
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *AdminInput) (*ListAPIKeysOutput, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	keys, err := h.store.ListAPIKeys(ctx, user.ID)
	if err != nil {
		return nil, storeProblem(err, "API keys")
	}

	response := make([]APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, keyResponse(k, "..."+k.Suffix))
	}
	return &ListAPIKeysOutput{Body: response}, nil
}

type DeleteAPIKeyInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteAPIKey(ctx, user.ID, input.ID); err != nil {
		return nil, storeProblem(err, "API key")
	}
	return nil, nil
}
