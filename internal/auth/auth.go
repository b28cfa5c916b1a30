package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/store"
	"golang.org/x/oauth2"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"
)

const (
	TokenCookieName = "auth_token"
	StateCookieName = "oauth_state"
	TokenDuration   = 24 * time.Hour
	stateDuration   = 10 * time.Minute
)

// Store is what the auth handler needs from storage.
type Store interface {
	store.Users
	store.APIKeys
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	store       Store
	session     *discordgo.Session
	cfg         *config.Config

	userAPI   string
	guildsAPI string
	now       func() time.Time
}

func NewAuthHandler(cfg *config.Config, st Store, session *discordgo.Session) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		store:     st,
		session:   session,
		cfg:       cfg,
		userAPI:   DiscordUserAPI,
		guildsAPI: DiscordUserGuildsAPI,
		now:       time.Now,
	}
}

// AuthInput carries the credentials of an admin request: the session cookie
// or an API key header.
type AuthInput struct {
	AuthToken string `cookie:"auth_token" doc:"Session cookie"`
	APIKey    string `header:"X-API-KEY" doc:"Admin API key"`
}

// RedirectOutput answers with a redirect and one cookie.
type RedirectOutput struct {
	Status    int
	Location  string      `header:"Location"`
	SetCookie http.Cookie `header:"Set-Cookie"`
}

func (h *AuthHandler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.FrontendURL, "https://")
}

func (h *AuthHandler) sessionCookie(token string) http.Cookie {
	return http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Expires:  h.now().Add(TokenDuration),
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *struct{}) (*RedirectOutput, error) {
	state := uuid.NewString()
	return &RedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline),
		SetCookie: http.Cookie{
			Name:     StateCookieName,
			Value:    state,
			MaxAge:   int(stateDuration.Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookies(),
			SameSite: http.SameSiteLaxMode,
			Path:     "/auth",
		},
	}, nil
}

type CallbackInput struct {
	Code        string `query:"code"`
	State       string `query:"state"`
	StateCookie string `cookie:"oauth_state"`
}

func (h *AuthHandler) HandleCallback(ctx context.Context, input *CallbackInput) (*RedirectOutput, error) {
	if input.Code == "" {
		return nil, huma.Error400BadRequest("Code not found")
	}
	if input.State == "" || input.State != input.StateCookie {
		return nil, huma.Error400BadRequest("Invalid OAuth state")
	}

	token, err := h.oauthConfig.Exchange(ctx, input.Code)
	if err != nil {
		log.Printf("Failed to exchange token: %v", err)
		return nil, huma.Error500InternalServerError("Failed to exchange token")
	}

	client := h.oauthConfig.Client(ctx, token)

	// Check Guild Membership
	if h.cfg.DiscordGuildID != "" {
		var guilds []struct {
			ID string `json:"id"`
		}
		if err := getJSON(client, h.guildsAPI, &guilds); err != nil {
			log.Printf("Failed to get user guilds: %v", err)
			return nil, huma.Error500InternalServerError("Failed to get user guilds")
		}

		isMember := false
		for _, g := range guilds {
			if g.ID == h.cfg.DiscordGuildID {
				isMember = true
				break
			}
		}

		if !isMember {
			return nil, huma.Error403Forbidden("Access denied: You are not a member of the required guild.")
		}
	}

	// Get User Info
	var discordUser struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
	}
	if err := getJSON(client, h.userAPI, &discordUser); err != nil {
		log.Printf("Failed to get user info: %v", err)
		return nil, huma.Error500InternalServerError("Failed to get user info")
	}

	user := models.User{
		DiscordID: discordUser.ID,
		Username:  discordUser.Username,
		Email:     discordUser.Email,
		Avatar:    discordUser.Avatar,
		IsAdmin:   h.cfg.IsAdminDiscordID(discordUser.ID),
	}
	if !user.IsAdmin && h.cfg.DiscordAdminRoleID != "" && h.session != nil {
		hasRole, err := h.CheckRole(discordUser.ID, h.cfg.DiscordAdminRoleID)
		if err != nil {
			log.Printf("Failed to check admin role for %s: %v", discordUser.ID, err)
		}
		user.IsAdmin = hasRole
	}

	if err := h.store.UpsertUser(ctx, &user); err != nil {
		log.Printf("Failed to save user: %v", err)
		return nil, huma.Error500InternalServerError("Failed to save user")
	}

	// Generate JWT
	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	return &RedirectOutput{
		Status:    http.StatusFound,
		Location:  strings.TrimSuffix(h.cfg.FrontendURL, "/") + "/admin",
		SetCookie: h.sessionCookie(jwtToken),
	}, nil
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// HandleSignOut expires the session cookie and sends the browser back to the
// admin login page.
func (h *AuthHandler) HandleSignOut(ctx context.Context, input *struct{}) (*RedirectOutput, error) {
	return &RedirectOutput{
		Status:   http.StatusFound,
		Location: strings.TrimSuffix(h.cfg.FrontendURL, "/") + "/admin/login",
		SetCookie: http.Cookie{
			Name:     TokenCookieName,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies(),
			Path:     "/",
		},
	}, nil
}

type MeResponse struct {
	Body struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
		IsAdmin  bool   `json:"is_admin"`
	}
}

// HandleMe returns the current session's user.
func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	userID, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}

	user, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error401Unauthorized("Unauthorized: unknown user")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}

	resp := &MeResponse{}
	resp.Body.ID = user.ID
	resp.Body.Username = user.Username
	resp.Body.Email = user.Email
	resp.Body.Avatar = user.Avatar
	resp.Body.IsAdmin = user.IsAdmin
	return resp, nil
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken validates a session token and returns its user and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, time.Time{}, errors.New("invalid token claims")
	}

	var exp time.Time
	if expFloat, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(expFloat), 0)
	}
	return uint(userIDFloat), exp, nil
}

// HashAPIKey is the form an API key is stored and looked up in.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Authorize resolves the caller to a user id. An API key wins over the
// session cookie when it matches.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	// 1. Check for API Key Header
	if input.APIKey != "" {
		key, err := h.store.FindAPIKey(ctx, HashAPIKey(input.APIKey))
		if err == nil {
			if key.Expired(h.now()) {
				return 0, huma.Error401Unauthorized("Unauthorized: API Key expired")
			}
			if err := h.store.TouchAPIKey(ctx, key.ID, h.now()); err != nil {
				log.Printf("Failed to record API key use: %v", err)
			}
			return key.UserID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, huma.Error500InternalServerError("Database error")
		}
	}

	// 2. Session already checked by SessionMiddleware
	if userID, ok := ctx.Value(UserIDKey).(uint); ok && userID != 0 {
		return userID, nil
	}

	// 3. Fallback to JWT Cookie
	if input.AuthToken == "" {
		return 0, huma.Error401Unauthorized("Unauthorized: No token found")
	}

	userID, _, err := h.ParseToken(input.AuthToken)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized: Invalid token")
	}
	return userID, nil
}

// RequireAdmin authorizes the caller and rejects anyone without the admin flag.
func (h *AuthHandler) RequireAdmin(ctx context.Context, input AuthInput) (models.User, error) {
	userID, err := h.Authorize(ctx, input)
	if err != nil {
		return models.User{}, err
	}

	user, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, huma.Error401Unauthorized("Unauthorized: unknown user")
	}
	if err != nil {
		return models.User{}, huma.Error500InternalServerError("Database error")
	}
	if !user.IsAdmin {
		return models.User{}, huma.Error403Forbidden("Access denied: administrators only")
	}
	return user, nil
}

// CheckRole reports whether the Discord user holds roleID in the configured guild.
func (h *AuthHandler) CheckRole(discordID, roleID string) (bool, error) {
	if h.session == nil {
		return false, errors.New("discord session is nil")
	}
	member, err := h.session.GuildMember(h.cfg.DiscordGuildID, discordID)
	if err != nil {
		return false, err
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}
