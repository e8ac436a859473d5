package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
	"github.com/todayscomfort/backend/internal/session"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	sessions       session.Store
	jwtSecret      string
	webAPIKey      string
	signInURL      string
	httpc          *http.Client
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, sessions session.Store, jwtSecret, webAPIKey string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		sessions:       sessions,
		jwtSecret:      jwtSecret,
		webAPIKey:      webAPIKey,
		signInURL:      identityToolkitURL,
		httpc:          &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterAuthRoutes registers unauthenticated auth routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.GET("/nickname-check", h.NicknameCheck)
}

// RegisterSessionRoutes registers auth routes that require a session
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/auth/signout", h.SignOut)
}

// Signup creates the Firebase Auth user and the profile document.
// The nickname claim is written in the same transaction as the profile, so
// two concurrent sign-ups with the same nickname cannot both succeed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Fast-path check; the transaction below is the real gate
	available, err := h.userRepository.NicknameAvailable(c.Request().Context(), req.Nickname)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !available {
		return echo.NewHTTPError(http.StatusConflict, "Nickname already taken")
	}

	profileImg := fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(req.Nickname))

	userToCreate := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.Nickname).
		PhotoURL(profileImg)

	record, err := h.firebaseAuth.CreateUser(c.Request().Context(), userToCreate)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	profile := &models.UserProfile{
		UID:        record.UID,
		Nickname:   req.Nickname,
		RealName:   req.RealName,
		BirthDate:  req.BirthDate,
		ProfileImg: profileImg,
		Email:      req.Email,
	}

	if err := h.userRepository.CreateProfile(c.Request().Context(), profile); err != nil {
		// Roll the auth user back so the email is not left claimed without a profile
		if delErr := h.firebaseAuth.DeleteUser(context.Background(), record.UID); delErr != nil {
			c.Logger().Errorf("failed to roll back auth user %s: %v", record.UID, delErr)
		}
		if err == repositories.ErrNicknameTaken {
			return echo.NewHTTPError(http.StatusConflict, "Nickname already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.openSession(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token, "profile": profile})
}

type identityToolkitResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// SignIn verifies email/password against the Firebase identity toolkit and
// issues a local session token
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.webAPIKey == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-in is not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"email":             req.Email,
		"password":          req.Password,
		"returnSecureToken": true,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	signInURL := fmt.Sprintf("%s?key=%s", h.signInURL, h.webAPIKey)
	httpReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, signInURL, bytes.NewReader(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpc.Do(httpReq)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Authentication service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	var itResp identityToolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&itResp); err != nil || itResp.LocalID == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authentication service returned an invalid response")
	}

	profile, err := h.userRepository.GetProfile(c.Request().Context(), itResp.LocalID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user has no profile")
	}

	token, err := h.openSession(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "profile": profile})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a client-obtained Firebase ID token and issues a
// local session token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	profile, err := h.userRepository.GetProfile(c.Request().Context(), token.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user has no profile")
	}

	localJWT, err := h.openSession(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT, "profile": profile})
}

// SignOut clears the session mirror: the identity blob and the cached display
// profile go together, so no stale half remains
func (h *AuthHandler) SignOut(c echo.Context) error {
	uid := middleware.UID(c)

	if err := h.sessions.Clear(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// NicknameCheck reports whether a nickname is still available. Advisory: the
// sign-up transaction re-checks.
func (h *AuthHandler) NicknameCheck(c echo.Context) error {
	nickname := c.QueryParam("nickname")
	if nickname == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'nickname' is required")
	}

	available, err := h.userRepository.NicknameAvailable(c.Request().Context(), nickname)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"nickname": nickname, "available": available})
}

// openSession writes both session blobs and mints the local JWT
func (h *AuthHandler) openSession(ctx context.Context, profile *models.UserProfile) (string, error) {
	identity := &session.Identity{
		UID:      profile.UID,
		Email:    profile.Email,
		Nickname: profile.Nickname,
		SignedIn: time.Now(),
	}
	if err := h.sessions.SaveIdentity(ctx, identity); err != nil {
		return "", err
	}
	if err := h.sessions.SaveProfile(ctx, profile); err != nil {
		return "", err
	}
	return h.generateJWT(profile)
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(profile *models.UserProfile) (string, error) {
	claims := &models.JwtCustomClaims{
		UID:   profile.UID,
		Email: profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)), // Token expires in 72 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}
