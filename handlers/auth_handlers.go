package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"ecomdemo/datagen/middleware"
	"ecomdemo/datagen/models"
	"ecomdemo/datagen/store"
	"ecomdemo/datagen/utils"
)

type AnalystRepository interface {
	CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error)
	GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error)
}

type AuthHandlers struct {
	Analysts AnalystRepository
	Tokens   *utils.TokenIssuer
}

func NewAuthHandlers(analysts AnalystRepository, tokens *utils.TokenIssuer) *AuthHandlers {
	return &AuthHandlers{Analysts: analysts, Tokens: tokens}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	analyst, err := h.Analysts.CreateAnalyst(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrAnalystExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Analyst with this email already exists"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("failed to create analyst")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register analyst"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Analyst registered successfully", "email": analyst.Email})
}

// Login checks credentials and issues a JWT both as a cookie and in the body.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	analyst, err := h.Analysts.GetAnalystByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrAnalystNotFound) {
			log.Error().Err(err).Msg("failed to look up analyst")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(analyst.HashedPassword, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.Generate(analyst)
	if err != nil {
		log.Error().Err(err).Int("analyst_id", analyst.ID).Msg("failed to generate JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(middleware.CookieName, token, int(time.Hour/time.Second), "/", "", false, true)
	log.Info().Int("analyst_id", analyst.ID).Msg("analyst logged in")
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "email": analyst.Email, "token": token})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandlers) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analyst_id": c.GetInt(middleware.ContextIDKey),
		"email":      c.GetString(middleware.ContextMailKey),
		"ip_address": c.ClientIP(),
	})
}
