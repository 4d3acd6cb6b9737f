package user

import (
	"log"
	"net/http"
	"os"
	"time"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

// ================== AUTH LOCALE ==================

// CreateUser inscrit un compte local (mot de passe Argon2id)
func CreateUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// email déjà pris ?
	var existingID string
	err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	u := models.User{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     "customer",
		Provider: "local",
	}

	if err := database.GetPreparedInsertUser().Bind(
		u.ID, u.Email, u.Password, u.Name, u.Role, u.Provider, "", time.Now()).Exec(); err != nil {
		log.Printf("❌ Erreur insertion utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(u.Email, u.ID).Exec(); err != nil {
		log.Printf("❌ Erreur insertion users_by_email: %v", err)
	}

	log.Printf("👤 Compte créé pour %s", u.Email)
	issueTokens(c, u)
}

// Login authentifie un compte local
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	u, err := findUserByEmail(input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	issueTokens(c, *u)
}

// Refresh échange un refresh token valide contre un nouveau token d'accès
func Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	claims, err := parseRefreshToken(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	userID, _ := claims["user_id"].(string)
	stored, err := cache.GetRefreshToken(userID)
	if err != nil || stored != input.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token révoqué"})
		return
	}

	u, err := findUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	issueTokens(c, *u)
}

// Logout révoque le refresh token côté serveur
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Erreur révocation refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me retourne le profil de l'utilisateur connecté
func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	u, err := findUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, u)
}

// ================== OAUTH (Google via goth) ==================

// BeginAuth démarre le flux OAuth du provider demandé
func BeginAuth(c *gin.Context) {
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux OAuth et retrouve ou crée le compte
func CallbackAuth(c *gin.Context) {
	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur callback OAuth: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	u, err := findOrCreateOAuthUser(gothUser.Provider, gothUser.UserID, gothUser.Email, gothUser.Name)
	if err != nil {
		log.Printf("❌ Erreur compte OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	issueTokens(c, u)
}

// ================== HELPERS ==================

func issueTokens(c *gin.Context, u models.User) {
	accessToken, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	refreshToken, err := utils.GenerateRefreshToken(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	if err := cache.StoreRefreshToken(u.ID, refreshToken, 30*24*time.Hour); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        accessToken,
		"refreshToken": refreshToken,
		"user":         u,
	})
}

func parseRefreshToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "super_secret"
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func findUserByEmail(email string) (*models.User, error) {
	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&userID); err != nil {
		return nil, err
	}
	return findUserByID(userID)
}

func findUserByID(userID string) (*models.User, error) {
	u := models.User{ID: userID}
	err := database.GetPreparedGetUserByID().Bind(userID).
		Scan(&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider, &u.ProviderID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func findOrCreateOAuthUser(provider, providerID, email, name string) (models.User, error) {
	if u, err := findUserByEmail(email); err == nil {
		return *u, nil
	}

	u := models.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Role:       "customer",
		Provider:   provider,
		ProviderID: providerID,
	}

	if err := database.GetPreparedInsertUser().Bind(
		u.ID, u.Email, "", u.Name, u.Role, u.Provider, u.ProviderID, time.Now()).Exec(); err != nil {
		return models.User{}, err
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(u.Email, u.ID).Exec(); err != nil {
		log.Printf("❌ Erreur insertion users_by_email: %v", err)
	}

	log.Printf("👤 Compte %s créé via %s", u.Email, provider)
	return u, nil
}
