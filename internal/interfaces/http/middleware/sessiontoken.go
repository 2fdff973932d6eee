package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Session token context keys
const (
	SessionShopKey = "session_shop"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Session token validation errors
var (
	ErrMissingToken   = errors.New("missing session token")
	ErrInvalidToken   = errors.New("invalid session token")
	ErrShopMismatch   = errors.New("session token dest does not match configured shop")
	ErrWrongAudience  = errors.New("session token audience does not match api key")
	ErrWrongAlgorithm = errors.New("unexpected session token signing algorithm")
)

// SessionTokenConfig holds configuration for the session token middleware.
// App Bridge session tokens are HS256 JWTs signed with the app's API secret;
// aud carries the API key and dest the shop origin.
type SessionTokenConfig struct {
	// APISecret signs and verifies the token
	APISecret string
	// APIKey is the expected audience claim
	APIKey string
	// ShopDomain, when set, pins tokens to a single shop
	ShopDomain string
	// Logger for middleware logging
	Logger *zap.Logger
}

// sessionClaims are the App Bridge session token claims this service checks.
// exp/nbf/iat are validated by the parser.
type sessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// SessionTokenAuth verifies the App Bridge session token on admin requests
// and stores the authenticated shop domain in the context.
func SessionTokenAuth(cfg SessionTokenConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		shop, err := validateSessionToken(tokenString, cfg)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		c.Set(SessionShopKey, shop)

		ctx := c.Request.Context()
		ctx, _ = logger.WithShop(ctx, logger.FromContext(ctx), shop)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// validateSessionToken parses and verifies the token, returning the shop
// domain from the dest claim.
func validateSessionToken(tokenString string, cfg SessionTokenConfig) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrWrongAlgorithm
		}
		return []byte(cfg.APISecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	if cfg.APIKey != "" {
		audOK := false
		for _, aud := range claims.Audience {
			if aud == cfg.APIKey {
				audOK = true
				break
			}
		}
		if !audOK {
			return "", ErrWrongAudience
		}
	}

	shop := shopFromDest(claims.Dest)
	if shop == "" {
		return "", ErrInvalidToken
	}
	if cfg.ShopDomain != "" && shop != cfg.ShopDomain {
		return "", ErrShopMismatch
	}

	return shop, nil
}

// shopFromDest strips the scheme from the dest claim ("https://{shop}")
func shopFromDest(dest string) string {
	shop := strings.TrimPrefix(dest, "https://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" || strings.Contains(shop, "/") {
		return ""
	}
	return shop
}

func extractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", ErrInvalidToken
	}
	tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
	if tokenString == "" {
		return "", ErrMissingToken
	}
	return tokenString, nil
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Session token authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path))

	errorCode := "ERR_TOKEN_INVALID"
	errorMessage := "Invalid session token"
	switch {
	case errors.Is(err, ErrMissingToken):
		errorCode = "ERR_UNAUTHORIZED"
		errorMessage = "Authentication required"
	case errors.Is(err, jwt.ErrTokenExpired):
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Session token has expired"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetSessionShop retrieves the authenticated shop domain from gin.Context
func GetSessionShop(c *gin.Context) string {
	if shop, exists := c.Get(SessionShopKey); exists {
		if s, ok := shop.(string); ok {
			return s
		}
	}
	return ""
}
