package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried in gateway bearer tokens.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// mintToken signs a token for one user with the gateway's shared
// secret.
func (g *Gateway) mintToken(userID, email string) (string, error) {
	ttl := time.Duration(g.config.Gateway.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "cloudformation-agent-gateway",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.config.Gateway.JWTSecret))
}

// parseToken verifies the signature and expiry and returns the claims.
// Only HMAC tokens are accepted; anything else is a confused or forged
// token.
func (g *Gateway) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(g.config.Gateway.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token carries no user identity")
	}
	return claims, nil
}

// authMiddleware rejects requests without a valid bearer token and
// stashes the caller identity on the request context.
func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			g.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := g.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			g.logger.WithError(err).Warn("Rejected request with invalid token")
			g.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.UserID)))
	})
}

// withUserID stores the caller identity under the plain string key the
// logger's WithContext reads.
func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, "user_id", userID) //nolint:staticcheck
}

// userIDFrom returns the authenticated caller, empty when the request
// never went through the auth middleware.
func userIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value("user_id").(string) //nolint:staticcheck
	return userID
}

// tokenHandler mints a development token. It is guarded by the shared
// JWT secret so the gateway can run without an external identity
// provider while staying closed to strangers.
func (g *Gateway) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if g.config.Gateway.JWTSecret == "" {
		g.writeError(w, http.StatusServiceUnavailable, "token minting is disabled: no JWT secret configured")
		return
	}

	var request struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.UserID == "" {
		g.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if request.Secret != g.config.Gateway.JWTSecret {
		g.logger.WithField("user", request.UserID).Warn("Token mint rejected: wrong shared secret")
		g.writeError(w, http.StatusUnauthorized, "invalid shared secret")
		return
	}

	token, err := g.mintToken(request.UserID, request.Email)
	if err != nil {
		g.logger.WithError(err).Error("Failed to mint token")
		g.writeError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}

	ttl := time.Duration(g.config.Gateway.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	g.writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": int(ttl / time.Second),
	})
}
