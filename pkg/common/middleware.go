package common

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

type contextKey string

const callerKey contextKey = "caller"

// AuthMiddleware verifies the JWT token and injects the caller address
// (the "sub" claim) into the request context.
func AuthMiddleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			http.Error(w, "Token subject required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, chain.Address(sub))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the authenticated caller address, if any.
func CallerFromContext(ctx context.Context) (chain.Address, bool) {
	addr, ok := ctx.Value(callerKey).(chain.Address)
	return addr, ok
}
