package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const staffIDKey = contextKey("staffID")

// Сохраняет ID сотрудника в контексте
func WithStaffID(ctx context.Context, staffID uint) context.Context {
	return context.WithValue(ctx, staffIDKey, staffID)
}

// Достает ID сотрудника из контекста
func GetStaffIDFromContext(ctx context.Context) (uint, error) {
	val := ctx.Value(staffIDKey)
	id, ok := val.(uint)
	if !ok {
		return 0, errors.New("staff ID not found in context")
	}
	return id, nil
}

// Actor - подпись для логов: кто выполнил действие
func Actor(ctx context.Context) string {
	id, err := GetStaffIDFromContext(ctx)
	if err != nil {
		return "anonymous"
	}
	return fmt.Sprintf("staff %d", id)
}

// Middleware извлекает ID сотрудника из JWT и кладет его в context.
// Проверка прав остается за внешним слоем: без токена запрос проходит дальше.
func Middleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
		if tokenStr == "" || secret == "" {
			next.ServeHTTP(w, r)
			return
		}

		staffID, err := ParseToken(secret, tokenStr)
		if err != nil {
			next.ServeHTTP(w, r) // невалидный токен: пропускаем без staff id
			return
		}

		r = r.WithContext(WithStaffID(r.Context(), staffID))
		next.ServeHTTP(w, r)
	})
}

// ParseToken validates an HS256 token and returns its staff id claim.
func ParseToken(secret, tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 {
		return 0, errors.New("token has no user_id claim")
	}
	return uint(idFloat), nil
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
