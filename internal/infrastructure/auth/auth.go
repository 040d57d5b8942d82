// Package auth — проверка bearer-токенов входящих запросов.
package auth

import (
	"context"
	"strings"

	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

// TokenVerifier проверяет токен и возвращает идентификатор пользователя.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StaticVerifier — dev-реализация: токен трактуется как непрозрачный id
// пользователя. Используется, когда внешний провайдер аутентификации не настроен.
type StaticVerifier struct{}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", e.ErrUnauthorized
	}

	return token, nil
}
