package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

var (
	// ErrUnauthorized возвращается, если токен не прошёл проверку
	ErrUnauthorized = errors.New("jwtauth: invalid token")

	// ErrSignToken возвращается, если не удалось подписать токен
	ErrSignToken = errors.New("jwtauth: failed to sign token")
)

// Claims утверждения токена: subject = userId, role = роль вызывающего
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager проверяет и выпускает HS256 токены
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создает менеджер токенов
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue выпускает токен для пользователя (используется сервисными клиентами и тестами)
func (m *Manager) Issue(userID string, role domain.Role) (string, error) {
	now := m.now().UTC()

	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignToken, err)
	}
	return signed, nil
}

// Resolve проверяет подпись и срок токена и возвращает вызывающего
func (m *Manager) Resolve(_ context.Context, token string) (domain.Actor, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return domain.Actor{}, ErrUnauthorized
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return domain.Actor{UserID: claims.Subject, Role: role}, nil
}
