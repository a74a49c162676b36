package identityservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Client клиент identity-сервиса: по токену вызывающего возвращает {userId, role}
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Resolve проверяет токен во внешнем identity-сервисе
func (c *Client) Resolve(ctx context.Context, token string) (domain.Actor, error) {
	url := c.baseURL + "/internal/identity"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("IdentityService: request failed: %v", err)
		return domain.Actor{}, fmt.Errorf("%w: %w: failed to execute request: %v", domain.ErrTransient, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Actor{}, ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.Actor{}, fmt.Errorf("%w: %w: status %d", domain.ErrTransient, ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Actor{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return domain.Actor{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if identity.UserID == "" {
		return domain.Actor{}, fmt.Errorf("%w: empty userId", ErrInvalidResponse)
	}

	role, err := domain.ParseRole(identity.Role)
	if err != nil {
		c.log.Warn("IdentityService: user=%s has unsupported role %q", identity.UserID, identity.Role)
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return domain.Actor{UserID: identity.UserID, Role: role}, nil
}
