package identityservice

import "errors"

var (
	// ErrUnauthorized возвращается, когда токен не принят identity-сервисом
	ErrUnauthorized = errors.New("identityservice client: token rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identityservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identityservice client: invalid response")

	// ErrUnavailable возвращается, когда identity-сервис недоступен
	ErrUnavailable = errors.New("identityservice client: service unavailable")
)
