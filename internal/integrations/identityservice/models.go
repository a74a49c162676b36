package identityservice

// Identity ответ identity-сервиса: кто вызывает и в какой роли
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ErrorResponse модель ошибки от identity-сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
