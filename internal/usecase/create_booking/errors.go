package create_booking

import "errors"

var (
	// ErrAttorneyNotFound возвращается, когда у адвоката нет политики расписания
	ErrAttorneyNotFound = errors.New("create_booking: attorney availability not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// Результаты создания для метрик
const (
	outcomeCreated   = "created"
	outcomeReplayed  = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeConflict  = "conflict"
	outcomeTransient = "transient"
	outcomeFailed    = "error"
)
