package schedule

import "errors"

var (
	// ErrAttorneyNotFound возвращается, когда у адвоката нет политики расписания
	ErrAttorneyNotFound = errors.New("schedule: attorney availability not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule: internal error")
)
