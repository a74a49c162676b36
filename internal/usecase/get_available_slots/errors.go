package get_available_slots

import "errors"

var (
	// ErrAttorneyNotFound возвращается, когда у адвоката нет политики расписания
	ErrAttorneyNotFound = errors.New("get_available_slots: attorney availability not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
