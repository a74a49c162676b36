package policy

import "errors"

var (
	// ErrAvailabilityNotFound возвращается, когда у адвоката нет политики расписания
	ErrAvailabilityNotFound = errors.New("policy.repository: attorney availability not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("policy.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("policy.repository: failed to scan row")

	// ErrInvalidAvailability возвращается, когда сохраненная политика некорректна
	ErrInvalidAvailability = errors.New("policy.repository: invalid attorney availability")
)
