package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotOverlap возвращается, когда БД отклонила пересекающийся активный интервал
	ErrSlotOverlap = errors.New("booking.repository: active interval overlaps another booking")

	// ErrDuplicateIdempotencyKey возвращается, когда ключ идемпотентности уже использован заявителем
	ErrDuplicateIdempotencyKey = errors.New("booking.repository: idempotency key already used")

	// ErrStaleBooking возвращается, когда бронирование изменилось с момента чтения
	ErrStaleBooking = errors.New("booking.repository: booking was modified concurrently")

	// ErrNoTransaction возвращается, когда операция требует активной транзакции
	ErrNoTransaction = errors.New("booking.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
