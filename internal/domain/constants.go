package domain

import (
	// IANA database is embedded so attorney timezones resolve on minimal images
	_ "time/tzdata"
)

// Default policy values
const (
	DefaultBufferMinutes       = 15
	DefaultMinDurationMinutes  = 30
	DefaultMaxDurationMinutes  = 90
	DefaultAdvanceBookingDays  = 14
	DefaultPageLimit           = 20
	MaxPageLimit               = 100
	MaxPage                    = 100000 // keeps (page-1)*limit far from int overflow
	DefaultAvailabilityHorizon = 7 // days returned by available-slots when "to" is omitted
)

// Business validation constants
const (
	MinConsultationMinutes      = 5
	MaxConsultationMinutes      = 480
	MaxBufferMinutes            = 240
	MaxAdvanceBookingDays       = 365
	MaxTopicLength              = 200
	MaxDescriptionLength        = 2000
	MaxDocuments                = 10
	MaxCancellationReasonLength = 500
	MaxIdempotencyKeyLength     = 128
)

// ActiveStatuses statuses whose interval blocks new reservations
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses statuses with no outgoing transitions
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}
