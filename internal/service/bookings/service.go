package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование могут только его заявитель и адвокат.
func (s *Service) GetByID(ctx context.Context, id string, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, actor.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, ErrBookingNotFound)
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, s.repositoryError("GetByID", err)
	}

	if !lifecycle.CanView(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", actor.UserID, id)
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, ErrAccessDenied)
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// List получает страницу бронирований вызывающего в порядке start ASC, id ASC.
// Адвокат видит бронирования к себе, клиент свои заявки.
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("List: fetching bookings for user=%s role=%s status=%v page=%d limit=%d",
		req.Actor.UserID, req.Actor.Role, req.Status, req.Page, req.Limit)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for user=%s: %v", req.Actor.UserID, err)
		return nil, err
	}

	bookings, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for user=%s: %v", req.Actor.UserID, err)
		return nil, s.repositoryError("List", err)
	}

	s.logger.Info("List: fetched %d of %d bookings for user=%s", len(bookings), total, req.Actor.UserID)
	return models.FromDomainBookingList(bookings, domain.NewPagination(filter.Page, filter.Limit, total)), nil
}

func (s *Service) repositoryError(op string, err error) error {
	if errors.Is(err, domain.ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
