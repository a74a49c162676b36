package lifecycle

import (
	"fmt"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Authorize проверяет, что actor может применить событие к бронированию.
//
//   - accept, reject, complete: адвокат бронирования
//   - cancel: заявитель; адвокат только если бронирование уже не pending
//   - no_show: адвокат бронирования или система
func Authorize(b *domain.Booking, event domain.Event, actor domain.Actor) error {
	isAttorney := actor.Role == domain.RoleAttorney && actor.UserID == b.AttorneyID
	isRequester := actor.Role != domain.RoleSystem && actor.UserID == b.RequesterID

	var allowed bool
	switch event {
	case domain.EventAccept, domain.EventReject, domain.EventComplete:
		allowed = isAttorney
	case domain.EventCancel:
		allowed = isRequester || (isAttorney && b.Status != domain.StatusPending)
	case domain.EventNoShow:
		allowed = isAttorney || actor.IsSystem()
	default:
		return domain.NewValidationError("event", fmt.Sprintf("unknown event %q", event))
	}

	if !allowed {
		return fmt.Errorf("%w: %s %s may not %s booking %s", domain.ErrForbidden, actor.Role, actor.UserID, event, b.ID)
	}
	return nil
}

// CanView проверяет, что actor может видеть бронирование
func CanView(b *domain.Booking, actor domain.Actor) bool {
	return actor.IsSystem() || b.IsOwnedBy(actor.UserID)
}
