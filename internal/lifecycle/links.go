package lifecycle

import (
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// RoomLinkProvider выдает ссылки вида <base>/<mode>/<room uuid>
type RoomLinkProvider struct {
	baseURL string
}

func NewRoomLinkProvider(baseURL string) *RoomLinkProvider {
	return &RoomLinkProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *RoomLinkProvider) NewLink(b *domain.Booking) (string, error) {
	return p.baseURL + "/" + string(b.ConsultationMode) + "/" + uuid.NewString(), nil
}
