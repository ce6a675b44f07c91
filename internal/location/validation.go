package location

import (
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

// Column widths from the schema.
const (
	maxHomeNameLength = 255
	maxAddressLength  = 255
	maxRoomNameLength = 255
)

// ValidateHome checks a home before persistence. Name is trimmed in place.
func ValidateHome(h *Home) error {
	errs := validation.Errors{}
	h.Name = strings.TrimSpace(h.Name)
	errs.Required("name", h.Name, maxHomeNameLength)
	if h.Address != nil {
		errs.MaxLen("address", *h.Address, maxAddressLength)
	}
	return errs.Err()
}

// ValidateRoom checks a room before persistence. Name is trimmed in place.
func ValidateRoom(r *Room) error {
	errs := validation.Errors{}
	r.Name = strings.TrimSpace(r.Name)
	errs.PositiveID("home_id", r.HomeID)
	errs.Required("name", r.Name, maxRoomNameLength)
	return errs.Err()
}
