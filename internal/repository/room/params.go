package room

import (
	"time"

	"github.com/marufkhan776/chillman/internal/domain"
)

type CreateRoomParams struct {
	Video     domain.Video
	CreatedAt time.Time
}
