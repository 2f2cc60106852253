package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/repository/connection"
	"github.com/marufkhan776/chillman/internal/repository/room"
	"github.com/marufkhan776/chillman/pkg/randstr"
	"github.com/marufkhan776/chillman/pkg/ytvideodata"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidVideo     = errors.New("invalid video")
	ErrValidation       = errors.New("validation error")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) *domain.Room
	GetRoom(context.Context, string) (*domain.Room, error)
	DeleteRoom(context.Context, *domain.Room)
	Rooms(context.Context) []*domain.Room
	Count() int
}

type iConnRepo interface {
	Add(context.Context, string, connection.Conn) error
	Remove(context.Context, string) (string, error)
	SetRoom(connectionId string, roomCode string) error
	GetRoom(connectionId string) (string, error)
	Send(ctx context.Context, connectionId string, output any) error
	Broadcast(ctx context.Context, connectionIds []string, output any) error
	Count() int
}

type iVideoData interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	// RoomRetention is how long a room with no members is kept before the reaper removes it.
	RoomRetention time.Duration
}

type service struct {
	roomRepo      iRoomRepo
	connRepo      iConnRepo
	videoData     iVideoData
	generator     iGenerator
	roomRetention time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewService builds the room service. videoData may be nil, in which case videos
// are accepted without a title lookup.
func NewService(roomRepo iRoomRepo, connRepo iConnRepo, videoData iVideoData, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:      roomRepo,
		connRepo:      connRepo,
		videoData:     videoData,
		generator:     randstr.New([]byte("0123456789")),
		roomRetention: cfg.RoomRetention,
		now:           time.Now,
		logger:        logger,
	}
}
