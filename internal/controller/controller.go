package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/ratelimit"
	"github.com/marufkhan776/chillman/pkg/validator"
	"github.com/marufkhan776/chillman/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(context.Context, string) (room.GetRoomResponse, error)
	Stats(context.Context) room.StatsResponse
	ConnectMember(context.Context, *room.ConnectMemberParams) error
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.LeaveRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	Control(context.Context, *room.ControlParams) (room.ControlResponse, error)
	SendChat(context.Context, *room.SendChatParams) (room.SendChatResponse, error)
}

type Config struct {
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it when the server is reachable solely through a proxy that sets them.
	TrustProxy bool
}

type controller struct {
	roomService iRoomService
	createLimit ratelimit.Limiter
	trustProxy  bool
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

// NewController wires the http and websocket surface. createLimit throttles room
// creation per client address.
func NewController(roomService iRoomService, createLimit ratelimit.Limiter, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		createLimit: createLimit,
		trustProxy:  cfg.TrustProxy,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
