package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/ctxlogger"
)

type EmptyInput struct{}

// serveWS upgrades the request and runs the connection until the socket closes.
// Losing the socket is an implicit leave.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	connectionId := uuid.NewString()
	cl := newClient(connectionId, ws, c.logger)

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("connection_id", connectionId))
	ctx = context.WithValue(ctx, connectionIdCtxKey, connectionId)
	ctx = context.WithValue(ctx, clientCtxKey, cl)

	if err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		ConnectionId: connectionId,
		Conn:         cl,
	}); err != nil {
		c.logger.ErrorContext(ctx, "failed to connect member", "error", err)
		ws.Close()
		return
	}

	go cl.writePump()
	c.logger.InfoContext(ctx, "client connected")

	cl.readPump(ctx, c.handleMessage)
	cl.Close()

	// the request context may already be done once the socket is gone
	disconnectCtx := context.WithoutCancel(ctx)
	if _, err := c.roomService.DisconnectMember(disconnectCtx, &room.DisconnectMemberParams{
		ConnectionId: connectionId,
	}); err != nil {
		c.logger.ErrorContext(disconnectCtx, "failed to disconnect member", "error", err)
	}

	c.logger.InfoContext(disconnectCtx, "client disconnected")
}

func (c controller) handleMessage(ctx context.Context, data []byte) {
	err := c.wsmux.ServeMessage(ctx, data)
	if err == nil {
		return
	}

	reason, ok := rejectionReason(err)
	if !ok {
		c.logger.ErrorContext(ctx, "failed to handle message", "error", err)
		return
	}

	c.logger.InfoContext(ctx, "operation rejected", "reason", reason, "error", err)
	if err := c.writeToClient(ctx, protocol.OperationRejected(reason, err.Error())); err != nil {
		c.logger.WarnContext(ctx, "failed to send rejection", "error", err)
	}
}

func (c controller) handleAlive(_ context.Context, _ EmptyInput) error {
	return nil
}

type JoinRoomInput struct {
	RoomCode    string `json:"room_code"`
	DisplayName string `json:"display_name"`
}

func (c controller) handleJoinRoom(ctx context.Context, input JoinRoomInput) error {
	if _, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		RoomCode:     normalizeRoomCode(input.RoomCode),
		DisplayName:  input.DisplayName,
	}); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

type LeaveRoomInput struct {
	RoomCode string `json:"room_code"`
}

func (c controller) handleLeaveRoom(ctx context.Context, input LeaveRoomInput) error {
	if _, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		RoomCode:     normalizeRoomCode(input.RoomCode),
	}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

type ControlInput struct {
	RoomCode string          `json:"room_code"`
	Action   protocol.Action `json:"action"`
	Position *float64        `json:"position"`
	VideoURL *string         `json:"video_url"`
}

func (c controller) handleControl(ctx context.Context, input ControlInput) error {
	if _, err := c.roomService.Control(ctx, &room.ControlParams{
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		RoomCode:     normalizeRoomCode(input.RoomCode),
		Action:       input.Action,
		Position:     input.Position,
		VideoURL:     input.VideoURL,
	}); err != nil {
		return fmt.Errorf("failed to apply control: %w", err)
	}

	return nil
}

type ChatMessageInput struct {
	RoomCode string `json:"room_code"`
	Message  string `json:"message"`
}

func (c controller) handleChatMessage(ctx context.Context, input ChatMessageInput) error {
	if _, err := c.roomService.SendChat(ctx, &room.SendChatParams{
		ConnectionId: c.getConnectionIdFromCtx(ctx),
		RoomCode:     normalizeRoomCode(input.RoomCode),
		Message:      input.Message,
	}); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	return nil
}
