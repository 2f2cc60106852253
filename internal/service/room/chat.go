package room

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/protocol"
)

type SendChatParams struct {
	ConnectionId string
	// RoomCode defaults to the room the connection is currently in.
	RoomCode string
	Message  string
}

type SendChatResponse struct {
	Recipients int
}

// SendChat relays a chat line to every member of the sender's room. Message
// text is passed through as is; rendering it safely is up to clients.
func (s service) SendChat(ctx context.Context, params *SendChatParams) (SendChatResponse, error) {
	if err := validation.Validate(params.Message, ChatMessageRule...); err != nil {
		return SendChatResponse{}, fmt.Errorf("%w: message: %w", ErrValidation, err)
	}

	code, err := s.roomCodeOf(params.ConnectionId, params.RoomCode)
	if err != nil {
		return SendChatResponse{}, err
	}
	if code == "" {
		return SendChatResponse{}, ErrRoomNotFound
	}

	rm, err := s.getRoom(ctx, code)
	if err != nil {
		return SendChatResponse{}, err
	}

	var resp SendChatResponse
	err = rm.Do(func(st *domain.State) error {
		sender, ok := st.Member(params.ConnectionId)
		if !ok {
			return ErrRoomNotFound
		}

		memberIds := st.MemberIds()
		resp.Recipients = len(memberIds)

		return s.connRepo.Broadcast(ctx, memberIds, protocol.ChatMessage(sender, params.Message, s.now()))
	})
	if err != nil {
		return SendChatResponse{}, mapRoomErr(err)
	}

	s.logger.DebugContext(ctx, "chat message relayed", "room_code", code, "recipients", resp.Recipients)

	return resp, nil
}
