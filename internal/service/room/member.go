package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/internal/repository/connection"
)

type ConnectMemberParams struct {
	ConnectionId string
	Conn         connection.Conn
}

func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) error {
	if err := validation.Validate(params.ConnectionId, ConnectionIdRule...); err != nil {
		return fmt.Errorf("%w: connection_id: %w", ErrValidation, err)
	}

	if err := s.connRepo.Add(ctx, params.ConnectionId, params.Conn); err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}

	return nil
}

type DisconnectMemberParams struct {
	ConnectionId string
}

// DisconnectMember forgets the connection and runs an implicit leave for the
// room it was in.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (LeaveRoomResponse, error) {
	roomCode, err := s.connRepo.Remove(ctx, params.ConnectionId)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return LeaveRoomResponse{}, nil
		}
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove connection: %w", err)
	}

	if roomCode == "" {
		return LeaveRoomResponse{}, nil
	}

	leaveResp, err := s.LeaveRoom(ctx, &LeaveRoomParams{
		ConnectionId: params.ConnectionId,
		RoomCode:     roomCode,
	})
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to leave room: %w", err)
	}

	return leaveResp, nil
}

type JoinRoomParams struct {
	ConnectionId string
	RoomCode     string
	DisplayName  string
}

type JoinRoomResponse struct {
	IsAdmin  bool
	Snapshot domain.Snapshot
	// Rehydrated is set when the connection was already a member and only got the snapshot again.
	Rehydrated bool
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	displayName := strings.TrimSpace(params.DisplayName)
	if err := validation.Validate(params.RoomCode, RoomCodeRule...); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("%w: room_code: %w", ErrValidation, err)
	}
	if err := validation.Validate(displayName, DisplayNameRule...); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("%w: display_name: %w", ErrValidation, err)
	}
	if displayName == "" {
		displayName = s.defaultDisplayName()
	}

	rm, err := s.getRoom(ctx, params.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	current, err := s.connRepo.GetRoom(params.ConnectionId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get connection room: %w", err)
	}
	if current != "" && current != params.RoomCode {
		// keep the current membership when the target is already gone
		if err := rm.Do(func(*domain.State) error { return nil }); err != nil {
			return JoinRoomResponse{}, mapRoomErr(err)
		}
		if _, err := s.LeaveRoom(ctx, &LeaveRoomParams{
			ConnectionId: params.ConnectionId,
			RoomCode:     current,
		}); err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to leave previous room: %w", err)
		}
	}

	var resp JoinRoomResponse
	err = rm.Do(func(st *domain.State) error {
		if st.HasMember(params.ConnectionId) {
			resp = JoinRoomResponse{
				IsAdmin:    st.IsAdmin(params.ConnectionId),
				Snapshot:   st.Snapshot(),
				Rehydrated: true,
			}
			return s.connRepo.Send(ctx, params.ConnectionId, protocol.StateSnapshot(params.ConnectionId, resp.IsAdmin, resp.Snapshot))
		}

		if err := s.connRepo.SetRoom(params.ConnectionId, st.Code()); err != nil {
			return fmt.Errorf("failed to set connection room: %w", err)
		}

		isAdmin, err := st.Join(domain.Member{
			ConnectionId: params.ConnectionId,
			DisplayName:  displayName,
			JoinedAt:     s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to join: %w", err)
		}

		resp = JoinRoomResponse{
			IsAdmin:  isAdmin,
			Snapshot: st.Snapshot(),
		}

		if err := s.connRepo.Send(ctx, params.ConnectionId, protocol.StateSnapshot(params.ConnectionId, isAdmin, resp.Snapshot)); err != nil {
			s.logger.WarnContext(ctx, "failed to send snapshot", "error", err)
		}

		return s.connRepo.Broadcast(ctx, st.MemberIds(), protocol.MembershipChanged(st.Members(), st.AdminId(), st.Version()))
	})
	if err != nil {
		return JoinRoomResponse{}, mapRoomErr(err)
	}

	s.logger.InfoContext(ctx, "member joined",
		"room_code", params.RoomCode,
		"is_admin", resp.IsAdmin,
		"rehydrated", resp.Rehydrated,
	)

	return resp, nil
}

type LeaveRoomParams struct {
	ConnectionId string
	// RoomCode defaults to the room the connection is currently in.
	RoomCode string
}

type LeaveRoomResponse struct {
	WasMember     bool
	WasAdmin      bool
	NewAdminId    string
	Remaining     int
	IsRoomDeleted bool
}

// LeaveRoom is idempotent: leaving a room the connection is not in, or a room
// that no longer exists, succeeds without effect.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	code, err := s.roomCodeOf(params.ConnectionId, params.RoomCode)
	if err != nil && !errors.Is(err, connection.ErrNotFound) {
		return LeaveRoomResponse{}, err
	}
	if code == "" {
		return LeaveRoomResponse{}, nil
	}

	rm, err := s.getRoom(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return LeaveRoomResponse{}, nil
		}
		return LeaveRoomResponse{}, err
	}

	var resp LeaveRoomResponse
	err = rm.Do(func(st *domain.State) error {
		res, err := st.Leave(params.ConnectionId, s.now())
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				return nil
			}
			return fmt.Errorf("failed to leave: %w", err)
		}

		resp = LeaveRoomResponse{
			WasMember:  true,
			WasAdmin:   res.WasAdmin,
			NewAdminId: res.NewAdminId,
			Remaining:  res.Remaining,
		}

		// the connection may already be gone on disconnect
		if err := s.connRepo.SetRoom(params.ConnectionId, ""); err != nil && !errors.Is(err, connection.ErrNotFound) {
			return fmt.Errorf("failed to clear connection room: %w", err)
		}

		if res.Remaining == 0 {
			st.Close()
			s.roomRepo.DeleteRoom(ctx, rm)
			resp.IsRoomDeleted = true
			return nil
		}

		memberIds := st.MemberIds()
		if res.AdminChanged() {
			if err := s.connRepo.Broadcast(ctx, memberIds, protocol.AdminTransferred(res.NewAdminId)); err != nil {
				return fmt.Errorf("failed to broadcast admin transferred: %w", err)
			}
		}

		return s.connRepo.Broadcast(ctx, memberIds, protocol.MembershipChanged(st.Members(), st.AdminId(), st.Version()))
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomClosed) {
			return LeaveRoomResponse{}, nil
		}
		return LeaveRoomResponse{}, err
	}

	if resp.WasMember {
		s.logger.InfoContext(ctx, "member left",
			"room_code", code,
			"was_admin", resp.WasAdmin,
			"new_admin_id", resp.NewAdminId,
			"remaining", resp.Remaining,
			"room_deleted", resp.IsRoomDeleted,
		)
	}

	return resp, nil
}
