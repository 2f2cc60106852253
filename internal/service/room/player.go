package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/protocol"
)

type ControlParams struct {
	ConnectionId string
	// RoomCode defaults to the room the connection is currently in.
	RoomCode string
	Action   protocol.Action
	Position *float64
	VideoURL *string
}

type ControlResponse struct {
	Player  domain.Player
	Version int
}

// Control applies a playback action from the room admin and broadcasts the
// resulting state to every member, the admin included. Authority is checked
// before anything else; a rejected action leaves the room untouched.
func (s service) Control(ctx context.Context, params *ControlParams) (ControlResponse, error) {
	code, err := s.roomCodeOf(params.ConnectionId, params.RoomCode)
	if err != nil {
		return ControlResponse{}, err
	}
	if code == "" {
		return ControlResponse{}, ErrRoomNotFound
	}

	rm, err := s.getRoom(ctx, code)
	if err != nil {
		return ControlResponse{}, err
	}

	if err := s.checkIfMemberAdmin(rm, params.ConnectionId); err != nil {
		return ControlResponse{}, err
	}

	if err := validateControl(params); err != nil {
		return ControlResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var video domain.Video
	if params.Action == protocol.ActionChangeVideo {
		video, err = s.resolveVideo(ctx, *params.VideoURL)
		if err != nil {
			return ControlResponse{}, fmt.Errorf("failed to resolve video: %w", err)
		}
	}

	var resp ControlResponse
	err = rm.Do(func(st *domain.State) error {
		// authority may have moved while the video was being resolved
		if !st.IsAdmin(params.ConnectionId) {
			return ErrPermissionDenied
		}

		now := s.now()
		var err error
		switch params.Action {
		case protocol.ActionPlay:
			err = st.Play(params.Position, now)
		case protocol.ActionPause:
			err = st.Pause(params.Position, now)
		case protocol.ActionSeek:
			err = st.Seek(*params.Position, now)
		case protocol.ActionChangeVideo:
			st.ChangeVideo(video, now)
		}
		if err != nil {
			if errors.Is(err, domain.ErrInvalidPosition) {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			return err
		}

		resp = ControlResponse{
			Player:  st.Player(),
			Version: st.Version(),
		}

		return s.connRepo.Broadcast(ctx, st.MemberIds(), protocol.PlaybackSync(params.Action, resp.Player, resp.Version))
	})
	if err != nil {
		return ControlResponse{}, mapRoomErr(err)
	}

	s.logger.DebugContext(ctx, "playback updated",
		"room_code", code,
		"action", params.Action,
		"position", resp.Player.Position,
		"is_playing", resp.Player.IsPlaying,
		"version", resp.Version,
	)

	return resp, nil
}

func (s service) checkIfMemberAdmin(rm *domain.Room, connectionId string) error {
	var isAdmin bool
	if err := rm.Do(func(st *domain.State) error {
		isAdmin = st.IsAdmin(connectionId)
		return nil
	}); err != nil {
		return mapRoomErr(err)
	}

	if !isAdmin {
		return ErrPermissionDenied
	}

	return nil
}
