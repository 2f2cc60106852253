package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/repository/room"
)

func (s service) getRoom(ctx context.Context, code string) (*domain.Room, error) {
	rm, err := s.roomRepo.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return rm, nil
}

// roomCodeOf returns code, or the room the connection is currently in when code is empty.
func (s service) roomCodeOf(connectionId, code string) (string, error) {
	if code != "" {
		return code, nil
	}

	current, err := s.connRepo.GetRoom(connectionId)
	if err != nil {
		return "", fmt.Errorf("failed to get connection room: %w", err)
	}

	return current, nil
}

func mapRoomErr(err error) error {
	if errors.Is(err, domain.ErrRoomClosed) {
		return ErrRoomNotFound
	}
	return err
}

func (s service) defaultDisplayName() string {
	return "User-" + s.generator.GenerateRandomString(4)
}
