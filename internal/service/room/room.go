package room

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/repository/room"
)

type CreateRoomParams struct {
	VideoURL string
}

type CreateRoomResponse struct {
	RoomCode string
	Video    domain.Video
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if err := validation.Validate(params.VideoURL, VideoUrlRule...); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("%w: video_url: %w", ErrValidation, err)
	}

	video, err := s.resolveVideo(ctx, params.VideoURL)
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to resolve video: %w", err)
	}

	rm := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		Video:     video,
		CreatedAt: s.now(),
	})

	s.logger.InfoContext(ctx, "room created", "room_code", rm.Code(), "video_kind", video.Kind)

	return CreateRoomResponse{
		RoomCode: rm.Code(),
		Video:    video,
	}, nil
}

type GetRoomResponse struct {
	RoomCode     string
	MembersCount int
	Video        domain.Video
}

func (s service) GetRoom(ctx context.Context, code string) (GetRoomResponse, error) {
	if err := validation.Validate(code, RoomCodeRule...); err != nil {
		return GetRoomResponse{}, ErrRoomNotFound
	}

	rm, err := s.getRoom(ctx, code)
	if err != nil {
		return GetRoomResponse{}, err
	}

	var resp GetRoomResponse
	if err := rm.Do(func(st *domain.State) error {
		resp = GetRoomResponse{
			RoomCode:     st.Code(),
			MembersCount: st.MemberCount(),
			Video:        st.Player().Video,
		}
		return nil
	}); err != nil {
		return GetRoomResponse{}, mapRoomErr(err)
	}

	return resp, nil
}

type StatsResponse struct {
	Rooms       int
	Members     int
	Connections int
}

func (s service) Stats(ctx context.Context) StatsResponse {
	stats := StatsResponse{
		Rooms:       s.roomRepo.Count(),
		Connections: s.connRepo.Count(),
	}

	for _, rm := range s.roomRepo.Rooms(ctx) {
		rm.Do(func(st *domain.State) error {
			stats.Members += st.MemberCount()
			return nil
		})
	}

	return stats
}

// ReapIdleRooms removes rooms that have had no members for longer than the retention window.
func (s service) ReapIdleRooms(ctx context.Context) int {
	now := s.now()
	reaped := 0

	for _, rm := range s.roomRepo.Rooms(ctx) {
		rm.Do(func(st *domain.State) error {
			idle, ok := st.IdleFor(now)
			if !ok || idle <= s.roomRetention {
				return nil
			}

			st.Close()
			s.roomRepo.DeleteRoom(ctx, rm)
			reaped++
			return nil
		})
	}

	if reaped > 0 {
		s.logger.InfoContext(ctx, "idle rooms reaped", "count", reaped)
	}

	return reaped
}

func (s service) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ReapIdleRooms(ctx)
		}
	}
}
