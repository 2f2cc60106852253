package domain

import (
	"errors"
	"sync"
	"time"
)

// ErrRoomClosed is returned for any operation on a room that has been destroyed.
var ErrRoomClosed = errors.New("room closed")

type Snapshot struct {
	Code      string    `json:"code"`
	Video     Video     `json:"video"`
	Position  float64   `json:"position"`
	IsPlaying bool      `json:"is_playing"`
	AdminId   string    `json:"admin_id"`
	Members   []Member  `json:"members"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LeaveResult struct {
	WasAdmin   bool
	NewAdminId string
	Remaining  int
}

// AdminChanged reports whether authority moved to another member.
func (r LeaveResult) AdminChanged() bool {
	return r.WasAdmin && r.NewAdminId != ""
}

// State is the mutable part of a room. It is only reachable through Room.Do.
type State struct {
	code       string
	createdAt  time.Time
	player     Player
	adminId    string
	members    Members
	version    int
	emptySince time.Time
	closed     bool
}

type Room struct {
	code  string
	mu    sync.Mutex
	state State
}

func NewRoom(code string, video Video, now time.Time) *Room {
	return &Room{
		code: code,
		state: State{
			code:       code,
			createdAt:  now,
			player:     NewPlayer(video, now),
			emptySince: now,
		},
	}
}

func (r *Room) Code() string {
	return r.code
}

// Do runs fn with exclusive access to the room state. Everything fn does,
// including enqueueing broadcasts, is ordered with respect to every other Do.
func (r *Room) Do(fn func(s *State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.closed {
		return ErrRoomClosed
	}

	return fn(&r.state)
}

func (s *State) Code() string {
	return s.code
}

func (s *State) AdminId() string {
	return s.adminId
}

func (s *State) IsAdmin(connectionId string) bool {
	return connectionId != "" && s.adminId == connectionId
}

func (s *State) HasMember(connectionId string) bool {
	_, _, err := s.members.GetById(connectionId)
	return err == nil
}

func (s *State) Member(connectionId string) (Member, bool) {
	member, _, err := s.members.GetById(connectionId)
	return member, err == nil
}

func (s *State) Members() []Member {
	return s.members.AsList()
}

func (s *State) MemberIds() []string {
	ids := make([]string, 0, s.members.Length())
	for _, member := range s.members.list {
		ids = append(ids, member.ConnectionId)
	}
	return ids
}

func (s *State) MemberCount() int {
	return s.members.Length()
}

func (s *State) Player() Player {
	return s.player
}

func (s *State) Version() int {
	return s.version
}

// Join appends member. The first member of an empty room becomes its admin.
func (s *State) Join(member Member) (bool, error) {
	if err := s.members.Add(member); err != nil {
		return false, err
	}

	if s.members.Length() == 1 {
		s.adminId = member.ConnectionId
	}
	s.emptySince = time.Time{}
	s.version++

	return s.IsAdmin(member.ConnectionId), nil
}

// Leave removes connectionId, promoting a new admin if needed.
func (s *State) Leave(connectionId string, now time.Time) (LeaveResult, error) {
	wasAdmin := s.IsAdmin(connectionId)

	remaining, newAdminId, removed := RemoveMember(s.members.list, s.adminId, connectionId)
	if !removed {
		return LeaveResult{}, ErrMemberNotFound
	}

	s.members.list = remaining
	s.adminId = newAdminId
	if len(remaining) == 0 {
		s.emptySince = now
	}
	s.version++

	result := LeaveResult{
		WasAdmin:  wasAdmin,
		Remaining: len(remaining),
	}
	if wasAdmin {
		result.NewAdminId = newAdminId
	}

	return result, nil
}

func (s *State) Play(position *float64, now time.Time) error {
	if err := s.player.Play(position, now); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *State) Pause(position *float64, now time.Time) error {
	if err := s.player.Pause(position, now); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *State) Seek(position float64, now time.Time) error {
	if err := s.player.Seek(position, now); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *State) ChangeVideo(video Video, now time.Time) {
	s.player.ChangeVideo(video, now)
	s.version++
}

// IdleFor reports how long the room has had no members.
func (s *State) IdleFor(now time.Time) (time.Duration, bool) {
	if s.members.Length() > 0 {
		return 0, false
	}

	return now.Sub(s.emptySince), true
}

// Close marks the room destroyed; later calls to Room.Do fail with ErrRoomClosed.
func (s *State) Close() {
	s.closed = true
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Code:      s.code,
		Video:     s.player.Video,
		Position:  s.player.Position,
		IsPlaying: s.player.IsPlaying,
		AdminId:   s.adminId,
		Members:   s.members.AsList(),
		Version:   s.version,
		CreatedAt: s.createdAt,
		UpdatedAt: s.player.UpdatedAt,
	}
}
