// Package protocol defines the messages exchanged with clients over the websocket.
package protocol

import (
	"time"

	"github.com/marufkhan776/chillman/internal/domain"
)

// inbound message types
const (
	TypeJoinRoom  = "JOIN_ROOM"
	TypeLeaveRoom = "LEAVE_ROOM"
	TypeControl   = "CONTROL"
	TypeAlive     = "ALIVE"
)

// TypeChatMessage is used in both directions.
const TypeChatMessage = "CHAT_MESSAGE"


// outbound message types
const (
	TypeStateSnapshot     = "STATE_SNAPSHOT"
	TypeMembershipChanged = "MEMBERSHIP_CHANGED"
	TypePlaybackSync      = "PLAYBACK_SYNC"
	TypeAdminTransferred  = "ADMIN_TRANSFERRED"
	TypeOperationRejected = "OPERATION_REJECTED"
)

type Action string

const (
	ActionPlay        Action = "play"
	ActionPause       Action = "pause"
	ActionSeek        Action = "seek"
	ActionChangeVideo Action = "changeVideo"
)

type Reason string

const (
	ReasonNotAdmin       Reason = "notAdmin"
	ReasonInvalidVideo   Reason = "invalidVideo"
	ReasonRoomNotFound   Reason = "roomNotFound"
	ReasonMalformedEvent Reason = "malformedEvent"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StateSnapshotPayload struct {
	ConnectionId string          `json:"connection_id"`
	IsAdmin      bool            `json:"is_admin"`
	Room         domain.Snapshot `json:"room"`
}

type MembershipChangedPayload struct {
	Members []domain.Member `json:"members"`
	AdminId string          `json:"admin_id"`
	Version int             `json:"version"`
}

type PlaybackSyncPayload struct {
	Action    Action       `json:"action"`
	Position  float64      `json:"position"`
	IsPlaying bool         `json:"is_playing"`
	Video     domain.Video `json:"video"`
	Version   int          `json:"version"`
}

type AdminTransferredPayload struct {
	AdminId string `json:"admin_id"`
}

type ChatMessagePayload struct {
	ConnectionId string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Message      string    `json:"message"`
	Time         time.Time `json:"time"`
}

type OperationRejectedPayload struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message,omitempty"`
}

func StateSnapshot(connectionId string, isAdmin bool, snapshot domain.Snapshot) *Output {
	return &Output{
		Type: TypeStateSnapshot,
		Payload: StateSnapshotPayload{
			ConnectionId: connectionId,
			IsAdmin:      isAdmin,
			Room:         snapshot,
		},
	}
}

func MembershipChanged(members []domain.Member, adminId string, version int) *Output {
	return &Output{
		Type: TypeMembershipChanged,
		Payload: MembershipChangedPayload{
			Members: members,
			AdminId: adminId,
			Version: version,
		},
	}
}

func PlaybackSync(action Action, player domain.Player, version int) *Output {
	return &Output{
		Type: TypePlaybackSync,
		Payload: PlaybackSyncPayload{
			Action:    action,
			Position:  player.Position,
			IsPlaying: player.IsPlaying,
			Video:     player.Video,
			Version:   version,
		},
	}
}

func AdminTransferred(adminId string) *Output {
	return &Output{Type: TypeAdminTransferred, Payload: AdminTransferredPayload{AdminId: adminId}}
}

func ChatMessage(sender domain.Member, message string, at time.Time) *Output {
	return &Output{
		Type: TypeChatMessage,
		Payload: ChatMessagePayload{
			ConnectionId: sender.ConnectionId,
			DisplayName:  sender.DisplayName,
			Message:      message,
			Time:         at,
		},
	}
}

func OperationRejected(reason Reason, message string) *Output {
	return &Output{
		Type:    TypeOperationRejected,
		Payload: OperationRejectedPayload{Reason: reason, Message: message},
	}
}
