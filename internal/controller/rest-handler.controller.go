package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/rest"
)

type createRoomRequest struct {
	VideoURL string `json:"video_url" validate:"required,max=2048"`
}

type createRoomResponse struct {
	RoomCode string       `json:"room_code"`
	Video    domain.Video `json:"video"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		VideoURL: req.VideoURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, room.ErrInvalidVideo):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": protocol.ReasonInvalidVideo, "message": err.Error()})
		case errors.Is(err, room.ErrValidation):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": protocol.ReasonMalformedEvent, "message": err.Error()})
		default:
			c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": createRoomResponse{
		RoomCode: resp.RoomCode,
		Video:    resp.Video,
	}})
}

type getRoomResponse struct {
	RoomCode string       `json:"room_code"`
	Members  int          `json:"members"`
	Video    domain.Video `json:"video"`
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	code := normalizeRoomCode(chi.URLParam(r, "room-code"))

	resp, err := c.roomService.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": protocol.ReasonRoomNotFound})
			return
		}
		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": getRoomResponse{
		RoomCode: resp.RoomCode,
		Members:  resp.MembersCount,
		Video:    resp.Video,
	}})
}

func (c controller) getStats(w http.ResponseWriter, r *http.Request) {
	stats := c.roomService.Stats(r.Context())

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"rooms":       stats.Rooms,
		"members":     stats.Members,
		"connections": stats.Connections,
	})
}
