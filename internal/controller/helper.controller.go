package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/wsrouter"
)

func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// clientAddr is the address rate limits are keyed on. With a trusted proxy
// RealIP has already rewritten RemoteAddr from the forwarding headers.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func rejectionReason(err error) (protocol.Reason, bool) {
	switch {
	case errors.Is(err, room.ErrPermissionDenied):
		return protocol.ReasonNotAdmin, true
	case errors.Is(err, room.ErrRoomNotFound):
		return protocol.ReasonRoomNotFound, true
	case errors.Is(err, room.ErrInvalidVideo):
		return protocol.ReasonInvalidVideo, true
	case errors.Is(err, room.ErrValidation),
		errors.Is(err, wsrouter.ErrMalformedMessage),
		errors.Is(err, wsrouter.ErrUnknownMessageType):
		return protocol.ReasonMalformedEvent, true
	}

	return "", false
}

func (c controller) writeToClient(ctx context.Context, output *protocol.Output) error {
	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return errors.New("no client in context")
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	return cl.Send(data)
}
