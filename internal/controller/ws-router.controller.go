package controller

import (
	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())

	wsrouter.Handle(mux, protocol.TypeAlive, c.handleAlive)

	// membership
	wsrouter.Handle(mux, protocol.TypeJoinRoom, c.handleJoinRoom)
	wsrouter.Handle(mux, protocol.TypeLeaveRoom, c.handleLeaveRoom)

	// playback
	wsrouter.Handle(mux, protocol.TypeControl, c.handleControl)

	// chat
	wsrouter.Handle(mux, protocol.TypeChatMessage, c.handleChatMessage)

	return mux
}
