package inmemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marufkhan776/chillman/internal/repository/connection"
)

type entry struct {
	conn     connection.Conn
	roomCode string
}

type repo struct {
	conns  map[string]*entry
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		conns:  make(map[string]*entry),
		logger: logger,
	}
}

func (r *repo) Add(ctx context.Context, connectionId string, conn connection.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connectionId]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[connectionId] = &entry{conn: conn}
	r.logger.DebugContext(ctx, "connection added", "connections", len(r.conns))
	return nil
}

// Remove forgets the connection and returns the room it was a member of, if any.
// Once removed, SetRoom for the id fails, so a concurrent join cannot attach it to a room.
func (r *repo) Remove(ctx context.Context, connectionId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connectionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.conns, connectionId)
	r.logger.DebugContext(ctx, "connection removed", "connections", len(r.conns))
	return e.roomCode, nil
}

// SetRoom records the room the connection is a member of. An empty code clears it.
func (r *repo) SetRoom(connectionId, roomCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connectionId]
	if !ok {
		return connection.ErrNotFound
	}

	e.roomCode = roomCode
	return nil
}

func (r *repo) GetRoom(connectionId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[connectionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	return e.roomCode, nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

func (r *repo) Send(ctx context.Context, connectionId string, output any) error {
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	r.mu.RLock()
	e, ok := r.conns[connectionId]
	r.mu.RUnlock()
	if !ok {
		return connection.ErrNotFound
	}

	r.deliver(ctx, connectionId, e.conn, data)
	return nil
}

// Broadcast marshals output once and enqueues it for every known connection in
// connectionIds. Unknown ids are skipped.
func (r *repo) Broadcast(ctx context.Context, connectionIds []string, output any) error {
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	r.mu.RLock()
	targets := make(map[string]connection.Conn, len(connectionIds))
	for _, id := range connectionIds {
		if e, ok := r.conns[id]; ok {
			targets[id] = e.conn
		}
	}
	r.mu.RUnlock()

	for _, id := range connectionIds {
		if conn, ok := targets[id]; ok {
			r.deliver(ctx, id, conn, data)
		}
	}

	return nil
}

// deliver closes connections that cannot keep up. The read side of the closed
// connection then runs the regular disconnect path.
func (r *repo) deliver(ctx context.Context, connectionId string, conn connection.Conn, data []byte) {
	err := conn.Send(data)
	if err == nil || errors.Is(err, connection.ErrClosed) {
		return
	}

	r.logger.WarnContext(ctx, "dropping slow connection", "connection_id", connectionId, "error", err)
	conn.Close()
}
