package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/internal/repository/room"
	"github.com/marufkhan776/chillman/pkg/randstr"
	"golang.org/x/exp/maps"
)

// CodeAlphabet leaves out characters that are easy to confuse when read aloud (I, O, 0, 1).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	CodeLength int
	MaxRetries int
}

type repo struct {
	rooms       map[string]*domain.Room
	generator   iGenerator
	codeLength  int
	maxRetries  int
	fallbackSeq uint64
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewRepo(cfg *Config, logger *slog.Logger) *repo {
	return newRepo(cfg, randstr.New([]byte(CodeAlphabet)), logger)
}

func newRepo(cfg *Config, generator iGenerator, logger *slog.Logger) *repo {
	return &repo{
		rooms:      make(map[string]*domain.Room),
		generator:  generator,
		codeLength: cfg.CodeLength,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// CreateRoom registers a new empty room under a fresh code. It never fails:
// after MaxRetries collisions it falls back to a code with a sequence suffix.
func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) *domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCode(ctx)
	newRoom := domain.NewRoom(code, params.Video, params.CreatedAt)
	r.rooms[code] = newRoom

	r.logger.DebugContext(ctx, "room created", "room_code", code, "rooms", len(r.rooms))
	return newRoom
}

// generateCode must be called with mu held.
func (r *repo) generateCode(ctx context.Context) string {
	var code string
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		code = r.generator.GenerateRandomString(r.codeLength)
		if _, exists := r.rooms[code]; !exists {
			return code
		}
	}

	base := code
	for {
		r.fallbackSeq++
		code = fmt.Sprintf("%s-%d", base, r.fallbackSeq)
		if _, exists := r.rooms[code]; !exists {
			r.logger.WarnContext(ctx, "room code space congested, using suffixed code",
				"room_code", code,
				"retries", r.maxRetries,
			)
			return code
		}
	}
}

func (r *repo) GetRoom(_ context.Context, code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return rm, nil
}

// DeleteRoom is idempotent. Only the exact room instance is removed so a stale
// delete cannot drop a newer room that reused the code.
func (r *repo) DeleteRoom(ctx context.Context, rm *domain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[rm.Code()]; ok && current == rm {
		delete(r.rooms, rm.Code())
		r.logger.DebugContext(ctx, "room deleted", "room_code", rm.Code(), "rooms", len(r.rooms))
	}
}

func (r *repo) Rooms(_ context.Context) []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Values(r.rooms)
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
