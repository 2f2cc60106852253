package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marufkhan776/chillman/internal/protocol"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoomService struct {
	iRoomService
	createErr  error
	getErr     error
	lastGet    string
	createdFor string
}

func (f *fakeRoomService) CreateRoom(_ context.Context, params *room.CreateRoomParams) (room.CreateRoomResponse, error) {
	if f.createErr != nil {
		return room.CreateRoomResponse{}, f.createErr
	}
	f.createdFor = params.VideoURL
	return room.CreateRoomResponse{RoomCode: "ABCDEF"}, nil
}

func (f *fakeRoomService) GetRoom(_ context.Context, code string) (room.GetRoomResponse, error) {
	f.lastGet = code
	if f.getErr != nil {
		return room.GetRoomResponse{}, f.getErr
	}
	return room.GetRoomResponse{RoomCode: code, MembersCount: 2}, nil
}

type fakeLimiter struct {
	allowed bool
	err     error
}

func (f fakeLimiter) Allow(context.Context, string) (bool, error) {
	return f.allowed, f.err
}

type recordingLimiter struct {
	keys []string
}

func (l *recordingLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return true, nil
}

func newTestController(svc iRoomService, limiter fakeLimiter) *controller {
	return NewController(svc, limiter, &Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rec
}

func TestRejectionReason(t *testing.T) {
	testCases := []struct {
		err    error
		reason protocol.Reason
		ok     bool
	}{
		{err: fmt.Errorf("wrapped: %w", room.ErrPermissionDenied), reason: protocol.ReasonNotAdmin, ok: true},
		{err: room.ErrRoomNotFound, reason: protocol.ReasonRoomNotFound, ok: true},
		{err: fmt.Errorf("%w: bad", room.ErrInvalidVideo), reason: protocol.ReasonInvalidVideo, ok: true},
		{err: room.ErrValidation, reason: protocol.ReasonMalformedEvent, ok: true},
		{err: wsrouter.ErrMalformedMessage, reason: protocol.ReasonMalformedEvent, ok: true},
		{err: wsrouter.ErrUnknownMessageType, reason: protocol.ReasonMalformedEvent, ok: true},
		{err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			reason, ok := rejectionReason(tc.err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestCreateRoomHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeRoomService{}
		rec := doRequest(newTestController(svc, fakeLimiter{allowed: true}).GetMux(), http.MethodPost, "/api/v1/rooms", `{"video_url":"https://youtu.be/dQw4w9WgXcQ"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"room_code":"ABCDEF","video":{"source_url":"","kind":"","resolved_id":""}}}`, rec.Body.String())
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", svc.createdFor)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := doRequest(newTestController(&fakeRoomService{}, fakeLimiter{allowed: true}).GetMux(), http.MethodPost, "/api/v1/rooms", `{"video_url":"x","extra":1}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		svc := &fakeRoomService{createErr: errors.New("boom")}
		rec := doRequest(newTestController(svc, fakeLimiter{allowed: true}).GetMux(), http.MethodPost, "/api/v1/rooms", `{"video_url":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc := &fakeRoomService{}
		rec := doRequest(newTestController(svc, fakeLimiter{allowed: false}).GetMux(), http.MethodPost, "/api/v1/rooms", `{"video_url":"x"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Empty(t, svc.createdFor)
	})

	t.Run("limiter failure lets request through", func(t *testing.T) {
		svc := &fakeRoomService{}
		rec := doRequest(newTestController(svc, fakeLimiter{err: errors.New("redis down")}).GetMux(), http.MethodPost, "/api/v1/rooms", `{"video_url":"x"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetRoomHandler(t *testing.T) {
	svc := &fakeRoomService{}
	h := newTestController(svc, fakeLimiter{allowed: true}).GetMux()

	rec := doRequest(h, http.MethodGet, "/api/v1/rooms/abcdef", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABCDEF", svc.lastGet)
	assert.Contains(t, rec.Body.String(), `"members":2`)

	svc.getErr = room.ErrRoomNotFound
	rec = doRequest(h, http.MethodGet, "/api/v1/rooms/ABCDEF", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"roomNotFound"}`, rec.Body.String())
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABC234", normalizeRoomCode("  abc234 "))
	assert.Equal(t, "", normalizeRoomCode(""))
}

func TestCreateRateLimitKey(t *testing.T) {
	testCases := []struct {
		name       string
		trustProxy bool
		want       string
	}{
		{name: "forwarding headers ignored by default", want: "192.0.2.1"},
		{name: "trusted proxy", trustProxy: true, want: "203.0.113.7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limiter := &recordingLimiter{}
			c := NewController(&fakeRoomService{}, limiter, &Config{TrustProxy: tc.trustProxy}, slog.New(slog.NewTextHandler(io.Discard, nil)))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", bytes.NewBufferString(`{"video_url":"x"}`))
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			rec := httptest.NewRecorder()
			c.GetMux().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []string{tc.want}, limiter.keys)
		})
	}
}
