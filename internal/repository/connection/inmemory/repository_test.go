package inmemory

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/marufkhan776/chillman/internal/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mu         sync.Mutex
	received   [][]byte
	full       bool
	closed     bool
	closeCalls int
}

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return connection.ErrClosed
	}
	if m.full {
		return errors.New("send buffer full")
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.closeCalls++
	return nil
}

func (m *mockConn) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, 0, len(m.received))
	for _, data := range m.received {
		result = append(result, string(data))
	}
	return result
}

func TestAddRemove(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(slog.Default())

	require.NoError(t, r.Add(ctx, "a", &mockConn{}))
	assert.ErrorIs(t, r.Add(ctx, "a", &mockConn{}), connection.ErrAlreadyExists)
	assert.Equal(t, 1, r.Count())

	code, err := r.GetRoom("a")
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, r.SetRoom("a", "ABC234"))
	code, err = r.GetRoom("a")
	require.NoError(t, err)
	assert.Equal(t, "ABC234", code)

	code, err = r.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ABC234", code)
	_, err = r.Remove(ctx, "a")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	assert.ErrorIs(t, r.SetRoom("a", "X"), connection.ErrNotFound)
	_, err = r.GetRoom("a")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	assert.Equal(t, 0, r.Count())
}

func TestSendAndBroadcast(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(slog.Default())

	a, b, slow := &mockConn{}, &mockConn{}, &mockConn{full: true}
	require.NoError(t, r.Add(ctx, "a", a))
	require.NoError(t, r.Add(ctx, "b", b))
	require.NoError(t, r.Add(ctx, "slow", slow))

	tests := []struct {
		name   string
		run    func() error
		wantA  []string
		wantB  []string
		closed bool
	}{
		{
			name:  "send reaches only the target",
			run:   func() error { return r.Send(ctx, "a", map[string]int{"n": 1}) },
			wantA: []string{`{"n":1}`},
			wantB: []string{},
		},
		{
			name:   "broadcast reaches every member and drops the slow one",
			run:    func() error { return r.Broadcast(ctx, []string{"a", "b", "slow", "gone"}, map[string]int{"n": 2}) },
			wantA:  []string{`{"n":1}`, `{"n":2}`},
			wantB:  []string{`{"n":2}`},
			closed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.run())
			assert.Equal(t, tt.wantA, a.messages())
			assert.Equal(t, tt.wantB, b.messages())
			assert.Equal(t, tt.closed, slow.closed)
		})
	}

	assert.ErrorIs(t, r.Send(ctx, "gone", "x"), connection.ErrNotFound)
	assert.Error(t, r.Send(ctx, "a", make(chan int)), "unmarshalable output")
}

func TestBroadcastSkipsClosedConnection(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	r := NewRepo(slog.New(slog.NewTextHandler(&logs, nil)))

	a, slow := &mockConn{}, &mockConn{full: true}
	require.NoError(t, r.Add(ctx, "a", a))
	require.NoError(t, r.Add(ctx, "slow", slow))

	require.NoError(t, r.Broadcast(ctx, []string{"a", "slow"}, "first"))
	assert.Equal(t, 1, slow.closeCalls)
	assert.Equal(t, 1, strings.Count(logs.String(), "dropping slow connection"))

	// the read loop has not removed it yet
	require.NoError(t, r.Broadcast(ctx, []string{"a", "slow"}, "second"))
	require.NoError(t, r.Send(ctx, "slow", "third"))
	assert.Equal(t, 1, slow.closeCalls)
	assert.Equal(t, 1, strings.Count(logs.String(), "dropping slow connection"))
	assert.Equal(t, []string{`"first"`, `"second"`}, a.messages())
}
