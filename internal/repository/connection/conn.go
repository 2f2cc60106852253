package connection

// Conn is a live client connection. Send must not block and returns ErrClosed
// after Close.
type Conn interface {
	Send(data []byte) error
	Close() error
}
