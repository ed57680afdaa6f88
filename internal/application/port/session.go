package port

import "context"

// Update is one decoded inbound frame.
type Update struct {
	Symbol string  // "AAPL"
	Price  float64 // parsed, finite
}

// Session is one end-to-end lifetime of the duplex channel plus its
// paired generator task.
type Session interface {
	// Open establishes the channel. A handshake failure is terminal
	// for this session; there is no built-in reconnect.
	Open(ctx context.Context) error

	// Updates yields decoded inbound frames in arrival order. The
	// channel closes without error on graceful remote closure and
	// closes with Err() != nil on abnormal transport failure.
	Updates() <-chan Update

	// Err reports the terminal error after Updates closes, nil for a
	// clean end.
	Err() error

	// Close is idempotent and safe from any goroutine. It stops the
	// generator, sends a normal-closure frame if the channel is still
	// open and releases the connection.
	Close() error
}

// SessionFactory builds a fresh session per streaming run.
type SessionFactory func() Session
