package echo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pricetracker/internal/application/port"
)

var (
	// ErrConnect marks a handshake failure; the session never opened.
	ErrConnect = errors.New("websocket connect failed")
	// ErrTransport marks an abnormal mid-stream disconnect.
	ErrTransport = errors.New("websocket transport failed")
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second
	closeGrace   = time.Second
)

// Session owns one duplex websocket channel to the echo endpoint. It
// pairs a generator write loop with a decoding read loop; the write
// loop borrows the connection's write side and never closes it, the
// Session keeps sole closing authority.
type Session struct {
	url string
	gen *Generator

	conn  *websocket.Conn
	out   chan port.Update
	ready chan struct{} // closed once the channel transitions to open
	done  chan struct{} // closed by Close

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func NewSession(url string, gen *Generator) *Session {
	return &Session{
		url:   url,
		gen:   gen,
		out:   make(chan port.Update, 64),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Open dials the endpoint and starts the read and write loops. A
// failed handshake is terminal for this session; it is reported, not
// retried.
func (s *Session) Open(ctx context.Context) error {
	select {
	case <-s.done:
		return fmt.Errorf("%w: session already closed", ErrConnect)
	default:
	}

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.DefaultDialer.DialContext(dctx, s.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrConnect, s.url, err)
	}

	s.conn = conn
	close(s.ready)
	go s.readLoop()
	go s.writeLoop()

	log.Info().Str("url", s.url).Msg("ws connected")
	return nil
}

// Updates yields decoded inbound frames in arrival order. The channel
// closes when the session ends; check Err for the terminal cause.
func (s *Session) Updates() <-chan port.Update { return s.out }

// Err reports the terminal transport error, nil after a clean end.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the session down: the write loop is signaled to stop, a
// normal-closure frame goes out if the channel is still open and the
// connection is released. Idempotent and safe from any goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			deadline := time.Now().Add(closeGrace)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = s.conn.Close()
		}
		log.Info().Str("url", s.url).Msg("ws closed")
	})
	return nil
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// writeLoop paces the generator. The first frame waits for the ready
// signal; cancellation is checked at least once per tick.
func (s *Session) writeLoop() {
	select {
	case <-s.ready:
	case <-s.done:
		return
	}

	ticker := time.NewTicker(s.gen.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			u := s.gen.Next()
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(Encode(u))); err != nil {
				// the read loop surfaces the transport failure
				log.Warn().Err(err).Msg("ws write failed")
				return
			}
		}
	}
}

// readLoop delivers decoded frames until the channel ends. Binary
// frames are treated as UTF-8 text; malformed frames are dropped.
func (s *Session) readLoop() {
	defer close(s.out)

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// local teardown, not a transport failure
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info().Str("url", s.url).Msg("ws closed by remote")
				return
			}
			s.setErr(fmt.Errorf("%w: %v", ErrTransport, err))
			log.Warn().Err(err).Msg("ws read failed")
			return
		}

		u, ok := Decode(string(msg))
		if !ok {
			continue
		}
		select {
		case s.out <- u:
		case <-s.done:
			return
		}
	}
}

var _ port.Session = (*Session)(nil)
