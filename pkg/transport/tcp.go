package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// envelope is the one length-prefixed frame TCPDispatcher speaks: a
// named event plus its MessagePack-encoded positional argument,
// matching the "one MessagePack-decoded argument per handler" shape
// spec.md §6 describes for the (out-of-scope) real worker transport.
type envelope struct {
	Event string `codec:"event"`
	Args  []byte `codec:"args"`
}

// TCPDispatcher is a minimal concrete stand-in for the external
// request/response worker spec.md §1/§6 treats as an out-of-scope
// collaborator: a length-prefixed MessagePack frame over TCP, just
// enough envelope to make the coordinator binary actually reachable
// over the wire. Nothing about the real fleet's RPC protocol is
// implied by this choice.
type TCPDispatcher struct {
	addr string

	mu       sync.RWMutex
	handlers map[string]func([]byte) ([]byte, error)
}

// NewTCPDispatcher builds a dispatcher that will listen on addr once
// Run is called.
func NewTCPDispatcher(addr string) *TCPDispatcher {
	return &TCPDispatcher{addr: addr, handlers: make(map[string]func([]byte) ([]byte, error))}
}

// On registers the framed handler for event.
func (d *TCPDispatcher) On(event string, fn func(data []byte) ([]byte, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = fn
}

// Run listens until ctx is cancelled, handling one connection per
// goroutine and one request at a time per connection.
func (d *TCPDispatcher) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", d.addr)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", d.addr, err)
	}

	logger := log.WithComponent("transport")
	logger.Info().Str("addr", d.addr).Msg("tcp dispatcher listening")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fmt.Errorf("transport: accept: %w", err)
			}
		}
		go d.serve(conn)
	}
}

func (d *TCPDispatcher) serve(conn net.Conn) {
	defer conn.Close()
	logger := log.WithComponent("transport")

	for {
		req, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				logger.Debug().Err(err).Msg("connection closed")
			}
			return
		}

		var env envelope
		if err := wire.Unmarshal(req, &env); err != nil {
			logger.Warn().Err(err).Msg("malformed envelope frame")
			return
		}

		d.mu.RLock()
		fn, ok := d.handlers[env.Event]
		d.mu.RUnlock()
		if !ok {
			resp, _ := wire.Marshal(map[string]string{"Balancer error": fmt.Sprintf("unknown handler %q", env.Event)})
			if err := writeFrame(conn, resp); err != nil {
				return
			}
			continue
		}

		resp, err := fn(env.Args)
		if err != nil {
			// Bind's own wrapper never returns an error for handler
			// failures (those are encoded into resp); this only fires
			// on a response-encode failure inside Bind itself.
			resp, _ = wire.Marshal(map[string]string{"Balancer error": err.Error()})
		}
		if err := writeFrame(conn, resp); err != nil {
			return
		}
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

var _ Dispatcher = (*TCPDispatcher)(nil)
