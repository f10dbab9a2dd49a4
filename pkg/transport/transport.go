// Package transport binds named coordinator operations to an opaque
// external request/response dispatcher. The real dispatcher (the
// worker process that accepts connections and hands requests to named
// event handlers) is explicitly out of scope — spec.md treats it as an
// external collaborator. This package implements the envelope:
// MessagePack-decode the request, invoke the handler,
// MessagePack-encode the result, and turn a returned error into the
// same {"Balancer error": "<message>"} shape an uncaught exception
// produced in the original, still as a successful response. It also
// ships TCPDispatcher (tcp.go), a minimal length-prefixed TCP
// dispatcher that cmd/mastermind serve listens with.
package transport

import (
	"context"

	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/mastermind-cluster/mastermind/pkg/metrics"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// Dispatcher is whatever accepts connections and delivers one raw
// MessagePack request per named event; On registers the byte-to-byte
// function that handles it. Run drives the dispatcher's accept loop
// until ctx is cancelled.
type Dispatcher interface {
	On(event string, fn func(data []byte) ([]byte, error))
	Run(ctx context.Context) error
}

// Handler implements one coordinator operation. args is the raw
// MessagePack-encoded request payload; handlers decode it themselves
// via pkg/wire since the argument shape varies per operation (bare
// scalar, tuple, or struct).
type Handler func(ctx context.Context, args []byte) (any, error)

// Bind registers handler under name on d, wrapping it in the standard
// decode/invoke/encode/catch envelope. The only error Bind's own
// wrapper function returns is an encode failure of the response
// itself; a handler error is captured as data, not propagated, since
// the original's uncaught-exception response is itself a successful
// reply.
func Bind(d Dispatcher, name string, handler Handler) {
	logger := log.WithComponent("transport")

	d.On(name, func(data []byte) ([]byte, error) {
		timer := metrics.NewTimer()
		result, err := handler(context.Background(), data)
		timer.ObserveDurationVec(metrics.HandlerDuration, name)

		outcome := "ok"
		if err != nil {
			outcome = "error"
			logger.Warn().Str("handler", name).Err(err).Msg("handler returned an error")
			result = map[string]string{"Balancer error": err.Error()}
		}
		metrics.HandlerRequestsTotal.WithLabelValues(name, outcome).Inc()

		blob, encErr := wire.Marshal(result)
		if encErr != nil {
			logger.Error().Str("handler", name).Err(encErr).Msg("failed to encode response")
			return wire.Marshal(map[string]string{"Balancer error": encErr.Error()})
		}
		return blob, nil
	})
}
