package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	handlers map[string]func([]byte) ([]byte, error)
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{handlers: make(map[string]func([]byte) ([]byte, error))}
}

func (f *fakeDispatcher) On(event string, fn func(data []byte) ([]byte, error)) {
	f.handlers[event] = fn
}

func (f *fakeDispatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeDispatcher) call(t *testing.T, event string, arg any) []byte {
	t.Helper()
	blob, err := wire.Marshal(arg)
	require.NoError(t, err)
	fn, ok := f.handlers[event]
	require.True(t, ok, "handler %q not registered", event)
	out, err := fn(blob)
	require.NoError(t, err)
	return out
}

func TestBind_EncodesSuccessfulResult(t *testing.T) {
	d := newFakeDispatcher()
	Bind(d, "get_groups", func(ctx context.Context, args []byte) (any, error) {
		return []int{1, 2, 3}, nil
	})

	out := d.call(t, "get_groups", nil)
	var ids []int
	require.NoError(t, wire.Unmarshal(out, &ids))
	require.Equal(t, []int{1, 2, 3}, ids)
}

func TestBind_WrapsHandlerErrorAsSuccessfulResponse(t *testing.T) {
	d := newFakeDispatcher()
	Bind(d, "break_couple", func(ctx context.Context, args []byte) (any, error) {
		return nil, errors.New("Incorrect confirmation string")
	})

	out := d.call(t, "break_couple", "1:2")
	var m map[string]string
	require.NoError(t, wire.Unmarshal(out, &m))
	require.Equal(t, "Incorrect confirmation string", m["Balancer error"])
}
