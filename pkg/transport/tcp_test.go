package transport

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, conn net.Conn, event string, args any) {
	t.Helper()
	argBlob, err := wire.Marshal(args)
	require.NoError(t, err)
	blob, err := wire.Marshal(envelope{Event: event, Args: argBlob})
	require.NoError(t, err)
	require.NoError(t, binary.Write(conn, binary.BigEndian, uint32(len(blob))))
	_, err = conn.Write(blob)
	require.NoError(t, err)
}

func readResponse(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var length uint32
	require.NoError(t, binary.Read(conn, binary.BigEndian, &length))
	buf := make([]byte, length)
	_, err := conn.Read(buf)
	require.NoError(t, err)
	return buf
}

func TestTCPDispatcher_RoundTrip(t *testing.T) {
	d := NewTCPDispatcher("127.0.0.1:0")
	Bind(d, "get_group_info", func(ctx context.Context, args []byte) (any, error) {
		var id int
		require.NoError(t, wire.Unmarshal(args, &id))
		return map[string]int{"group_id": id}, nil
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	d.addr = ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	var conn net.Conn
	for i := 0; i < 20; i++ {
		conn, err = net.Dial("tcp", d.addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	writeEnvelope(t, conn, "get_group_info", 7)
	out := readResponse(t, conn)

	var result map[string]int
	require.NoError(t, wire.Unmarshal(out, &result))
	require.Equal(t, 7, result["group_id"])
}

func TestTCPDispatcher_UnknownHandler(t *testing.T) {
	d := NewTCPDispatcher("127.0.0.1:0")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	d.addr = ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	var conn net.Conn
	for i := 0; i < 20; i++ {
		conn, err = net.Dial("tcp", d.addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	writeEnvelope(t, conn, "no_such_handler", nil)
	out := readResponse(t, conn)

	var result map[string]string
	require.NoError(t, wire.Unmarshal(out, &result))
	require.Contains(t, result["Balancer error"], "no_such_handler")
}
