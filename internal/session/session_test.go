package session

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/voxelserver/internal/metrics"
	"github.com/VoidMesh/voxelserver/internal/protocol"
	"github.com/VoidMesh/voxelserver/internal/registry"
)

type fakeWorld struct {
	chunks          map[[2]int32][]byte
	removedPlayerID uint32
}

func (f *fakeWorld) Contains(cx, cz int32) bool {
	_, ok := f.chunks[[2]int32{cx, cz}]
	return ok
}

func (f *fakeWorld) ChunkBytesRLE(cx, cz int32) ([]byte, error) {
	return f.chunks[[2]int32{cx, cz}], nil
}

func (f *fakeWorld) RemovePlayer(id uint32) {
	f.removedPlayerID = id
}

func TestSessionSendsInitOnConnect(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	reg := registry.New()
	client := registry.NewClient(1, 0, 102, 0)
	reg.Add(client)

	w := &fakeWorld{chunks: map[[2]int32][]byte{}}
	s := New(serverConn, client, reg, w, metrics.Noop(), 0)

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	header := make([]byte, 4)
	_, err := readFull(clientConn, header)
	require.NoError(t, err)

	frameLen := binary.LittleEndian.Uint32(header)
	body := make([]byte, frameLen)
	_, err = readFull(clientConn, body)
	require.NoError(t, err)

	require.Equal(t, protocol.Init, body[0])

	clientConn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate after peer close")
	}

	require.Nil(t, reg.Get(1), "client still registered after session closed")
	require.Equal(t, uint32(1), w.removedPlayerID, "player mirror was not removed at session cleanup")
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
