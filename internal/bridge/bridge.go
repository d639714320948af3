// Package bridge implements the WebSocket-to-TCP pass-through proxy of
// spec §6: bytes from a WebSocket binary frame are forwarded to an
// upstream TCP connection on the native port, and bytes from that
// connection are repacked into WebSocket binary frames. The core protocol
// does not observe the bridge's existence (spec §1).
package bridge

import (
	"net"
	"net/http"

	"github.com/VoidMesh/voxelserver/internal/logging"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Bridge upgrades incoming HTTP connections to WebSocket and proxies their
// binary frames to and from a fixed upstream TCP address.
type Bridge struct {
	upstreamAddr string
	log          *log.Logger
}

// New builds a Bridge that forwards to the given native TCP address.
func New(upstreamAddr string) *Bridge {
	return &Bridge{
		upstreamAddr: upstreamAddr,
		log:          logging.WithComponent("bridge"),
	}
}

// ServeHTTP upgrades the request and proxies it to the native listener.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	upstream, err := net.Dial("tcp", b.upstreamAddr)
	if err != nil {
		b.log.Debug("upstream dial failed", "err", err)
		return
	}
	defer upstream.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if _, err := upstream.Write(data); err != nil {
				return
			}
		}
	}()

	buf := make([]byte, 1024)
	for {
		n, err := upstream.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				break
			}
		}
		if err != nil {
			break
		}
	}

	<-done
}
