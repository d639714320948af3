// Package netclient is a minimal real client for the voxel server's wire
// protocol (spec §4.4, §6), used by the inspector to observe a live
// connection without going through a game client.
package netclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/VoidMesh/voxelserver/internal/protocol"
)

// EventKind discriminates the events emitted while reading a connection.
type EventKind int

const (
	EventInit EventKind = iota
	EventChunk
	EventKeepalive
	EventError
	EventClosed
)

// Event is one observed frame or connection lifecycle transition.
type Event struct {
	Kind     EventKind
	Bytes    int
	ClientID uint32
	CX, CZ   int32
	Err      error
}

func (e Event) String() string {
	switch e.Kind {
	case EventInit:
		return fmt.Sprintf("Init: assigned client id %d", e.ClientID)
	case EventChunk:
		return fmt.Sprintf("ChunkData: (%d,%d), %d bytes", e.CX, e.CZ, e.Bytes)
	case EventKeepalive:
		return "Keepalive"
	case EventError:
		return fmt.Sprintf("error: %v", e.Err)
	case EventClosed:
		return "connection closed"
	default:
		return "unknown event"
	}
}

// Client is a real TCP connection to the server's native listener.
type Client struct {
	conn net.Conn
}

// Dial connects to addr and starts a background reader that publishes
// Events on the returned channel until the connection closes.
func Dial(addr string) (*Client, <-chan Event, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("netclient: dial %s: %w", addr, err)
	}

	c := &Client{conn: conn}
	events := make(chan Event, 16)
	go c.readLoop(events)
	return c, events, nil
}

// Close terminates the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendKeepalive writes an empty Keepalive frame (spec §6 id=3).
func (c *Client) SendKeepalive() error {
	_, err := c.conn.Write(protocol.EncodeFrame(protocol.Keepalive, nil))
	return err
}

func (c *Client) readLoop(events chan<- Event) {
	defer close(events)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(c.conn, header); err != nil {
			if err != io.EOF {
				events <- Event{Kind: EventError, Err: err}
			}
			events <- Event{Kind: EventClosed}
			return
		}

		frameLen := binary.LittleEndian.Uint32(header)
		body := make([]byte, frameLen)
		if _, err := io.ReadFull(c.conn, body); err != nil {
			events <- Event{Kind: EventError, Err: err}
			events <- Event{Kind: EventClosed}
			return
		}

		events <- decode(body)
	}
}

func decode(body []byte) Event {
	if len(body) == 0 {
		return Event{Kind: EventError, Err: fmt.Errorf("netclient: empty frame body")}
	}

	id := body[0]
	payload := body[1:]
	switch id {
	case protocol.Init:
		if len(payload) < 4 {
			return Event{Kind: EventError, Err: fmt.Errorf("netclient: short Init payload"), Bytes: len(body)}
		}
		return Event{
			Kind:     EventInit,
			Bytes:    len(body),
			ClientID: binary.LittleEndian.Uint32(payload[0:4]),
		}
	case protocol.ChunkData:
		if len(payload) < 8 {
			return Event{Kind: EventError, Err: fmt.Errorf("netclient: short ChunkData payload"), Bytes: len(body)}
		}
		return Event{
			Kind:  EventChunk,
			Bytes: len(body),
			CX:    int32(binary.LittleEndian.Uint32(payload[0:4])),
			CZ:    int32(binary.LittleEndian.Uint32(payload[4:8])),
		}
	case protocol.Keepalive:
		return Event{Kind: EventKeepalive, Bytes: len(body)}
	default:
		return Event{Kind: EventError, Err: fmt.Errorf("netclient: unknown payload id %d", id), Bytes: len(body)}
	}
}
