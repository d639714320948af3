// Package session implements the per-connection protocol described in
// spec §4.4: an ingress read loop, an egress drain loop, and the shared
// write-half mutex between them.
package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/VoidMesh/voxelserver/internal/logging"
	"github.com/VoidMesh/voxelserver/internal/metrics"
	"github.com/VoidMesh/voxelserver/internal/protocol"
	"github.com/VoidMesh/voxelserver/internal/registry"
	"github.com/VoidMesh/voxelserver/internal/world"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// readChunkSize bounds a single socket read or write, per spec §4.4 step 2.
const readChunkSize = 1024

// defaultDrainInterval is the egress demand-drain period when the caller
// doesn't override it, per spec §4.4 egress step 4.
const defaultDrainInterval = 100 * time.Millisecond

// ChunkSource is the read side of the world the egress loop polls to
// fulfil demand, plus the player-mirror cleanup the session runs at
// disconnect. Satisfied by *world.World.
type ChunkSource interface {
	Contains(cx, cz int32) bool
	ChunkBytesRLE(cx, cz int32) ([]byte, error)
	RemovePlayer(id uint32)
}

// Session owns one TCP connection and the registry Client backing it. Every
// write to the connection goes through writeFrame, which holds writeMu, per
// spec §9 "per-session write exclusion"; only the egress goroutine writes.
type Session struct {
	conn          net.Conn
	client        *registry.Client
	registry      *registry.Registry
	world         ChunkSource
	sinks         *metrics.Sinks
	drainInterval time.Duration
	log           *log.Logger

	writeMu sync.Mutex
}

// New constructs a session for an accepted connection. The caller has
// already assigned and registered the client. drainInterval <= 0 falls
// back to defaultDrainInterval.
func New(conn net.Conn, client *registry.Client, reg *registry.Registry, w ChunkSource, sinks *metrics.Sinks, drainInterval time.Duration) *Session {
	if drainInterval <= 0 {
		drainInterval = defaultDrainInterval
	}
	traceID := uuid.NewString()
	return &Session{
		conn:          conn,
		client:        client,
		registry:      reg,
		world:         w,
		sinks:         sinks,
		drainInterval: drainInterval,
		log:           logging.WithComponent("session").With("trace_id", traceID, "client_id", client.ID),
	}
}

// Run drives the session to completion: it starts the egress loop, runs
// the ingress loop on the calling goroutine, and blocks until both have
// terminated. The client is deregistered exactly once, at the end,
// matching the connection's §4.4 state machine.
func (s *Session) Run() {
	stop := make(chan struct{})
	egressDone := make(chan struct{})
	go func() {
		defer close(egressDone)
		s.runEgress(stop)
	}()

	s.runIngress()
	close(stop)

	<-egressDone
	s.registry.Remove(s.client.ID)
	s.world.RemovePlayer(s.client.ID)
	s.sinks.Disconnects.Inc()
	s.sinks.ClientCount.Dec()
	s.log.Debug("session closed")
}

// writeFrame sends a complete frame to the socket in up-to-1024-byte
// slices, holding writeMu for the duration (spec §4.4, §9).
func (s *Session) writeFrame(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for off := 0; off < len(frame); off += readChunkSize {
		end := off + readChunkSize
		if end > len(frame) {
			end = len(frame)
		}
		n, err := s.conn.Write(frame[off:end])
		if err != nil {
			return fmt.Errorf("session: write failed: %w", err)
		}
		metrics.RecordEgress(n)
	}
	return nil
}

// runIngress implements spec §4.4's ingress read loop.
func (s *Session) runIngress() {
	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(s.conn, header); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debug("ingress read error", "err", err)
			}
			return
		}
		metrics.RecordIngress(4)

		// The length field covers the id byte plus payload; it excludes
		// the 4-byte header that was just read (confirmed against the
		// handshake test vector).
		frameLen := binary.LittleEndian.Uint32(header)
		if frameLen == 0 {
			s.log.Warn("zero-length frame")
			s.sinks.MalformedPackets.Inc()
			continue
		}

		body := make([]byte, frameLen)
		for off := 0; off < len(body); off += readChunkSize {
			end := off + readChunkSize
			if end > len(body) {
				end = len(body)
			}
			if _, err := io.ReadFull(s.conn, body[off:end]); err != nil {
				s.log.Debug("ingress body read error", "err", err)
				return
			}
		}
		metrics.RecordIngress(len(body))

		s.dispatch(body[0], body[1:])
	}
}

// dispatch handles one decoded payload, per spec §4.4 step 3.
func (s *Session) dispatch(id uint8, payload []byte) {
	switch id {
	case protocol.ClientData:
		msg, err := protocol.DecodeClientData(payload)
		if err != nil {
			s.log.Debug("malformed ClientData", "err", err)
			s.sinks.MalformedPackets.Inc()
			return
		}
		s.client.ApplyClientData(msg.Position, msg.Rotation, msg.State, msg.Demand)
	case protocol.ChunkData:
		// Ignored on ingress per spec §4.4.
	case protocol.Keepalive:
		// No-op per spec §4.4.
	default:
		s.log.Debug("unknown payload id", "id", id)
		s.sinks.MalformedPackets.Inc()
	}
}

// runEgress implements spec §4.4's egress drain loop: one Init on start,
// then repeated demand-drain passes against the world store. It terminates
// when stop is closed (the ingress loop has returned) or a write fails.
func (s *Session) runEgress(stop <-chan struct{}) {
	pos := s.client.Position()
	initFrame := protocol.EncodeInit(s.client.ID, pos, s.client.State())
	if err := s.writeFrame(initFrame); err != nil {
		s.log.Debug("failed to send init", "err", err)
		return
	}

	ticker := time.NewTicker(s.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			demand := s.client.DemandSnapshot()
			remaining := make([]registry.Demand, 0, len(demand))
			for _, d := range demand {
				if !s.world.Contains(d.CX, d.CZ) {
					remaining = append(remaining, d)
					continue
				}

				rle, err := s.world.ChunkBytesRLE(d.CX, d.CZ)
				if err != nil {
					remaining = append(remaining, d)
					continue
				}

				if err := s.writeFrame(protocol.EncodeChunkData(rle)); err != nil {
					s.log.Debug("failed to send chunk", "err", err, "cx", d.CX, "cz", d.CZ)
					return
				}
			}
			s.client.SetDemand(remaining)
		}
	}
}

var _ ChunkSource = (*world.World)(nil)
