// Package protocol implements the length-framed binary wire format of
// spec §4.4 and §6: the 4-byte little-endian length header, the 1-byte
// payload id, and the Init / ClientData / ChunkData / Keepalive payloads.
package protocol

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/VoidMesh/voxelserver/internal/registry"
)

// Payload ids, per spec §6.
const (
	Init       uint8 = 0
	ClientData uint8 = 1
	ChunkData  uint8 = 2
	Keepalive  uint8 = 3
)

// HeaderSize is the 4-byte length prefix plus the 1-byte id.
const HeaderSize = 5

// clientDataPrefixLen is the fixed portion of a ClientData payload before
// the repeating demand triples: client_id, pos (3xf32), rot (2xf32), state.
const clientDataPrefixLen = 4 + 12 + 8 + 4

// demandTripleLen is the byte size of one (cx,cz,distance) demand entry.
const demandTripleLen = 12

// EncodeFrame writes the 4-byte little-endian length header, then the id
// byte, then body. The length value covers everything after
// the length field itself: the 1-byte id plus the payload (confirmed
// against the handshake test vector in spec §8, scenario 1).
func EncodeFrame(id uint8, body []byte) []byte {
	frameLen := 1 + len(body)
	out := make([]byte, 4+frameLen)
	binary.LittleEndian.PutUint32(out[0:4], uint32(frameLen))
	out[4] = id
	copy(out[5:], body)
	return out
}

// EncodeInit builds the server->client Init payload: client_id, position,
// state (spec §6 id=0).
func EncodeInit(clientID uint32, pos [3]float32, state uint32) []byte {
	body := make([]byte, 4+12+4)
	binary.LittleEndian.PutUint32(body[0:4], clientID)
	putFloat32(body[4:8], pos[0])
	putFloat32(body[8:12], pos[1])
	putFloat32(body[12:16], pos[2])
	binary.LittleEndian.PutUint32(body[16:20], state)
	return EncodeFrame(Init, body)
}

// EncodeChunkData wraps an already RLE-encoded chunk payload (coords +
// run/id pairs) in the ChunkData frame (spec §6 id=2).
func EncodeChunkData(rlePayload []byte) []byte {
	return EncodeFrame(ChunkData, rlePayload)
}

// ClientDataMessage is the decoded form of a client->server ClientData
// payload (spec §6 id=1).
type ClientDataMessage struct {
	ClientID uint32
	Position [3]float32
	Rotation [2]float32
	State    uint32
	Demand   []registry.Demand
}

// ErrShortClientData is returned when a ClientData payload is shorter than
// its fixed prefix (spec §7 "malformed payload").
var ErrShortClientData = errors.New("protocol: ClientData payload shorter than fixed prefix")

// DecodeClientData parses a ClientData payload (everything after the id
// byte). Trailing demand bytes whose length is not a multiple of 12 are
// discarded per spec §7.
func DecodeClientData(body []byte) (*ClientDataMessage, error) {
	if len(body) < clientDataPrefixLen {
		return nil, ErrShortClientData
	}

	msg := &ClientDataMessage{
		ClientID: binary.LittleEndian.Uint32(body[0:4]),
		Position: [3]float32{
			getFloat32(body[4:8]),
			getFloat32(body[8:12]),
			getFloat32(body[12:16]),
		},
		Rotation: [2]float32{
			getFloat32(body[16:20]),
			getFloat32(body[20:24]),
		},
		State: binary.LittleEndian.Uint32(body[24:28]),
	}

	rest := body[clientDataPrefixLen:]
	n := len(rest) / demandTripleLen
	msg.Demand = make([]registry.Demand, 0, n)
	for i := 0; i < n; i++ {
		off := i * demandTripleLen
		msg.Demand = append(msg.Demand, registry.Demand{
			CX:       int32(binary.LittleEndian.Uint32(rest[off : off+4])),
			CZ:       int32(binary.LittleEndian.Uint32(rest[off+4 : off+8])),
			Distance: int32(binary.LittleEndian.Uint32(rest[off+8 : off+12])),
		})
	}

	return msg, nil
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
