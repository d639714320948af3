package terrain

// EncodeRLE run-length encodes a chunk's voxel ids in traversal order as
// (count uint8, id uint8) pairs. Runs longer than 255 voxels are split into
// multiple pairs since the count is a saturating byte (spec §4.1 step 3).
//
// The final run must always be flushed even when it never hit the 255 cap;
// an earlier version of this encoder dropped it, truncating the last run
// of every chunk on the wire (spec §9).
func EncodeRLE(voxels []Voxel) []byte {
	if len(voxels) == 0 {
		return nil
	}

	out := make([]byte, 0, len(voxels)/4)
	runID := voxels[0].ID
	var runLen uint16

	flush := func() {
		for runLen > 0 {
			n := runLen
			if n > 255 {
				n = 255
			}
			out = append(out, byte(n), runID)
			runLen -= n
		}
	}

	for _, v := range voxels {
		if v.ID == runID && runLen < 255 {
			runLen++
			continue
		}
		if v.ID == runID {
			// runLen == 255: close this run at the cap and start a new
			// one of the same id.
			flush()
			runLen = 1
			continue
		}
		flush()
		runID = v.ID
		runLen = 1
	}
	flush()

	return out
}

// DecodeRLE reverses EncodeRLE, reconstructing Index values from position.
func DecodeRLE(data []byte) []Voxel {
	voxels := make([]Voxel, 0, len(data))
	var idx uint32
	for i := 0; i+1 < len(data); i += 2 {
		count := data[i]
		id := data[i+1]
		for n := byte(0); n < count; n++ {
			voxels = append(voxels, Voxel{Index: idx, ID: id})
			idx++
		}
	}
	return voxels
}

// ChunkToBytesRLE is the wire payload for a ChunkData message: the chunk's
// coordinates followed by its RLE-encoded voxel stream, per spec §4.1 step 3
// and the ChunkData frame layout in §5.
func ChunkToBytesRLE(c *Chunk) []byte {
	rle := EncodeRLE(c.Voxels)
	out := make([]byte, 8+len(rle))
	putInt32(out[0:4], c.Coord.X)
	putInt32(out[4:8], c.Coord.Z)
	copy(out[8:], rle)
	return out
}

func putInt32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}
