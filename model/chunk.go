// chunk.go - chunk scanner: walks a fixed 8-byte length-prefixed record
// stream, emitting (kind, payload) pairs until the End chunk.

package model

// ChunkKind identifies a known 3GM chunk by its little-endian 32-bit id.
type ChunkKind uint32

const (
	ChunkDot2 ChunkKind = 0x32746F44 // "Dot2"
	ChunkFDot ChunkKind = 0x746F4446 // "FDot"
	ChunkPrim ChunkKind = 0x6D697250 // "Prim"
	ChunkLine ChunkKind = 0x656E694C // "Line"
	ChunkSoPF ChunkKind = 0x46506F73 // "soPF"
	ChunkFPos ChunkKind = 0x736F5046 // "FPos"
	ChunkTxNm ChunkKind = 0x6D4E7854 // "TxNm"
	ChunkEnd  ChunkKind = 0x20646E45 // "End "
)

var chunkNames = map[ChunkKind]string{
	ChunkDot2: "Dot2",
	ChunkFDot: "FDot",
	ChunkPrim: "Prim",
	ChunkLine: "Line",
	ChunkSoPF: "soPF",
	ChunkFPos: "FPos",
	ChunkTxNm: "TxNm",
	ChunkEnd:  "End ",
}

func (k ChunkKind) String() string {
	if s, ok := chunkNames[k]; ok {
		return s
	}
	return "????"
}

// ChunkHeader describes one scanned chunk: its kind and the byte range of
// its payload within the original buffer.
type ChunkHeader struct {
	Kind       ChunkKind
	Start      int // offset of the [id][size] header, for diagnostics
	DataStart  int // offset of the payload
	Size       int
}

// dataOf returns the payload slice described by h.
func dataOf(buf []byte, h ChunkHeader) []byte {
	return buf[h.DataStart : h.DataStart+h.Size]
}

// scan walks buf starting at startOffset, yielding chunk headers until an
// End chunk is found (inclusive). Running out of buffer before an End
// chunk, or a chunk whose declared footprint (8+size) would run past the
// end of buf, is reported as Truncated along with the headers read so far.
func scan(buf []byte, startOffset int) ([]ChunkHeader, error) {
	var headers []ChunkHeader
	off := startOffset
	for {
		if off+8 > len(buf) {
			return headers, errTruncated("", int64(off))
		}
		idWord, _ := readU32LE(buf, off)
		sizeWord, _ := readU32LE(buf, off+4)
		size := int(sizeWord)
		dataStart := off + 8
		if size < 0 || dataStart+size > len(buf) {
			return headers, errTruncated(ChunkKind(idWord).String(), int64(off))
		}
		h := ChunkHeader{
			Kind:      ChunkKind(idWord),
			Start:     off,
			DataStart: dataStart,
			Size:      size,
		}
		headers = append(headers, h)
		off = dataStart + size
		if h.Kind == ChunkEnd {
			break
		}
	}
	return headers, nil
}

// validateChunks requires at least one End marker among headers.
func validateChunks(headers []ChunkHeader) error {
	for _, h := range headers {
		if h.Kind == ChunkEnd {
			return nil
		}
	}
	return newErr(KindTruncated, 0, "", -1, nil)
}
