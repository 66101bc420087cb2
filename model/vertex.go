// vertex.go - vertex codecs: packedToFloat, packedToFloat3Component, and
// decrunchDots, each decoding into an 8-wide float-per-vertex buffer with
// a sentinel terminator lane.

package model

import "math"

// VertexStride is the number of float32 lanes stored per vertex: x, y, z
// plus five reserved lanes.
const VertexStride = 8

// vertexTerminatorBits is the bit pattern written as the trailing lane of
// every decoded vertex buffer: a quiet NaN used as an end-of-buffer
// sentinel.
const vertexTerminatorBits uint32 = 0x7FC00000

var vertexTerminator = math.Float32frombits(vertexTerminatorBits)

// IsVertexTerminator reports whether f carries the vertex terminator bit
// pattern (NaN payloads do not compare equal with ==, so bit comparison
// is required).
func IsVertexTerminator(f float32) bool {
	return math.Float32bits(f) == vertexTerminatorBits
}

// newVertexBuffer allocates a buffer for n vertices with the terminator
// already in its trailing slot and every other lane zeroed.
func newVertexBuffer(n int) []float32 {
	buf := make([]float32, n*VertexStride+1)
	buf[n*VertexStride] = vertexTerminator
	return buf
}

// packedToFloat decodes the Dot2 vertex layout: one 32-bit big-endian
// packed integer triple per vertex, preceded by an 8-byte
// compression-parameter block that is skipped.
func packedToFloat(payload []byte) ([]float32, int, error) {
	if len(payload) < 8 {
		return nil, 0, newErr(KindVertexPayload, 0, "Dot2", -1, nil)
	}
	body := len(payload) - 8
	if body%12 != 0 {
		return nil, 0, newErr(KindVertexPayload, 0, "Dot2", -1, nil)
	}
	n := body / 12
	out := newVertexBuffer(n)
	p := 8
	for i := 0; i < n; i++ {
		out[i*VertexStride+0] = packedComponent(payload, p+0)
		out[i*VertexStride+1] = packedComponent(payload, p+4)
		out[i*VertexStride+2] = packedComponent(payload, p+8)
		p += 12
	}
	return out, n, nil
}

// packedToFloat3Component is the sequential variant of packedToFloat
// without the leading parameter skip.
func packedToFloat3Component(payload []byte) ([]float32, int, error) {
	if len(payload)%12 != 0 {
		return nil, 0, newErr(KindVertexPayload, 0, "Dot2", -1, nil)
	}
	n := len(payload) / 12
	out := newVertexBuffer(n)
	p := 0
	for i := 0; i < n; i++ {
		out[i*VertexStride+0] = packedComponent(payload, p+0)
		out[i*VertexStride+1] = packedComponent(payload, p+4)
		out[i*VertexStride+2] = packedComponent(payload, p+8)
		p += 12
	}
	return out, n, nil
}

// packedComponent reads one big-endian-packed 32-bit coordinate word at
// off and applies the mandated complex swap, yielding a
// signed 32-bit integer converted numerically to float32.
func packedComponent(payload []byte, off int) float32 {
	raw, _ := readU32BE(payload, off)
	return float32(int32(complexSwap32(raw)))
}

// decrunchParams is the 24-byte, six-field parameter block preceding a
// DecrunchDots vertex run. The fields are parsed and exposed even though
// the current transform only zero-pads the raw int16 triple, so a fuller
// scale/decompression transform has somewhere to read them from.
type decrunchParams [6]uint32

// decrunchDots decodes the FDot vertex layout: a 24-byte parameter
// block followed by 6 bytes (three int16 components) per vertex.
func decrunchDots(payload []byte) ([]float32, int, decrunchParams, error) {
	var params decrunchParams
	if len(payload) < 24 {
		return nil, 0, params, newErr(KindVertexPayload, 0, "FDot", -1, nil)
	}
	for i := 0; i < 6; i++ {
		params[i], _ = readU32LE(payload, i*4)
	}
	body := len(payload) - 24
	if body%6 != 0 {
		return nil, 0, params, newErr(KindVertexPayload, 0, "FDot", -1, nil)
	}
	n := body / 6
	out := newVertexBuffer(n)
	p := 24
	for i := 0; i < n; i++ {
		x, _ := readU16LE(payload, p+0)
		y, _ := readU16LE(payload, p+2)
		z, _ := readU16LE(payload, p+4)
		// Sub4F2950Rearrangement (original naming): zero-pad copy of the
		// first three words into the 8-wide record; see decrunchParams doc.
		out[i*VertexStride+0] = float32(int16(x))
		out[i*VertexStride+1] = float32(int16(y))
		out[i*VertexStride+2] = float32(int16(z))
		p += 6
	}
	return out, n, params, nil
}
