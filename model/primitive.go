// primitive.go - Prim chunk / primitive stream decoder: reads 16-bit type
// tokens, applies in-stream type rewrites, records each primitive's
// flag-register value, and expands each primitive's indices into a triangle list.

package model

// PrimitiveKind is a raw 16-bit primitive-stream token.
type PrimitiveKind uint16

const (
	PrimTriangleStrip    PrimitiveKind = 16646
	PrimQuadStripInput   PrimitiveKind = 18189
	PrimQuadStrip        PrimitiveKind = 18190
	PrimTriangleList     PrimitiveKind = 20486
	PrimPointSprite      PrimitiveKind = 21251
	PrimLineStrip        PrimitiveKind = 28422
	PrimLineStripAlt     PrimitiveKind = 28423
	PrimComplexPrimitive PrimitiveKind = 30733
)

const (
	tokenEndMarker      uint16 = 0x6000
	tokenTerminator     uint16 = 0xFFFE
	tokenLineDataEnd    uint16 = 0x7000
	complexPrimitiveTag uint16 = 0x430D // 17165, Line chunk phase-4 gate
)

// complexPrimitiveElements is the fixed element count a ComplexPrimitive
// run carries: exactly 10 data elements following the type token, with
// no triangle expansion. Every other primitive kind in a Prim chunk is
// instead preceded by its own explicit element count (type, count, count
// indices); the fixed-10 span applies only to ComplexPrimitive.
const complexPrimitiveElements = 10

// primFlagRegister is a 32-bit value describing a decoded primitive
// kind, passed on to the surface table. It is carried on each
// primitiveRun, never as a package global, so concurrent decodes never
// share mutable state.
type primFlagRegister uint32

// flagFor returns the primitive-flag register value for kind. Kinds
// outside the table yield 0.
func flagFor(kind PrimitiveKind) primFlagRegister {
	switch kind {
	case PrimTriangleStrip, PrimTriangleList:
		return 0x00010001
	case PrimQuadStrip:
		return 0x00000201
	case PrimPointSprite:
		return 0x00000001
	case PrimLineStrip, PrimComplexPrimitive:
		return 0x00000101
	default:
		return 0
	}
}

// rewriteKind applies the in-stream type rewrites: a
// QuadStripInput token is immediately treated as QuadStrip, and a
// LineStripAlt token as PointSprite.
func rewriteKind(kind PrimitiveKind) PrimitiveKind {
	switch kind {
	case PrimQuadStripInput:
		return PrimQuadStrip
	case PrimLineStripAlt:
		return PrimPointSprite
	default:
		return kind
	}
}

// primitiveRun is one decoded primitive from a Prim chunk: its (rewritten)
// kind, the raw vertex indices it carried, and the flag register value it
// produced.
type primitiveRun struct {
	Kind    PrimitiveKind
	Indices []uint16
	Flags   primFlagRegister
}

// decodePrimitiveStream reads a 16-bit type token, then (ComplexPrimitive
// aside) an explicit element count and that many 16-bit indices,
// repeating until EndMarker. It returns one
// primitiveRun per primitive plus the triangle-list expansion of every
// run's indices.
func decodePrimitiveStream(payload []byte) ([]primitiveRun, []uint16, error) {
	var runs []primitiveRun
	var triangles []uint16
	off := 0
	for {
		tok, err := readU16LE(payload, off)
		if err != nil {
			return nil, nil, newErr(KindTruncatedPrimitive, 0, "Prim", int64(off), err)
		}
		off += 2
		if tok == tokenEndMarker {
			break
		}
		kind := rewriteKind(PrimitiveKind(tok))
		if !knownPrimitiveKind(kind) {
			return nil, nil, errUnsupportedPrimitive(kind, off-2)
		}

		var count int
		if kind == PrimComplexPrimitive {
			count = complexPrimitiveElements
		} else {
			countTok, err := readU16LE(payload, off)
			if err != nil {
				return nil, nil, newErr(KindTruncatedPrimitive, 0, "Prim", int64(off), err)
			}
			off += 2
			if countTok == tokenTerminator {
				// Terminator ends this primitive list; resume reading the
				// next type token instead of emitting an empty run.
				continue
			}
			count = int(countTok)
		}

		indices := make([]uint16, 0, count)
		for i := 0; i < count; i++ {
			idx, err := readU16LE(payload, off)
			if err != nil {
				return nil, nil, newErr(KindTruncatedPrimitive, 0, "Prim", int64(off), err)
			}
			off += 2
			if idx == tokenTerminator {
				break
			}
			indices = append(indices, idx)
		}

		run := primitiveRun{Kind: kind, Indices: indices, Flags: flagFor(kind)}
		runs = append(runs, run)

		tris, err := expandTopology(kind, indices)
		if err != nil {
			return nil, nil, err
		}
		triangles = append(triangles, tris...)
	}
	return runs, triangles, nil
}

func knownPrimitiveKind(kind PrimitiveKind) bool {
	switch kind {
	case PrimTriangleStrip, PrimQuadStrip, PrimTriangleList,
		PrimPointSprite, PrimLineStrip, PrimComplexPrimitive:
		return true
	default:
		return false
	}
}

func errUnsupportedPrimitive(kind PrimitiveKind, off int) error {
	return newErr(KindUnsupportedPrimitive, int(kind), "Prim", int64(off), nil)
}

// expandTopology turns one primitive run's indices into a flat triangle
// list, per its kind's topology.
func expandTopology(kind PrimitiveKind, idx []uint16) ([]uint16, error) {
	switch kind {
	case PrimTriangleStrip:
		if len(idx) < 3 {
			return nil, nil
		}
		out := make([]uint16, 0, (len(idx)-2)*3)
		for i := 0; i < len(idx)-2; i++ {
			if i%2 == 0 {
				out = append(out, idx[i], idx[i+1], idx[i+2])
			} else {
				out = append(out, idx[i+1], idx[i], idx[i+2])
			}
		}
		return out, nil
	case PrimTriangleList:
		if len(idx)%3 != 0 {
			return nil, newErr(KindUnsupportedPrimitive, int(kind), "Prim", -1, nil)
		}
		out := make([]uint16, len(idx))
		copy(out, idx)
		return out, nil
	case PrimQuadStrip:
		if len(idx)%4 != 0 {
			return nil, newErr(KindUnsupportedPrimitive, int(kind), "Prim", -1, nil)
		}
		out := make([]uint16, 0, len(idx)/4*6)
		for i := 0; i+3 < len(idx); i += 4 {
			a, b, c, d := idx[i], idx[i+1], idx[i+2], idx[i+3]
			out = append(out, a, b, c, a, c, d)
		}
		return out, nil
	case PrimPointSprite, PrimLineStrip, PrimComplexPrimitive:
		// Pass through as degenerate primitives; no triangle expansion.
		return nil, nil
	default:
		return nil, newErr(KindUnsupportedPrimitive, int(kind), "Prim", -1, nil)
	}
}
