// line.go - Line chunk pipeline. Unlike Prim chunks, a Line chunk's
// token stream encodes surfaces directly instead of feeding a
// triangle-list builder: segment reading and type rewrite, then
// line-data termination and complex-primitive materialization.

package model

// lineScratch is the 18-word scratch record a primitive is extracted
// into during special line handling and during phase 4's
// complex-primitive materialization. Slot 0 holds the primitive type,
// slot 5 the flag word phase 2 clears after a type rewrite.
type lineScratch [18]uint32

// pendingRewrite records one phase-1 "original type -> converted type"
// mapping for a scratch record, applied by phase 2.
type pendingRewrite struct {
	scratch *lineScratch
	to      uint16
}

// convertedLineType implements the phase-1 conversion table: LineStrip
// and its alternate both become PointSprite's analog in this pipeline
// (28422|28423 -> 21251, 18189 -> 18190); 28423 never appears as a Line
// chunk's entry type in practice but is accepted for symmetry with the
// Prim-stream rewrite.
func convertedLineType(original uint16) (uint16, bool) {
	switch PrimitiveKind(original) {
	case PrimLineStrip, PrimLineStripAlt:
		return uint16(PrimPointSprite), true
	case PrimQuadStripInput:
		return uint16(PrimQuadStrip), true
	default:
		return 0, false
	}
}

// lineSurface is one surface emitted directly by the Line pipeline,
// ready to be registered with the surface table. TextureID is assigned
// by the caller from the shape's active texture context; the Line
// pipeline itself carries no per-surface texture field.
type lineSurface struct {
	PrimitiveType uint16
	Flags         uint16
}

// materializeComplexPrimitive builds the 18-word complex-primitive record
// from the first 13 output words already produced by phases 1-3, using a
// fixed field permutation.
func materializeComplexPrimitive(work []uint32) lineScratch {
	var rec lineScratch
	rec[0] = uint32(PrimComplexPrimitive)
	rec[3] = work[2]
	rec[4] = work[3]
	rec[9] = work[4]
	rec[6] = work[10]
	rec[12] = work[5]
	rec[7] = work[11]
	rec[8] = work[12]
	rec[10] = work[6]
	rec[13] = work[7]
	rec[11] = work[8]
	rec[14] = work[9]
	return rec
}

// decodeLineChunk runs the four-phase pipeline over a Line chunk's
// payload and returns the surfaces it materialized.
func decodeLineChunk(payload []byte) ([]lineSurface, error) {
	off := 0
	readBE := func() (uint16, error) {
		v, err := readU16LE(payload, off)
		if err != nil {
			return 0, newErr(KindTruncatedLine, 0, "Line", int64(off), err)
		}
		off += 2
		return swap16(v), nil
	}

	entryType, err := readBE()
	if err != nil {
		return nil, err
	}

	var work []uint32 // the growable owned work buffer, cross-referenced by phase 4
	var pending []pendingRewrite
	var scratches []*lineScratch

	// Phase 1 - segment reading.
	curType := entryType
	for curType != tokenEndMarker {
		segCount, err := readBE()
		if err != nil {
			return nil, err
		}
		var segments []uint16
		if segCount != 0 {
			segments = make([]uint16, 0, segCount)
			for i := uint16(0); i < segCount; i++ {
				seg, err := readBE()
				if err != nil {
					return nil, err
				}
				segments = append(segments, seg)
				work = append(work, uint32(seg))
			}
		}

		if converted, ok := convertedLineType(curType); ok {
			scratch := &lineScratch{}
			scratch[0] = uint32(curType)
			for i, seg := range segments {
				if i+1 >= len(scratch) {
					break
				}
				scratch[i+1] = uint32(seg)
			}
			scratches = append(scratches, scratch)
			pending = append(pending, pendingRewrite{scratch: scratch, to: converted})
		}

		curType, err = readBE()
		if err != nil {
			return nil, err
		}
	}

	// Phase 2 - type rewrite fixup.
	for _, p := range pending {
		p.scratch[0] = uint32(p.to)
		p.scratch[5] = 0
	}

	var surfaces []lineSurface
	for _, s := range scratches {
		surfaces = append(surfaces, lineSurface{
			PrimitiveType: uint16(s[0]),
			Flags:         uint16(s[5]),
		})
	}

	// Phase 3 - line-data run.
	for {
		tok, err := readBE()
		if err != nil {
			return nil, err
		}
		if tok == tokenLineDataEnd {
			work = append(work, 0xFFFFFFFF)
			break
		}
		work = append(work, uint32(tok))
	}

	// Phase 4 - complex-primitive materialization, gated on the Line
	// chunk's entry type rather than any token re-read during phase 3:
	// phase 3 never reassigns a current-primitive-type variable, so the
	// entry type is the only candidate left by the time this check runs.
	if entryType == complexPrimitiveTag && len(work) >= 13 {
		rec := materializeComplexPrimitive(work)
		surfaces = append(surfaces, lineSurface{
			PrimitiveType: uint16(rec[0]),
			Flags:         uint16(rec[5]),
		})
	}

	// Finalization.
	work = append(work, 0xFFFFFFFE)
	_ = work

	return surfaces, nil
}
