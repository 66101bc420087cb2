// animation.go - soPF/FPos animation ingest, plus the batch/keyframe
// tree and time-interpolation queries built on top of them.

package model

import "math"

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// SoPFRecord is one decoded soPF ("animation property frame") payload.
type SoPFRecord struct {
	ShapeID        uint32
	PropertyCount  uint32
	TimeStamp      float32
	Data           []byte
}

// decodeSoPF decodes a soPF payload: a fixed 16-byte header followed by
// data_size bytes of opaque property data, bounded by 16+data_size <= len(payload).
func decodeSoPF(payload []byte) (SoPFRecord, error) {
	if len(payload) < 16 {
		return SoPFRecord{}, newErr(KindInvalidAnimation, CodeInvalidAnimation, "soPF", -1, nil)
	}
	shapeID, _ := readU32LE(payload, 0)
	propCount, _ := readU32LE(payload, 4)
	tsBits, _ := readU32LE(payload, 8)
	dataSize, _ := readU32LE(payload, 12)
	if 16+int(dataSize) > len(payload) {
		return SoPFRecord{}, newErr(KindInvalidAnimation, CodeInvalidAnimation, "soPF", -1, nil)
	}
	data := make([]byte, dataSize)
	copy(data, payload[16:16+int(dataSize)])
	return SoPFRecord{
		ShapeID:       shapeID,
		PropertyCount: propCount,
		TimeStamp:     float32FromBits(tsBits),
		Data:          data,
	}, nil
}

// FPosRecord is one decoded FPos ("animation position frame") payload.
type FPosRecord struct {
	FrameCount uint32
	StartTime  float32
	EndTime    float32
	Positions  []float32
}

// decodeFPos decodes an FPos payload: a fixed 16-byte header followed by
// frame_count packed float32 positions. position_data_size must equal
// frame_count*4 exactly, else FPosSizeMismatch.
func decodeFPos(payload []byte) (FPosRecord, error) {
	if len(payload) < 16 {
		return FPosRecord{}, newErr(KindInvalidAnimation, CodeInvalidAnimation, "FPos", -1, nil)
	}
	frameCount, _ := readU32LE(payload, 0)
	startBits, _ := readU32LE(payload, 4)
	endBits, _ := readU32LE(payload, 8)
	posSize, _ := readU32LE(payload, 12)
	if posSize != frameCount*4 {
		return FPosRecord{}, newErr(KindFPosSizeMismatch, 0, "FPos", -1, nil)
	}
	if 16+int(posSize) > len(payload) {
		return FPosRecord{}, newErr(KindInvalidAnimation, CodeInvalidAnimation, "FPos", -1, nil)
	}
	positions := make([]float32, frameCount)
	for i := range positions {
		bits, _ := readU32LE(payload, 16+i*4)
		positions[i] = float32FromBits(bits)
	}
	return FPosRecord{
		FrameCount: frameCount,
		StartTime:  float32FromBits(startBits),
		EndTime:    float32FromBits(endBits),
		Positions:  positions,
	}, nil
}

// Batch is one animation-batch record.
type Batch struct {
	BatchID         uint32
	CurrentTime     float32
	TargetTime      float32
	KeyframeCount   uint32
	KeyframeOffset  uint32
	ChildBatch      uint32
	RenderData      uint32
	IsActive        bool
	RequiresUpdate  bool
}

// Keyframe is one keyframe record.
type Keyframe struct {
	Time    float32
	BatchID uint32
}

// Animation holds every soPF/FPos payload consumed plus the batch/
// keyframe tree built on top of them. It is owned by the Shape that
// attached it.
type Animation struct {
	Properties []SoPFRecord
	Positions  []FPosRecord

	Batches   []Batch
	Keyframes []Keyframe // shared pool; a batch's window is
	// Keyframes[KeyframeOffset : KeyframeOffset+KeyframeCount], sorted
	// ascending by Time.

	GlobalTime float32
}

// setBatchTime sets a batch's current time. batchIndex == -1
// sets the global clock (and, if recursive, every batch's current time
// plus a recursive descent into child batches); otherwise it sets one
// batch's current time and optionally recurses into its child.
func (a *Animation) setBatchTime(batchIndex int, t float32, recursive bool) error {
	if batchIndex == -1 {
		a.GlobalTime = t
		if recursive {
			for i := range a.Batches {
				a.Batches[i].CurrentTime = t
				a.recurseChild(i, t)
			}
		}
		return nil
	}
	if batchIndex < 0 || batchIndex >= len(a.Batches) {
		return newErr(KindInvalidAnimation, CodeInvalidAnimation, "", -1, nil)
	}
	a.Batches[batchIndex].CurrentTime = t
	if recursive && a.Batches[batchIndex].ChildBatch != 0 {
		a.recurseChild(batchIndex, t)
	}
	return nil
}

func (a *Animation) recurseChild(batchIndex int, t float32) {
	child := a.Batches[batchIndex].ChildBatch
	if child == 0 || int(child) >= len(a.Batches) {
		return
	}
	a.Batches[child].CurrentTime = t
	a.recurseChild(int(child), t)
}

// InterpolationResult is the return shape of interpolateBatchKeyframe.
type InterpolationResult struct {
	From, To int
	Factor   float32
	IsStatic bool
}

// interpolateBatchKeyframe locates the bracketing keyframe pair around a
// batch's target time and returns the interpolation factor between them.
// A batch with no keyframes is static at itself. The global clock must
// not yet have advanced past the batch's target time, or this returns
// error code 249.
func (a *Animation) interpolateBatchKeyframe(batchIndex int) (InterpolationResult, error) {
	if batchIndex < 0 || batchIndex >= len(a.Batches) {
		return InterpolationResult{}, newErr(KindInvalidAnimation, CodeInvalidAnimation, "", -1, nil)
	}
	b := a.Batches[batchIndex]
	if b.KeyframeCount == 0 {
		return InterpolationResult{From: batchIndex, To: batchIndex, Factor: 0, IsStatic: true}, nil
	}
	if a.GlobalTime > b.TargetTime {
		return InterpolationResult{}, newErr(KindInvalidAnimation, 249, "", -1, nil)
	}

	lo := int(b.KeyframeOffset)
	hi := lo + int(b.KeyframeCount)
	for i := lo; i < hi-1; i++ {
		k0, k1 := a.Keyframes[i], a.Keyframes[i+1]
		if k0.Time <= b.TargetTime && b.TargetTime < k1.Time {
			if k0.Time == k1.Time {
				return InterpolationResult{From: i, To: i + 1, Factor: 0, IsStatic: true}, nil
			}
			factor := (b.TargetTime - k0.Time) / (k1.Time - k0.Time)
			return InterpolationResult{From: i, To: i + 1, Factor: factor, IsStatic: false}, nil
		}
	}
	// No bracketing pair (target time before the first keyframe, or at or
	// past the last): static at the tail keyframe.
	return InterpolationResult{From: hi - 1, To: hi - 1, Factor: 0, IsStatic: true}, nil
}
