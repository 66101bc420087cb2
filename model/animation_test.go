package model

import (
	"encoding/binary"
	"math"
	"testing"
)

func buildSoPF(shapeID, propCount uint32, ts float32, data []byte) []byte {
	b := make([]byte, 16+len(data))
	binary.LittleEndian.PutUint32(b[0:4], shapeID)
	binary.LittleEndian.PutUint32(b[4:8], propCount)
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(ts))
	binary.LittleEndian.PutUint32(b[12:16], uint32(len(data)))
	copy(b[16:], data)
	return b
}

func buildFPos(frameCount uint32, start, end float32, positions []float32) []byte {
	posBytes := make([]byte, 4*len(positions))
	for i, p := range positions {
		binary.LittleEndian.PutUint32(posBytes[i*4:], math.Float32bits(p))
	}
	b := make([]byte, 16+len(posBytes))
	binary.LittleEndian.PutUint32(b[0:4], frameCount)
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(start))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(end))
	binary.LittleEndian.PutUint32(b[12:16], uint32(len(posBytes)))
	copy(b[16:], posBytes)
	return b
}

func TestDecodeSoPF(t *testing.T) {
	payload := buildSoPF(7, 2, 1.5, []byte{0xAA, 0xBB})
	rec, err := decodeSoPF(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ShapeID != 7 || rec.PropertyCount != 2 || rec.TimeStamp != 1.5 {
		t.Errorf("got %+v", rec)
	}
	if len(rec.Data) != 2 || rec.Data[0] != 0xAA || rec.Data[1] != 0xBB {
		t.Errorf("got data %v", rec.Data)
	}
}

func TestDecodeSoPF_DataSizeExceedsPayload(t *testing.T) {
	payload := buildSoPF(1, 1, 0, nil)
	binary.LittleEndian.PutUint32(payload[12:16], 100) // lie about data_size
	if _, err := decodeSoPF(payload); err == nil {
		t.Fatal("expected error when data_size overruns the payload")
	}
}

func TestDecodeFPos(t *testing.T) {
	payload := buildFPos(3, 0, 10, []float32{1, 2, 3})
	rec, err := decodeFPos(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.FrameCount != 3 || rec.StartTime != 0 || rec.EndTime != 10 {
		t.Errorf("got %+v", rec)
	}
	if len(rec.Positions) != 3 || rec.Positions[1] != 2 {
		t.Errorf("got positions %v", rec.Positions)
	}
}

func TestDecodeFPos_SizeMismatch(t *testing.T) {
	payload := buildFPos(3, 0, 10, []float32{1, 2}) // 2 positions but frame_count=3
	if _, err := decodeFPos(payload); err == nil {
		t.Fatal("expected FPosSizeMismatch error")
	}
}

func TestSetBatchTime_Global(t *testing.T) {
	a := &Animation{Batches: []Batch{{}, {}}}
	if err := a.setBatchTime(-1, 5, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.GlobalTime != 5 {
		t.Errorf("got GlobalTime=%v", a.GlobalTime)
	}
	for i, b := range a.Batches {
		if b.CurrentTime != 5 {
			t.Errorf("batch %d: got CurrentTime=%v", i, b.CurrentTime)
		}
	}
}

func TestSetBatchTime_RecursesIntoChild(t *testing.T) {
	a := &Animation{Batches: []Batch{
		{ChildBatch: 1},
		{},
	}}
	if err := a.setBatchTime(0, 9, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Batches[0].CurrentTime != 9 || a.Batches[1].CurrentTime != 9 {
		t.Errorf("got batches %+v", a.Batches)
	}
}

func TestSetBatchTime_OutOfRange(t *testing.T) {
	a := &Animation{Batches: []Batch{{}}}
	if err := a.setBatchTime(5, 1, false); err == nil {
		t.Fatal("expected error for out-of-range batch index")
	}
}

func TestInterpolateBatchKeyframe_StaticWithNoKeyframes(t *testing.T) {
	a := &Animation{Batches: []Batch{{TargetTime: 1}}}
	res, err := a.interpolateBatchKeyframe(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsStatic || res.From != 0 || res.To != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestInterpolateBatchKeyframe_Bracketing(t *testing.T) {
	a := &Animation{
		GlobalTime: 5,
		Batches: []Batch{{
			TargetTime:     5,
			KeyframeCount:  3,
			KeyframeOffset: 0,
		}},
		Keyframes: []Keyframe{
			{Time: 0}, {Time: 4}, {Time: 8},
		},
	}
	res, err := a.interpolateBatchKeyframe(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.From != 1 || res.To != 2 {
		t.Fatalf("got From=%d To=%d", res.From, res.To)
	}
	wantFactor := float32(1) / float32(4)
	if res.Factor != wantFactor {
		t.Errorf("got factor %v, want %v", res.Factor, wantFactor)
	}
}

func TestInterpolateBatchKeyframe_GlobalClockPastTarget(t *testing.T) {
	a := &Animation{
		GlobalTime: 20,
		Batches: []Batch{{
			TargetTime:    5,
			KeyframeCount: 2,
		}},
		Keyframes: []Keyframe{{Time: 0}, {Time: 10}},
	}
	_, err := a.interpolateBatchKeyframe(0)
	if err == nil {
		t.Fatal("expected error when global clock has advanced past the target time")
	}
	de, ok := err.(*DecodeError)
	if !ok || de.Code != 249 {
		t.Errorf("expected DecodeError with code 249, got %v", err)
	}
}
