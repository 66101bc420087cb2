// shape.go - shape model and chunk dispatcher: owns the accumulating
// shape state, maps each chunk kind to its decoder via a fixed table,
// and propagates shape-wide flags.

package model

import "golang.org/x/image/math/f32"

const (
	ShapeFlagPrimPath  uint32 = 1 << 2
	ShapeFlagLinePath  uint32 = 1 << 3
	ShapeFlagAnimation uint32 = 1 << 7
)

// BoundingBox is the axis-aligned bounding box computed from the decoded
// vertex buffer.
type BoundingBox struct {
	Min, Max f32.Vec3
	Valid    bool
}

// Shape is the decoder's single output.
type Shape struct {
	VertexBuffer    []float32
	VertexCount     int
	PrimitiveBuffer []uint16
	Surfaces        []Surface
	Animation       *Animation
	ShapeFlags      uint32
	TextureID       int16
	BoundingBox     BoundingBox
	TextureNames    []string
}

// session is the per-decode bundle of mutable state: the shape being
// built and the surface/texture hash it is populated through. It is
// created fresh per decode call so concurrent decodes never share state.
type session struct {
	shape   *Shape
	surface *surfaceTable
}

func newSession(maxTextures, maxSurfaces int) *session {
	return &session{
		shape: &Shape{
			TextureID:    -1,
			VertexBuffer: newVertexBuffer(0),
		},
		surface: newSurfaceTable(maxTextures, maxSurfaces),
	}
}

type chunkHandler func(s *session, payload []byte) error

var dispatchTable = map[ChunkKind]chunkHandler{
	ChunkDot2: handleDot2,
	ChunkFDot: handleFDot,
	ChunkPrim: handlePrim,
	ChunkLine: handleLine,
	ChunkSoPF: handleSoPF,
	ChunkFPos: handleFPos,
	ChunkTxNm: handleTxNm,
}

func handleDot2(s *session, payload []byte) error {
	if buf, n, err := packedToFloat(payload); err == nil {
		s.shape.VertexBuffer, s.shape.VertexCount = buf, n
		return nil
	}
	buf, n, err := packedToFloat3Component(payload)
	if err != nil {
		return err
	}
	s.shape.VertexBuffer, s.shape.VertexCount = buf, n
	return nil
}

func handleFDot(s *session, payload []byte) error {
	buf, n, _, err := decrunchDots(payload)
	if err != nil {
		return err
	}
	s.shape.VertexBuffer, s.shape.VertexCount = buf, n
	return nil
}

func handlePrim(s *session, payload []byte) error {
	runs, triangles, err := decodePrimitiveStream(payload)
	if err != nil {
		return err
	}
	s.shape.PrimitiveBuffer = append(s.shape.PrimitiveBuffer, triangles...)
	for _, run := range runs {
		if err := s.registerSurface(uint16(run.Kind), uint16(run.Flags), run.Indices); err != nil {
			return err
		}
	}
	s.shape.ShapeFlags |= ShapeFlagPrimPath
	return nil
}

func handleLine(s *session, payload []byte) error {
	surfaces, err := decodeLineChunk(payload)
	if err != nil {
		return err
	}
	for _, ls := range surfaces {
		if err := s.registerSurface(ls.PrimitiveType, ls.Flags, nil); err != nil {
			return err
		}
	}
	s.shape.ShapeFlags |= ShapeFlagLinePath
	return nil
}

func handleSoPF(s *session, payload []byte) error {
	rec, err := decodeSoPF(payload)
	if err != nil {
		return err
	}
	s.ensureAnimation().Properties = append(s.ensureAnimation().Properties, rec)
	s.shape.ShapeFlags |= ShapeFlagAnimation
	return nil
}

func handleFPos(s *session, payload []byte) error {
	rec, err := decodeFPos(payload)
	if err != nil {
		return err
	}
	s.ensureAnimation().Positions = append(s.ensureAnimation().Positions, rec)
	s.shape.ShapeFlags |= ShapeFlagAnimation
	return nil
}

func handleTxNm(s *session, payload []byte) error {
	s.shape.TextureNames = decodeTxNm(payload)
	return nil
}

func (s *session) ensureAnimation() *Animation {
	if s.shape.Animation == nil {
		s.shape.Animation = &Animation{}
	}
	return s.shape.Animation
}

// registerSurface resolves (primitiveType, shape's active texture,
// flags) through the surface table and records the resulting surface's
// rendering span. indices is nil for Line-path surfaces, which carry no
// per-call index slice of their own.
func (s *session) registerSurface(primitiveType, flags uint16, indices []uint16) error {
	id, err := s.surface.getOrCreateSurface(primitiveType, s.shape.TextureID, flags)
	if err != nil {
		return err
	}
	surf := &s.surface.surfaces[id]
	if len(indices) > 0 {
		surf.Indices = append(surf.Indices, indices...)
		surf.PrimitiveCount += len(indices)
	} else if surf.PrimitiveCount == 0 {
		surf.PrimitiveCount = 1 // a Line-path surface carries no index span of its own
	}
	return nil
}

// Decode runs the full pipeline over data: header classification, chunk
// scanning, per-chunk dispatch, and post-decode validation. It uses the
// package's default surface-table capacities.
func Decode(data []byte) (*Shape, error) {
	return DecodeWithCapacity(data, DefaultMaxTextures, DefaultMaxSurfaces)
}

// DecodeWithCapacity is Decode with explicit surface-table bounds.
func DecodeWithCapacity(data []byte, maxTextures, maxSurfaces int) (*Shape, error) {
	hdr, err := classifyHeader(data)
	if err != nil {
		return nil, err
	}
	headers, err := scan(data, hdr.ChunkOffset)
	if err != nil {
		return nil, err
	}
	if err := validateChunks(headers); err != nil {
		return nil, err
	}

	sess := newSession(maxTextures, maxSurfaces)
	for _, h := range headers {
		handler, ok := dispatchTable[h.Kind]
		if !ok {
			continue // unknown chunk kinds are scanned over but not dispatched
		}
		if err := handler(sess, dataOf(data, h)); err != nil {
			return nil, err
		}
	}

	shape := sess.shape
	for id := 1; id < sess.surface.nextID; id++ {
		shape.Surfaces = append(shape.Surfaces, sess.surface.surfaces[id])
	}
	shape.computeBoundingBox()

	if err := shape.validate(); err != nil {
		return nil, err
	}
	return shape, nil
}

// computeBoundingBox folds every vertex's xyz lanes into a running
// min/max.
func (sh *Shape) computeBoundingBox() {
	if sh.VertexCount == 0 {
		return
	}
	min := f32.Vec3{sh.VertexBuffer[0], sh.VertexBuffer[1], sh.VertexBuffer[2]}
	max := min
	for i := 1; i < sh.VertexCount; i++ {
		base := i * VertexStride
		v := f32.Vec3{sh.VertexBuffer[base], sh.VertexBuffer[base+1], sh.VertexBuffer[base+2]}
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	sh.BoundingBox = BoundingBox{Min: min, Max: max, Valid: true}
}

// validate enforces the end-of-decode invariants: vertex buffer sizing,
// the terminator bit, primitive index bounds, and that every registered
// surface is active with a positive primitive count.
func (sh *Shape) validate() error {
	if len(sh.VertexBuffer) != sh.VertexCount*VertexStride+1 {
		return newErr(KindInternal, 0, "", -1, nil)
	}
	if sh.VertexCount > 0 && !IsVertexTerminator(sh.VertexBuffer[len(sh.VertexBuffer)-1]) {
		return newErr(KindInternal, 0, "", -1, nil)
	}
	for _, idx := range sh.PrimitiveBuffer {
		if int(idx) >= sh.VertexCount {
			return newErr(KindInternal, 0, "", -1, nil)
		}
	}
	for i := range sh.Surfaces {
		s := &sh.Surfaces[i]
		if !s.Active() || s.PrimitiveCount <= 0 {
			return newErr(KindInternal, 0, "", -1, nil)
		}
	}
	return nil
}

// TextureName resolves a texture id against the names ingested from a
// TxNm chunk, returning "" if none was decoded or id is out of range.
func (sh *Shape) TextureName(id int16) string {
	if id < 0 || int(id) >= len(sh.TextureNames) {
		return ""
	}
	return sh.TextureNames[id]
}
