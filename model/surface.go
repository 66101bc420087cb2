// surface.go - surface deduplication table: a texture-indexed hash with
// chained collision entries, keyed by (primitive_type, texture_id, flags).

package model

const (
	// DefaultMaxSurfaces and DefaultMaxTextures are the decoder's default
	// table capacities.
	DefaultMaxSurfaces = 2000
	DefaultMaxTextures = 1000
)

const noChain int32 = -1

// hashEntry is one collision-chain link: a search key, the surface it
// resolves to, and the next entry in its texture's chain.
type hashEntry struct {
	searchKey  uint32
	surfaceID  uint16
	nextEntry  int32
}

// Surface is a deduplicated render batch plus the per-surface rendering
// data the dispatcher accumulates into it.
type Surface struct {
	TextureID     int16
	PrimitiveType uint16
	Flags         uint16
	Status        uint16 // bit 0 active, bit 1 alpha

	Indices       []uint16
	VertexOffset  int
	IndexOffset   int
	PrimitiveCount int
}

const (
	surfaceStatusActive uint16 = 1 << 0
	surfaceStatusAlpha  uint16 = 1 << 1
)

// Active reports whether status bit 0 is set.
func (s *Surface) Active() bool { return s.Status&surfaceStatusActive != 0 }

// Alpha reports whether status bit 1 is set.
func (s *Surface) Alpha() bool { return s.Status&surfaceStatusAlpha != 0 }

// surfaceTable is a texture-indexed collision-chain head array, a pool
// of hash entries, and the surface records themselves. It is created per
// decode session and exclusively owned by that session, never shared
// across concurrent decodes.
type surfaceTable struct {
	maxTextures int
	maxSurfaces int

	first   []int32 // indexed by texture_id+1; -1 means no chain
	entries []hashEntry
	entryTop int // next free hash entry

	surfaces []Surface // surfaces[0] reserved/unused
	nextID   int
}

func newSurfaceTable(maxTextures, maxSurfaces int) *surfaceTable {
	t := &surfaceTable{
		maxTextures: maxTextures,
		maxSurfaces: maxSurfaces,
		first:       make([]int32, maxTextures+1),
		entries:     make([]hashEntry, maxSurfaces),
		surfaces:    make([]Surface, maxSurfaces),
		nextID:      1, // surface_id 0 is reserved
	}
	for i := range t.first {
		t.first[i] = noChain
	}
	return t
}

func searchKey(primitiveType, flags uint16) uint32 {
	return uint32(primitiveType)<<16 | uint32(flags)
}

// getSurfaceHash is the read-only lookup step: it returns the resolved
// surface id, or 0xFFFF on miss, and never mutates the table.
func (t *surfaceTable) getSurfaceHash(primitiveType uint16, textureID int16, flags uint16) (uint16, error) {
	if int(textureID) >= t.maxTextures || textureID < -1 {
		return 0, newErr(KindInvalidTexture, CodeInvalidTexture, "", -1, nil)
	}
	key := searchKey(primitiveType, flags)
	head := t.first[int(textureID)+1]
	for e := head; e != noChain; {
		entry := t.entries[e]
		if entry.searchKey == key {
			return entry.surfaceID, nil
		}
		e = entry.nextEntry
	}
	return 0xFFFF, nil
}

// getOrCreateSurface looks up (primitiveType, textureID, flags) in the
// texture's collision chain; on hit, update the
// existing surface's alpha bit and return it; on miss, allocate a new
// surface and push it onto the chain as the new head.
func (t *surfaceTable) getOrCreateSurface(primitiveType uint16, textureID int16, flags uint16) (uint16, error) {
	if int(textureID) >= t.maxTextures || textureID < -1 {
		return 0, newErr(KindInvalidTexture, CodeInvalidTexture, "", -1, nil)
	}
	key := searchKey(primitiveType, flags)
	slot := int(textureID) + 1
	for e := t.first[slot]; e != noChain; {
		entry := t.entries[e]
		if entry.searchKey == key {
			if err := t.updateSurfaceAlpha(entry.surfaceID); err != nil {
				return 0, err
			}
			return entry.surfaceID, nil
		}
		e = entry.nextEntry
	}

	if t.nextID >= t.maxSurfaces {
		return 0, newErr(KindSurfaceLimit, CodeSurfaceLimit, "", -1, nil)
	}
	id := t.nextID
	if t.surfaces[id].Active() {
		return 0, newErr(KindSurfaceAllocConflict, CodeSurfaceAllocConflict, "", -1, nil)
	}
	t.nextID++

	surf := Surface{
		TextureID:     textureID,
		PrimitiveType: primitiveType,
		Flags:         flags,
		Status:        surfaceStatusActive,
	}
	if alphaCapable(primitiveType) {
		surf.Status |= surfaceStatusAlpha
	}
	t.surfaces[id] = surf

	if t.entryTop >= len(t.entries) {
		return 0, newErr(KindSurfaceLimit, CodeSurfaceLimit, "", -1, nil)
	}
	entryIdx := t.entryTop
	t.entryTop++
	t.entries[entryIdx] = hashEntry{
		searchKey: key,
		surfaceID: uint16(id),
		nextEntry: t.first[slot],
	}
	t.first[slot] = int32(entryIdx)

	return uint16(id), nil
}

// updateSurfaceAlpha sets the alpha status bit on an already-allocated
// surface.
func (t *surfaceTable) updateSurfaceAlpha(id uint16) error {
	if int(id) >= len(t.surfaces) || !t.surfaces[id].Active() {
		return newErr(KindSurfaceNotAllocated, CodeSurfaceNotAllocated, "", -1, nil)
	}
	if alphaCapable(t.surfaces[id].PrimitiveType) {
		t.surfaces[id].Status |= surfaceStatusAlpha
	}
	return nil
}

// alphaCapable derives the alpha flag from the primitive kind. Only
// TriangleStrip is currently treated as alpha-capable.
func alphaCapable(primitiveType uint16) bool {
	return PrimitiveKind(primitiveType) == PrimTriangleStrip
}
