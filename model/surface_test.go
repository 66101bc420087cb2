package model

import "testing"

func TestGetOrCreateSurface_NewThenCached(t *testing.T) {
	tbl := newSurfaceTable(4, 8)
	id1, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 == 0 {
		t.Fatal("surface id 0 is reserved, got it from allocation")
	}
	id2, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected the same (kind,texture,flags) to resolve to the same surface, got %d and %d", id1, id2)
	}
}

func TestGetOrCreateSurface_DistinctTextureDistinctSurface(t *testing.T) {
	tbl := newSurfaceTable(4, 8)
	id1, _ := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 0, 0)
	id2, _ := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 1, 0)
	if id1 == id2 {
		t.Error("distinct texture ids must not collapse to the same surface")
	}
}

func TestGetOrCreateSurface_CollisionChain(t *testing.T) {
	tbl := newSurfaceTable(4, 8)
	// Same texture, different (kind,flags) keys must chain, not collide.
	id1, _ := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 0, 0)
	id2, _ := tbl.getOrCreateSurface(uint16(PrimTriangleList), 0, 0)
	if id1 == id2 {
		t.Fatal("distinct search keys must not share a surface")
	}
	got1, err := tbl.getSurfaceHash(uint16(PrimTriangleStrip), 0, 0)
	if err != nil || got1 != id1 {
		t.Errorf("chain lookup for id1 failed: got=%d err=%v", got1, err)
	}
	got2, err := tbl.getSurfaceHash(uint16(PrimTriangleList), 0, 0)
	if err != nil || got2 != id2 {
		t.Errorf("chain lookup for id2 failed: got=%d err=%v", got2, err)
	}
}

func TestGetOrCreateSurface_TextureOutOfRange(t *testing.T) {
	tbl := newSurfaceTable(4, 8)
	if _, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 4, 0); err == nil {
		t.Fatal("expected error for texture id >= maxTextures")
	}
	if _, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), -2, 0); err == nil {
		t.Fatal("expected error for texture id below the -1 sentinel")
	}
}

func TestGetOrCreateSurface_SurfaceLimit(t *testing.T) {
	tbl := newSurfaceTable(4, 2) // nextID starts at 1, so only 1 allocation fits
	if _, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tbl.getOrCreateSurface(uint16(PrimTriangleList), 0, 0); err == nil {
		t.Fatal("expected surface-limit error once capacity is exhausted")
	}
}

func TestAlphaCapable(t *testing.T) {
	if !alphaCapable(uint16(PrimTriangleStrip)) {
		t.Error("TriangleStrip must be alpha-capable")
	}
	if alphaCapable(uint16(PrimPointSprite)) {
		t.Error("PointSprite must not be alpha-capable")
	}
}

func TestGetOrCreateSurface_SetsAlphaForTriangleStrip(t *testing.T) {
	tbl := newSurfaceTable(4, 8)
	id, err := tbl.getOrCreateSurface(uint16(PrimTriangleStrip), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tbl.surfaces[id].Alpha() {
		t.Error("expected alpha bit set for TriangleStrip surface")
	}
	if !tbl.surfaces[id].Active() {
		t.Error("expected newly allocated surface to be active")
	}
}
