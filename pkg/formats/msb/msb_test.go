package msb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/samcharles93/assetfmt/pkg/cursor"
)

func sampleMap(big bool) *MSB {
	m := New()
	m.BigEndian = big
	_ = m.Models.Add(
		&Model{Name: "c1200", Type: ModelEnemy, SibPath: `N:\FDP\data\Model\chr\c1200\sib\c1200.sib`},
		&Model{Name: "m2000B0", Type: ModelMapPiece, SibPath: `N:\FDP\data\Model\map\m20_00\sib\m2000B0.sib`},
		&Model{Name: "h2000B0", Type: ModelCollision},
		&Model{Name: "o0500", Type: ModelObject},
		&Model{Name: "c0000", Type: ModelPlayer},
	)
	_ = m.Parts.Add(
		&CollisionPart{
			PartCommon:    PartCommon{Name: "h2000B0_0000", ModelName: "h2000B0"},
			HitFilter:     8,
			NeighborNames: [4]string{"h2000B0_0001", "", "", ""},
		},
		&EnemyPart{
			PartCommon:    PartCommon{Name: "c1200_0000", ModelName: "c1200", Position: [3]float32{12.5, -3, 40}, Rotation: [3]float32{0, 180, 0}},
			ThinkParam:    120000,
			NPCParam:      120010,
			CollisionName: "h2000B0_0000",
		},
		&MapPiecePart{PartCommon: PartCommon{Name: "m2000B0_0000", ModelName: "m2000B0", SibPath: `N:\FDP\data\Model\map\m20_00\layout\m2000B0_0000.sib`}},
		&CollisionPart{
			PartCommon:    PartCommon{Name: "h2000B0_0001", ModelName: "h2000B0", Position: [3]float32{0, 0, 64}},
			NeighborNames: [4]string{"h2000B0_0000", "", "", "h2000B0_0000"},
		},
		&ObjectPart{PartCommon: PartCommon{Name: "o0500_0000", ModelName: "o0500"}, EntityID: 2000100},
	)
	_ = m.Events.Add(
		&TreasureEvent{EventCommon: EventCommon{Name: "宝箱_01", EventID: 2000500}, PartName: "o0500_0000", ItemLots: [4]int32{1050, -1, -1, -1}},
		&SoundEvent{EventCommon: EventCommon{Name: "wind", EventID: -1}, SoundType: 1, SoundID: 200002, PartName: "m2000B0_0000"},
		&LightEvent{EventCommon: EventCommon{Name: "torch"}, Color: [3]float32{1, 0.8, 0.5}, Radius: 6},
		&SoundEvent{EventCommon: EventCommon{Name: "ambient"}, SoundID: 200000},
	)
	return m
}

func mustWrite(t *testing.T, m *MSB) []byte {
	t.Helper()
	data, err := m.Write()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return data
}

// entryOffset returns the absolute offset of entry i of param p (0 models,
// 1 events, 2 parts).
func entryOffset(t *testing.T, data []byte, p, i int) int64 {
	t.Helper()
	r := cursor.NewReader(data)
	r.SetBigEndian(data[4] == 1)
	param, err := r.GetI64(0x10 + 8*int64(p))
	if err != nil {
		t.Fatalf("param offset: %v", err)
	}
	off, err := r.GetI64(param + 16 + 8*int64(i))
	if err != nil {
		t.Fatalf("entry offset: %v", err)
	}
	return off
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, big := range []bool{false, true} {
		m := sampleMap(big)
		first := mustWrite(t, m)

		got, err := Read(first)
		if err != nil {
			t.Fatalf("read (big=%v): %v", big, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Fatalf("graph mismatch (big=%v)", big)
		}
		second := mustWrite(t, got)
		if !bytes.Equal(first, second) {
			t.Fatalf("re-write is not byte-identical (big=%v)", big)
		}
	}
}

func TestHeader(t *testing.T) {
	t.Parallel()

	le := mustWrite(t, sampleMap(false))
	be := mustWrite(t, sampleMap(true))

	if string(le[:4]) != Magic || le[4] != 0 || be[4] != 1 {
		t.Fatalf("header mismatch: % x / % x", le[:8], be[:8])
	}
	if v := binary.LittleEndian.Uint32(le[8:]); v != version {
		t.Fatalf("le version mismatch: got %d", v)
	}
	if v := binary.BigEndian.Uint32(be[8:]); v != version {
		t.Fatalf("be version mismatch: got %d", v)
	}
	if n := binary.LittleEndian.Uint32(le[0x0C:]); int(n) != len(le) {
		t.Fatalf("file size mismatch: got %d want %d", n, len(le))
	}
	if len(le)%0x10 != 0 || len(be)%0x10 != 0 {
		t.Fatalf("file not padded to 0x10: %d / %d", len(le), len(be))
	}
	if len(le) != len(be) {
		t.Fatalf("byte order changed the layout: %d vs %d", len(le), len(be))
	}
}

func TestBucketOrder(t *testing.T) {
	t.Parallel()

	got, err := Read(mustWrite(t, sampleMap(false)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var names []string
	for _, p := range got.Parts.All() {
		names = append(names, p.EntryName())
	}
	want := []string{"m2000B0_0000", "o0500_0000", "c1200_0000", "h2000B0_0000", "h2000B0_0001"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("part order mismatch: got %v want %v", names, want)
	}

	names = names[:0]
	for _, e := range got.Events.All() {
		names = append(names, e.EntryName())
	}
	want = []string{"torch", "wind", "ambient", "宝箱_01"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("event order mismatch: got %v want %v", names, want)
	}
}

func TestDerivedFields(t *testing.T) {
	t.Parallel()

	data := mustWrite(t, sampleMap(false))
	r := cursor.NewReader(data)

	// Second collision part: type index 1 within its bucket.
	off := entryOffset(t, data, 2, 4)
	if v, _ := r.GetI32(off + 12); v != 1 {
		t.Fatalf("type index mismatch: got %d want 1", v)
	}
	// Collision model h2000B0 is placed twice.
	off = entryOffset(t, data, 0, 4)
	if v, _ := r.GetI32(off + 24); v != 2 {
		t.Fatalf("instance count mismatch: got %d want 2", v)
	}
	// Enemy part model index points at c1200, the only enemy model, after
	// map piece and object models.
	off = entryOffset(t, data, 2, 2)
	if v, _ := r.GetI32(off + 16); v != 2 {
		t.Fatalf("model index mismatch: got %d want 2", v)
	}
}

func TestReferencesSurviveReorder(t *testing.T) {
	t.Parallel()

	m := sampleMap(false)
	_ = m.Parts.Add(&MapPiecePart{PartCommon: PartCommon{Name: "m2000B0_0001", ModelName: "m2000B0"}})

	got, err := Read(mustWrite(t, m))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, p := range got.Parts.All() {
		switch p := p.(type) {
		case *EnemyPart:
			if p.CollisionName != "h2000B0_0000" || p.ModelName != "c1200" {
				t.Fatalf("enemy references mismatch: %+v", p)
			}
		case *CollisionPart:
			if p.Name == "h2000B0_0001" && p.NeighborNames != [4]string{"h2000B0_0000", "", "", "h2000B0_0000"} {
				t.Fatalf("neighbor names mismatch: %v", p.NeighborNames)
			}
		}
	}
	for _, e := range got.Events.All() {
		if tr, ok := e.(*TreasureEvent); ok && tr.PartName != "o0500_0000" {
			t.Fatalf("treasure part mismatch: %q", tr.PartName)
		}
	}
}

func TestUnresolvedReference(t *testing.T) {
	t.Parallel()

	m := sampleMap(false)
	if n := m.Parts.Remove(func(p Part) bool { return p.EntryName() == "h2000B0_0000" }); n != 1 {
		t.Fatalf("removed %d parts", n)
	}
	_, err := m.Write()
	if !errors.Is(err, cursor.ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
	if !strings.Contains(err.Error(), "h2000B0_0000") {
		t.Fatalf("error does not name the missing entry: %v", err)
	}
}

func TestReferenceToUnnamedModel(t *testing.T) {
	t.Parallel()

	m := New()
	_ = m.Models.Add(&Model{Name: "o0500", Type: ModelObject}, &Model{Type: ModelPlayer})
	_ = m.Parts.Add(&ObjectPart{PartCommon: PartCommon{Name: "o0500_0000", ModelName: "o0500"}})
	data := mustWrite(t, m)
	if _, err := Read(data); err != nil {
		t.Fatalf("read: %v", err)
	}

	// Point the part at the unnamed model. Linking must fail rather than
	// turn the reference into "no model".
	off := entryOffset(t, data, 2, 0)
	binary.LittleEndian.PutUint32(data[off+16:], 1)
	if _, err := Read(data); !errors.Is(err, cursor.ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestUnknownEventType(t *testing.T) {
	t.Parallel()

	data := mustWrite(t, sampleMap(false))
	off := entryOffset(t, data, 1, 0)
	binary.LittleEndian.PutUint32(data[off+8:], 3)

	_, err := Read(data)
	if !errors.Is(err, cursor.ErrUnknownDiscriminant) {
		t.Fatalf("expected ErrUnknownDiscriminant, got %v", err)
	}
	var pe *cursor.ParseError
	if !errors.As(err, &pe) || pe.Offset != off+8 {
		t.Fatalf("error offset mismatch: %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	good := mustWrite(t, sampleMap(false))

	tests := []struct {
		name  string
		patch func([]byte) []byte
		want  error
	}{
		{"magic", func(b []byte) []byte { b[3] = 'X'; return b }, cursor.ErrSignature},
		{"endianness flag", func(b []byte) []byte { b[4] = 2; return b }, cursor.ErrAssertion},
		{"version", func(b []byte) []byte { b[8] = 2; return b }, cursor.ErrAssertion},
		{"file size", func(b []byte) []byte { return b[:len(b)-0x10] }, cursor.ErrLength},
		{"param name", func(b []byte) []byte {
			i := bytes.Index(b, []byte{'E', 0, 'V', 0, 'E', 0, 'N', 0, 'T', 0})
			b[i] = 'X'
			return b
		}, cursor.ErrAssertion},
	}
	for _, tt := range tests {
		data := tt.patch(bytes.Clone(good))
		if _, err := Read(data); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestMapPieceHasNoData(t *testing.T) {
	t.Parallel()

	data := mustWrite(t, sampleMap(false))
	off := entryOffset(t, data, 2, 0)
	r := cursor.NewReader(data)
	if v, _ := r.GetI64(off + 0x38); v != 0 {
		t.Fatalf("map piece data offset: got %d want 0", v)
	}
	binary.LittleEndian.PutUint64(data[off+0x38:], 8)
	if _, err := Read(data); !errors.Is(err, cursor.ErrAssertion) {
		t.Fatalf("expected ErrAssertion, got %v", err)
	}
}
