package msb

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/entry"
)

type ModelType int32

const (
	ModelMapPiece  ModelType = 0
	ModelObject    ModelType = 1
	ModelEnemy     ModelType = 2
	ModelPlayer    ModelType = 4
	ModelCollision ModelType = 5
)

func (t ModelType) String() string {
	switch t {
	case ModelMapPiece:
		return "MapPiece"
	case ModelObject:
		return "Object"
	case ModelEnemy:
		return "Enemy"
	case ModelPlayer:
		return "Player"
	case ModelCollision:
		return "Collision"
	}
	return fmt.Sprintf("ModelType(%d)", int32(t))
}

type EventType int32

const (
	EventLight    EventType = 0
	EventSound    EventType = 1
	EventTreasure EventType = 4
)

func (t EventType) String() string {
	switch t {
	case EventLight:
		return "Light"
	case EventSound:
		return "Sound"
	case EventTreasure:
		return "Treasure"
	}
	return fmt.Sprintf("EventType(%d)", int32(t))
}

type PartType int32

const (
	PartMapPiece  PartType = 0
	PartObject    PartType = 1
	PartEnemy     PartType = 2
	PartCollision PartType = 5
)

func (t PartType) String() string {
	switch t {
	case PartMapPiece:
		return "MapPiece"
	case PartObject:
		return "Object"
	case PartEnemy:
		return "Enemy"
	case PartCollision:
		return "Collision"
	}
	return fmt.Sprintf("PartType(%d)", int32(t))
}

// Model describes a resource that parts instantiate. Every model type shares
// the same layout.
type Model struct {
	Name    string
	Type    ModelType
	SibPath string
}

func (m *Model) Kind() ModelType { return m.Type }

func (m *Model) EntryName() string { return m.Name }

func (m *Model) String() string { return fmt.Sprintf("%s %s", m.Type, m.Name) }

func newModel(t ModelType) func() *Model {
	return func() *Model { return &Model{Type: t} }
}

var modelTypes = entry.NewRegistry("model type", map[ModelType]func() *Model{
	ModelMapPiece:  newModel(ModelMapPiece),
	ModelObject:    newModel(ModelObject),
	ModelEnemy:     newModel(ModelEnemy),
	ModelPlayer:    newModel(ModelPlayer),
	ModelCollision: newModel(ModelCollision),
})

// Event is a scripted point of interest. The concrete type determines the
// layout of its type data block.
type Event interface {
	Kind() EventType
	EntryName() string

	common() *EventCommon
	readData(r *cursor.Reader) error
	writeData(w *cursor.Writer)
	linkNames(parts []Part) error
	linkIndices(parts []Part) error
}

// EventCommon holds the fields every event carries in its header.
type EventCommon struct {
	Name    string
	EventID int32
}

func (e *EventCommon) EntryName() string { return e.Name }

func (e *EventCommon) common() *EventCommon { return e }

type LightEvent struct {
	EventCommon
	Color  [3]float32
	Radius float32
}

func (e *LightEvent) Kind() EventType { return EventLight }

func (e *LightEvent) readData(r *cursor.Reader) error {
	for i := range e.Color {
		v, err := r.ReadF32()
		if err != nil {
			return err
		}
		e.Color[i] = v
	}
	var err error
	e.Radius, err = r.ReadF32()
	return err
}

func (e *LightEvent) writeData(w *cursor.Writer) {
	w.WriteF32s(e.Color[:])
	w.WriteF32(e.Radius)
}

func (e *LightEvent) linkNames([]Part) error { return nil }

func (e *LightEvent) linkIndices([]Part) error { return nil }

type SoundEvent struct {
	EventCommon
	SoundType int32
	SoundID   int32
	PartName  string

	partIndex int32
}

func (e *SoundEvent) Kind() EventType { return EventSound }

func (e *SoundEvent) readData(r *cursor.Reader) error {
	var err error
	if e.SoundType, err = r.ReadI32(); err != nil {
		return err
	}
	if e.SoundID, err = r.ReadI32(); err != nil {
		return err
	}
	if e.partIndex, err = r.ReadI32(); err != nil {
		return err
	}
	_, err = r.AssertI32(0)
	return err
}

func (e *SoundEvent) writeData(w *cursor.Writer) {
	w.WriteI32(e.SoundType)
	w.WriteI32(e.SoundID)
	w.WriteI32(e.partIndex)
	w.WriteI32(0)
}

func (e *SoundEvent) linkNames(parts []Part) (err error) {
	e.PartName, err = entry.NameOf(parts, e.partIndex)
	return err
}

func (e *SoundEvent) linkIndices(parts []Part) (err error) {
	e.partIndex, err = entry.IndexOf(parts, e.PartName)
	return err
}

type TreasureEvent struct {
	EventCommon
	PartName string
	ItemLots [4]int32

	partIndex int32
}

func (e *TreasureEvent) Kind() EventType { return EventTreasure }

func (e *TreasureEvent) readData(r *cursor.Reader) error {
	var err error
	if e.partIndex, err = r.ReadI32(); err != nil {
		return err
	}
	lots, err := r.ReadI32s(len(e.ItemLots))
	if err != nil {
		return err
	}
	copy(e.ItemLots[:], lots)
	return r.AssertPattern(4, 0xFF)
}

func (e *TreasureEvent) writeData(w *cursor.Writer) {
	w.WriteI32(e.partIndex)
	w.WriteI32s(e.ItemLots[:])
	w.WritePattern(4, 0xFF)
}

func (e *TreasureEvent) linkNames(parts []Part) (err error) {
	e.PartName, err = entry.NameOf(parts, e.partIndex)
	return err
}

func (e *TreasureEvent) linkIndices(parts []Part) (err error) {
	e.partIndex, err = entry.IndexOf(parts, e.PartName)
	return err
}

var eventTypes = entry.NewRegistry("event type", map[EventType]func() Event{
	EventLight:    func() Event { return &LightEvent{} },
	EventSound:    func() Event { return &SoundEvent{} },
	EventTreasure: func() Event { return &TreasureEvent{} },
})

// Part is a placed instance of a model.
type Part interface {
	Kind() PartType
	EntryName() string

	common() *PartCommon
	hasData() bool
	readData(r *cursor.Reader) error
	writeData(w *cursor.Writer)
	linkNames(parts []Part) error
	linkIndices(parts []Part) error
}

// PartCommon holds the fields every part carries in its header.
type PartCommon struct {
	Name      string
	ModelName string
	Position  [3]float32
	Rotation  [3]float32
	SibPath   string

	modelIndex int32
}

func (p *PartCommon) EntryName() string { return p.Name }

func (p *PartCommon) common() *PartCommon { return p }

type MapPiecePart struct {
	PartCommon
}

func (p *MapPiecePart) Kind() PartType { return PartMapPiece }

func (p *MapPiecePart) hasData() bool { return false }

func (p *MapPiecePart) readData(*cursor.Reader) error { return nil }

func (p *MapPiecePart) writeData(*cursor.Writer) {}

func (p *MapPiecePart) linkNames([]Part) error { return nil }

func (p *MapPiecePart) linkIndices([]Part) error { return nil }

type ObjectPart struct {
	PartCommon
	EntityID int32
}

func (p *ObjectPart) Kind() PartType { return PartObject }

func (p *ObjectPart) hasData() bool { return true }

func (p *ObjectPart) readData(r *cursor.Reader) error {
	var err error
	if p.EntityID, err = r.ReadI32(); err != nil {
		return err
	}
	_, err = r.AssertI32(0)
	return err
}

func (p *ObjectPart) writeData(w *cursor.Writer) {
	w.WriteI32(p.EntityID)
	w.WriteI32(0)
}

func (p *ObjectPart) linkNames([]Part) error { return nil }

func (p *ObjectPart) linkIndices([]Part) error { return nil }

type EnemyPart struct {
	PartCommon
	ThinkParam    int32
	NPCParam      int32
	CollisionName string

	collisionIndex int32
}

func (p *EnemyPart) Kind() PartType { return PartEnemy }

func (p *EnemyPart) hasData() bool { return true }

func (p *EnemyPart) readData(r *cursor.Reader) error {
	var err error
	if p.ThinkParam, err = r.ReadI32(); err != nil {
		return err
	}
	if p.NPCParam, err = r.ReadI32(); err != nil {
		return err
	}
	if p.collisionIndex, err = r.ReadI32(); err != nil {
		return err
	}
	_, err = r.AssertI32(0)
	return err
}

func (p *EnemyPart) writeData(w *cursor.Writer) {
	w.WriteI32(p.ThinkParam)
	w.WriteI32(p.NPCParam)
	w.WriteI32(p.collisionIndex)
	w.WriteI32(0)
}

func (p *EnemyPart) linkNames(parts []Part) (err error) {
	p.CollisionName, err = entry.NameOf(parts, p.collisionIndex)
	return err
}

func (p *EnemyPart) linkIndices(parts []Part) (err error) {
	p.collisionIndex, err = entry.IndexOf(parts, p.CollisionName)
	return err
}

type CollisionPart struct {
	PartCommon
	HitFilter     uint8
	NeighborNames [4]string

	neighborIndices [4]int32
}

func (p *CollisionPart) Kind() PartType { return PartCollision }

func (p *CollisionPart) hasData() bool { return true }

func (p *CollisionPart) readData(r *cursor.Reader) error {
	var err error
	if p.HitFilter, err = r.ReadU8(); err != nil {
		return err
	}
	if err := r.AssertPattern(3, 0); err != nil {
		return err
	}
	idx, err := r.ReadI32s(len(p.neighborIndices))
	if err != nil {
		return err
	}
	copy(p.neighborIndices[:], idx)
	return nil
}

func (p *CollisionPart) writeData(w *cursor.Writer) {
	w.WriteU8(p.HitFilter)
	w.WritePattern(3, 0)
	w.WriteI32s(p.neighborIndices[:])
}

func (p *CollisionPart) linkNames(parts []Part) error {
	names, err := entry.NamesOf(parts, p.neighborIndices[:])
	if err != nil {
		return err
	}
	copy(p.NeighborNames[:], names)
	return nil
}

func (p *CollisionPart) linkIndices(parts []Part) error {
	idx, err := entry.IndicesOf(parts, p.NeighborNames[:])
	if err != nil {
		return err
	}
	copy(p.neighborIndices[:], idx)
	return nil
}

var partTypes = entry.NewRegistry("part type", map[PartType]func() Part{
	PartMapPiece:  func() Part { return &MapPiecePart{} },
	PartObject:    func() Part { return &ObjectPart{} },
	PartEnemy:     func() Part { return &EnemyPart{} },
	PartCollision: func() Part { return &CollisionPart{} },
})
