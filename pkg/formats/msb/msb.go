// Package msb reads and writes MSBL map layouts: the models a map uses, the
// parts placing them and the events attached to those parts.
//
// Entries refer to each other by index on disk. After Read every reference is
// held by name, so entries can be added, removed or reordered freely; Write
// turns names back into indices against the final entry order.
package msb

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/entry"
)

// Magic is the file signature.
const Magic = "MSBL"

const (
	version    = 1
	headerSize = 0x28

	modelParamName = "MODEL_PARAM_ST"
	eventParamName = "EVENT_PARAM_ST"
	partParamName  = "PARTS_PARAM_ST"
)

// MSB is a decoded map layout.
type MSB struct {
	BigEndian bool

	Models *entry.Buckets[ModelType, *Model]
	Events *entry.Buckets[EventType, Event]
	Parts  *entry.Buckets[PartType, Part]
}

// New returns an empty little-endian layout.
func New() *MSB {
	return &MSB{
		Models: entry.NewBuckets[ModelType, *Model](ModelMapPiece, ModelObject, ModelEnemy, ModelPlayer, ModelCollision),
		Events: entry.NewBuckets[EventType, Event](EventLight, EventSound, EventTreasure),
		Parts:  entry.NewBuckets[PartType, Part](PartMapPiece, PartObject, PartEnemy, PartCollision),
	}
}

func (m *MSB) Format() string { return "msb" }

func (m *MSB) Encode() ([]byte, error) { return m.Write() }

func (m *MSB) Summary() string {
	order := "little-endian"
	if m.BigEndian {
		order = "big-endian"
	}
	return fmt.Sprintf("%s, %d models, %d events, %d parts", order, m.Models.Len(), m.Events.Len(), m.Parts.Len())
}

// Instances counts the parts placing the named model.
func (m *MSB) Instances(model string) int32 {
	var n int32
	for _, p := range m.Parts.All() {
		if p.common().ModelName == model {
			n++
		}
	}
	return n
}

// link replaces the stored indices of every entry with the names of the
// entries they point at. models and parts must be in file order.
func link(models []*Model, events []Event, parts []Part) error {
	for _, p := range parts {
		c := p.common()
		name, err := entry.NameOf(models, c.modelIndex)
		if err != nil {
			return fmt.Errorf("msb: part %q model: %w", c.Name, err)
		}
		c.ModelName = name
		if err := p.linkNames(parts); err != nil {
			return fmt.Errorf("msb: part %q: %w", c.Name, err)
		}
	}
	for _, e := range events {
		if err := e.linkNames(parts); err != nil {
			return fmt.Errorf("msb: event %q: %w", e.EntryName(), err)
		}
	}
	return nil
}

// resolve is the reverse of link: every name is turned back into an index
// into the order the entries are about to be written in.
func resolve(models []*Model, events []Event, parts []Part) error {
	for _, p := range parts {
		c := p.common()
		idx, err := entry.IndexOf(models, c.ModelName)
		if err != nil {
			return fmt.Errorf("msb: part %q model: %w", c.Name, err)
		}
		c.modelIndex = idx
		if err := p.linkIndices(parts); err != nil {
			return fmt.Errorf("msb: part %q: %w", c.Name, err)
		}
	}
	for _, e := range events {
		if err := e.linkIndices(parts); err != nil {
			return fmt.Errorf("msb: event %q: %w", e.EntryName(), err)
		}
	}
	return nil
}
