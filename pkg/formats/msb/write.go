package msb

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/entry"
)

// Write encodes the layout in bucket order. Every reference by name must
// resolve to an entry that is being written; nothing is emitted otherwise.
//
// Write records the resolved indices on the entries, so a layout must not be
// written from two goroutines at once.
func (m *MSB) Write() ([]byte, error) {
	models := m.Models.All()
	events := m.Events.All()
	parts := m.Parts.All()
	if err := resolve(models, events, parts); err != nil {
		return nil, err
	}

	w := cursor.NewWriter()
	w.SetBigEndian(m.BigEndian)
	w.WriteASCII(Magic)
	w.WriteBool(m.BigEndian)
	w.WriteU8(0)
	w.WriteU16(0)
	w.WriteI32(version)
	w.ReserveI32("file size")
	w.ReserveI64("models offset")
	w.ReserveI64("events offset")
	w.ReserveI64("parts offset")
	w.Pad(0x10)

	modelIdx := typeIndices[ModelType](models)
	err := writeParam(w, "models offset", modelParamName, len(models), func(i int, key string) error {
		return writeModel(w, key, models[i], modelIdx[i], m.Instances(models[i].Name))
	})
	if err != nil {
		return nil, err
	}
	eventIdx := typeIndices[EventType](events)
	err = writeParam(w, "events offset", eventParamName, len(events), func(i int, key string) error {
		return writeEvent(w, key, events[i], eventIdx[i])
	})
	if err != nil {
		return nil, err
	}
	partIdx := typeIndices[PartType](parts)
	err = writeParam(w, "parts offset", partParamName, len(parts), func(i int, key string) error {
		return writePart(w, key, parts[i], partIdx[i])
	})
	if err != nil {
		return nil, err
	}

	w.Pad(0x10)
	w.FillI32("file size", int32(w.Absolute()))
	return w.Finish(), nil
}

// typeIndices numbers each entry within its own kind.
func typeIndices[K comparable, T entry.Kinded[K]](list []T) []int32 {
	seen := make(map[K]int32)
	out := make([]int32, len(list))
	for i, e := range list {
		out[i] = seen[e.Kind()]
		seen[e.Kind()]++
	}
	return out
}

// writeParam fills headerKey with the param's offset, writes its table and
// calls writeEntry for each entry with the entry start as base.
func writeParam(w *cursor.Writer, headerKey, name string, n int, writeEntry func(i int, key string) error) error {
	w.Pad(8)
	w.FillOffset(headerKey)
	w.WriteI32(version)
	w.WriteI32(int32(n))
	w.ReserveI64(name + ".name")
	for i := range n {
		w.ReserveI64(entryKey(name, i))
	}
	w.FillOffset(name + ".name")
	if err := w.WriteUTF16(name); err != nil {
		return err
	}
	w.Pad(8)
	for i := range n {
		key := entryKey(name, i)
		w.FillOffset(key)
		if err := w.WithBase(func() error { return writeEntry(i, key) }); err != nil {
			return fmt.Errorf("msb: %s entry %d: %w", name, i, err)
		}
		w.Pad(8)
	}
	return nil
}

func entryKey(param string, i int) string { return fmt.Sprintf("%s[%d]", param, i) }

func writeModel(w *cursor.Writer, key string, m *Model, typeIndex, instances int32) error {
	w.ReserveI64(key + ".name")
	w.WriteI32(int32(m.Type))
	w.WriteI32(typeIndex)
	w.ReserveI64(key + ".sib")
	w.WriteI32(instances)
	w.WriteI32(0)

	w.FillOffset(key + ".name")
	if err := w.WriteUTF16(m.Name); err != nil {
		return err
	}
	w.FillOffset(key + ".sib")
	return w.WriteUTF16(m.SibPath)
}

func writeEvent(w *cursor.Writer, key string, e Event, typeIndex int32) error {
	c := e.common()
	w.ReserveI64(key + ".name")
	w.WriteI32(int32(e.Kind()))
	w.WriteI32(typeIndex)
	w.WriteI32(c.EventID)
	w.WriteI32(0)
	w.ReserveI64(key + ".data")

	w.FillOffset(key + ".name")
	if err := w.WriteUTF16(c.Name); err != nil {
		return err
	}
	w.Pad(8)
	w.FillOffset(key + ".data")
	e.writeData(w)
	return nil
}

func writePart(w *cursor.Writer, key string, p Part, typeIndex int32) error {
	c := p.common()
	w.ReserveI64(key + ".name")
	w.WriteI32(int32(p.Kind()))
	w.WriteI32(typeIndex)
	w.WriteI32(c.modelIndex)
	w.WriteI32(0)
	w.WriteF32s(c.Position[:])
	w.WriteF32s(c.Rotation[:])
	w.ReserveI64(key + ".sib")
	if p.hasData() {
		w.ReserveI64(key + ".data")
	} else {
		w.WriteI64(0)
	}

	w.FillOffset(key + ".name")
	if err := w.WriteUTF16(c.Name); err != nil {
		return err
	}
	w.FillOffset(key + ".sib")
	if err := w.WriteUTF16(c.SibPath); err != nil {
		return err
	}
	if p.hasData() {
		w.Pad(8)
		w.FillOffset(key + ".data")
		p.writeData(w)
	}
	return nil
}
