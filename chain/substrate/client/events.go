package client

import (
	"bytes"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

const ExtrinsicFailedEvent = "System.ExtrinsicFailed"

type fieldDecoder interface {
	Decode(decoder *scale.Decoder) (any, error)
}

type eventLayout struct {
	Name   string
	Fields []fieldDecoder
}

// EventDecoders knows the name and field layout of every event of the runtime.
type EventDecoders map[types.EventID]eventLayout

func NewEventDecoders(meta *types.Metadata) (EventDecoders, error) {
	eventRegistry, err := registry.NewFactory().CreateEventRegistry(meta)
	if err != nil {
		return nil, fmt.Errorf("could not build event registry: %w", err)
	}
	decoders := EventDecoders{}
	for id, eventType := range eventRegistry {
		fields := make([]fieldDecoder, len(eventType.Fields))
		for i, field := range eventType.Fields {
			fields[i] = field.FieldDecoder
		}
		decoders[id] = eventLayout{Name: eventType.Name, Fields: fields}
	}
	return decoders, nil
}

// FindExtrinsicFailure walks the encoded System.Events of a block. If the
// extrinsic at the given index emitted System.ExtrinsicFailed, the encoded
// event data, starting with the DispatchError, is returned.
func (d EventDecoders) FindExtrinsicFailure(raw []byte, extrinsicIndex uint32) ([]byte, bool, error) {
	reader := bytes.NewReader(raw)
	decoder := scale.NewDecoder(reader)
	count, err := decoder.DecodeUintCompact()
	if err != nil {
		return nil, false, fmt.Errorf("could not decode event count: %w", err)
	}
	for i := uint64(0); i < count.Uint64(); i++ {
		var phase types.Phase
		if err := decoder.Decode(&phase); err != nil {
			return nil, false, fmt.Errorf("could not decode phase of event %d: %w", i, err)
		}
		var id types.EventID
		if err := decoder.Decode(&id); err != nil {
			return nil, false, fmt.Errorf("could not decode id of event %d: %w", i, err)
		}
		layout, ok := d[id]
		if !ok {
			return nil, false, fmt.Errorf("unknown event id %v at position %d", id, i)
		}
		if layout.Name == ExtrinsicFailedEvent && phase.IsApplyExtrinsic && phase.AsApplyExtrinsic == extrinsicIndex {
			offset := len(raw) - reader.Len()
			return raw[offset:], true, nil
		}
		for j, field := range layout.Fields {
			if _, err := field.Decode(decoder); err != nil {
				return nil, false, fmt.Errorf("could not decode field %d of %s: %w", j, layout.Name, err)
			}
		}
		var topics []types.Hash
		if err := decoder.Decode(&topics); err != nil {
			return nil, false, fmt.Errorf("could not decode topics of %s: %w", layout.Name, err)
		}
	}
	return nil, false, nil
}
