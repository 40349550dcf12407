package client

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// ModuleError is one entry of a pallet's Error enum.
type ModuleError struct {
	Pallet string
	Name   string
	Docs   []string
}

// Formats as "<section>.<name>: <docs>", e.g. "assets.NoPermission: The signing account has no permission to do the operation."
func (m ModuleError) String() string {
	return fmt.Sprintf("%s.%s: %s", Section(m.Pallet), m.Name, strings.Join(m.Docs, " "))
}

// DispatchVariant is a variant of sp_runtime::DispatchError. Variants wrapping
// another enum (Token, Arithmetic, Transactional) carry its variant names.
type DispatchVariant struct {
	Name  string
	Inner map[uint8]string
}

// ErrorRegistry decodes SCALE encoded DispatchErrors into readable reasons.
type ErrorRegistry struct {
	Variants map[uint8]DispatchVariant
	Modules  map[uint8]map[uint8]ModuleError
}

var defaultDispatchVariants = map[uint8]DispatchVariant{
	0: {Name: "Other"},
	1: {Name: "CannotLookup"},
	2: {Name: "BadOrigin"},
	3: {Name: "Module"},
	4: {Name: "ConsumerRemaining"},
	5: {Name: "NoProviders"},
	6: {Name: "TooManyConsumers"},
	7: {Name: "Token", Inner: map[uint8]string{
		0: "NoFunds",
		1: "WouldDie",
		2: "BelowMinimum",
		3: "CannotCreate",
		4: "UnknownAsset",
		5: "Frozen",
		6: "Unsupported",
	}},
	8: {Name: "Arithmetic", Inner: map[uint8]string{
		0: "Underflow",
		1: "Overflow",
		2: "DivisionByZero",
	}},
	9: {Name: "Transactional", Inner: map[uint8]string{
		0: "LimitReached",
		1: "NoLayer",
	}},
	10: {Name: "Exhausted"},
	11: {Name: "Corruption"},
	12: {Name: "Unavailable"},
}

// DefaultErrorRegistry knows the DispatchError layout but no pallet errors.
func DefaultErrorRegistry() *ErrorRegistry {
	variants := make(map[uint8]DispatchVariant, len(defaultDispatchVariants))
	for index, variant := range defaultDispatchVariants {
		variants[index] = variant
	}
	return &ErrorRegistry{
		Variants: variants,
		Modules:  map[uint8]map[uint8]ModuleError{},
	}
}

var dispatchErrorPath = "sp_runtime::DispatchError"

// NewErrorRegistry reads pallet error enums and the DispatchError layout from v14 metadata.
func NewErrorRegistry(meta *types.Metadata) (*ErrorRegistry, error) {
	if meta.Version < 14 {
		return nil, fmt.Errorf("unsupported metadata version %d", meta.Version)
	}
	registry := DefaultErrorRegistry()
	v14 := meta.AsMetadataV14
	lookup := func(id types.Si1LookupTypeID) (*types.Si1Type, bool) {
		if v14.EfficientLookup != nil {
			t, ok := v14.EfficientLookup[id.Int64()]
			if ok {
				return t, true
			}
		}
		for i := range v14.Lookup.Types {
			if v14.Lookup.Types[i].ID.Int64() == id.Int64() {
				return &v14.Lookup.Types[i].Type, true
			}
		}
		return nil, false
	}

	for _, pallet := range v14.Pallets {
		if !pallet.HasErrors {
			continue
		}
		errorType, ok := lookup(pallet.Errors.Type)
		if !ok || !errorType.Def.IsVariant {
			continue
		}
		errs := map[uint8]ModuleError{}
		for _, variant := range errorType.Def.Variant.Variants {
			errs[uint8(variant.Index)] = ModuleError{
				Pallet: string(pallet.Name),
				Name:   string(variant.Name),
				Docs:   texts(variant.Docs),
			}
		}
		registry.Modules[uint8(pallet.Index)] = errs
	}

	for _, portable := range v14.Lookup.Types {
		if joinPath(portable.Type.Path) != dispatchErrorPath || !portable.Type.Def.IsVariant {
			continue
		}
		variants := map[uint8]DispatchVariant{}
		for _, variant := range portable.Type.Def.Variant.Variants {
			dispatchVariant := DispatchVariant{Name: string(variant.Name)}
			if dispatchVariant.Name != "Module" && len(variant.Fields) == 1 {
				inner, ok := lookup(variant.Fields[0].Type)
				if ok && inner.Def.IsVariant {
					dispatchVariant.Inner = map[uint8]string{}
					for _, innerVariant := range inner.Def.Variant.Variants {
						dispatchVariant.Inner[uint8(innerVariant.Index)] = string(innerVariant.Name)
					}
				}
			}
			variants[uint8(variant.Index)] = dispatchVariant
		}
		registry.Variants = variants
		break
	}
	return registry, nil
}

// Decode turns an encoded DispatchError into a reason: "section.Name: docs" for
// module errors, the inner variant for token/arithmetic/transactional errors,
// or the variant name otherwise.
func (r *ErrorRegistry) Decode(encoded []byte) (string, error) {
	if len(encoded) == 0 {
		return "", fmt.Errorf("empty dispatch error")
	}
	variant, ok := r.Variants[encoded[0]]
	if !ok {
		return fmt.Sprintf("DispatchError(%d)", encoded[0]), nil
	}
	if variant.Name == "Module" {
		if len(encoded) < 3 {
			return "", fmt.Errorf("truncated module error: %x", encoded)
		}
		palletIndex, errorIndex := encoded[1], encoded[2]
		moduleErr, ok := r.Modules[palletIndex][errorIndex]
		if !ok {
			return fmt.Sprintf("Module(%d).Error(%d)", palletIndex, errorIndex), nil
		}
		return moduleErr.String(), nil
	}
	if variant.Inner != nil {
		if len(encoded) < 2 {
			return "", fmt.Errorf("truncated %s error: %x", variant.Name, encoded)
		}
		inner, ok := variant.Inner[encoded[1]]
		if !ok {
			return fmt.Sprintf("%s(%d)", variant.Name, encoded[1]), nil
		}
		return inner, nil
	}
	return variant.Name, nil
}

// Section is the lower camel case pallet name, e.g. "Assets" -> "assets".
func Section(pallet string) string {
	if pallet == "" {
		return pallet
	}
	runes := []rune(pallet)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func texts(docs []types.Text) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		trimmed := strings.TrimSpace(string(doc))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinPath(path types.Si1Path) string {
	parts := make([]string, len(path))
	for i, part := range path {
		parts[i] = string(part)
	}
	return strings.Join(parts, "::")
}
