// Package style implements the prop patch model the repair rules share: a
// rule inspects the current props and returns a Patch holding only the keys
// it is allowed to write, and Apply merges that patch into the node.
package style

import (
	"reflect"
	"sort"
	"strings"

	"github.com/phobologic/uirepair/internal/model"
)

// Well-known prop keys.
const (
	KeyResponsive = "responsive"
	KeyHover      = "hover"
	KeyMarker     = "_repaired"

	Tablet = "tablet"
	Mobile = "mobile"
)

// paddingKeys are the props that make up a padding block.
var paddingKeys = []string{
	"padding", "paddingTop", "paddingRight", "paddingBottom", "paddingLeft",
	"paddingX", "paddingY", "paddingInline", "paddingBlock",
}

// Patch is a set of prop writes.
type Patch map[string]any

// Force writes value regardless of the current value.
func (p Patch) Force(key string, value any) {
	p[key] = value
}

// Default writes value only if key is currently unset in props.
func (p Patch) Default(props model.Props, key string, value any) {
	if IsUnset(props[key]) {
		p[key] = value
	}
}

// DefaultBlock writes value under props[key][sub] only if that nested entry
// is unset. The nested map is copied, never modified in place. A props[key]
// that holds something other than an object is left alone.
func (p Patch) DefaultBlock(props model.Props, key, sub string, value any) {
	block := p.block(props, key)
	if block != nil && IsUnset(block[sub]) {
		block[sub] = value
	}
}

// ForceBlock writes props[key][sub][field] = value, creating the nested maps
// as needed and leaving their other entries intact. It reports false, writing
// nothing, when either level holds something other than an object.
func (p Patch) ForceBlock(props model.Props, key, sub, field string, value any) bool {
	block := p.block(props, key)
	if block == nil {
		return false
	}
	if !IsUnset(block[sub]) && asMap(block[sub]) == nil {
		return false
	}
	inner := copyMap(asMap(block[sub]))
	inner[field] = value
	block[sub] = inner
	return true
}

func (p Patch) block(props model.Props, key string) map[string]any {
	if existing, ok := p[key].(map[string]any); ok {
		return existing
	}
	current := asMap(props[key])
	if current == nil && !IsUnset(props[key]) {
		return nil
	}
	block := copyMap(current)
	p[key] = block
	return block
}

// Apply merges patch into n.Props and returns the sorted keys whose value
// actually changed. A nil Props map is created on first write.
func Apply(n *model.Node, patch Patch) []string {
	var changed []string
	for key, value := range patch {
		if current, ok := n.Props[key]; ok && reflect.DeepEqual(plain(current), plain(value)) {
			continue
		}
		if n.Props == nil {
			n.Props = make(model.Props)
		}
		n.Props[key] = value
		changed = append(changed, key)
	}
	sort.Strings(changed)
	return changed
}

// IsUnset reports whether a prop value counts as absent: missing, null or an
// empty string.
func IsUnset(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

// String returns the prop as a string. ok is false for non-string values.
func String(props model.Props, key string) (s string, ok bool) {
	s, ok = props[key].(string)
	return s, ok
}

// HasAny reports whether any of the keys is set in props.
func HasAny(props model.Props, keys ...string) bool {
	for _, k := range keys {
		if !IsUnset(props[k]) {
			return true
		}
	}
	return false
}

// HasPadding reports whether props carry any padding block at all.
func HasPadding(props model.Props) bool {
	return HasAny(props, paddingKeys...)
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case model.Props:
		return m
	default:
		return nil
	}
}

// plain converts nested model.Props to map[string]any so values built by a
// patch compare equal to the same values held as Props.
func plain(v any) any {
	m := asMap(v)
	if m == nil {
		return v
	}
	out := make(map[string]any, len(m))
	for k, inner := range m {
		out[k] = plain(inner)
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Recorder receives every rule application that changed a node. A nil
// Recorder discards them.
type Recorder func(n *model.Node, rule string, keys []string)

// Record calls r if it is non-nil.
func (r Recorder) Record(n *model.Node, rule string, keys []string) {
	if r != nil {
		r(n, rule, keys)
	}
}
