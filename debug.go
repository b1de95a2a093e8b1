package libevents

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
)

const (
	redactedMarker  = "[REDACTED]"
	circularMarker  = "[Circular]"
	maxSummaryDepth = 8
)

var sensitiveField = regexp.MustCompile(`(?i)password|token|secret|key|auth|credential`)

// debugFilter decides which keys produce Listen and Fire diagnostics. The raw filter is a comma separated
// list; it is split into a set on first use and the set is dropped whenever the filter changes.
type debugFilter struct {
	mu       sync.Mutex
	raw      string
	patterns map[string]struct{}
}

func newDebugFilter(raw string) *debugFilter {
	return &debugFilter{raw: raw}
}

func (f *debugFilter) set(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
	f.patterns = nil
}

func (f *debugFilter) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}

func (f *debugFilter) enabled() bool {
	return f.get() != ""
}

func (f *debugFilter) parsed() map[string]struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patterns == nil {
		f.patterns = make(map[string]struct{})
		for _, p := range strings.Split(f.raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.patterns[p] = struct{}{}
			}
		}
	}
	return f.patterns
}

// matches reports whether diagnostics are on for key. A pattern matches when it is "all", equals the key,
// is contained in the key or contains the key.
func (f *debugFilter) matches(key Key) bool {
	if !f.enabled() {
		return false
	}
	patterns := f.parsed()
	if _, ok := patterns[DebugAll]; ok {
		return true
	}
	label := key.label()
	if _, ok := patterns[label]; ok {
		return true
	}
	for p := range patterns {
		if strings.Contains(label, p) {
			return true
		}
		// the empty label is contained in every pattern, so it only matches through "all"
		if label != "" && strings.Contains(p, label) {
			return true
		}
	}
	return false
}

// summarizeArgs renders emission arguments for logs, hiding sensitive-looking fields and cutting cycles.
func summarizeArgs(args []any) string {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = sanitize(reflect.ValueOf(arg), map[uintptr]struct{}{}, 0)
	}
	return fmt.Sprintf("%v", out)
}

func sanitize(v reflect.Value, seen map[uintptr]struct{}, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxSummaryDepth {
		return "..."
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if _, ok := seen[ptr]; ok {
			return circularMarker
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), seen, depth)
	}

	switch v.Kind() {
	case reflect.Pointer:
		return sanitize(v.Elem(), seen, depth+1)
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			name := fmt.Sprint(iter.Key().Interface())
			if sensitiveField.MatchString(name) {
				out[name] = redactedMarker
				continue
			}
			out[name] = sanitize(iter.Value(), seen, depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Sprintf("<%d bytes>", v.Len())
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = sanitize(v.Index(i), seen, depth+1)
		}
		return out
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			if sensitiveField.MatchString(field.Name) {
				out[field.Name] = redactedMarker
				continue
			}
			out[field.Name] = sanitize(v.Field(i), seen, depth+1)
		}
		return out
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("<%s>", v.Type())
	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return fmt.Sprintf("<%s>", v.Type())
	}
}
