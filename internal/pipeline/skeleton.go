package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for template skeletons.
var (
	ErrUnknownSlot = errors.New("unknown template slot")
	ErrMissingSlot = errors.New("missing required template slot")
)

// Slot names a substitution point in a template: {{ name }}.
type Slot string

const (
	SlotTitle     Slot = "title"
	SlotBody      Slot = "body"
	SlotStyles    Slot = "styles"
	SlotWatermark Slot = "watermark"
	SlotModeClass Slot = "modeClass"
)

var knownSlots = map[Slot]bool{
	SlotTitle:     true,
	SlotBody:      true,
	SlotStyles:    true,
	SlotWatermark: true,
	SlotModeClass: true,
}

var slotToken = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// skeletonPart is either literal text or a slot reference.
type skeletonPart struct {
	text string
	slot Slot
}

// Skeleton is a parsed page template. Parsing validates every slot up front,
// so rendering cannot fail.
type Skeleton struct {
	Name   string
	Source string
	parts  []skeletonPart
	slots  map[Slot]bool
}

// ParseSkeleton scans src for {{ slot }} tokens.
func ParseSkeleton(name, src string) (*Skeleton, error) {
	s := &Skeleton{Name: name, Source: src, slots: map[Slot]bool{}}

	last := 0
	for _, m := range slotToken.FindAllStringSubmatchIndex(src, -1) {
		slot := Slot(src[m[2]:m[3]])
		if !knownSlots[slot] {
			return nil, fmt.Errorf("%w: {{%s}} in template %q", ErrUnknownSlot, slot, name)
		}
		if m[0] > last {
			s.parts = append(s.parts, skeletonPart{text: src[last:m[0]]})
		}
		s.parts = append(s.parts, skeletonPart{slot: slot})
		s.slots[slot] = true
		last = m[1]
	}
	if last < len(src) {
		s.parts = append(s.parts, skeletonPart{text: src[last:]})
	}

	if !s.slots[SlotBody] {
		return nil, fmt.Errorf("%w: template %q has no {{body}}", ErrMissingSlot, name)
	}
	return s, nil
}

// Has reports whether the template references slot.
func (s *Skeleton) Has(slot Slot) bool {
	return s.slots[slot]
}

// Render substitutes every slot. Missing values render as empty strings.
// Values are inserted verbatim; escaping is the caller's job.
func (s *Skeleton) Render(values map[Slot]string) string {
	var b strings.Builder
	for _, p := range s.parts {
		if p.slot == "" {
			b.WriteString(p.text)
			continue
		}
		b.WriteString(values[p.slot])
	}
	return b.String()
}
