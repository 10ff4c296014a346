// Package textshape reorders bidirectional text into visual order for
// rendering targets that only draw left to right, such as raster chart
// titles.
//
// The reordering follows the Unicode Bidirectional Algorithm for a single
// paragraph without explicit embeddings: weak types are resolved for
// numbers, neutrals take the direction of their surroundings, and runs are
// reversed by embedding level. Combining marks stay attached to their base
// character and paired brackets are mirrored inside right-to-left runs.
package textshape

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

type class int

const (
	classNeutral class = iota
	classL
	classR
	classEN
	classAN
	classES
	classET
	classCS
	classWS
	classNSM
)

type unit struct {
	runes []rune
	class class
	level int
}

var mirrors = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
	'‹': '›', '›': '‹',
}

// Shape returns text in visual order. Text without right-to-left characters
// is returned unchanged apart from NFC normalization.
func Shape(text string) string {
	if text == "" {
		return text
	}
	text = norm.NFC.String(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = shapeLine(line)
	}
	return strings.Join(lines, "\n")
}

// IsRTL reports whether the first strong character of text is right-to-left.
func IsRTL(text string) bool {
	for _, r := range text {
		switch classify(r) {
		case classR:
			return true
		case classL:
			return false
		}
	}
	return false
}

func shapeLine(line string) string {
	units := segment(line)
	if !hasRTL(units) {
		return line
	}

	base := 0
	if paragraphIsRTL(units) {
		base = 1
	}

	resolveWeak(units, base)
	resolveNeutral(units, base)
	resolveLevels(units, base)
	resetTrailingWhitespace(units, base)
	reorder(units)

	var b strings.Builder
	for _, u := range units {
		for _, r := range u.runes {
			if u.level%2 == 1 {
				if m, ok := mirrors[r]; ok {
					r = m
				}
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func classify(r rune) class {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.L:
		return classL
	case bidi.R, bidi.AL:
		return classR
	case bidi.EN:
		return classEN
	case bidi.AN:
		return classAN
	case bidi.ES:
		return classES
	case bidi.ET:
		return classET
	case bidi.CS:
		return classCS
	case bidi.WS:
		return classWS
	case bidi.NSM:
		return classNSM
	}
	return classNeutral
}

// segment groups each base character with its following combining marks.
func segment(line string) []*unit {
	var units []*unit
	for _, r := range line {
		c := classify(r)
		if c == classNSM && len(units) > 0 {
			last := units[len(units)-1]
			last.runes = append(last.runes, r)
			continue
		}
		if c == classNSM {
			c = classNeutral
		}
		units = append(units, &unit{runes: []rune{r}, class: c})
	}
	return units
}

func hasRTL(units []*unit) bool {
	for _, u := range units {
		if u.class == classR || u.class == classAN {
			return true
		}
	}
	return false
}

func paragraphIsRTL(units []*unit) bool {
	for _, u := range units {
		switch u.class {
		case classR:
			return true
		case classL:
			return false
		}
	}
	return false
}

// resolveWeak applies the number-related weak rules: separators between
// digits and terminators adjacent to digits join the number, and European
// digits following a left-to-right context become left-to-right.
func resolveWeak(units []*unit, base int) {
	for i, u := range units {
		if (u.class == classES || u.class == classCS) && i > 0 && i < len(units)-1 {
			prev, next := units[i-1].class, units[i+1].class
			if prev == classEN && next == classEN {
				u.class = classEN
			} else if u.class == classCS && prev == classAN && next == classAN {
				u.class = classAN
			}
		}
	}

	for i := range units {
		if units[i].class != classET {
			continue
		}
		j := i
		for j < len(units) && units[j].class == classET {
			j++
		}
		adjacent := (i > 0 && units[i-1].class == classEN) || (j < len(units) && units[j].class == classEN)
		for k := i; k < j; k++ {
			if adjacent {
				units[k].class = classEN
			} else {
				units[k].class = classNeutral
			}
		}
	}

	for _, u := range units {
		if u.class == classES || u.class == classCS || u.class == classWS {
			u.class = classNeutral
		}
	}

	lastStrong := classL
	if base == 1 {
		lastStrong = classR
	}
	for _, u := range units {
		switch u.class {
		case classL, classR:
			lastStrong = u.class
		case classEN:
			if lastStrong == classL {
				u.class = classL
			}
		}
	}
}

// resolveNeutral gives runs of neutrals the direction shared by both
// neighbours, numbers counting as right-to-left, or the paragraph direction.
func resolveNeutral(units []*unit, base int) {
	embedding := classL
	if base == 1 {
		embedding = classR
	}

	strongOf := func(c class) class {
		if c == classEN || c == classAN {
			return classR
		}
		return c
	}

	for i := 0; i < len(units); {
		if units[i].class != classNeutral {
			i++
			continue
		}
		j := i
		for j < len(units) && units[j].class == classNeutral {
			j++
		}
		before := embedding
		if i > 0 {
			before = strongOf(units[i-1].class)
		}
		after := embedding
		if j < len(units) {
			after = strongOf(units[j].class)
		}
		resolved := embedding
		if before == after {
			resolved = before
		}
		for k := i; k < j; k++ {
			units[k].class = resolved
		}
		i = j
	}
}

func resolveLevels(units []*unit, base int) {
	for _, u := range units {
		switch {
		case base == 0 && u.class == classR:
			u.level = 1
		case base == 0 && (u.class == classEN || u.class == classAN):
			u.level = 2
		case base == 1 && u.class != classR:
			u.level = 2
		default:
			u.level = base
		}
	}
}

func resetTrailingWhitespace(units []*unit, base int) {
	for i := len(units) - 1; i >= 0; i-- {
		if len(units[i].runes) != 1 || units[i].runes[0] != ' ' && units[i].runes[0] != '\t' {
			return
		}
		units[i].level = base
	}
}

// reorder reverses every maximal run at or above each odd level, from the
// highest level down to the lowest odd one.
func reorder(units []*unit) {
	highest, lowestOdd := 0, -1
	for _, u := range units {
		if u.level > highest {
			highest = u.level
		}
		if u.level%2 == 1 && (lowestOdd == -1 || u.level < lowestOdd) {
			lowestOdd = u.level
		}
	}
	if lowestOdd == -1 {
		lowestOdd = highest
		if lowestOdd%2 == 0 {
			lowestOdd--
		}
	}

	for level := highest; level >= lowestOdd && level > 0; level-- {
		for i := 0; i < len(units); {
			if units[i].level < level {
				i++
				continue
			}
			j := i
			for j < len(units) && units[j].level >= level {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				units[a], units[b] = units[b], units[a]
			}
			i = j
		}
	}
}
