package mapfile

import (
	"fmt"
	"strings"

	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Item lines use the micro-grammar
//
//	CHAR = TYPE(key1:value1,key2:value2,...)
//
// Values may contain commas, colons, and parentheses in two ways: a value
// whose first character is '(' is read as a balanced group verbatim (used
// for coordinate tuples like pos:(3,1)), and anywhere else the escapes
// \, \( \) \: \\ stand for the literal character. Keys are split from
// values at the first unescaped colon.

// itemLine is one parsed items-section line. Props keep their source order
// so unknown keys re-emit verbatim.
type itemLine struct {
	Char  rune
	Type  string
	Props []itemProp
}

type itemProp struct {
	Key   string
	Value string
}

// get returns the first value for key, consuming nothing.
func (l *itemLine) get(key string) (string, bool) {
	for _, p := range l.Props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// parseItemLine tokenizes a CHAR = TYPE(...) line.
func parseItemLine(line string) (*itemLine, error) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return nil, errors.InvalidArgumentf("item line %q missing '='", line)
	}

	charPart := strings.TrimSpace(line[:eq])
	if len([]rune(charPart)) != 1 {
		return nil, errors.InvalidArgumentf("item line %q needs a single bind character, got %q", line, charPart)
	}

	rest := strings.TrimSpace(line[eq+1:])
	open := strings.Index(rest, "(")
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return nil, errors.InvalidArgumentf("item line %q missing TYPE(...) body", line)
	}

	typeName := strings.TrimSpace(rest[:open])
	if typeName == "" {
		return nil, errors.InvalidArgumentf("item line %q missing type name", line)
	}

	body := rest[open+1 : len(rest)-1]
	props, err := parseProps(body)
	if err != nil {
		return nil, errors.Wrapf(err, "item line %q", line)
	}

	return &itemLine{
		Char:  []rune(charPart)[0],
		Type:  strings.ToUpper(typeName),
		Props: props,
	}, nil
}

// parseProps splits a comma-separated key:value list, honoring escapes and
// parenthesized value groups.
func parseProps(body string) ([]itemProp, error) {
	var props []itemProp
	runes := []rune(body)
	i := 0

	for i < len(runes) {
		// Skip separators and padding between pairs.
		for i < len(runes) && (runes[i] == ',' || runes[i] == ' ') {
			i++
		}
		if i >= len(runes) {
			break
		}

		// Key runs to the first unescaped colon.
		var key strings.Builder
		for i < len(runes) && runes[i] != ':' {
			if runes[i] == '\\' && i+1 < len(runes) {
				i++
			}
			key.WriteRune(runes[i])
			i++
		}
		if i >= len(runes) {
			return nil, errors.InvalidArgumentf("property %q missing ':'", key.String())
		}
		i++ // consume ':'

		value, next, err := parseValue(runes, i)
		if err != nil {
			return nil, err
		}
		i = next

		props = append(props, itemProp{Key: strings.TrimSpace(key.String()), Value: value})
	}
	return props, nil
}

// parseValue reads one value starting at i. A leading '(' begins a balanced
// group captured verbatim; otherwise the value ends at the first unescaped
// comma.
func parseValue(runes []rune, i int) (string, int, error) {
	for i < len(runes) && runes[i] == ' ' {
		i++
	}
	if i < len(runes) && runes[i] == '(' {
		depth := 0
		start := i
		for ; i < len(runes); i++ {
			switch runes[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return string(runes[start : i+1]), i + 1, nil
				}
			}
		}
		return "", i, errors.InvalidArgument("unterminated parenthesized value")
	}

	var value strings.Builder
	for i < len(runes) && runes[i] != ',' {
		if runes[i] == '\\' {
			i++
			if i >= len(runes) {
				return "", i, errors.InvalidArgument("dangling escape at end of value")
			}
		}
		value.WriteRune(runes[i])
		i++
	}
	return strings.TrimRight(value.String(), " "), i, nil
}

// escapeValue makes a raw string safe inside an item body.
func escapeValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ',', '(', ')', ':':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatPoint renders a coordinate tuple value.
func formatPoint(x, y int) string {
	return fmt.Sprintf("(%d,%d)", x, y)
}

// parsePoint reads a "(x,y)" tuple.
func parsePoint(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	var x, y int
	if _, err := fmt.Sscanf(s, "(%d,%d)", &x, &y); err != nil {
		return 0, 0, errors.InvalidArgumentf("bad coordinate tuple %q", s)
	}
	return x, y, nil
}

// parsePointList reads "[(x,y), (x,y), ...]" waypoint lists from zone lines.
func parsePointList(s string, floor int) ([]entities.Position, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.InvalidArgumentf("bad point list %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}

	var points []entities.Position
	for inner != "" {
		open := strings.Index(inner, "(")
		closing := strings.Index(inner, ")")
		if open < 0 || closing < open {
			return nil, errors.InvalidArgumentf("bad point list %q", s)
		}
		x, y, err := parsePoint(inner[open : closing+1])
		if err != nil {
			return nil, err
		}
		points = append(points, entities.Position{X: x, Y: y, Floor: floor})
		inner = strings.TrimSpace(inner[closing+1:])
		inner = strings.TrimPrefix(inner, ",")
		inner = strings.TrimSpace(inner)
	}
	return points, nil
}

// formatPointList renders waypoints for a zone line.
func formatPointList(points []entities.Position) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatPoint(p.X, p.Y)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
