package bridge

import (
	"fmt"
	"strings"
)

// DefaultTemplate is used when a destination declares no message template.
const DefaultTemplate = "{sender}: {message}"

const (
	fieldSender  = "sender"
	fieldMessage = "message"
)

// Template is a parsed message template. Placeholders are {sender} and
// {message}; {{ and }} produce literal braces.
type Template struct {
	raw   string
	parts []templatePart
}

type templatePart struct {
	literal string
	field   string // empty for literal parts
}

// ParseTemplate parses s, rejecting unknown fields and unbalanced braces.
func ParseTemplate(s string) (Template, error) {
	var (
		parts []templatePart
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, templatePart{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("unclosed '{' at offset %d", i)
			}
			name := s[i+1 : i+1+end]
			if name != fieldSender && name != fieldMessage {
				return Template{}, fmt.Errorf("unknown field {%s} (only {%s} and {%s} are allowed)", name, fieldSender, fieldMessage)
			}
			flush()
			parts = append(parts, templatePart{field: name})
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return Template{}, fmt.Errorf("single '}' at offset %d", i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return Template{raw: s, parts: parts}, nil
}

// MustParseTemplate is ParseTemplate that panics on error.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(fmt.Sprintf("bridge: invalid template %q: %v", s, err))
	}
	return t
}

// String returns the template source text.
func (t Template) String() string { return t.raw }

// Render substitutes sender and message into the template.
func (t Template) Render(sender, message string) string {
	var sb strings.Builder
	for _, p := range t.parts {
		switch p.field {
		case fieldSender:
			sb.WriteString(sender)
		case fieldMessage:
			sb.WriteString(message)
		default:
			sb.WriteString(p.literal)
		}
	}
	return sb.String()
}
