package canonical

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agenthands/flowalign/internal/core/textnorm"
)

const (
	DefaultNodeType = "custom"
	DefaultNodeIcon = "widgets"
)

type flowNode struct {
	id      string
	label   string
	typ     string
	icon    string
	content string
}

type flowConnection struct {
	from   string
	to     string
	reason string
}

// parseNode reads one untrusted node entry. ok is false when the entry is not
// an object or lacks an id or label.
func parseNode(raw any) (flowNode, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return flowNode{}, false
	}
	n := flowNode{
		id:      strings.TrimSpace(field(m, "id")),
		label:   textnorm.NormalizeText(field(m, "label")),
		typ:     textnorm.NormalizeText(field(m, "type")),
		icon:    strings.TrimSpace(field(m, "icon")),
		content: strings.TrimSpace(field(m, "content")),
	}
	if n.id == "" || n.label == "" {
		return flowNode{}, false
	}
	if n.typ == "" {
		n.typ = DefaultNodeType
	}
	if n.icon == "" {
		n.icon = DefaultNodeIcon
	}
	if n.content == "" {
		n.content = n.label
	}
	return n, true
}

func parseConnection(raw any) (flowConnection, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return flowConnection{}, false
	}
	c := flowConnection{
		from:   strings.TrimSpace(field(m, "from")),
		to:     strings.TrimSpace(field(m, "to")),
		reason: strings.TrimSpace(field(m, "reason")),
	}
	if c.from == "" || c.to == "" {
		return flowConnection{}, false
	}
	return c, true
}

// field stringifies scalar values; anything else reads as empty.
func field(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
