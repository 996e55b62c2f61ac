package broker

import (
	"strings"

	"orderdesk/internal/model"

	"github.com/tidwall/gjson"
)

// NormalizeGroups flattens the /groups response into the canonical group
// shape. Router versions disagree on field names (name|group_name|id,
// members|clients), so lookup goes through gjson with fallbacks instead of a
// rigid struct.
func NormalizeGroups(raw []byte) []model.Group {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	items := gjson.GetBytes(raw, "groups")
	if !items.IsArray() {
		return nil
	}
	var out []model.Group
	items.ForEach(func(_, g gjson.Result) bool {
		name := firstString(g, "name", "group_name", "id")
		if name == "" {
			return true
		}
		members := g.Get("members")
		if !members.Exists() {
			members = g.Get("clients")
		}
		var clientNames []string
		members.ForEach(func(_, m gjson.Result) bool {
			label := strings.TrimSpace(m.Get("name").String())
			if label == "" {
				label = strings.TrimSpace(m.String())
			}
			if label != "" {
				clientNames = append(clientNames, label)
			}
			return true
		})
		multiplier := g.Get("multiplier").Float()
		if multiplier == 0 {
			multiplier = 1
		}
		out = append(out, model.Group{
			GroupName:   name,
			NoOfClients: len(clientNames),
			Multiplier:  multiplier,
			ClientNames: clientNames,
		})
		return true
	})
	return out
}

// NormalizeSymbols flattens /search_symbols results into value/label pairs,
// accepting the id|value|symbol and text|label spellings.
func NormalizeSymbols(raw []byte) []model.SymbolOption {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	items := gjson.GetBytes(raw, "results")
	if !items.IsArray() {
		return nil
	}
	var out []model.SymbolOption
	items.ForEach(func(_, r gjson.Result) bool {
		value := firstString(r, "id", "value", "symbol", "text")
		if value == "" {
			return true
		}
		label := firstString(r, "text", "label")
		if label == "" {
			label = value
		}
		out = append(out, model.SymbolOption{Value: value, Label: label})
		return true
	})
	return out
}

// collapseMessage reduces a {message: string|[string]} envelope to one line.
func collapseMessage(raw []byte, fallback string) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return fallback
	}
	msg := gjson.GetBytes(raw, "message")
	switch {
	case msg.IsArray():
		var parts []string
		msg.ForEach(func(_, m gjson.Result) bool {
			if s := strings.TrimSpace(m.String()); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	case msg.Exists():
		if s := strings.TrimSpace(msg.String()); s != "" {
			return s
		}
	}
	return fallback
}

func firstString(r gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(r.Get(key).String()); v != "" {
			return v
		}
	}
	return ""
}
