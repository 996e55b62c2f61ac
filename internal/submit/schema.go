package submit

import (
	"encoding/json"
	"strings"

	"orderdesk/internal/pkg/convert"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// draftSchema is the shape a stored draft must satisfy to be restored
// wholesale. Unknown fields are ignored for forward compatibility; a record
// failing the schema still goes through the field-by-field salvage path.
const draftSchema = `{
  "type": "object",
  "properties": {
    "v":                {"type": "integer"},
    "action":           {"type": "string"},
    "product_type":     {"type": "string"},
    "qty_selection":    {"type": "string"},
    "group_acc":        {"type": "boolean"},
    "diff_qty":         {"type": "boolean"},
    "multiplier":       {"type": "boolean"},
    "quantity":         {"type": "string"},
    "order_type":       {"type": "string"},
    "duration":         {"type": "string"},
    "amo":              {"type": "boolean"},
    "exchange":         {"type": "string"},
    "symbol":           {"type": "string"},
    "price":            {"type": "number"},
    "trigger_price":    {"type": "number"},
    "disclosed_qty":    {"type": "number"},
    "selected_clients": {"type": "array", "items": {"type": "string"}},
    "selected_groups":  {"type": "array", "items": {"type": "string"}},
    "per_client_qty":   {"type": "object"},
    "per_group_qty":    {"type": "object"}
  }
}`

var compiledDraftSchema = mustCompileDraftSchema()

func mustCompileDraftSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("draft.json", strings.NewReader(draftSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("draft.json")
}

// DecodeDraft restores a draft from its stored bytes. A record passing the
// schema is decoded directly; anything else is salvaged field by field, so a
// half-corrupted record still restores every field that is present and
// well-typed. Never returns an error: the worst case is the defaults.
func DecodeDraft(raw []byte) TradeDraft {
	draft := DefaultDraft()
	if len(raw) == 0 {
		return draft
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return draft
	}
	if err := compiledDraftSchema.Validate(doc); err == nil {
		if err := json.Unmarshal(raw, &draft); err == nil {
			draft.normalize()
			return draft
		}
		draft = DefaultDraft()
	}
	salvageDraftFields(raw, &draft)
	draft.normalize()
	return draft
}

// salvageDraftFields copies every well-typed field out of a malformed record,
// leaving defaults in place for the rest.
func salvageDraftFields(raw []byte, d *TradeDraft) {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return
	}
	str := func(key string, dst *string) {
		if v := parsed.Get(key); v.Type == gjson.String {
			*dst = v.String()
		}
	}
	boolean := func(key string, dst *bool) {
		if v := parsed.Get(key); v.IsBool() {
			*dst = v.Bool()
		}
	}
	number := func(key string, dst *float64) {
		if v := parsed.Get(key); v.Type == gjson.Number {
			*dst = v.Float()
		}
	}
	strs := func(key string, dst *[]string) {
		v := parsed.Get(key)
		if !v.IsArray() {
			return
		}
		out := []string{}
		v.ForEach(func(_, item gjson.Result) bool {
			if item.Type == gjson.String {
				out = append(out, item.String())
			}
			return true
		})
		*dst = out
	}
	strMap := func(key string, dst *map[string]string) {
		v := parsed.Get(key)
		if !v.IsObject() {
			return
		}
		out := map[string]string{}
		v.ForEach(func(k, item gjson.Result) bool {
			switch item.Type {
			case gjson.String:
				out[k.String()] = item.String()
			case gjson.Number:
				out[k.String()] = convert.ToString(item.Float())
			}
			return true
		})
		*dst = out
	}

	if v := parsed.Get("v"); v.Type == gjson.Number {
		d.Version = int(v.Int())
	}
	str("action", &d.Action)
	str("product_type", &d.ProductType)
	str("qty_selection", &d.QtySelection)
	boolean("group_acc", &d.GroupAcc)
	boolean("diff_qty", &d.DiffQty)
	boolean("multiplier", &d.Multiplier)
	str("quantity", &d.Quantity)
	str("order_type", &d.OrderType)
	str("duration", &d.Duration)
	boolean("amo", &d.AMO)
	str("exchange", &d.Exchange)
	str("symbol", &d.Symbol)
	number("price", &d.Price)
	number("trigger_price", &d.TriggerPrice)
	number("disclosed_qty", &d.DisclosedQty)
	strs("selected_clients", &d.SelectedClients)
	strs("selected_groups", &d.SelectedGroups)
	strMap("per_client_qty", &d.PerClientQty)
	strMap("per_group_qty", &d.PerGroupQty)
}
