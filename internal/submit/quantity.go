package submit

import "orderdesk/internal/pkg/convert"

// SingleQtyApplies implements the quantity-mode rule table:
//
//	group mode + differentiated  -> per-group quantities
//	group mode, not differentiated -> single quantity (multiplier mode included)
//	individual mode + differentiated with >=1 client -> per-client quantities
//	otherwise -> single quantity
func SingleQtyApplies(groupAcc, diffQty bool, selectedClients int) bool {
	if groupAcc {
		return !diffQty
	}
	if diffQty && selectedClients > 0 {
		return false
	}
	return true
}

// EffectiveQuantities is the resolved submission quantity set. Both maps are
// always non-nil; they are empty when not applicable so the payload shape
// stays constant.
type EffectiveQuantities struct {
	Single    int
	PerClient map[string]int
	PerGroup  map[string]int
}

// Distribute resolves the draft's quantity fields. Blank or invalid entries
// default to 1, never 0: a zero quantity reaching the router would be
// rejected per client with a confusing error, and the original form never
// allowed it either.
func Distribute(d TradeDraft) EffectiveQuantities {
	out := EffectiveQuantities{
		PerClient: map[string]int{},
		PerGroup:  map[string]int{},
	}
	if SingleQtyApplies(d.GroupAcc, d.DiffQty, len(d.SelectedClients)) {
		out.Single = convert.PositiveIntOr(d.Quantity, 1)
	}
	if !d.GroupAcc && d.DiffQty {
		for _, cid := range d.SelectedClients {
			out.PerClient[cid] = convert.PositiveIntOr(d.PerClientQty[cid], 1)
		}
	}
	if d.GroupAcc && d.DiffQty {
		for _, name := range d.SelectedGroups {
			out.PerGroup[name] = convert.PositiveIntOr(d.PerGroupQty[name], 1)
		}
	}
	return out
}
