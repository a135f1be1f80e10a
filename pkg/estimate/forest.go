package estimate

import (
	"fmt"

	"github.com/google/uuid"

	"costline-hq/costline/pkg/takeoff"
)

// node is one item in a zone's attachment forest. Children are items
// whose parent reference points at this node's item.
type node struct {
	item *takeoff.Item
	cond *takeoff.Condition

	children []*node

	// usable holds per-quantity values after attachment subtraction,
	// keyed by quantity name. Populated by computeUsable.
	usable map[string]float64
}

// forest is a zone's attachment structure: every item exactly once,
// either as a root or as a descendant of a root.
type forest struct {
	roots []*node
	byID  map[uuid.UUID]*node
}

// buildForest links a zone's items into parent/child trees. Items whose
// parent reference cannot be resolved within the zone are detached and
// treated as roots with a warning; cycles are broken the same way. The
// returned warnings preserve item declaration order.
func buildForest(zone *takeoff.ZoneState) (*forest, []Warning) {
	f := &forest{byID: make(map[uuid.UUID]*node)}

	// Index every item in the zone, in declaration order, so edge
	// resolution and cycle breaking are deterministic.
	var ordered []*node
	for ci := range zone.Conditions {
		cs := &zone.Conditions[ci]
		for ii := range cs.Items {
			n := &node{item: &cs.Items[ii], cond: cs.Condition}
			f.byID[n.item.ID] = n
			ordered = append(ordered, n)
		}
	}

	var warnings []Warning

	// parent holds the resolved edge for each attached node. An edge is
	// recorded only when the referenced parent exists in this zone.
	parent := make(map[*node]*node)
	for _, n := range ordered {
		pid := n.item.ParentItemID
		if pid == nil {
			continue
		}
		p, ok := f.byID[*pid]
		if !ok || p == n {
			id := n.item.ID
			warnings = append(warnings, Warning{
				Kind:    WarningDanglingParent,
				Message: fmt.Sprintf("item references parent %s not present in zone; treating as unattached", pid),
				ItemID:  &id,
			})
			continue
		}
		parent[n] = p
	}

	childrenOf := make(map[*node][]*node)
	for _, n := range ordered {
		p, attached := parent[n]
		if !attached {
			f.roots = append(f.roots, n)
			continue
		}
		childrenOf[p] = append(childrenOf[p], n)
	}

	// Walk down from the roots. Anything left unvisited afterwards sits
	// on a cycle with no path from any root.
	visited := make(map[*node]bool, len(ordered))
	attachChildren := func(root *node) {
		stack := []*node{root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			for _, c := range childrenOf[cur] {
				if !visited[c] {
					cur.children = append(cur.children, c)
					stack = append(stack, c)
				}
			}
		}
	}
	for _, r := range f.roots {
		attachChildren(r)
	}

	// Break cycles: the first unvisited node in declaration order loses
	// its parent edge and becomes a new root, then its subtree is walked
	// normally. Repeats until every item is placed.
	for _, n := range ordered {
		if visited[n] {
			continue
		}
		id := n.item.ID
		warnings = append(warnings, Warning{
			Kind:    WarningAttachmentCycle,
			Message: "attachment references form a cycle; detaching item from its parent",
			ItemID:  &id,
		})
		delete(parent, n)
		f.roots = append(f.roots, n)
		attachChildren(n)
	}

	return f, warnings
}

// computeUsable fills every node's usable quantity map, children before
// parents. A quantity flagged exclude-attachments on the owning condition
// has the usable values of direct children with the same quantity name
// subtracted from the measured value, clamped at zero.
func (f *forest) computeUsable() []Warning {
	var warnings []Warning

	type frame struct {
		n        *node
		expanded bool
	}
	var stack []frame
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{n: f.roots[i]})
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			top.expanded = true
			for i := len(top.n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{n: top.n.children[i]})
			}
			continue
		}
		n := top.n
		stack = stack[:len(stack)-1]

		exclude := make(map[string]bool)
		if n.cond != nil {
			for _, q := range n.cond.Quantities {
				if q.ExcludeAttachments {
					exclude[q.Name] = true
				}
			}
		}

		n.usable = make(map[string]float64, len(n.item.QuantityValues))
		for _, qv := range n.item.QuantityValues {
			v := qv.Value
			if exclude[qv.Name] {
				for _, c := range n.children {
					v -= c.usable[qv.Name]
				}
				if v < 0 {
					id := n.item.ID
					warnings = append(warnings, Warning{
						Kind:    WarningNegativeClamped,
						Message: fmt.Sprintf("attached children exceed measured %q value %g; clamping to zero", qv.Name, qv.Value),
						ItemID:  &id,
					})
					v = 0
				}
			}
			n.usable[qv.Name] = v
		}
	}

	return warnings
}
