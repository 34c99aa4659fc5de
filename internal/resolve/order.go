package resolve

import (
	"strings"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// EmissionOrder sorts a lowered model's entities so every foreign-key
// target precedes its referents, keeping the model's own ordering where
// possible. Junction tables depend on both their endpoints and always come
// last. Both relational writers emit in this order.
func EmissionOrder(m *schema.Model) ([]*schema.Entity, error) {
	var regular, junctions []*schema.Entity
	for i := range m.Entities {
		e := &m.Entities[i]
		if IsJunction(e) {
			junctions = append(junctions, e)
		} else {
			regular = append(regular, e)
		}
	}

	emitted := make(map[string]bool, len(m.Entities))
	ready := func(e *schema.Entity) bool {
		for _, fk := range e.ForeignKeys() {
			// Self-references resolve within one statement.
			if fk.Ref.Entity == e.Name {
				continue
			}
			if !emitted[fk.Ref.Entity] {
				return false
			}
		}
		return true
	}

	var order []*schema.Entity
	for len(regular) > 0 {
		progressed := false
		rest := regular[:0]
		for _, e := range regular {
			if ready(e) {
				emitted[e.Name] = true
				order = append(order, e)
				progressed = true
			} else {
				rest = append(rest, e)
			}
		}
		regular = rest
		if !progressed {
			names := make([]string, len(regular))
			for i, e := range regular {
				names[i] = e.Name
			}
			return nil, schema.NewError(schema.ErrCyclicReference, strings.Join(names, ", "),
				"no emission order exists: tables %s form a reference cycle", strings.Join(names, ", "))
		}
	}

	return append(order, junctions...), nil
}
