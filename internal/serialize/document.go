// Package serialize turns a built dae.Dae into the stable §6 document
// shape: a schema-versioned struct with fixed JSON field names, omitted
// (not null) optional fields, and equations rendered as a tagged tree
// of expressions any external consumer can walk without Go types.
//
// Grounded on the teacher's internal/errors/json_encoder.go (a small
// result type that always marshals the same way) and internal/schema's
// versioned-document idea: a Dae document carries a schema field the
// same way the teacher's error reports carry "ailang.error/v1".
package serialize

import (
	"sort"

	"github.com/go-modelica/moc/internal/dae"
)

// SchemaV1 is the stable schema tag for the document shape this
// package produces.
const SchemaV1 = "moc.dae/v1"

// ComponentDoc is the §4.5 record shape for one scalar component.
type ComponentDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Variability string `json:"variability,omitempty"`
	Causality   string `json:"causality,omitempty"`
	Start       any    `json:"start,omitempty"`
	Dims        []any  `json:"dims,omitempty"`
	Description string `json:"description,omitempty"`
}

// ConditionDoc is one entry of the §3.3 `c` condition→indicator map.
type ConditionDoc struct {
	Name         string `json:"name"`
	Condition    any    `json:"condition"`
	EventTrigger bool   `json:"event_trigger,omitempty"`
}

// BalanceDoc reports the §4.4 step-4 equation/unknown balance outcome.
type BalanceDoc struct {
	Status    string `json:"status"`
	Delta     int    `json:"delta"`
	Equations int    `json:"equations"`
	Unknowns  int    `json:"unknowns"`
}

// Document is the full §6 structured DAE document.
type Document struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`

	Parameters  []*ComponentDoc `json:"parameters,omitempty"`
	Constants   []*ComponentDoc `json:"constants,omitempty"`
	Time        *ComponentDoc   `json:"time,omitempty"`
	States      []*ComponentDoc `json:"states,omitempty"`
	Derivatives []*ComponentDoc `json:"derivatives,omitempty"`
	Algebraic   []*ComponentDoc `json:"algebraic,omitempty"`
	Inputs      []*ComponentDoc `json:"inputs,omitempty"`
	Discrete    []*ComponentDoc `json:"discrete,omitempty"`
	Modes       []*ComponentDoc `json:"modes,omitempty"`

	PreStates   []*ComponentDoc `json:"pre_x,omitempty"`
	PreDiscrete []*ComponentDoc `json:"pre_z,omitempty"`
	PreModes    []*ComponentDoc `json:"pre_m,omitempty"`

	Conditions []*ConditionDoc `json:"conditions,omitempty"`

	Equations         []any `json:"equations,omitempty"`
	InitialEquations  []any `json:"initial_equations,omitempty"`
	DiscreteEquations []any `json:"discrete_equations,omitempty"`
	ModeEquations     []any `json:"mode_equations,omitempty"`
	ReinitActions     []any `json:"reinit_actions,omitempty"`

	Balance *BalanceDoc `json:"balance,omitempty"`
}

// Build renders d into its stable document form.
func Build(d *dae.Dae) *Document {
	doc := &Document{
		Schema:      SchemaV1,
		Name:        d.Name,
		Parameters:  componentDocs(d.P),
		Constants:   componentDocs(d.Cp),
		States:      componentDocs(d.X),
		Derivatives: componentDocs(d.XDot),
		Algebraic:   componentDocs(d.Y),
		Inputs:      componentDocs(d.U),
		Discrete:    componentDocs(d.Z),
		Modes:       componentDocs(d.M),
		PreStates:   componentDocs(d.PreX),
		PreDiscrete: componentDocs(d.PreZ),
		PreModes:    componentDocs(d.PreM),
		Conditions:  conditionDocs(d.C),

		Equations:         equationNodes(d.Fx),
		InitialEquations:  equationNodes(d.FxInit),
		DiscreteEquations: equationNodes(d.Fz),
		ModeEquations:     equationNodes(d.Fm),
		ReinitActions:     equationNodes(d.Fr),

		Balance: balanceDoc(d.Balance),
	}
	if d.T != nil {
		doc.Time = componentDoc(d.T)
	}
	return doc
}

func componentDoc(v *dae.Variable) *ComponentDoc {
	doc := &ComponentDoc{
		Name:        v.Name,
		Type:        v.TypeName,
		Variability: v.Variability.String(),
		Causality:   v.Causality.String(),
		Description: v.Description,
	}
	if v.Start != nil {
		doc.Start = exprNode(v.Start)
	}
	for _, dim := range v.Dims {
		doc.Dims = append(doc.Dims, exprNode(dim))
	}
	return doc
}

func componentDocs(vars []*dae.Variable) []*ComponentDoc {
	if len(vars) == 0 {
		return nil
	}
	out := make([]*ComponentDoc, len(vars))
	for i, v := range vars {
		out[i] = componentDoc(v)
	}
	return out
}

// conditionDocs renders dae.Dae.C (a Go map, so iteration order isn't
// stable on its own) sorted by indicator name for deterministic output.
func conditionDocs(c map[string]*dae.Indicator) []*ConditionDoc {
	if len(c) == 0 {
		return nil
	}
	indicators := make([]*dae.Indicator, 0, len(c))
	for _, ind := range c {
		indicators = append(indicators, ind)
	}
	sort.Slice(indicators, func(i, j int) bool { return indicators[i].Name < indicators[j].Name })

	out := make([]*ConditionDoc, len(indicators))
	for i, ind := range indicators {
		out[i] = &ConditionDoc{Name: ind.Name, Condition: exprNode(ind.Cond), EventTrigger: ind.EventTrigger}
	}
	return out
}

func balanceDoc(b dae.BalanceResult) *BalanceDoc {
	return &BalanceDoc{Status: b.Status.String(), Delta: b.Delta, Equations: b.EquationCount, Unknowns: b.UnknownCount}
}
