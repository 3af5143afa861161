// Package ast defines the abstract syntax tree produced by the parser
// for one Modelica compilation unit (spec §3.1). Every node follows the
// teacher idiom of a small marker-method sealed interface (exprNode,
// equationNode, statementNode, ...) instead of a visitor, since Go has
// no sum types: the marker method is what makes Expr/Equation/Statement
// "closed" to this package's own node set.
package ast

import "fmt"

// Node is the base interface every AST node implements.
type Node interface {
	String() string
	Position() Pos
}

// Pos is a single point in source.
type Pos struct {
	Line   int
	Column int
	File   string
	Offset int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a source range, used for diagnostics and for the serializer.
type Span struct {
	Start Pos
	End   Pos
}

// StoredDefinition is the result of parsing one compilation unit (§3.1).
type StoredDefinition struct {
	WithinSet bool   // true if a `within` clause was present
	Within    string // dotted prefix; "" for `within ;` (global root)
	Classes   []*ClassDefinition
	Pos       Pos
}

func (s *StoredDefinition) Position() Pos { return s.Pos }
func (s *StoredDefinition) String() string {
	return fmt.Sprintf("StoredDefinition(%d classes)", len(s.Classes))
}

// ClassByName looks up a top-level class declared in this unit.
func (s *StoredDefinition) ClassByName(name string) (*ClassDefinition, bool) {
	for _, c := range s.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Kind is the class-prefix keyword (§3.1).
type Kind int

const (
	KindModel Kind = iota
	KindClass
	KindBlock
	KindConnector
	KindRecord
	KindType
	KindPackage
	KindFunction
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindClass:
		return "class"
	case KindBlock:
		return "block"
	case KindConnector:
		return "connector"
	case KindRecord:
		return "record"
	case KindType:
		return "type"
	case KindPackage:
		return "package"
	case KindFunction:
		return "function"
	case KindOperator:
		return "operator"
	default:
		return "class"
	}
}

// ClassDefinition is one class/model/block/.../record declaration.
type ClassDefinition struct {
	Name         string
	Kind         Kind
	Partial      bool
	Encapsulated bool
	Final        bool

	Extends []*Extend
	Imports []*ImportClause

	Components []*Component
	Nested     []*ClassDefinition

	Equations         []Equation
	InitialEquations  []Equation
	Algorithms        []*Algorithm
	InitialAlgorithms []*Algorithm

	Description string
	Annotation  *Modifier

	// EnumLiterals holds the ordered literal names of an enumeration
	// short class definition ("type Colors = enumeration(Red, Green,
	// Blue);"); empty for every other Kind, including an ordinary
	// KindType alias like "type Voltage = Real(unit=\"V\");".
	EnumLiterals []string

	Pos  Pos
	Span Span
}

func (c *ClassDefinition) Position() Pos { return c.Pos }
func (c *ClassDefinition) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Name)
}

// ComponentByName looks up a directly declared component (not inherited).
func (c *ClassDefinition) ComponentByName(name string) (*Component, bool) {
	for _, comp := range c.Components {
		if comp.Name == name {
			return comp, true
		}
	}
	return nil, false
}

// NestedByName looks up a directly nested class declaration.
func (c *ClassDefinition) NestedByName(name string) (*ClassDefinition, bool) {
	for _, n := range c.Nested {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// IsAbstract reports whether the class is exempt from the balance check
// (spec §4.4 step 4: "Partial and abstract classes are exempt").
func (c *ClassDefinition) IsAbstract() bool {
	return c.Partial || c.Kind == KindFunction || c.Kind == KindPackage || c.Kind == KindType
}

// Variability is a component's time-variability (§3.1).
type Variability int

const (
	Continuous Variability = iota
	Discrete
	Parameter
	Constant
)

func (v Variability) String() string {
	switch v {
	case Discrete:
		return "discrete"
	case Parameter:
		return "parameter"
	case Constant:
		return "constant"
	default:
		return "continuous"
	}
}

// Causality is a component's input/output role (§3.1).
type Causality int

const (
	NoCausality Causality = iota
	Input
	Output
)

func (c Causality) String() string {
	switch c {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return ""
	}
}

// ConnectorPrefix is the flow/stream qualifier on a connector component.
type ConnectorPrefix int

const (
	NoPrefix ConnectorPrefix = iota
	Flow
	Stream
)

func (p ConnectorPrefix) String() string {
	switch p {
	case Flow:
		return "flow"
	case Stream:
		return "stream"
	default:
		return ""
	}
}

// Visibility is the enclosing section (public/protected) a component or
// nested class was declared in.
type Visibility int

const (
	Public Visibility = iota
	Protected
)

// Component is one declared variable/parameter/sub-instance (§3.1).
type Component struct {
	Name string

	TypeName     string // dotted type reference, e.g. "Modelica.SIunits.Angle"
	TypeModifier *Modifier

	Dims []Expr // array dimension expressions, outermost first

	Variability Variability
	Causality   Causality
	Connector   ConnectorPrefix

	Inner bool
	Outer bool
	Scope Visibility

	Replaceable bool
	Redeclare   bool
	Final       bool
	Each        bool

	Start     Expr // optional start/default binding expression
	Modifier  *Modifier
	Condition Expr // optional conditional-existence expression

	Description string
	Annotation  *Modifier

	Pos Pos
}

func (c *Component) Position() Pos { return c.Pos }
func (c *Component) String() string {
	return fmt.Sprintf("%s %s", c.TypeName, c.Name)
}

// Modifier is a (possibly nested) set of name -> value overrides attached
// to a type, an extends clause, or a component declaration (§3.1, §4.3).
type Modifier struct {
	Entries []*ModifierEntry
	Pos     Pos
}

// ModifierEntry is one `name(...) = value` or `name.sub = value` override.
type ModifierEntry struct {
	Name     string // possibly dotted, e.g. "a.b"
	Each     bool
	Final    bool
	Value    Expr      // optional binding expression
	Nested   *Modifier // optional nested modifier (for composite sub-components)
	Redeclare bool
	Pos      Pos
}

func (m *Modifier) Position() Pos { return m.Pos }
func (m *Modifier) String() string { return fmt.Sprintf("modifier(%d)", len(m.Entries)) }

// Lookup returns the entry for `name` directly in this modifier, if any.
func (m *Modifier) Lookup(name string) (*ModifierEntry, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Annotation is a vendor-extension modifier tree attached to a class or
// component (e.g. `annotation(Icon(...), Documentation(...))`).
// It is not part of the DAE and carries no classification/balance weight;
// the flattener does not copy it into the FlatClass, so the serializer
// never emits it.
type Annotation = Modifier

// Extend is one `extends` clause (§3.1).
type Extend struct {
	TypeName string
	Modifier *Modifier
	Pos      Pos
}

func (e *Extend) Position() Pos  { return e.Pos }
func (e *Extend) String() string { return "extends " + e.TypeName }

// ImportKind distinguishes the four import clause shapes (§3.1).
type ImportKind int

const (
	ImportQualified ImportKind = iota
	ImportRename
	ImportUnqualified
	ImportSelective
)

// ImportClause is one `import` declaration.
type ImportClause struct {
	Kind     ImportKind
	Name     string   // dotted target, e.g. "A.B.C" or "A.B" for wildcard/selective
	Alias    string   // only for ImportRename
	Wildcard bool     // only for ImportUnqualified: true for "A.B.*"
	Names    []string // only for ImportSelective: the "{X, Y}" short names
	Pos      Pos
}

func (i *ImportClause) Position() Pos { return i.Pos }
func (i *ImportClause) String() string {
	switch i.Kind {
	case ImportRename:
		return fmt.Sprintf("import %s = %s", i.Alias, i.Name)
	case ImportUnqualified:
		return fmt.Sprintf("import %s.*", i.Name)
	case ImportSelective:
		return fmt.Sprintf("import %s.{...}", i.Name)
	default:
		return "import " + i.Name
	}
}

// ----------------------------------------------------------------------
// Equations (§3.1)
// ----------------------------------------------------------------------

// Equation is the sealed interface for every equation-section form.
type Equation interface {
	Node
	equationNode()
}

// CondBlock pairs a guard expression with the equations/statements that
// apply when it holds. Used by IfEquation/WhenEquation and their
// statement counterparts.
type CondBlock struct {
	Cond Expr
	Eqs  []Equation
}

// SimpleEquation is `lhs = rhs;`.
type SimpleEquation struct {
	Lhs, Rhs Expr
	Pos      Pos
}

func (*SimpleEquation) equationNode()       {}
func (e *SimpleEquation) Position() Pos     { return e.Pos }
func (e *SimpleEquation) String() string    { return "equation" }

// IfEquation is `if cond then eqs elseif ... else eqs end if;`.
type IfEquation struct {
	Branches []CondBlock
	Else     []Equation
	Pos      Pos
}

func (*IfEquation) equationNode()    {}
func (e *IfEquation) Position() Pos  { return e.Pos }
func (e *IfEquation) String() string { return "if-equation" }

// ForEquation is `for index in range loop eqs end for;`.
type ForEquation struct {
	Index string
	Range Expr
	Eqs   []Equation
	Pos   Pos
}

func (*ForEquation) equationNode()    {}
func (e *ForEquation) Position() Pos  { return e.Pos }
func (e *ForEquation) String() string { return "for-equation" }

// WhenEquation is `when cond then eqs elsewhen ... end when;`.
type WhenEquation struct {
	Branches []CondBlock
	Pos      Pos
}

func (*WhenEquation) equationNode()    {}
func (e *WhenEquation) Position() Pos  { return e.Pos }
func (e *WhenEquation) String() string { return "when-equation" }

// ConnectEquation is `connect(lhs, rhs);`.
type ConnectEquation struct {
	Lhs, Rhs *ComponentReference
	Pos      Pos
}

func (*ConnectEquation) equationNode()    {}
func (e *ConnectEquation) Position() Pos  { return e.Pos }
func (e *ConnectEquation) String() string { return "connect-equation" }

// ReinitEquation is `reinit(ref, rhs);`.
type ReinitEquation struct {
	Ref *ComponentReference
	Rhs Expr
	Pos Pos
}

func (*ReinitEquation) equationNode()    {}
func (e *ReinitEquation) Position() Pos  { return e.Pos }
func (e *ReinitEquation) String() string { return "reinit-equation" }

// AssertEquation is `assert(cond, msg);` used in equation position.
type AssertEquation struct {
	Cond Expr
	Msg  Expr
	Pos  Pos
}

func (*AssertEquation) equationNode()    {}
func (e *AssertEquation) Position() Pos  { return e.Pos }
func (e *AssertEquation) String() string { return "assert-equation" }

// ----------------------------------------------------------------------
// Algorithms and statements (§3.1)
// ----------------------------------------------------------------------

// Algorithm is one `algorithm ... end` section.
type Algorithm struct {
	Stmts []Statement
	Pos   Pos
}

func (a *Algorithm) Position() Pos { return a.Pos }
func (a *Algorithm) String() string {
	return fmt.Sprintf("algorithm(%d stmts)", len(a.Stmts))
}

// Statement is the sealed interface for every algorithm statement form.
type Statement interface {
	Node
	statementNode()
}

// CondStmtBlock is the statement-section analog of CondBlock.
type CondStmtBlock struct {
	Cond  Expr
	Stmts []Statement
}

// AssignStmt is `lhs := rhs;`.
type AssignStmt struct {
	Lhs, Rhs Expr
	Pos      Pos
}

func (*AssignStmt) statementNode()    {}
func (s *AssignStmt) Position() Pos   { return s.Pos }
func (s *AssignStmt) String() string  { return "assign-stmt" }

// IfStmt is `if cond then stmts elseif ... else stmts end if;`.
type IfStmt struct {
	Branches []CondStmtBlock
	Else     []Statement
	Pos      Pos
}

func (*IfStmt) statementNode()    {}
func (s *IfStmt) Position() Pos   { return s.Pos }
func (s *IfStmt) String() string  { return "if-stmt" }

// ForStmt is `for index in range loop stmts end for;`.
type ForStmt struct {
	Index string
	Range Expr
	Stmts []Statement
	Pos   Pos
}

func (*ForStmt) statementNode()    {}
func (s *ForStmt) Position() Pos   { return s.Pos }
func (s *ForStmt) String() string  { return "for-stmt" }

// WhileStmt is `while cond loop stmts end while;`.
type WhileStmt struct {
	Cond  Expr
	Stmts []Statement
	Pos   Pos
}

func (*WhileStmt) statementNode()    {}
func (s *WhileStmt) Position() Pos   { return s.Pos }
func (s *WhileStmt) String() string  { return "while-stmt" }

// WhenStmt is `when cond then stmts elsewhen ... end when;`.
type WhenStmt struct {
	Branches []CondStmtBlock
	Pos      Pos
}

func (*WhenStmt) statementNode()    {}
func (s *WhenStmt) Position() Pos   { return s.Pos }
func (s *WhenStmt) String() string  { return "when-stmt" }

// BreakStmt is `break;`.
type BreakStmt struct{ Pos Pos }

func (*BreakStmt) statementNode()   {}
func (s *BreakStmt) Position() Pos  { return s.Pos }
func (s *BreakStmt) String() string { return "break" }

// ReturnStmt is `return;`.
type ReturnStmt struct{ Pos Pos }

func (*ReturnStmt) statementNode()   {}
func (s *ReturnStmt) Position() Pos  { return s.Pos }
func (s *ReturnStmt) String() string { return "return" }

// AssertStmt is `assert(cond, msg);` used in algorithm position.
type AssertStmt struct {
	Cond Expr
	Msg  Expr
	Pos  Pos
}

func (*AssertStmt) statementNode()    {}
func (s *AssertStmt) Position() Pos   { return s.Pos }
func (s *AssertStmt) String() string  { return "assert-stmt" }

// ----------------------------------------------------------------------
// Expressions (§3.1)
// ----------------------------------------------------------------------

// Expr is the sealed interface for every expression form.
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Pos   Pos
}

func (*IntLit) exprNode()        {}
func (e *IntLit) Position() Pos  { return e.Pos }
func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }

// RealLit is a floating-point literal.
type RealLit struct {
	Value float64
	Pos   Pos
}

func (*RealLit) exprNode()        {}
func (e *RealLit) Position() Pos  { return e.Pos }
func (e *RealLit) String() string { return fmt.Sprintf("%g", e.Value) }

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
	Pos   Pos
}

func (*StringLit) exprNode()        {}
func (e *StringLit) Position() Pos  { return e.Pos }
func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Pos   Pos
}

func (*BoolLit) exprNode()        {}
func (e *BoolLit) Position() Pos  { return e.Pos }
func (e *BoolLit) String() string { return fmt.Sprintf("%t", e.Value) }

// RefPart is one (identifier, subscript-list) segment of a component
// reference, e.g. the `x[2]` in `a.x[2].y`.
type RefPart struct {
	Name       string
	Subscripts []Expr
}

// ComponentReference is a dotted chain of RefParts, optionally rooted at
// the global namespace (a leading dot, e.g. `.Modelica.Constants.pi`).
type ComponentReference struct {
	Global bool
	Parts  []RefPart
	Pos    Pos
}

func (*ComponentReference) exprNode()       {}
func (r *ComponentReference) Position() Pos { return r.Pos }
func (r *ComponentReference) String() string {
	out := ""
	if r.Global {
		out = "."
	}
	for i, p := range r.Parts {
		if i > 0 {
			out += "."
		}
		out += p.Name
	}
	return out
}

// Name returns the full dotted name of the reference, ignoring
// subscripts.
func (r *ComponentReference) Name() string { return r.String() }

// UnaryExpr is a prefix operator: `-x`, `+x`, `not x`.
type UnaryExpr struct {
	Op  string
	X   Expr
	Pos Pos
}

func (*UnaryExpr) exprNode()        {}
func (e *UnaryExpr) Position() Pos  { return e.Pos }
func (e *UnaryExpr) String() string { return e.Op + "(...)" }

// BinaryExpr covers arithmetic, relational, and logical infix operators:
// +, -, *, /, ^, ==, <>, <, <=, >, >=, and, or.
type BinaryExpr struct {
	Op   string
	L, R Expr
	Pos  Pos
}

func (*BinaryExpr) exprNode()        {}
func (e *BinaryExpr) Position() Pos  { return e.Pos }
func (e *BinaryExpr) String() string { return "(... " + e.Op + " ...)" }

// IfExpr is the expression form `if cond then e1 elseif ... else e2`.
type IfExpr struct {
	Branches []struct {
		Cond Expr
		Then Expr
	}
	Else Expr
	Pos  Pos
}

func (*IfExpr) exprNode()        {}
func (e *IfExpr) Position() Pos  { return e.Pos }
func (e *IfExpr) String() string { return "if-expr" }

// NamedArg is a `name = value` function call argument.
type NamedArg struct {
	Name  string
	Value Expr
}

// CallExpr is a function or builtin-operator application, e.g.
// `der(x)`, `sin(theta)`, `Modelica.Math.atan2(y, x, id=1)`.
type CallExpr struct {
	Func  string
	Args  []Expr
	Named []NamedArg
	Pos   Pos
}

func (*CallExpr) exprNode()        {}
func (e *CallExpr) Position() Pos  { return e.Pos }
func (e *CallExpr) String() string { return e.Func + "(...)" }

// ArrayExpr is an array constructor `{e1, e2, ...}`.
type ArrayExpr struct {
	Elements []Expr
	Pos      Pos
}

func (*ArrayExpr) exprNode()        {}
func (e *ArrayExpr) Position() Pos  { return e.Pos }
func (e *ArrayExpr) String() string { return "{...}" }

// MatrixExpr is a matrix constructor `[r1c1, r1c2; r2c1, r2c2]`.
type MatrixExpr struct {
	Rows [][]Expr
	Pos  Pos
}

func (*MatrixExpr) exprNode()        {}
func (e *MatrixExpr) Position() Pos  { return e.Pos }
func (e *MatrixExpr) String() string { return "[...]" }

// RangeExpr is `start:stop` or `start:step:stop`.
type RangeExpr struct {
	Start Expr
	Step  Expr // nil when no explicit step was given
	Stop  Expr
	Pos   Pos
}

func (*RangeExpr) exprNode()        {}
func (e *RangeExpr) Position() Pos  { return e.Pos }
func (e *RangeExpr) String() string { return "range" }

// ColonExpr is the bare `:` subscript meaning "all indices of this
// dimension", e.g. the second subscript in `a[1, :]`.
type ColonExpr struct{ Pos Pos }

func (*ColonExpr) exprNode()        {}
func (e *ColonExpr) Position() Pos  { return e.Pos }
func (e *ColonExpr) String() string { return ":" }

// EndExpr is the `end` keyword used inside a subscript, e.g. `a[end]`.
type EndExpr struct{ Pos Pos }

func (*EndExpr) exprNode()        {}
func (e *EndExpr) Position() Pos  { return e.Pos }
func (e *EndExpr) String() string { return "end" }
