// Package errors provides the centralized diagnostic taxonomy for moc.
// Every stage of the pipeline (lexer, parser, resolver, flattener, DAE
// builder) reports through the same structured Report type so a caller
// never has to special-case which phase produced a diagnostic.
package errors

// Error code constants, grouped by the taxonomy in spec §7.
const (
	// ============================================================
	// LexicalError (LEX###)
	// ============================================================

	// LEX001 indicates an unterminated string literal.
	LEX001 = "LEX001"
	// LEX002 indicates an unterminated block comment.
	LEX002 = "LEX002"
	// LEX003 indicates an invalid escape sequence inside a string.
	LEX003 = "LEX003"
	// LEX004 indicates a character that cannot start any token.
	LEX004 = "LEX004"

	// ============================================================
	// ParseError (PAR###)
	// ============================================================

	// PAR001 indicates an unexpected token.
	PAR001 = "PAR001"
	// PAR002 indicates a missing closing delimiter or 'end <name>'.
	PAR002 = "PAR002"
	// PAR003 indicates an invalid component declaration.
	PAR003 = "PAR003"
	// PAR004 indicates an invalid extends clause.
	PAR004 = "PAR004"
	// PAR005 indicates an invalid import clause.
	PAR005 = "PAR005"
	// PAR006 indicates an invalid equation.
	PAR006 = "PAR006"
	// PAR007 indicates an invalid algorithm statement.
	PAR007 = "PAR007"
	// PAR008 indicates an invalid expression.
	PAR008 = "PAR008"

	// ============================================================
	// ResolveError (RES###)
	// ============================================================

	// RES001 indicates an unknown identifier.
	RES001 = "RES001"
	// RES002 indicates cyclic inheritance.
	RES002 = "RES002"
	// RES003 indicates an import target that could not be found.
	RES003 = "RES003"
	// RES004 indicates a duplicate import of the same short name.
	RES004 = "RES004"
	// RES005 indicates a package directory that could not be loaded.
	RES005 = "RES005"

	// ============================================================
	// FlattenError (FLT###)
	// ============================================================

	// FLT001 indicates a modification of an already-final element.
	FLT001 = "FLT001"
	// FLT002 indicates a redeclaration of a non-replaceable element.
	FLT002 = "FLT002"
	// FLT003 indicates der() applied to a non-identifier expression.
	FLT003 = "FLT003"
	// FLT004 indicates the extends-chain recursion guard tripped.
	FLT004 = "FLT004"
	// FLT005 indicates a modification targeting an unknown name.
	FLT005 = "FLT005"
	// FLT006 indicates a stream connector, which is unsupported.
	FLT006 = "FLT006"
	// FLT007 indicates a tuple-output call assigned to multiple
	// left-hand sides that could not be inlined (the callee is not a
	// local single-algorithm function, or its output count doesn't
	// match the tuple), so no projection can be formed.
	FLT007 = "FLT007"

	// ============================================================
	// ClassifyError (CLS###)
	// ============================================================

	// CLS001 indicates contradictory variability/causality classification,
	// e.g. der() applied to a parameter or constant.
	CLS001 = "CLS001"
	// CLS002 indicates der(der(v)) (second derivative), which is rejected.
	CLS002 = "CLS002"

	// ============================================================
	// UnsupportedFeature (UNS###)
	// ============================================================

	// UNS001 indicates a stream connector.
	UNS001 = "UNS001"
	// UNS002 indicates a clocked/synchronous construct.
	UNS002 = "UNS002"
	// UNS003 indicates a state-machine construct.
	UNS003 = "UNS003"
	// UNS004 indicates an external function linking request.
	UNS004 = "UNS004"
	// UNS005 indicates an overloaded operator declaration.
	UNS005 = "UNS005"

	// ============================================================
	// BalanceWarning (BAL###) - non-fatal
	// ============================================================

	// BAL001 indicates an overdetermined flat class (more equations than unknowns).
	BAL001 = "BAL001"
	// BAL002 indicates an underdetermined flat class (fewer equations than unknowns).
	BAL002 = "BAL002"
)

// ErrorInfo describes one diagnostic code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every known code to its descriptive info.
var Registry = map[string]ErrorInfo{
	LEX001: {LEX001, "lexer", "syntax", "Unterminated string literal"},
	LEX002: {LEX002, "lexer", "syntax", "Unterminated block comment"},
	LEX003: {LEX003, "lexer", "syntax", "Invalid escape sequence"},
	LEX004: {LEX004, "lexer", "syntax", "Illegal character"},

	PAR001: {PAR001, "parser", "syntax", "Unexpected token"},
	PAR002: {PAR002, "parser", "syntax", "Missing closing delimiter"},
	PAR003: {PAR003, "parser", "syntax", "Invalid component declaration"},
	PAR004: {PAR004, "parser", "syntax", "Invalid extends clause"},
	PAR005: {PAR005, "parser", "syntax", "Invalid import clause"},
	PAR006: {PAR006, "parser", "syntax", "Invalid equation"},
	PAR007: {PAR007, "parser", "syntax", "Invalid algorithm statement"},
	PAR008: {PAR008, "parser", "syntax", "Invalid expression"},

	RES001: {RES001, "resolve", "scope", "Unknown identifier"},
	RES002: {RES002, "resolve", "inheritance", "Cyclic inheritance"},
	RES003: {RES003, "resolve", "import", "Import target not found"},
	RES004: {RES004, "resolve", "import", "Duplicate import"},
	RES005: {RES005, "resolve", "package", "Package directory load failure"},

	FLT001: {FLT001, "flatten", "modifier", "Illegal modification of final element"},
	FLT002: {FLT002, "flatten", "redeclare", "Redeclaration of non-replaceable element"},
	FLT003: {FLT003, "flatten", "der", "der() argument is not a simple identifier"},
	FLT004: {FLT004, "flatten", "recursion", "Extends-chain recursion depth exceeded"},
	FLT005: {FLT005, "flatten", "modifier", "Modification of unknown name"},
	FLT006: {FLT006, "flatten", "connect", "Stream connector unsupported"},
	FLT007: {FLT007, "flatten", "tuple", "Tuple-output call could not be inlined"},

	CLS001: {CLS001, "classify", "variability", "Contradictory variability/causality"},
	CLS002: {CLS002, "classify", "der", "der(der(v)) is not supported"},

	UNS001: {UNS001, "unsupported", "connector", "Stream connectors are unsupported"},
	UNS002: {UNS002, "unsupported", "clocked", "Clocked/synchronous constructs are unsupported"},
	UNS003: {UNS003, "unsupported", "statemachine", "State machines are unsupported"},
	UNS004: {UNS004, "unsupported", "external", "External C function linking is unsupported"},
	UNS005: {UNS005, "unsupported", "operator", "Overloaded operators are unsupported"},

	BAL001: {BAL001, "balance", "overdetermined", "More scalar equations than unknowns"},
	BAL002: {BAL002, "balance", "underdetermined", "Fewer scalar equations than unknowns"},
}

// GetErrorInfo returns the descriptive info for a code, if known.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsWarning reports whether a code is non-fatal. Per the spec §7
// propagation policy, only BalanceWarning is non-fatal; everything else
// is either a hard error or aborts parsing outright.
func IsWarning(code string) bool {
	info, ok := GetErrorInfo(code)
	return ok && info.Phase == "balance"
}
