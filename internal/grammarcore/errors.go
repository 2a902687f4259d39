package grammarcore

// semanticError is a sentinel cause code, wrapped by error.SpecError to
// carry a source position and an offending name. Mirrors the teacher's
// grammar.SemanticError / semErrXxx sentinel list.
type semanticError struct {
	message string
}

func newSemanticError(message string) *semanticError {
	return &semanticError{message: message}
}

func (e *semanticError) Error() string {
	return e.message
}

// The fatal kinds of the normalization core: UnknownTokenType,
// UndefinedSymbol, NonterminalRequired and NoProduction, plus
// IncompatibleTokenKind (a token name redeclared with a different kind) and
// DuplicateCoercionLevel. ErrErrorSymbolReserved is declared but no pass
// reports it.
var (
	ErrUnknownTokenType = newSemanticError("unknown token attribute type")
	ErrUndefinedSymbol  = newSemanticError("undefined symbol")
	ErrNonterminalRequired = newSemanticError(
		"a production's left-hand side must be a nonterminal")
	ErrNoProduction           = newSemanticError("a grammar needs at least one production")
	ErrErrorSymbolReserved    = newSemanticError("the name is reserved")
	ErrIncompatibleTokenKind  = newSemanticError("a token name is already declared with an incompatible kind")
	ErrDuplicateCoercionLevel = newSemanticError("a coercion level conflicts with an existing category")
)
