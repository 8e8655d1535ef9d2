package lacc

import "fmt"

// SyntaxError is reported when the token stream does not match the
// grammar.  Parsing does not recover from it.
type SyntaxError struct {
	Loc      Location
	Expected string
	Got      Token
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("expected %s but got `%s` @ %s", e.Expected, e.Got, e.Loc)
}

// SemanticError is reported for declaration, type, initializer and
// expression faults.  Like syntax errors, these abort the translation.
type SemanticError struct {
	Loc     Location
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.Loc)
}
