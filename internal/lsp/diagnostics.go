package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kanso/internal/errors"
)

// ConvertError turns the lexer/parser/SSA pipeline's result into zero or
// one LSP diagnostics: a nil err yields an empty slice (clearing any prior
// diagnostic), a errors.CompilerError yields one positioned diagnostic, and
// any other error (an internal invariant violation) is reported at the
// start of the document since it carries no source position.
func ConvertError(err error) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}

	ce, ok := err.(errors.CompilerError)
	if !ok {
		return []protocol.Diagnostic{{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("kanso"),
			Message:  err.Error(),
		}}
	}

	length := ce.Length
	if length <= 0 {
		length = 1
	}
	line := uint32(0)
	if ce.Position.Line > 0 {
		line = uint32(ce.Position.Line - 1)
	}
	startChar := uint32(0)
	if ce.Position.Column > 0 {
		startChar = uint32(ce.Position.Column - 1)
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: startChar},
			End:   protocol.Position{Line: line, Character: startChar + uint32(length)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString(string(errors.KindOf(ce.Code))),
		Message:  "[" + ce.Code + "] " + ce.Message,
	}}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
