package runtime

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/internal/util"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/gazelle/table"
)

// FormatError renders a *gxerrors.ParseError as human-readable text in the
// shape "at state S: unexpected X; expected one of {...}". t is consulted
// for symbol names; nil falls back to numeric IDs.
func FormatError(err *gxerrors.ParseError, t *table.CompiledTable) string {
	if err.Wrapped != nil {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("at state %d: unexpected %s", err.State, symbolText(t, err.Terminal)))

	if len(err.Expected) > 0 {
		names := make([]string, len(err.Expected))
		for i, id := range err.Expected {
			names[i] = symbolText(t, id)
		}
		sb.WriteString("; expected one of {")
		sb.WriteString(util.MakeTextList(names))
		sb.WriteString("}")
	}

	return sb.String()
}

func symbolText(t *table.CompiledTable, id int) string {
	if t == nil {
		return fmt.Sprintf("terminal %d", id)
	}
	return t.SymbolName(symbol.ID(id))
}
