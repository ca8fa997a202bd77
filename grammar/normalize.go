package grammar

import (
	"strings"

	"github.com/dekarrin/gazelle/gxerrors"
	"github.com/dekarrin/gazelle/symbol"
)

// modKind is the flavor of convenience modifier attached to one RHS element.
type modKind int

const (
	modNone modKind = iota
	modOpt          // X?
	modStar         // X*
	modPlus         // X+
	modSep          // X%Y
)

// parseModifier splits a single RHS token into its base symbol name and
// modifier. "item%COMMA" splits into base "item", mod modSep, sep "COMMA".
func parseModifier(tok string) (base string, mod modKind, sep string) {
	if idx := strings.IndexByte(tok, '%'); idx >= 0 {
		return tok[:idx], modSep, tok[idx+1:]
	}
	if strings.HasSuffix(tok, "?") {
		return strings.TrimSuffix(tok, "?"), modOpt, ""
	}
	if strings.HasSuffix(tok, "*") {
		return strings.TrimSuffix(tok, "*"), modStar, ""
	}
	if strings.HasSuffix(tok, "+") {
		return strings.TrimSuffix(tok, "+"), modPlus, ""
	}
	return tok, modNone, ""
}

// normalizer expands `?`/`*`/`+`/`%` modifiers into fresh non-terminals with
// synthetic tagged actions. It is confluent and
// deterministic: expanding the same (base, mod[, sep]) combination twice,
// anywhere in the grammar, always yields the same synthetic non-terminal,
// so the order in which modifiers appear across rules never affects the
// resulting grammar beyond the synthetic names themselves.
type normalizer struct {
	tab *symbol.Table

	// synthetic maps a canonical modifier key to the already-created
	// synthetic non-terminal's ID, so repeated uses of e.g. "NUM+" share
	// one desugared rule set instead of duplicating it.
	synthetic map[string]symbol.ID

	synthesizedRules []Rule
}

func (n *normalizer) expandRHS(rhs []string) (Production, error) {
	prod := make(Production, 0, len(rhs))
	for _, tok := range rhs {
		base, mod, sep := parseModifier(tok)
		if mod == modNone {
			id, ok := n.tab.Lookup(base)
			if !ok {
				return nil, gxerrors.Grammar("rule references undeclared symbol %q", base)
			}
			prod = append(prod, id)
			continue
		}

		baseID, ok := n.tab.Lookup(base)
		if !ok {
			return nil, gxerrors.Grammar("rule references undeclared symbol %q", base)
		}
		var sepID symbol.ID
		if mod == modSep {
			sepID, ok = n.tab.Lookup(sep)
			if !ok {
				return nil, gxerrors.Grammar("rule references undeclared separator symbol %q", sep)
			}
		}

		id, err := n.synthesize(base, baseID, mod, sep, sepID)
		if err != nil {
			return nil, err
		}
		prod = append(prod, id)
	}
	return prod, nil
}

func (n *normalizer) synthesize(base string, baseID symbol.ID, mod modKind, sep string, sepID symbol.ID) (symbol.ID, error) {
	var key, suffix string
	switch mod {
	case modOpt:
		key, suffix = "opt:"+base, "$opt"
	case modStar:
		key, suffix = "star:"+base, "$star"
	case modPlus:
		key, suffix = "plus:"+base, "$plus"
	case modSep:
		key, suffix = "sep:"+base+"%"+sep, "$sep_"+sep
	}

	if id, ok := n.synthetic[key]; ok {
		return id, nil
	}

	name := base + suffix
	for {
		if _, exists := n.tab.Lookup(name); !exists {
			break
		}
		name += "_"
	}
	synthID := n.tab.DeclareNonTerminal(name)
	n.synthetic[key] = synthID

	switch mod {
	case modOpt:
		// Xopt -> X            {OptSome}
		// Xopt -> ε            {OptNone}
		n.synthesizedRules = append(n.synthesizedRules,
			Rule{LHS: synthID, RHS: Production{baseID}, Action: ActionOptSome},
			Rule{LHS: synthID, RHS: Production{}, Action: ActionOptNone},
		)
	case modStar:
		// Xstar -> ε           {VecEmpty}
		// Xstar -> Xstar X     {VecAppend}
		n.synthesizedRules = append(n.synthesizedRules,
			Rule{LHS: synthID, RHS: Production{}, Action: ActionVecEmpty},
			Rule{LHS: synthID, RHS: Production{synthID, baseID}, Action: ActionVecAppend},
		)
	case modPlus:
		// Xplus -> X           {VecSingle}
		// Xplus -> Xplus X     {VecAppend}
		n.synthesizedRules = append(n.synthesizedRules,
			Rule{LHS: synthID, RHS: Production{baseID}, Action: ActionVecSingle},
			Rule{LHS: synthID, RHS: Production{synthID, baseID}, Action: ActionVecAppend},
		)
	case modSep:
		// Xsep -> X            {VecSingle}
		// Xsep -> Xsep Y X     {VecAppend}
		n.synthesizedRules = append(n.synthesizedRules,
			Rule{LHS: synthID, RHS: Production{baseID}, Action: ActionVecSingle},
			Rule{LHS: synthID, RHS: Production{synthID, sepID, baseID}, Action: ActionVecAppend},
		)
	}

	return synthID, nil
}
