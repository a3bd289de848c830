// Package intent maps a natural-language request onto a query command, so
// "what calls awardBadge" routes to the callers lookup instead of being
// embedded and searched verbatim. Classification is rule-based: quoted or
// code-shaped identifiers plus a small vocabulary of relationship words,
// with semantic search as the fallback for anything that doesn't match.
package intent

import (
	"regexp"
	"strings"
)

// Command is the query operation an input resolves to.
type Command string

const (
	CommandSearch        Command = "search"
	CommandCallers       Command = "callers"
	CommandImpact        Command = "impact"
	CommandRename        Command = "rename"
	CommandDead          Command = "dead"
	CommandUnusedExports Command = "unused-exports"
	CommandCycles        Command = "cycles"
	CommandSimilar       Command = "similar"
)

// Intent is a parsed request: the command to run and its positional
// arguments. For CommandSearch, Args holds the full input text; for
// CommandRename, the old and new names; for symbol-taking commands, the
// symbol.
type Intent struct {
	Command Command
	Args    []string
}

// identifier matches one symbol operand: an optionally quoted or
// backticked name, possibly dotted (Class.method).
const identifier = "[`\"']?([A-Za-z_][A-Za-z0-9_.]*)[`\"']?"

var (
	renameRe  = regexp.MustCompile(`(?i)^\s*rename\s+` + identifier + `\s+(?:to|as)\s+` + identifier + `\s*$`)
	callersRe = regexp.MustCompile(`(?i)\b(?:what|who|which\s+\w+)\s+calls?\s+` + identifier)
	callersOf = regexp.MustCompile(`(?i)\bcallers?\s+of\s+` + identifier)
	impactRe  = regexp.MustCompile(`(?i)\b(?:impact\s+of(?:\s+(?:changing|modifying|removing))?|what\s+breaks\s+if\s+(?:i\s+)?(?:change|modify|remove|delete))\s+` + identifier)
)

// phrase lists for the argument-less commands, checked as substrings of
// the lowercased input.
var (
	deadPhrases         = []string{"dead code", "unreachable code", "uncalled function", "unused function", "unused method"}
	unusedExportPhrases = []string{"unused export", "exports nobody", "exported but unused"}
	similarPhrases      = []string{"duplicate code", "duplicated code", "similar code", "copy-pasted", "near-duplicate"}
)

// cyclesRe needs word boundaries: a bare "cycle" substring would also
// match "lifecycle" or "recycle".
var cyclesRe = regexp.MustCompile(`(?i)\b(?:circular|cyclic|cycles?)\b`)

// Parse classifies input and extracts its operands. It never fails: input
// that matches no rule is a semantic search for the input itself.
func Parse(input string) Intent {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	if m := renameRe.FindStringSubmatch(trimmed); m != nil {
		return Intent{Command: CommandRename, Args: []string{m[1], m[2]}}
	}
	if m := callersRe.FindStringSubmatch(trimmed); m != nil {
		return Intent{Command: CommandCallers, Args: []string{m[1]}}
	}
	if m := callersOf.FindStringSubmatch(trimmed); m != nil {
		return Intent{Command: CommandCallers, Args: []string{m[1]}}
	}
	if m := impactRe.FindStringSubmatch(trimmed); m != nil {
		return Intent{Command: CommandImpact, Args: []string{m[1]}}
	}
	if containsAny(lower, unusedExportPhrases) {
		return Intent{Command: CommandUnusedExports}
	}
	if containsAny(lower, deadPhrases) {
		return Intent{Command: CommandDead}
	}
	if cyclesRe.MatchString(lower) {
		return Intent{Command: CommandCycles}
	}
	if containsAny(lower, similarPhrases) {
		return Intent{Command: CommandSimilar}
	}
	return Intent{Command: CommandSearch, Args: []string{trimmed}}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
