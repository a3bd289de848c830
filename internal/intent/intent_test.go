package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"what calls awardBadge", Intent{Command: CommandCallers, Args: []string{"awardBadge"}}},
		{"who calls process_payment", Intent{Command: CommandCallers, Args: []string{"process_payment"}}},
		{"which functions call validateToken", Intent{Command: CommandCallers, Args: []string{"validateToken"}}},
		{"callers of `HandleRequest`", Intent{Command: CommandCallers, Args: []string{"HandleRequest"}}},

		{"rename foo to bar", Intent{Command: CommandRename, Args: []string{"foo", "bar"}}},
		{"rename UserService as AccountService", Intent{Command: CommandRename, Args: []string{"UserService", "AccountService"}}},

		{"impact of changing parseConfig", Intent{Command: CommandImpact, Args: []string{"parseConfig"}}},
		{"what breaks if I change Store.Open", Intent{Command: CommandImpact, Args: []string{"Store.Open"}}},

		{"find dead code", Intent{Command: CommandDead}},
		{"any unused functions here", Intent{Command: CommandDead}},
		{"list unused exports", Intent{Command: CommandUnusedExports}},
		{"circular dependencies", Intent{Command: CommandCycles}},
		{"are there any import cycles", Intent{Command: CommandCycles}},
		{"show me duplicate code", Intent{Command: CommandSimilar}},

		{"explain the build workflow", Intent{Command: CommandSearch, Args: []string{"explain the build workflow"}}},
		{"how does authentication work", Intent{Command: CommandSearch, Args: []string{"how does authentication work"}}},
		// "lifecycle" must not trip the cycles vocabulary.
		{"request lifecycle overview", Intent{Command: CommandSearch, Args: []string{"request lifecycle overview"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParseTrimsAndKeepsOriginalCase(t *testing.T) {
	got := Parse("  What Calls AwardBadge  ")
	assert.Equal(t, CommandCallers, got.Command)
	assert.Equal(t, []string{"AwardBadge"}, got.Args)
}
