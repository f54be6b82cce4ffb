package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		env       Env
		expected  bool
	}{
		{"empty always enabled", "", Env{}, true},
		{"configured gate open", "Configured", Env{Configured: true}, true},
		{"configured gate closed", "Configured", Env{}, false},
		{"family match", `Family == "youcom" && Version startsWith "1."`, Env{Family: "youcom", Version: "1.0.0"}, true},
		{"family mismatch", `Family == "youcom"`, Env{Family: "other"}, false},
		{"id list", `ID in ["youcom-agent", "youcom-research"]`, Env{ID: "youcom-research"}, true},
		{"negation", `!Configured || ID != "hidden"`, Env{ID: "hidden", Configured: true}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := Compile(tc.condition)
			require.NoError(t, err)
			assert.Equal(t, tc.condition, rule.String())
			assert.Equal(t, tc.expected, rule.Enabled(tc.env))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, cond := range []string{
		"Configured &&", // syntax
		"Unknown == 1",  // undefined variable
		`Family + "x"`,  // not a bool
	} {
		_, err := Compile(cond)
		assert.Error(t, err, cond)
	}
}

func TestZeroRuleEnabled(t *testing.T) {
	var r Rule
	assert.True(t, r.Enabled(Env{ID: "anything"}))
}
