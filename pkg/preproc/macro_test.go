package preproc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/pkg/diag"
)

func defineText(t *Table, name, body string) {
	t.Define(&Definition{Name: name, Body: significant(lexText("<def>", body))})
}

func TestTableDefineAndLookup(t *testing.T) {
	t.Parallel()

	diags := diag.NewCollector()
	table := NewTable(diags)
	defineText(table, "RADIUS", "25")

	def, ok := table.Lookup("RADIUS")
	require.True(t, ok)
	require.Equal(t, "RADIUS", def.Name)
	require.True(t, table.IsDefined("RADIUS"))
	require.False(t, table.IsDefined("radius")) // names are case sensitive
	require.Empty(t, diags.All())
}

func TestTableRedefinitionDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		define    func(*Table)
		wantCodes []diag.Code
	}{
		{
			name: "differing body warns",
			define: func(tb *Table) {
				defineText(tb, "X", "1")
				defineText(tb, "X", "2")
			},
			wantCodes: []diag.Code{diag.CodeMacroRedefined},
		},
		{
			name: "identical body is silent",
			define: func(tb *Table) {
				defineText(tb, "X", "1")
				defineText(tb, "X", "1")
			},
			wantCodes: nil,
		},
		{
			name: "spacing differences are not a redefinition",
			define: func(tb *Table) {
				tb.Define(&Definition{Name: "X", Body: lexText("<def>", "a  +  b")})
				tb.Define(&Definition{Name: "X", Body: lexText("<def>", "a + b")})
			},
			wantCodes: nil,
		},
		{
			name: "builtin shadow warns",
			define: func(tb *Table) {
				defineText(tb, "__LINE__", "0")
			},
			wantCodes: []diag.Code{diag.CodeBuiltinShadowed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diags := diag.NewCollector()
			table := NewTable(diags)
			tt.define(table)

			var codes []diag.Code
			for _, d := range diags.All() {
				codes = append(codes, d.Code)
			}
			require.Equal(t, tt.wantCodes, codes)
		})
	}
}

func TestTableLastDefinitionWins(t *testing.T) {
	t.Parallel()

	table := NewTable(diag.NewCollector())
	defineText(table, "X", "1")
	defineText(table, "X", "2")

	def, ok := table.Lookup("X")
	require.True(t, ok)
	require.Equal(t, "2", def.Body[0].Text())
}

func TestTableUndefine(t *testing.T) {
	t.Parallel()

	diags := diag.NewCollector()
	table := NewTable(diags)
	defineText(table, "X", "1")

	table.Undefine("X")
	require.False(t, table.IsDefined("X"))

	// Unknown names are silently accepted.
	table.Undefine("NEVER_DEFINED")
	require.Empty(t, diags.All())
}

func TestBuiltinsAreDefined(t *testing.T) {
	t.Parallel()

	table := NewTable(diag.NewCollector())
	require.True(t, table.IsDefined("__FILE__"))
	require.True(t, table.IsDefined("__LINE__"))
}
