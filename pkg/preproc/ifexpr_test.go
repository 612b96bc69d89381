package preproc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/pkg/diag"
)

func evalWith(t *testing.T, table *Table, expr string) (bool, error) {
	t.Helper()
	tokens := lexText("<cond>", expr)
	return evalCondition(tokens, table)
}

func TestEvalCondition(t *testing.T) {
	t.Parallel()

	table := NewTable(diag.NewCollector())
	table.Define(&Definition{Name: "VERSION", Body: significant(lexText("<def>", "3"))})
	table.Define(&Definition{Name: "EMPTY"})

	tests := []struct {
		expr string
		want bool
	}{
		{expr: "1", want: true},
		{expr: "0", want: false},
		{expr: "!0", want: true},
		{expr: "!!1", want: true},
		{expr: "VERSION", want: true},
		{expr: "VERSION == 3", want: true},
		{expr: "VERSION != 3", want: false},
		{expr: "VERSION < 4", want: true},
		{expr: "VERSION <= 3", want: true},
		{expr: "VERSION > 3", want: false},
		{expr: "VERSION >= 4", want: false},
		{expr: "defined(VERSION)", want: true},
		{expr: "defined VERSION", want: true},
		{expr: "defined(MISSING)", want: false},
		{expr: "defined(EMPTY)", want: true},
		{expr: "EMPTY", want: false},
		{expr: "MISSING", want: false},
		{expr: "1 && 1", want: true},
		{expr: "1 && 0", want: false},
		{expr: "0 || 1", want: true},
		{expr: "0 || 0", want: false},
		{expr: "1 || 0 && 0", want: true}, // && binds tighter
		{expr: "(1 || 0) && 0", want: false},
		{expr: "VERSION >= 2 && VERSION < 10", want: true},
		{expr: "0x10 == 16", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := evalWith(t, table, tt.expr)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConditionErrors(t *testing.T) {
	t.Parallel()

	table := NewTable(diag.NewCollector())

	exprs := []string{
		"",
		"(1",
		"1 ==",
		"defined",
		"defined(1)",
		"defined(X",
		"1 1",
		"&& 1",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			t.Parallel()
			_, err := evalWith(t, table, expr)
			require.Error(t, err)
		})
	}
}
