package litex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArithLiterals(t *testing.T) {
	engine := newTestEngine(t)
	session := engine.StartSession()
	defer engine.EndSession(session)

	results, err := session.Run(`
		lets n "[0-9]+";
		def commutative eq(x, y);
		def_literal_operator plus {"arith", "plus"} x, y;
		def_literal_operator times {"arith", "times"} x, y;
		def_literal_operator minus {"arith", "minus"} x, y;
		know eq(@plus{1, 2}, 3);
		eq(3, 3);
		eq(3, @plus{2, 1});
		know eq(@times{12345678901, 10}, @minus{10, 5});
		eq(5, 123456789010);
		eq(@plus{a, 1}, 2);
		def_literal_operator nope {"arith", "divide"} x, y;
		eq(@nope{4, 2}, 2);
	`)
	require.NoError(t, err)

	var verdicts []string
	for _, result := range results {
		verdicts = append(verdicts, result.Verdict)
	}
	require.Equal(t, []string{
		"true", "true", "true", "true", "true",
		"true", "unknown", "true",
		"true", "true",
		"error",
		"true", "error",
	}, verdicts)
	require.Contains(t, results[10].Messages[0], "literal operator produced no symbol")
	require.Contains(t, results[12].Messages[0], "no literal function divide in arith")
}
