package prettyprint

import "testing"

func TestPrettyPrint(t *testing.T) {
	cases := []struct {
		in  Doc
		out string
	}{
		{
			Seq([]Doc{Text("foo"), Text(" "), Text("bar")}),
			`foo bar`,
		},
		{
			Seq([]Doc{Text("foo"), Text("["), Newline, Indent(2, Text("bar")), Newline, Text("]")}),
			`foo[
  bar
]`,
		},
		{
			Surround("p(", Join([]Doc{Text("a"), Text("b")}, CommaSpace), ")"),
			`p(a, b)`,
		},
		{
			Block(Text("if x: p(x) "), []Doc{Text("q(x)"), Text("r(x)")}),
			`if x: p(x) {
  q(x)
  r(x)
}`,
		},
		{
			Block(Text("know "), nil),
			`know {}`,
		},
		{
			Indent(2, Seq([]Doc{Text("a"), Newline, Newline, Text("b")})),
			"  a\n\n  b",
		},
	}

	for idx, testCase := range cases {
		actual := testCase.in.String()
		if actual != testCase.out {
			t.Fatalf("case %d:\nEXPECTED\n\n%s\n\nGOT\n\n%s", idx, testCase.out, actual)
		}
	}
}
