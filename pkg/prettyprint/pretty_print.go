package prettyprint

import (
	"fmt"
	"strings"
)

// Loosely based on http://homepages.inf.ed.ac.uk/wadler/papers/prettier/prettier.pdf,
// without the layout search: docs render exactly as they are built.

type Doc interface {
	// String renders the doc.
	String() string
	// Debug returns a representation of the doc tree.
	Debug() string
}

// Text

type text struct {
	str string
}

var _ Doc = &text{}

func Text(s string) Doc {
	return &text{str: s}
}

func Textf(format string, args ...interface{}) Doc {
	return Text(fmt.Sprintf(format, args...))
}

func (s *text) String() string {
	return s.str
}

func (s *text) Debug() string {
	return fmt.Sprintf("Text(%q)", s.str)
}

// Indent

type indent struct {
	doc Doc
	by  int
}

var _ Doc = &indent{}

// Indent prefixes every line of d, including the first, with `by` spaces.
func Indent(by int, d Doc) Doc {
	return &indent{doc: d, by: by}
}

// Nest is the name the paper uses.
func Nest(by int, d Doc) Doc {
	return Indent(by, d)
}

func (n *indent) String() string {
	prefix := strings.Repeat(" ", n.by)
	lines := strings.Split(n.doc.String(), "\n")
	var sb strings.Builder
	for idx, line := range lines {
		if idx > 0 {
			sb.WriteByte('\n')
		}
		if line != "" {
			sb.WriteString(prefix)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (n *indent) Debug() string {
	return fmt.Sprintf("Indent(%d, %s)", n.by, n.doc.Debug())
}

// Empty

type empty struct{}

var Empty Doc = &empty{}

func (empty) String() string {
	return ""
}

func (empty) Debug() string {
	return "Empty"
}

// Seq

type seq struct {
	docs []Doc
}

var _ Doc = &seq{}

func Seq(docs []Doc) Doc {
	return &seq{docs: docs}
}

func (c *seq) String() string {
	var sb strings.Builder
	for _, doc := range c.docs {
		sb.WriteString(doc.String())
	}
	return sb.String()
}

func (c *seq) Debug() string {
	strs := make([]string, len(c.docs))
	for idx, doc := range c.docs {
		strs[idx] = doc.Debug()
	}
	return fmt.Sprintf("Seq(%s)", strings.Join(strs, ", "))
}

// Newline

type newline struct{}

var Newline Doc = &newline{}

func (newline) String() string {
	return "\n"
}

func (newline) Debug() string {
	return "Newline"
}

// Combinators

func Join(docs []Doc, sep Doc) Doc {
	out := make([]Doc, 0, 2*len(docs))
	for idx, doc := range docs {
		if idx > 0 {
			out = append(out, sep)
		}
		out = append(out, doc)
	}
	return Seq(out)
}

// Surround wraps d in open and close, e.g. Surround("(", args, ")").
func Surround(open string, d Doc, close string) Doc {
	return Seq([]Doc{Text(open), d, Text(close)})
}

// Block renders header, then body indented on its own lines, then the closing brace.
// An empty body renders as `header{}`.
func Block(header Doc, body []Doc) Doc {
	if len(body) == 0 {
		return Seq([]Doc{header, Text("{}")})
	}
	return Seq([]Doc{
		header, Text("{"), Newline,
		Indent(2, Join(body, Newline)),
		Newline, Text("}"),
	})
}

var Comma = Text(",")

var CommaSpace = Text(", ")

var CommaNewline = Seq([]Doc{Comma, Newline})
