package litex

import (
	"math/big"

	"github.com/vilterp/litex/pkg/lang"
)

// ArithPath is the path of the integer arithmetic literal functions, e.g.
//
//	lets n "[0-9]+";
//	def_literal_operator plus {"arith", "plus"} x, y;
//	eq(@plus{1, 2}, 3);
const ArithPath = "arith"

// StdLiterals returns a resolver with the arith functions registered.
func StdLiterals() lang.FuncResolver {
	resolver := lang.FuncResolver{}
	resolver.Register(ArithPath, "plus", arith(func(z, x, y *big.Int) *big.Int { return z.Add(x, y) }))
	resolver.Register(ArithPath, "minus", arith(func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) }))
	resolver.Register(ArithPath, "times", arith(func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) }))
	return resolver
}

// arith lifts a binary big.Int operation to singletons spelled as integers.
// Anything else has no literal value.
func arith(op func(z, x, y *big.Int) *big.Int) lang.LiteralFunc {
	return func(args []lang.Symbol) (lang.Symbol, error) {
		if len(args) != 2 {
			return nil, lang.ErrNoLiteral
		}
		x, ok := integer(args[0])
		if !ok {
			return nil, lang.ErrNoLiteral
		}
		y, ok := integer(args[1])
		if !ok {
			return nil, lang.ErrNoLiteral
		}
		return lang.NewSingleton(op(new(big.Int), x, y).String()), nil
	}
}

func integer(sym lang.Symbol) (*big.Int, bool) {
	singleton, ok := sym.(*lang.Singleton)
	if !ok {
		return nil, false
	}
	return new(big.Int).SetString(singleton.Name, 10)
}
