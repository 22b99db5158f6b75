// Package expr implements the small expression language used for field
// sizes, list counts and conditions.
//
// Expressions are immutable trees evaluated against a Resolver that maps
// names to values decoded earlier in the same call. Literal subtrees fold at
// construction, so IsParameterized reports exactly whether a value depends
// on the stream:
//
//	size := expr.Sub(expr.Ref("constantPoolCount"), expr.Const(1))
//	n, err := size.Eval(resolver)
//
// Unresolved names are not an error until evaluation; the same tree is
// reused across many calls with different resolvers.
//
// Parse and ParseBool accept the textual form:
//
//	constantPoolCount - 1
//	outer.length * 8 + 0x10
//	version >= 2 && flags != 0
//
// A name prefixed with "outer." is looked up in the enclosing record only.
package expr
