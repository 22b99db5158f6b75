package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Key renders e as an unambiguous prefix form for hashing. Unlike String,
// a reference named "x - 1" and the subtraction x - 1 have different keys.
// Expressions implemented outside this package are keyed by Go type and
// String.
func Key[V any](e Expression[V]) string {
	if e == nil {
		return "nil"
	}
	var sb strings.Builder
	writeKey(&sb, e)
	return sb.String()
}

func writeKey(sb *strings.Builder, e any) {
	switch n := e.(type) {
	case constInt:
		sb.WriteString("i")
		sb.WriteString(strconv.FormatInt(int64(n), 10))
	case refInt:
		sb.WriteString("r")
		sb.WriteString(strconv.Quote(string(n)))
	case negInt:
		sb.WriteString("(neg ")
		writeKey(sb, n.x)
		sb.WriteString(")")
	case binaryInt:
		sb.WriteString("(" + n.op.String() + " ")
		writeKey(sb, n.l)
		sb.WriteString(" ")
		writeKey(sb, n.r)
		sb.WriteString(")")
	case constBool:
		sb.WriteString("b" + n.String())
	case compare:
		sb.WriteString("(" + n.op.String() + " ")
		writeKey(sb, n.l)
		sb.WriteString(" ")
		writeKey(sb, n.r)
		sb.WriteString(")")
	case logic:
		op := "or"
		if n.and {
			op = "and"
		}
		sb.WriteString("(" + op + " ")
		writeKey(sb, n.l)
		sb.WriteString(" ")
		writeKey(sb, n.r)
		sb.WriteString(")")
	case not:
		sb.WriteString("(not ")
		writeKey(sb, n.x)
		sb.WriteString(")")
	case fmt.Stringer:
		fmt.Fprintf(sb, "%T%s", n, strconv.Quote(n.String()))
	default:
		fmt.Fprintf(sb, "%T", n)
	}
}
