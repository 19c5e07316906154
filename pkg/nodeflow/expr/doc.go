/*
Package expr compiles boolean expressions over a variable map. nodeflow
uses it for edge conditions written as text.

Expressions are parsed once by Compile and evaluated any number of times
with Program.Eval, so a malformed condition fails when the graph is built
rather than on first use. Workflow state structs become variable maps with
Vars, which keys fields by their JSON names.

# Grammar

	or         := and ("or" and)*
	and        := unary ("and" unary)*
	unary      := ("not" | "!") unary | comparison
	comparison := operand (op operand)?
	operand    := "(" or ")" | string | number | true | false | null | path
	op         := "==" | "!=" | "<" | "<=" | ">" | ">=" | "contains" | custom

Strings take single or double quotes. A path such as customer.tier walks
nested maps; an exact key containing the dot wins. Unknown variables
resolve to null.

# Semantics

Equality compares numbers numerically and everything else by its text.
Ordering operators need two numbers (numeric strings count) or two strings;
anything else is an evaluation error. contains tests list membership, map
keys, or substrings depending on the left operand.

The result of an expression is reduced to a boolean: null, false, "", zero
and empty lists or maps are false.

	vars, _ := expr.Vars(State{Count: 20, Status: "ready"})
	ok, _ := expr.Eval("status == 'ready' and count > 10", vars) // true

# Custom operators

	e := expr.New(expr.WithCustomOperator("matches", func(l, r any) bool {
		ok, _ := regexp.MatchString(fmt.Sprint(r), fmt.Sprint(l))
		return ok
	}))
	prog, err := e.Compile("name matches '^test'")
*/
package expr
