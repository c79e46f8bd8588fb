package evaluator

import (
	"fmt"

	"github.com/sri-lang/sri/object"
)

func getRationalBuiltins() map[string]*object.Builtin {
	rationalBuiltinsOnce.Do(func() {
		rationalBuiltinsMap = map[string]*object.Builtin{
			"to_s": {
				Name: "to_s",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					r := receiver.(*object.Rational)
					return &object.String{Value: r.ToS()}
				},
			},
			"inspect": {
				Name: "inspect",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.String{Value: receiver.Inspect()}
				},
			},
			"numerator": {
				Name: "numerator",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.Integer{Value: receiver.(*object.Rational).Num}
				},
			},
			"denominator": {
				Name: "denominator",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.Integer{Value: receiver.(*object.Rational).Den}
				},
			},
			"+": {Name: "+", Fn: rationalOp("+")},
			"-": {Name: "-", Fn: rationalOp("-")},
			"*": {Name: "*", Fn: rationalOp("*")},
			"/": {Name: "/", Fn: rationalOp("/")},
			"==": {Name: "==", Fn: rationalOp("==")},
		}
	})
	return rationalBuiltinsMap
}

func rationalOp(operator string) object.BuiltinFunction {
	return func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
		if len(args) != 1 {
			return newError("wrong number of arguments")
		}
		return evalRationalInfixExpression(operator, receiver, args[0])
	}
}

func getComplexBuiltins() map[string]*object.Builtin {
	complexBuiltinsOnce.Do(func() {
		complexBuiltinsMap = map[string]*object.Builtin{
			"to_s": {
				Name: "to_s",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					c := receiver.(*object.Complex)
					return &object.String{Value: c.ToS()}
				},
			},
			"inspect": {
				Name: "inspect",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.String{Value: receiver.Inspect()}
				},
			},
			"real": {
				Name: "real",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.Float{Value: receiver.(*object.Complex).Re}
				},
			},
			"imaginary": {
				Name: "imaginary",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.Float{Value: receiver.(*object.Complex).Im}
				},
			},
			"+": {Name: "+", Fn: complexOp("+")},
			"-": {Name: "-", Fn: complexOp("-")},
			"*": {Name: "*", Fn: complexOp("*")},
			"/": {Name: "/", Fn: complexOp("/")},
			"==": {Name: "==", Fn: complexOp("==")},
		}
	})
	return complexBuiltinsMap
}

func complexOp(operator string) object.BuiltinFunction {
	return func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
		if len(args) != 1 {
			return newError("wrong number of arguments")
		}
		return evalComplexInfixExpression(operator, receiver, args[0])
	}
}

// getMatcherBuiltins backs the RSpec-style `actual.should matcher` surface:
// `eq(expected)` builds a Matcher, and `should` on any object applies it,
// returning a StandardError error ("expected <actual> to <description>") on
// mismatch.
func getMatcherBuiltins() map[string]*object.Builtin {
	matcherBuiltinsOnce.Do(func() {
		matcherBuiltinsMap = map[string]*object.Builtin{
			"matches?": {
				Name: "matches?",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					if len(args) != 1 {
						return newError("wrong number of arguments")
					}
					m := receiver.(*object.Matcher)
					return object.NativeToBool(m.Predicate(args[0]))
				},
			},
			"description": {
				Name: "description",
				Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
					return &object.String{Value: receiver.(*object.Matcher).Description}
				},
			},
		}
	})
	return matcherBuiltinsMap
}

// eqMatcherBuiltin implements the Kernel-level `eq(expected)` constructor.
var eqMatcherBuiltin = &object.Builtin{
	Name: "eq",
	Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
		if len(args) != 1 {
			return newError("wrong number of arguments (expected 1)")
		}
		expected := args[0]
		return &object.Matcher{
			Description: "eq " + rubyInspect(expected),
			Predicate:   func(actual object.Object) bool { return objectsEqual(actual, expected) },
		}
	},
}

// shouldBuiltin implements the Object#should method: applies a Matcher to
// the receiver, returning true, or on mismatch a StandardError error whose
// message gives the receiver and the matcher's description.
var shouldBuiltin = &object.Builtin{
	Name: "should",
	Fn: func(receiver object.Object, env *object.Environment, args ...object.Object) object.Object {
		if len(args) != 1 {
			return newError("wrong number of arguments (expected 1 matcher)")
		}
		m, ok := args[0].(*object.Matcher)
		if !ok {
			return newError("no implicit conversion into Matcher")
		}
		if !m.Predicate(receiver) {
			msg := fmt.Sprintf("expected %s to %s", rubyInspect(receiver), m.Description)
			return &object.Error{Message: msg, Class_: object.StandardErrorClass}
		}
		return object.TRUE
	},
}
