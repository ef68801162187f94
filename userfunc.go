package sheetcalc

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprRunner compiles and runs user function bodies, caching compiled
// programs by source text.
type exprRunner struct {
	cache sync.Map // body string → compiled *vm.Program
}

var userFuncRunner exprRunner

func (e *exprRunner) run(body string, env map[string]any) (any, error) {
	program, err := e.compile(body, env)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", body, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", body, err)
	}
	return result, nil
}

func (e *exprRunner) compile(body string, env map[string]any) (*vm.Program, error) {
	if cached, ok := e.cache.Load(body); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(body, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(body, program)
	return program, nil
}

// userFunc backs a user-defined spreadsheet function with an expression
// body. Scalar arguments bind to the named parameters as native values;
// range arguments bind as nested slices.
type userFunc struct {
	name   string
	params []string
	body   string
}

func newUserFunction(name string, params []string, body string) Function {
	u := &userFunc{name: name, params: params, body: body}
	return u.call
}

func (u *userFunc) call(args []Arg) (Value, error) {
	env := make(map[string]any, len(u.params))
	for i, param := range u.params {
		if i < len(args) {
			env[param] = argToNative(args[i])
		} else {
			env[param] = nil
		}
	}

	result, err := userFuncRunner.run(u.body, env)
	if err != nil {
		return Empty, evalErrorf(ErrEval, "%s: %v", u.name, err)
	}
	return nativeToValue(result)
}

// argToNative converts an evaluated argument to the form the expression
// runtime works with.
func argToNative(a Arg) any {
	if a.Range {
		rows := make([]any, len(a.Values))
		for i, row := range a.Values {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = valueToNative(v)
			}
			rows[i] = cells
		}
		return rows
	}
	return valueToNative(a.Value)
}

func valueToNative(v Value) any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Str
	case KindBool:
		return v.Bool
	}
	return nil
}

// nativeToValue converts an expression result back to a cell value.
func nativeToValue(result any) (Value, error) {
	switch r := result.(type) {
	case nil:
		return Empty, nil
	case bool:
		return Boolean(r), nil
	case string:
		return Text(r), nil
	case int:
		return Number(float64(r)), nil
	case int64:
		return Number(float64(r)), nil
	case float32:
		return Number(float64(r)), nil
	case float64:
		return Number(r), nil
	}
	return Empty, evalErrorf(ErrValue, "expression result %T has no cell representation", result)
}
