// Package interp implements the tree-walking evaluator: it walks the AST
// the parser produced, consulting the resolver's scope-depth side table to
// decide which environment frame owns each variable reference. It covers
// the full expression/statement set, including classes, methods,
// inheritance, and break.
package interp

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"rlox/internal/ast"
	"rlox/internal/loxerr"
	"rlox/internal/object"
	"rlox/internal/token"
)

// sigKind distinguishes the two kinds of non-local control flow a
// statement can produce: break and return. Both are modeled as a single
// signal value threaded back up through statement execution, rather than
// panic/recover, which stays reserved for the parser's own error
// recovery.
type sigKind int

const (
	sigNone sigKind = iota
	sigBreak
	sigReturn
)

type signal struct {
	kind  sigKind
	value object.Value
}

// Interpreter holds the running program's global frame, its current
// environment, the resolver's scope-depth table, and the stream `print`
// writes to.
type Interpreter struct {
	Globals *Environment
	Locals  map[ast.Expr]int
	Out     io.Writer

	// ReplMode makes a bare expression statement print its value, the
	// convention interactive Lox sessions use.
	ReplMode bool

	env *Environment
}

func New(locals map[ast.Expr]int) *Interpreter {
	globals := NewEnvironment(nil)
	i := &Interpreter{Globals: globals, Locals: locals, Out: os.Stdout, env: globals}
	i.defineNatives()
	return i
}

func (i *Interpreter) defineNatives() {
	i.Globals.Define("clock", &nativeFn{
		name:  "clock",
		arity: 0,
		fn: func(args []object.Value) (object.Value, error) {
			return object.Number(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})
}

// Run executes a whole program. A break or return signal surfacing here
// (top-level `break`/`return`) is a resolver bug, not a user error: the
// resolver rejects both before the interpreter ever sees them.
func (i *Interpreter) Run(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if _, err := i.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execStmt(stmt ast.Stmt) (*signal, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		v, err := i.evalExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		if i.ReplMode {
			fmt.Fprintln(i.Out, v.Display())
		}
		return nil, nil
	case *ast.Print:
		v, err := i.evalExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(i.Out, v.Display())
		return nil, nil
	case *ast.VarDecl:
		var v object.Value = object.Nil{}
		if s.Init != nil {
			var err error
			v, err = i.evalExpr(s.Init)
			if err != nil {
				return nil, err
			}
		}
		i.env.Define(s.Name.Lexeme, v)
		return nil, nil
	case *ast.Block:
		return i.executeBlock(s.Stmts, NewEnvironment(i.env))
	case *ast.If:
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(cond) {
			return i.execStmt(s.Then)
		} else if s.Else != nil {
			return i.execStmt(s.Else)
		}
		return nil, nil
	case *ast.While:
		for {
			cond, err := i.evalExpr(s.Condition)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(cond) {
				return nil, nil
			}
			sig, err := i.execStmt(s.Body)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				if sig.kind == sigBreak {
					return nil, nil
				}
				return sig, nil // propagate a return out of the loop
			}
		}
	case *ast.Break:
		return &signal{kind: sigBreak}, nil
	case *ast.Function:
		fn := &Function{Decl: s, Closure: i.env}
		i.env.Define(s.Name.Lexeme, fn)
		return nil, nil
	case *ast.Return:
		var v object.Value = object.Nil{}
		if s.Value != nil {
			var err error
			v, err = i.evalExpr(s.Value)
			if err != nil {
				return nil, err
			}
		}
		return &signal{kind: sigReturn, value: v}, nil
	case *ast.Class:
		return nil, i.execClass(s)
	default:
		panic("interp: unhandled statement type")
	}
}

func (i *Interpreter) execClass(c *ast.Class) error {
	var super *Class
	if c.Superclass != nil {
		v, err := i.evalExpr(c.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return loxerr.NewRuntime(c.Superclass.Name.Line, "Superclass must be a class.")
		}
		super = sc
	}

	i.env.Define(c.Name.Lexeme, object.Nil{})

	env := i.env
	if super != nil {
		env = NewEnvironment(i.env)
		env.Define("super", super)
	}

	methods := make(map[string]*Function, len(c.Methods))
	for _, m := range c.Methods {
		methods[m.Name.Lexeme] = &Function{Decl: m, Closure: env, IsInitializer: m.Name.Lexeme == "init"}
	}

	class := &Class{Name: c.Name.Lexeme, Superclass: super, Methods: methods}
	i.env.AssignAt(0, c.Name.Lexeme, class)
	return nil
}

// executeBlock runs stmts in env, restoring the interpreter's previous
// environment on every exit path (including an error or a break/return
// signal) via a defer around the saved/restored field.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (*signal, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, s := range stmts {
		sig, err := i.execStmt(s)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func (i *Interpreter) evalExpr(expr ast.Expr) (object.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Token), nil
	case *ast.Identifier:
		return i.lookupVariable(e.Name, e)
	case *ast.Assignment:
		v, err := i.evalExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		if depth, ok := i.Locals[e]; ok {
			i.env.AssignAt(depth, e.Name.Lexeme, v)
		} else if !i.Globals.AssignGlobal(e.Name.Lexeme, v) {
			return nil, loxerr.NewRuntime(e.Name.Line, "Undefined variable '"+e.Name.Lexeme+"'.")
		}
		return v, nil
	case *ast.Grouping:
		return i.evalExpr(e.Expr)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Logical:
		return i.evalLogical(e)
	case *ast.Call:
		return i.evalCall(e)
	case *ast.Get:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, loxerr.NewRuntime(e.Name.Line, "Only instances have properties.")
		}
		return inst.Get(e.Name)
	case *ast.Set:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, loxerr.NewRuntime(e.Name.Line, "Only instances have fields.")
		}
		v, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name, v)
		return v, nil
	case *ast.This:
		return i.lookupVariable(e.Keyword, e)
	case *ast.Super:
		return i.evalSuper(e)
	default:
		panic("interp: unhandled expression type")
	}
}

func literalValue(t token.Token) object.Value {
	switch t.Type {
	case token.NUMBER:
		f, _ := strconv.ParseFloat(t.Literal, 64)
		return object.Number(f)
	case token.STRING:
		return object.String(t.Literal)
	case token.TRUE:
		return object.Bool(true)
	case token.FALSE:
		return object.Bool(false)
	default:
		return object.Nil{}
	}
}

func (i *Interpreter) lookupVariable(name token.Token, expr ast.Expr) (object.Value, error) {
	if depth, ok := i.Locals[expr]; ok {
		v, ok := i.env.GetAt(depth, name.Lexeme)
		if !ok {
			return nil, loxerr.NewRuntime(name.Line, "Undefined variable '"+name.Lexeme+"'.")
		}
		return v, nil
	}
	v, ok := i.Globals.GetGlobal(name.Lexeme)
	if !ok {
		return nil, loxerr.NewRuntime(name.Line, "Undefined variable '"+name.Lexeme+"'.")
	}
	return v, nil
}

func (i *Interpreter) evalLogical(e *ast.Logical) (object.Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Type == token.OR {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalUnary(e *ast.Unary) (object.Value, error) {
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.MINUS:
		n, ok := right.(object.Number)
		if !ok {
			return nil, loxerr.NewRuntime(e.Op.Line, "Operand must be a number.")
		}
		return -n, nil
	case token.BANG:
		return object.Bool(!object.IsTruthy(right)), nil
	default:
		panic("interp: unhandled unary operator")
	}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (object.Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.PLUS:
		if ln, lok := left.(object.Number); lok {
			if rn, rok := right.(object.Number); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(object.String); lok {
			if rs, rok := right.(object.String); rok {
				return ls + rs, nil
			}
		}
		return nil, loxerr.NewRuntime(e.Op.Line, "Operands must be two numbers or two strings.")
	case token.MINUS:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil
	case token.STAR:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil
	case token.SLASH:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		if rn == 0 {
			return nil, loxerr.NewRuntime(e.Op.Line, "Divide by zero.")
		}
		return ln / rn, nil
	case token.GREATER:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return object.Bool(ln > rn), nil
	case token.GREATER_EQUAL:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return object.Bool(ln >= rn), nil
	case token.LESS:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return object.Bool(ln < rn), nil
	case token.LESS_EQUAL:
		ln, rn, err := numberOperands(e.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return object.Bool(ln <= rn), nil
	case token.EQUAL_EQUAL:
		return object.Bool(object.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return object.Bool(!object.Equal(left, right)), nil
	default:
		panic("interp: unhandled binary operator")
	}
}

func numberOperands(line int, left, right object.Value) (object.Number, object.Number, error) {
	ln, lok := left.(object.Number)
	rn, rok := right.(object.Number)
	if !lok || !rok {
		return 0, 0, loxerr.NewRuntime(line, "Operands must be numbers.")
	}
	return ln, rn, nil
}

func (i *Interpreter) evalCall(e *ast.Call) (object.Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]object.Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := i.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, loxerr.NewRuntime(e.Paren.Line, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, loxerr.NewRuntime(e.Paren.Line,
			fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}
	return fn.Call(i, args)
}

func (i *Interpreter) evalSuper(e *ast.Super) (object.Value, error) {
	depth := i.Locals[e]
	superVal, _ := i.env.GetAt(depth, "super")
	super := superVal.(*Class)

	// "this" always lives exactly one frame closer than "super" — the
	// resolveClass scope layout pushes super's scope, then this's.
	thisVal, _ := i.env.GetAt(depth-1, "this")
	inst := thisVal.(*Instance)

	method := super.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, loxerr.NewRuntime(e.Method.Line, "Undefined property '"+e.Method.Lexeme+"'.")
	}
	return method.Bind(inst), nil
}
