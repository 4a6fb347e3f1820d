// Package resolver performs a static pass over the AST: one walk that
// computes, for every variable-referencing expression, how many lexical
// scopes out its binding lives (the "side table"), and diagnoses scope
// misuse the parser can't catch on its own.
package resolver

import (
	"rlox/internal/ast"
	"rlox/internal/loxerr"
	"rlox/internal/token"
)

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver walks a parsed program once, building Locals: a map from
// variable-referencing expression nodes (keyed by pointer identity) to
// their scope depth. Absence from the map means "resolve in the global
// frame".
type Resolver struct {
	Locals map[ast.Expr]int

	scopes    []map[string]bool
	funcType  functionType
	classType classType
	loopDepth int
	errs      []error
}

func New() *Resolver {
	return &Resolver{Locals: make(map[ast.Expr]int)}
}

// Resolve walks every top-level statement and returns the diagnostics of
// this call only; Locals keeps growing across calls.
func (r *Resolver) Resolve(stmts []ast.Stmt) []error {
	r.errs = nil
	r.resolveStmts(stmts)
	return r.errs
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, make(map[string]bool)) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Class:
		r.resolveClass(s)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, funcFunction)
	case *ast.VarDecl:
		r.declare(s.Name)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.funcType == funcNone {
			r.errs = append(r.errs, loxerr.NewResolve(s.Keyword.Line, "", "Can't return from top-level code."))
		}
		if s.Value != nil {
			if r.funcType == funcInitializer {
				r.errs = append(r.errs, loxerr.NewResolve(s.Keyword.Line, "", "Can't return a value from an initializer."))
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Break:
		if r.loopDepth == 0 {
			r.errs = append(r.errs, loxerr.NewResolve(s.Keyword.Line, "", "Can't use 'break' outside of a loop."))
		}
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveClass(c *ast.Class) {
	enclosingClass := r.classType
	r.classType = classClass

	r.declare(c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.errs = append(r.errs, loxerr.NewResolve(c.Superclass.Name.Line, "", "A class can't inherit from itself."))
		}
		r.classType = classSubclass
		r.resolveExpr(c.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range c.Methods {
		kind := funcMethod
		if m.Name.Lexeme == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope()

	if c.Superclass != nil {
		r.endScope()
	}

	r.classType = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionType) {
	enclosingFn := r.funcType
	r.funcType = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.funcType = enclosingFn
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Identifier:
		if len(r.scopes) > 0 {
			if defined, declared := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; declared && !defined {
				r.errs = append(r.errs, loxerr.NewResolve(e.Name.Line, "at '"+e.Name.Lexeme+"'",
					"Can't read local variable in its own initializer."))
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Assignment:
		r.resolveExpr(e.Expr)
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Grouping:
		r.resolveExpr(e.Expr)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.This:
		if r.classType == classNone {
			r.errs = append(r.errs, loxerr.NewResolve(e.Keyword.Line, "", "Can't use 'this' outside of a class."))
			return
		}
		r.resolveLocal(e, "this")
	case *ast.Super:
		switch r.classType {
		case classNone:
			r.errs = append(r.errs, loxerr.NewResolve(e.Keyword.Line, "", "Can't use 'super' outside of a class."))
			return
		case classClass:
			r.errs = append(r.errs, loxerr.NewResolve(e.Keyword.Line, "", "Can't use 'super' in a class with no superclass."))
			return
		}
		r.resolveLocal(e, "super")
	default:
		panic("resolver: unhandled expression type")
	}
}

// declare/define track whether a name is "in scope but not yet ready to
// reference itself" (false) vs. fully usable (true); the self-initializer
// check in resolveExpr depends on this two-phase marking.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		r.errs = append(r.errs, loxerr.NewResolve(name.Line, "at '"+name.Lexeme+"'",
			"Already a variable with this name in this scope."))
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.Locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: resolves to the global frame at runtime.
}
