package interp

import (
	"fmt"

	"rlox/internal/ast"
	"rlox/internal/loxerr"
	"rlox/internal/object"
	"rlox/internal/token"
)

// Callable is anything that can appear as the callee of a Call expression:
// user-defined functions, classes (constructing an Instance), and native
// builtins like clock().
type Callable interface {
	object.Value
	Arity() int
	Call(i *Interpreter, args []object.Value) (object.Value, error)
}

// nativeFn wraps a Go function as a Lox-callable builtin.
type nativeFn struct {
	name  string
	arity int
	fn    func(args []object.Value) (object.Value, error)
}

func (n *nativeFn) Display() string { return fmt.Sprintf("<native fn %s>", n.name) }
func (n *nativeFn) Arity() int      { return n.arity }
func (n *nativeFn) Call(_ *Interpreter, args []object.Value) (object.Value, error) {
	return n.fn(args)
}

// Function is a user-defined function or method, closing over the
// environment active at its declaration site. IsInitializer makes an
// init method always return the bound instance regardless of its body's
// own return statements.
type Function struct {
	Decl          *ast.Function
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Display() string { return fmt.Sprintf("<fn %s>", f.Decl.Name.Lexeme) }
func (f *Function) Arity() int      { return len(f.Decl.Params) }

func (f *Function) Call(i *Interpreter, args []object.Value) (object.Value, error) {
	env := NewEnvironment(f.Closure)
	for idx, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	sig, err := i.executeBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		this, _ := f.Closure.GetAt(0, "this")
		return this, nil
	}
	if sig != nil && sig.kind == sigReturn {
		return sig.value, nil
	}
	return object.Nil{}, nil
}

// Bind returns a new Function whose closure adds a frame defining "this" as
// inst — one fresh frame per access, so two bound methods from the same
// instance don't share a mutable "this" binding.
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", inst)
	return &Function{Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// Class is a Lox class: a name, an optional superclass, and its own
// methods. FindMethod walks the superclass chain so inherited methods
// resolve without copying them into the subclass.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) Display() string { return c.Name }

func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(i *Interpreter, args []object.Value) (object.Value, error) {
	inst := &Instance{Class: c, Fields: make(map[string]object.Value)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(inst).Call(i, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// Instance is a live object of some Class: a bag of fields plus a pointer
// back to its class for method lookup.
type Instance struct {
	Class  *Class
	Fields map[string]object.Value
}

func (inst *Instance) Display() string { return inst.Class.Name + " instance" }

func (inst *Instance) Get(name token.Token) (object.Value, error) {
	if v, ok := inst.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := inst.Class.FindMethod(name.Lexeme); m != nil {
		return m.Bind(inst), nil
	}
	return nil, loxerr.NewRuntime(name.Line, "Undefined property '"+name.Lexeme+"'.")
}

func (inst *Instance) Set(name token.Token, v object.Value) {
	inst.Fields[name.Lexeme] = v
}
