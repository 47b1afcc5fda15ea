package interp

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"github.com/scriptkit/ecma/object"
	"github.com/scriptkit/ecma/scope"
)

func (m *Machine) evalExpr(sc *scope.Scope, expr ast.Expression) (object.Value, error) {
	switch e := expr.(type) {
	case nil, *ast.EmptyExpression:
		return object.Undefined{}, nil

	case *ast.NumberLiteral:
		switch v := e.Value.(type) {
		case float64:
			return object.Number(v), nil
		case int64:
			return object.Number(float64(v)), nil
		default:
			return object.Number(0), nil
		}

	case *ast.StringLiteral:
		return object.String(e.Value), nil

	case *ast.BooleanLiteral:
		return object.Boolean(e.Value), nil

	case *ast.NullLiteral:
		return object.Null{}, nil

	case *ast.ThisExpression:
		if call := scope.CurrentCall(sc); call != nil && call.Call.This != nil {
			return call.Call.This, nil
		}
		return m.Global, nil

	case *ast.Identifier:
		v, ok := sc.Env.Lookup(sc, object.StringName(e.Name))
		if !ok {
			return nil, m.ThrowReferenceError("%s is not defined", e.Name)
		}
		return v, nil

	case *ast.VariableExpression:
		var v object.Value = object.Undefined{}
		if e.Initializer != nil {
			var err error
			v, err = m.evalExpr(sc, e.Initializer)
			if err != nil {
				return nil, err
			}
		}
		if err := sc.Env.Define(sc, scope.DeclVar, object.StringName(e.Name), v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.SequenceExpression:
		var last object.Value = object.Undefined{}
		for _, sub := range e.Sequence {
			v, err := m.evalExpr(sc, sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.FunctionLiteral:
		return m.makeFunction(sc, e), nil

	case *ast.ObjectLiteral:
		return m.evalObjectLiteral(sc, e)

	case *ast.ArrayLiteral:
		return m.evalArrayLiteral(sc, e)

	case *ast.ConditionalExpression:
		test, err := m.evalExpr(sc, e.Test)
		if err != nil {
			return nil, err
		}
		if object.ToBoolean(test) {
			return m.evalExpr(sc, e.Consequent)
		}
		return m.evalExpr(sc, e.Alternate)

	case *ast.UnaryExpression:
		return m.evalUnary(sc, e)

	case *ast.BinaryExpression:
		return m.evalBinary(sc, e)

	case *ast.AssignExpression:
		return m.evalAssign(sc, e)

	case *ast.DotExpression:
		obj, err := m.evalExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		return m.getMember(obj, e.Identifier.Name)

	case *ast.BracketExpression:
		obj, err := m.evalExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		key, err := m.evalExpr(sc, e.Member)
		if err != nil {
			return nil, err
		}
		ks, err := m.coerceToString(key)
		if err != nil {
			return nil, err
		}
		return m.getMember(obj, ks)

	case *ast.CallExpression:
		return m.evalCall(sc, e)

	case *ast.NewExpression:
		calleeV, err := m.evalExpr(sc, e.Callee)
		if err != nil {
			return nil, err
		}
		callee, ok := calleeV.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("not a constructor")
		}
		args, err := m.evalArgs(sc, e.ArgumentList)
		if err != nil {
			return nil, err
		}
		return m.New(callee, args)

	case *ast.RegExpLiteral:
		ctorV, err := m.Global.GetProperty(object.StringName("RegExp"), m)
		if err != nil {
			return nil, err
		}
		ctor, ok := ctorV.(*object.Object)
		if !ok {
			return nil, m.ThrowEvaluatorError("RegExp constructor is not available")
		}
		return m.New(ctor, []object.Value{object.String(e.Pattern), object.String(e.Flags)})

	default:
		return nil, m.ThrowEvaluatorError("unsupported expression %T", expr)
	}
}

func (m *Machine) getMember(obj object.Value, name string) (object.Value, error) {
	o, err := m.coerceToObject(obj)
	if err != nil {
		return nil, err
	}
	return o.GetProperty(object.StringName(name), m)
}

func (m *Machine) evalArgs(sc *scope.Scope, list []ast.Expression) ([]object.Value, error) {
	args := make([]object.Value, len(list))
	for i, a := range list {
		v, err := m.evalExpr(sc, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (m *Machine) evalCall(sc *scope.Scope, e *ast.CallExpression) (object.Value, error) {
	var this object.Value = object.Undefined{}
	var calleeV object.Value
	var err error

	switch callee := e.Callee.(type) {
	case *ast.DotExpression:
		this, err = m.evalExpr(sc, callee.Left)
		if err != nil {
			return nil, err
		}
		calleeV, err = m.getMember(this, callee.Identifier.Name)
		if err != nil {
			return nil, err
		}
	case *ast.BracketExpression:
		this, err = m.evalExpr(sc, callee.Left)
		if err != nil {
			return nil, err
		}
		keyV, err := m.evalExpr(sc, callee.Member)
		if err != nil {
			return nil, err
		}
		ks, err := m.coerceToString(keyV)
		if err != nil {
			return nil, err
		}
		calleeV, err = m.getMember(this, ks)
		if err != nil {
			return nil, err
		}
	default:
		calleeV, err = m.evalExpr(sc, e.Callee)
		if err != nil {
			return nil, err
		}
	}

	fn, ok := calleeV.(*object.Object)
	if !ok || fn.Call == nil {
		return nil, m.ThrowTypeError("value is not a function")
	}
	args, err := m.evalArgs(sc, e.ArgumentList)
	if err != nil {
		return nil, err
	}
	return m.Call(fn, this, args)
}

func (m *Machine) evalUnary(sc *scope.Scope, e *ast.UnaryExpression) (object.Value, error) {
	if e.Operator == token.INCREMENT || e.Operator == token.DECREMENT {
		return m.evalIncDec(sc, e)
	}

	if e.Operator == token.DELETE {
		return m.evalDelete(sc, e.Operand)
	}
	if e.Operator == token.TYPEOF {
		if id, ok := e.Operand.(*ast.Identifier); ok {
			v, ok := sc.Env.Lookup(sc, object.StringName(id.Name))
			if !ok {
				return object.String("undefined"), nil
			}
			return object.String(object.TypeOf(v)), nil
		}
		v, err := m.evalExpr(sc, e.Operand)
		if err != nil {
			return nil, err
		}
		return object.String(object.TypeOf(v)), nil
	}

	v, err := m.evalExpr(sc, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case token.NOT:
		return object.Boolean(!object.ToBoolean(v)), nil
	case token.VOID:
		return object.Undefined{}, nil
	case token.PLUS:
		n, err := m.coerceToNumber(v)
		if err != nil {
			return nil, err
		}
		return object.Number(n), nil
	case token.MINUS:
		n, err := m.coerceToNumber(v)
		if err != nil {
			return nil, err
		}
		return object.Number(-n), nil
	case token.BITWISE_NOT:
		n, err := m.coerceToNumber(v)
		if err != nil {
			return nil, err
		}
		return object.Number(float64(^toInt32(n))), nil
	default:
		return nil, m.ThrowEvaluatorError("unsupported unary operator %s", e.Operator)
	}
}

func (m *Machine) evalDelete(sc *scope.Scope, operand ast.Expression) (object.Value, error) {
	switch op := operand.(type) {
	case *ast.DotExpression:
		obj, err := m.evalExpr(sc, op.Left)
		if err != nil {
			return nil, err
		}
		o, err := m.coerceToObject(obj)
		if err != nil {
			return nil, err
		}
		return object.Boolean(o.DeleteProperty(object.StringName(op.Identifier.Name))), nil
	case *ast.BracketExpression:
		obj, err := m.evalExpr(sc, op.Left)
		if err != nil {
			return nil, err
		}
		o, err := m.coerceToObject(obj)
		if err != nil {
			return nil, err
		}
		keyV, err := m.evalExpr(sc, op.Member)
		if err != nil {
			return nil, err
		}
		ks, err := m.coerceToString(keyV)
		if err != nil {
			return nil, err
		}
		return object.Boolean(o.DeleteProperty(object.StringName(ks))), nil
	case *ast.Identifier:
		return object.Boolean(sc.Env.Delete(sc, object.StringName(op.Name))), nil
	default:
		return object.Boolean(true), nil
	}
}

func (m *Machine) evalIncDec(sc *scope.Scope, e *ast.UnaryExpression) (object.Value, error) {
	old, err := m.evalExpr(sc, e.Operand)
	if err != nil {
		return nil, err
	}
	n, err := m.coerceToNumber(old)
	if err != nil {
		return nil, err
	}
	delta := 1.0
	if e.Operator == token.DECREMENT {
		delta = -1.0
	}
	updated := object.Number(n + delta)
	if err := m.doAssignment(sc, e.Operand, updated); err != nil {
		return nil, err
	}
	if e.Postfix {
		return object.Number(n), nil
	}
	return updated, nil
}

func (m *Machine) evalBinary(sc *scope.Scope, e *ast.BinaryExpression) (object.Value, error) {
	if e.Operator == token.LOGICAL_AND {
		left, err := m.evalExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		if !object.ToBoolean(left) {
			return left, nil
		}
		return m.evalExpr(sc, e.Right)
	}
	if e.Operator == token.LOGICAL_OR {
		left, err := m.evalExpr(sc, e.Left)
		if err != nil {
			return nil, err
		}
		if object.ToBoolean(left) {
			return left, nil
		}
		return m.evalExpr(sc, e.Right)
	}

	left, err := m.evalExpr(sc, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := m.evalExpr(sc, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case token.PLUS:
		return m.addition(left, right)
	case token.MINUS:
		return m.arithmeticOp("-", left, right)
	case token.MULTIPLY:
		return m.arithmeticOp("*", left, right)
	case token.SLASH:
		return m.arithmeticOp("/", left, right)
	case token.REMAINDER:
		return m.arithmeticOp("%", left, right)
	case token.AND:
		return m.arithmeticOp("&", left, right)
	case token.OR:
		return m.arithmeticOp("|", left, right)
	case token.EXCLUSIVE_OR:
		return m.arithmeticOp("^", left, right)
	case token.SHIFT_LEFT:
		return m.arithmeticOp("<<", left, right)
	case token.SHIFT_RIGHT:
		return m.arithmeticOp(">>", left, right)
	case token.UNSIGNED_SHIFT_RIGHT:
		return m.arithmeticOp(">>>", left, right)
	case token.STRICT_EQUAL:
		return object.Boolean(strictEqual(left, right)), nil
	case token.STRICT_NOT_EQUAL:
		return object.Boolean(!strictEqual(left, right)), nil
	case token.EQUAL:
		eq, err := m.looseEqual(left, right, 0)
		if err != nil {
			return nil, err
		}
		return object.Boolean(eq), nil
	case token.NOT_EQUAL:
		eq, err := m.looseEqual(left, right, 0)
		if err != nil {
			return nil, err
		}
		return object.Boolean(!eq), nil
	case token.LESS:
		lt, ok, err := m.compareLessThan(left, right)
		if err != nil {
			return nil, err
		}
		return object.Boolean(ok && lt), nil
	case token.GREATER:
		lt, ok, err := m.compareLessThan(right, left)
		if err != nil {
			return nil, err
		}
		return object.Boolean(ok && lt), nil
	case token.LESS_OR_EQUAL:
		gt, ok, err := m.compareLessThan(right, left)
		if err != nil {
			return nil, err
		}
		return object.Boolean(ok && !gt), nil
	case token.GREATER_OR_EQUAL:
		lt, ok, err := m.compareLessThan(left, right)
		if err != nil {
			return nil, err
		}
		return object.Boolean(ok && !lt), nil
	case token.INSTANCEOF:
		return m.evalInstanceof(left, right)
	default:
		return nil, m.ThrowEvaluatorError("unsupported binary operator %s", e.Operator)
	}
}

func (m *Machine) evalInstanceof(left, right object.Value) (object.Value, error) {
	ctor, ok := right.(*object.Object)
	if !ok || ctor.Call == nil {
		return nil, m.ThrowTypeError("right-hand side of instanceof is not callable")
	}
	obj, ok := left.(*object.Object)
	if !ok {
		return object.Boolean(false), nil
	}
	protoV, err := ctor.GetProperty(object.StringName("prototype"), m)
	if err != nil {
		return nil, err
	}
	proto, ok := protoV.(*object.Object)
	if !ok {
		return object.Boolean(false), nil
	}
	for cur := obj.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return object.Boolean(true), nil
		}
	}
	return object.Boolean(false), nil
}

func (m *Machine) evalAssign(sc *scope.Scope, e *ast.AssignExpression) (object.Value, error) {
	if e.Operator == token.ASSIGN {
		v, err := m.evalExpr(sc, e.Right)
		if err != nil {
			return nil, err
		}
		if err := m.doAssignment(sc, e.Left, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	old, err := m.evalExpr(sc, e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := m.evalExpr(sc, e.Right)
	if err != nil {
		return nil, err
	}

	var result object.Value
	switch e.Operator {
	case token.ADD_ASSIGN:
		result, err = m.addition(old, rhs)
	case token.SUBTRACT_ASSIGN:
		result, err = m.arithmeticOp("-", old, rhs)
	case token.MULTIPLY_ASSIGN:
		result, err = m.arithmeticOp("*", old, rhs)
	case token.QUOTIENT_ASSIGN:
		result, err = m.arithmeticOp("/", old, rhs)
	case token.REMAINDER_ASSIGN:
		result, err = m.arithmeticOp("%", old, rhs)
	case token.AND_ASSIGN:
		result, err = m.arithmeticOp("&", old, rhs)
	case token.OR_ASSIGN:
		result, err = m.arithmeticOp("|", old, rhs)
	case token.EXCLUSIVE_OR_ASSIGN:
		result, err = m.arithmeticOp("^", old, rhs)
	case token.SHIFT_LEFT_ASSIGN:
		result, err = m.arithmeticOp("<<", old, rhs)
	case token.SHIFT_RIGHT_ASSIGN:
		result, err = m.arithmeticOp(">>", old, rhs)
	case token.UNSIGNED_SHIFT_RIGHT_ASSIGN:
		result, err = m.arithmeticOp(">>>", old, rhs)
	default:
		return nil, m.ThrowEvaluatorError("unsupported assignment operator %s", e.Operator)
	}
	if err != nil {
		return nil, err
	}
	if err := m.doAssignment(sc, e.Left, result); err != nil {
		return nil, err
	}
	return result, nil
}

// doAssignment writes v to the storage location named by target:
// identifier (scope chain), dot, or bracket member expression.
func (m *Machine) doAssignment(sc *scope.Scope, target ast.Expression, v object.Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return sc.Env.Set(sc, object.StringName(t.Name), v, m)
	case *ast.VariableExpression:
		return sc.Env.Set(sc, object.StringName(t.Name), v, m)
	case *ast.DotExpression:
		objV, err := m.evalExpr(sc, t.Left)
		if err != nil {
			return err
		}
		obj, err := m.coerceToObject(objV)
		if err != nil {
			return err
		}
		return obj.SetProperty(object.StringName(t.Identifier.Name), v, m)
	case *ast.BracketExpression:
		objV, err := m.evalExpr(sc, t.Left)
		if err != nil {
			return err
		}
		obj, err := m.coerceToObject(objV)
		if err != nil {
			return err
		}
		keyV, err := m.evalExpr(sc, t.Member)
		if err != nil {
			return err
		}
		ks, err := m.coerceToString(keyV)
		if err != nil {
			return err
		}
		return obj.SetProperty(object.StringName(ks), v, m)
	default:
		return m.ThrowEvaluatorError("invalid assignment target %T", target)
	}
}

func (m *Machine) evalObjectLiteral(sc *scope.Scope, e *ast.ObjectLiteral) (object.Value, error) {
	obj := object.New(m.ObjectProto, "Object")
	for _, prop := range e.Value {
		switch prop.Kind {
		case "get":
			fn, err := m.evalExpr(sc, prop.Value)
			if err != nil {
				return nil, err
			}
			getter, _ := fn.(*object.Object)
			d, _ := obj.GetOwnPropertyDescriptor(object.StringName(prop.Key))
			if d == nil {
				d = &object.Descriptor{}
			}
			d.Get = getter
			obj.DefineOwn(object.StringName(prop.Key), *d)
		case "set":
			fn, err := m.evalExpr(sc, prop.Value)
			if err != nil {
				return nil, err
			}
			setter, _ := fn.(*object.Object)
			d, _ := obj.GetOwnPropertyDescriptor(object.StringName(prop.Key))
			if d == nil {
				d = &object.Descriptor{}
			}
			d.Set = setter
			obj.DefineOwn(object.StringName(prop.Key), *d)
		default:
			v, err := m.evalExpr(sc, prop.Value)
			if err != nil {
				return nil, err
			}
			obj.DefineOwn(object.StringName(prop.Key), object.Descriptor{Value: v})
		}
	}
	return obj, nil
}

func (m *Machine) evalArrayLiteral(sc *scope.Scope, e *ast.ArrayLiteral) (object.Value, error) {
	arr := object.New(m.ArrayProto, "Array")
	for i, el := range e.Value {
		if el == nil {
			continue // elision
		}
		v, err := m.evalExpr(sc, el)
		if err != nil {
			return nil, err
		}
		arr.DefineOwn(object.StringName(indexName(i)), object.Descriptor{Value: v})
	}
	arr.DefineOwn(object.StringName("length"), object.Descriptor{
		Value: object.Number(float64(len(e.Value))), Attrs: object.DontEnum,
	})
	return arr, nil
}
