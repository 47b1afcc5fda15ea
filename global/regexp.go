package global

import (
	"fmt"

	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
	jsregexp "github.com/scriptkit/ecma/regexp"
	"github.com/scriptkit/ecma/version"
)

// regexpSlot is the DontEnum own property a RegExp instance stashes its
// compiled engine payload behind, since *object.Object carries no typed
// extension point of its own for native state (§4.4).
const regexpSlot = "__regexp__"

func regexpPayload(obj *object.Object) (*jsregexp.Compiled, bool) {
	d, ok := obj.GetOwnPropertyDescriptor(object.StringName(regexpSlot))
	if !ok {
		return nil, false
	}
	box, ok := d.Value.(object.Opaque)
	if !ok {
		return nil, false
	}
	c, ok := box.V.(*jsregexp.Compiled)
	if !ok {
		return nil, false
	}
	return c, true
}

func newRegExpObject(proto *object.Object, c *jsregexp.Compiled) *object.Object {
	obj := object.New(proto, "RegExp")
	obj.DefineOwn(object.StringName("lastIndex"), object.Descriptor{Value: object.Number(0), Attrs: object.DontEnum})
	setRegExpInstanceProps(obj, c)
	return obj
}

// setRegExpInstanceProps (re)installs the compiled payload and the seven
// instance properties the data model names: source, flags, global,
// ignoreCase, multiline, dotAll, sticky (§3/§4.3). Shared by the
// constructor and by compile(), which recompiles an existing instance in
// place rather than allocating a new one.
func setRegExpInstanceProps(obj *object.Object, c *jsregexp.Compiled) {
	obj.DefineOwn(object.StringName(regexpSlot), object.Descriptor{Value: object.Opaque{V: c}, Attrs: object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("source"), object.Descriptor{Value: object.String(c.Source), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("flags"), object.Descriptor{Value: object.String(c.Flags.String()), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("global"), object.Descriptor{Value: object.Boolean(c.Flags.Global), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("ignoreCase"), object.Descriptor{Value: object.Boolean(c.Flags.IgnoreCase), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("multiline"), object.Descriptor{Value: object.Boolean(c.Flags.Multiline), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("dotAll"), object.Descriptor{Value: object.Boolean(c.Flags.DotAll), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	obj.DefineOwn(object.StringName("sticky"), object.Descriptor{Value: object.Boolean(c.Flags.Sticky), Attrs: object.Readonly | object.DontEnum | object.Permanent})
}

// compileRegExp builds a Compiled matcher from a RegExp constructor's
// pattern/flags argument pair, reusing an existing instance's pattern when
// patternArg is itself a RegExp and no explicit flags were given.
func compileRegExp(m *interp.Machine, patternArg, flagsArg object.Value) (*jsregexp.Compiled, error) {
	hasFlags := false
	if _, isUndef := flagsArg.(object.Undefined); !isUndef {
		hasFlags = true
	}
	if existing, ok := patternArg.(*object.Object); ok {
		if c, isRe := regexpPayload(existing); isRe && !hasFlags {
			return c, nil
		}
	}
	pattern, err := m.CoerceToString(patternArg)
	if err != nil {
		return nil, err
	}
	flagStr := ""
	if hasFlags {
		flagStr, err = m.CoerceToString(flagsArg)
		if err != nil {
			return nil, err
		}
	}
	flags, err := jsregexp.ParseFlags(flagStr)
	if err != nil {
		return nil, err
	}
	return jsregexp.Compile(pattern, flags)
}

// symbolMethod installs a Symbol-keyed method, mirroring method() but for
// the Symbol.match/matchAll/search protocol dispatch points (§4.4).
func symbolMethod(m *interp.Machine, target, proto *object.Object, sym object.Name, dispName string, length int, fn NativeFunc) {
	target.DefineMethod(sym, newNative(m, proto, dispName, length, fn))
}

// propertyOrUndefinedLiteral reads name off obj and stringifies it, using
// the literal string "undefined" (not ECMAScript's undefined value) when
// the property is absent or itself undefined.
func propertyOrUndefinedLiteral(m *interp.Machine, obj *object.Object, name string) string {
	v, err := obj.GetProperty(object.StringName(name), m)
	if err != nil {
		return "undefined"
	}
	if _, ok := v.(object.Undefined); ok {
		return "undefined"
	}
	s, err := m.CoerceToString(v)
	if err != nil {
		return "undefined"
	}
	return s
}

// regexpLegacySlot stashes the constructor's *jsregexp.Legacy accumulator
// behind a hidden own property, the same boxing convention regexpSlot
// uses, so String.prototype.match (global/string.go) can update the same
// legacy statics RegExp.prototype.exec/test do without this package
// exposing its closures.
const regexpLegacySlot = "__legacy__"

// recordRegexpLegacyMatch updates the legacy $1..$9/$&/$`/$' statics on
// the script's current RegExp constructor after a successful match,
// honoring the version-1.2 leftContext distinction (§4.4 step 5,
// testable property #10).
func recordRegexpLegacyMatch(m *interp.Machine, input string, fromIndex int, res *jsregexp.MatchResult) {
	if res == nil {
		return
	}
	ctorV, err := m.Global.GetProperty(object.StringName("RegExp"), m)
	if err != nil {
		return
	}
	ctor, ok := ctorV.(*object.Object)
	if !ok {
		return
	}
	d, ok := ctor.GetOwnPropertyDescriptor(object.StringName(regexpLegacySlot))
	if !ok {
		return
	}
	box, ok := d.Value.(object.Opaque)
	if !ok {
		return
	}
	legacy, ok := box.V.(*jsregexp.Legacy)
	if !ok {
		return
	}
	legacy.RecordLegacy(input, fromIndex, res, m.Ctx.Version() == version.V1_2)
	writeLegacyStatics(ctor, legacy)
}

// writeLegacyStatics publishes l's fields as the RegExp constructor's
// legacy $1..$9/lastMatch/leftContext/rightContext/lastParen statics
// (and their $-punctuation aliases), overwritten wholesale after every
// successful exec/test/match.
func writeLegacyStatics(ctor *object.Object, l *jsregexp.Legacy) {
	set := func(name, v string) {
		ctor.DefineOwn(object.StringName(name), object.Descriptor{Value: object.String(v), Attrs: object.DontEnum})
	}
	set("lastMatch", l.LastMatch)
	set("$&", l.LastMatch)
	set("leftContext", l.LeftContext)
	set("$`", l.LeftContext)
	set("rightContext", l.RightContext)
	set("$'", l.RightContext)
	set("lastParen", l.LastParen)
	set("$+", l.LastParen)
	for i := 1; i <= 9; i++ {
		set(fmt.Sprintf("$%d", i), l.Dollar(i))
	}
}

func iterResult(proto *object.Object, value object.Value, done bool) *object.Object {
	obj := object.New(proto, "Object")
	obj.DefineOwn(object.StringName("value"), object.Descriptor{Value: value, Attrs: object.DontEnum})
	obj.DefineOwn(object.StringName("done"), object.Descriptor{Value: object.Boolean(done), Attrs: object.DontEnum})
	return obj
}

// initRegExpProto wires the regexp package's pattern/flags/match engine
// into the script-visible RegExp builtin: the constructor, exec/test,
// lastIndex bookkeeping for global/sticky matches, the Symbol.match/
// matchAll/search protocol dispatch points, compile/toSource, and the
// legacy $1..$9 statics (§4.4).
func initRegExpProto(m *interp.Machine, regexpProto, functionProto, objectProto *object.Object) *object.Object {
	var ctor *object.Object

	method(m, regexpProto, functionProto, "exec", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := this.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype.exec called on incompatible receiver")
		}
		c, ok := regexpPayload(obj)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype.exec called on incompatible receiver")
		}
		s, err := m.CoerceToString(arg(args, 0))
		if err != nil {
			return nil, err
		}
		from := 0
		if c.Flags.Global || c.Flags.Sticky {
			lastV, _ := obj.GetProperty(object.StringName("lastIndex"), m)
			n, _ := m.CoerceToNumber(lastV)
			from = int(n)
		}
		res, err := c.ExecSub(s, from)
		if err != nil {
			return nil, err
		}
		if res == nil {
			if c.Flags.Global || c.Flags.Sticky {
				obj.SetProperty(object.StringName("lastIndex"), object.Number(0), m)
			}
			return object.Null{}, nil
		}
		if c.Flags.Global || c.Flags.Sticky {
			obj.SetProperty(object.StringName("lastIndex"), object.Number(float64(res.Groups[0].End)), m)
		}
		recordRegexpLegacyMatch(m, s, from, res)
		return matchResultToArray(m, res), nil
	})

	method(m, regexpProto, functionProto, "test", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		execV, err := regexpProto.GetProperty(object.StringName("exec"), m)
		if err != nil {
			return nil, err
		}
		fn, ok := execV.(*object.Object)
		if !ok {
			return object.Boolean(false), nil
		}
		res, err := m.Call(fn, this, args)
		if err != nil {
			return nil, err
		}
		_, isNull := res.(object.Null)
		return object.Boolean(!isNull), nil
	})

	// Generic per the RegExp.prototype.toString contract: a receiver
	// that isn't a RegExp instance is not rejected, it is read for
	// source/flags by ordinary property lookup, with "undefined" standing
	// in for either property when absent (so toString.call({}) yields
	// "/undefined/undefined" rather than throwing).
	toSourceOrString := func(m *interp.Machine, this object.Value) (object.Value, error) {
		if obj, ok := this.(*object.Object); ok {
			if c, isRe := regexpPayload(obj); isRe {
				return object.String("/" + c.Source + "/" + c.Flags.String()), nil
			}
		}
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		source := propertyOrUndefinedLiteral(m, obj, "source")
		flags := propertyOrUndefinedLiteral(m, obj, "flags")
		return object.String("/" + source + "/" + flags), nil
	}
	method(m, regexpProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return toSourceOrString(m, this)
	})
	method(m, regexpProto, functionProto, "toSource", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return toSourceOrString(m, this)
	})

	method(m, regexpProto, functionProto, "compile", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := this.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype.compile called on incompatible receiver")
		}
		c, err := compileRegExp(m, arg(args, 0), arg(args, 1))
		if err != nil {
			return nil, err
		}
		setRegExpInstanceProps(obj, c)
		obj.SetProperty(object.StringName("lastIndex"), object.Number(0), m)
		return obj, nil
	})

	// [Symbol.match]: non-global delegates straight to exec; global resets
	// lastIndex and loops exec, collecting the whole-match substring of
	// every iteration (the "how many times did this match" contract
	// String.prototype.match dispatches to).
	symbolMethod(m, regexpProto, functionProto, object.SymbolMatch, "[Symbol.match]", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := this.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype[Symbol.match] called on incompatible receiver")
		}
		c, ok := regexpPayload(obj)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype[Symbol.match] called on incompatible receiver")
		}
		execFn, err := regexpProto.GetProperty(object.StringName("exec"), m)
		if err != nil {
			return nil, err
		}
		fn, _ := execFn.(*object.Object)
		if !c.Flags.Global {
			return m.Call(fn, this, args)
		}
		obj.SetProperty(object.StringName("lastIndex"), object.Number(0), m)
		var out []object.Value
		for {
			res, err := m.Call(fn, this, args)
			if err != nil {
				return nil, err
			}
			if _, isNull := res.(object.Null); isNull {
				break
			}
			resObj, err := m.CoerceToObject(res)
			if err != nil {
				return nil, err
			}
			wholeV, err := resObj.GetProperty(object.StringName("0"), m)
			if err != nil {
				return nil, err
			}
			whole, err := m.CoerceToString(wholeV)
			if err != nil {
				return nil, err
			}
			out = append(out, object.String(whole))
			if whole == "" {
				lastV, _ := obj.GetProperty(object.StringName("lastIndex"), m)
				n, _ := m.CoerceToNumber(lastV)
				obj.SetProperty(object.StringName("lastIndex"), object.Number(n+1), m)
			}
		}
		if len(out) == 0 {
			return object.Null{}, nil
		}
		arr := object.New(m.ArrayProto, "Array")
		for i, v := range out {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: v})
		}
		setArrayLength(arr, len(out))
		return arr, nil
	})

	// [Symbol.search]: a single exec with lastIndex saved and restored
	// around it, per String.prototype.search's "search never advances
	// lastIndex" contract.
	symbolMethod(m, regexpProto, functionProto, object.SymbolSearch, "[Symbol.search]", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := this.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype[Symbol.search] called on incompatible receiver")
		}
		execFn, err := regexpProto.GetProperty(object.StringName("exec"), m)
		if err != nil {
			return nil, err
		}
		fn, _ := execFn.(*object.Object)
		savedV, _ := obj.GetProperty(object.StringName("lastIndex"), m)
		obj.SetProperty(object.StringName("lastIndex"), object.Number(0), m)
		res, err := m.Call(fn, this, args)
		obj.SetProperty(object.StringName("lastIndex"), savedV, m)
		if err != nil {
			return nil, err
		}
		if _, isNull := res.(object.Null); isNull {
			return object.Number(-1), nil
		}
		resObj, ok := res.(*object.Object)
		if !ok {
			return object.Number(-1), nil
		}
		idxV, _ := resObj.GetProperty(object.StringName("index"), m)
		return idxV, nil
	})

	// [Symbol.matchAll]: this engine has no iterator/generator protocol
	// (no for-of consumer anywhere in interp), so the returned iterator is
	// a plain object exposing next()/[Symbol.iterator] manually rather
	// than a real generator — a script driving it with a while-loop over
	// .next().done works exactly like a for-of would.
	symbolMethod(m, regexpProto, functionProto, object.SymbolMatchAll, "[Symbol.matchAll]", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := this.(*object.Object)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype[Symbol.matchAll] called on incompatible receiver")
		}
		c, ok := regexpPayload(obj)
		if !ok {
			return nil, m.ThrowTypeError("RegExp.prototype[Symbol.matchAll] called on incompatible receiver")
		}
		s, err := m.CoerceToString(arg(args, 0))
		if err != nil {
			return nil, err
		}
		results, err := c.MatchAll(s)
		if err != nil {
			return nil, err
		}
		idx := 0
		iter := object.New(objectProto, "RegExp String Iterator")
		method(m, iter, functionProto, "next", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
			if idx >= len(results) {
				return iterResult(objectProto, object.Undefined{}, true), nil
			}
			res := results[idx]
			idx++
			recordRegexpLegacyMatch(m, s, res.Index, res)
			return iterResult(objectProto, matchResultToArray(m, res), false), nil
		})
		symbolMethod(m, iter, functionProto, object.SymbolIterator, "[Symbol.iterator]", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
			return iter, nil
		})
		return iter, nil
	})

	ctor = newNative(m, functionProto, "RegExp", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		c, err := compileRegExp(m, arg(args, 0), arg(args, 1))
		if err != nil {
			return nil, err
		}
		return newRegExpObject(regexpProto, c), nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: regexpProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	regexpProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})
	legacy := &jsregexp.Legacy{}
	ctor.DefineOwn(object.StringName(regexpLegacySlot), object.Descriptor{Value: object.Opaque{V: legacy}, Attrs: object.DontEnum | object.Permanent})
	writeLegacyStatics(ctor, legacy)
	return ctor
}
