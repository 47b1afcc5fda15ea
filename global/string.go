package global

import (
	"strings"

	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
	jsregexp "github.com/scriptkit/ecma/regexp"
)

func thisString(m *interp.Machine, this object.Value) (string, error) {
	if s, ok := this.(object.String); ok {
		return string(s), nil
	}
	if obj, ok := this.(*object.Object); ok {
		if d, ok := obj.GetOwnPropertyDescriptor(object.StringName("__primitive__")); ok {
			if s, ok := d.Value.(object.String); ok {
				return string(s), nil
			}
		}
	}
	return m.CoerceToString(this)
}

func initStringProto(m *interp.Machine, stringProto, functionProto, objectProto *object.Object) *object.Object {
	method(m, stringProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		return object.String(s), err
	})
	method(m, stringProto, functionProto, "valueOf", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		return object.String(s), err
	})
	method(m, stringProto, functionProto, "charAt", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		n, _ := m.CoerceToNumber(arg(args, 0))
		runes := []rune(s)
		i := int(n)
		if i < 0 || i >= len(runes) {
			return object.String(""), nil
		}
		return object.String(string(runes[i])), nil
	})
	method(m, stringProto, functionProto, "indexOf", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		sub, err := m.CoerceToString(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return object.Number(float64(strings.Index(s, sub))), nil
	})
	method(m, stringProto, functionProto, "slice", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		start, end := sliceBounds(m, args, len(runes))
		return object.String(string(runes[start:end])), nil
	})
	method(m, stringProto, functionProto, "split", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		arr := object.New(m.ArrayProto, "Array")
		sep, ok := arg(args, 0).(object.String)
		if !ok {
			arr.DefineOwn(object.StringName("0"), object.Descriptor{Value: object.String(s)})
			setArrayLength(arr, 1)
			return arr, nil
		}
		parts := strings.Split(s, string(sep))
		for i, p := range parts {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: object.String(p)})
		}
		setArrayLength(arr, len(parts))
		return arr, nil
	})
	method(m, stringProto, functionProto, "toUpperCase", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		return object.String(strings.ToUpper(s)), err
	})
	method(m, stringProto, functionProto, "toLowerCase", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		return object.String(strings.ToLower(s)), err
	})
	method(m, stringProto, functionProto, "trim", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		return object.String(strings.TrimSpace(s)), err
	})
	method(m, stringProto, functionProto, "concat", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		for _, a := range args {
			as, err := m.CoerceToString(a)
			if err != nil {
				return nil, err
			}
			s += as
		}
		return object.String(s), nil
	})

	method(m, stringProto, functionProto, "match", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		re, err := coerceRegexp(m, arg(args, 0))
		if err != nil {
			return nil, err
		}
		return stringMatch(m, s, re)
	})

	method(m, stringProto, functionProto, "search", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		re, err := coerceRegexp(m, arg(args, 0))
		if err != nil {
			return nil, err
		}
		idx, err := re.Search(s)
		if err != nil {
			return nil, err
		}
		return object.Number(float64(idx)), nil
	})

	method(m, stringProto, functionProto, "replace", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s, err := thisString(m, this)
		if err != nil {
			return nil, err
		}
		replacement, err := m.CoerceToString(arg(args, 1))
		if err != nil {
			return nil, err
		}
		re, ok, err := tryCoerceRegexp(arg(args, 0))
		if err != nil {
			return nil, err
		}
		if !ok {
			pattern, err := m.CoerceToString(arg(args, 0))
			if err != nil {
				return nil, err
			}
			return object.String(strings.Replace(s, pattern, replacement, 1)), nil
		}
		out, err := replaceWithRegexp(s, re, replacement, re.Flags.Global)
		if err != nil {
			return nil, err
		}
		return object.String(out), nil
	})

	ctor := newNative(m, functionProto, "String", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		s := ""
		if len(args) > 0 {
			var err error
			s, err = m.CoerceToString(args[0])
			if err != nil {
				return nil, err
			}
		}
		if !isNew {
			return object.String(s), nil
		}
		obj := object.New(stringProto, "String")
		obj.DefineOwn(object.StringName("__primitive__"), object.Descriptor{Value: object.String(s), Attrs: object.DontEnum})
		return obj, nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: stringProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	stringProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})
	return ctor
}

func coerceRegexp(m *interp.Machine, v object.Value) (*jsregexp.Compiled, error) {
	re, ok, err := tryCoerceRegexp(v)
	if err != nil {
		return nil, err
	}
	if ok {
		return re, nil
	}
	pattern, err := m.CoerceToString(v)
	if err != nil {
		return nil, err
	}
	return jsregexp.Compile(pattern, jsregexp.Flags{})
}

func tryCoerceRegexp(v object.Value) (*jsregexp.Compiled, bool, error) {
	obj, ok := v.(*object.Object)
	if !ok || obj.Class() != "RegExp" {
		return nil, false, nil
	}
	compiled, ok := regexpPayload(obj)
	if !ok {
		return nil, false, nil
	}
	return compiled, true, nil
}

func stringMatch(m *interp.Machine, s string, re *jsregexp.Compiled) (object.Value, error) {
	if !re.Flags.Global {
		res, err := re.ExecSub(s, 0)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return object.Null{}, nil
		}
		recordRegexpLegacyMatch(m, s, 0, res)
		return matchResultToArray(m, res), nil
	}
	all, err := re.MatchAll(s)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return object.Null{}, nil
	}
	arr := object.New(m.ArrayProto, "Array")
	for i, r := range all {
		arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: object.String(r.Groups[0].Value)})
	}
	setArrayLength(arr, len(all))
	recordRegexpLegacyMatch(m, s, all[len(all)-1].Index, all[len(all)-1])
	return arr, nil
}

func matchResultToArray(m *interp.Machine, res *jsregexp.MatchResult) *object.Object {
	arr := object.New(m.ArrayProto, "Array")
	for i, g := range res.Groups {
		if g.Participated {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: object.String(g.Value)})
		} else {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: object.Undefined{}})
		}
	}
	setArrayLength(arr, len(res.Groups))
	arr.DefineOwn(object.StringName("index"), object.Descriptor{Value: object.Number(float64(res.Index)), Attrs: object.DontEnum})
	arr.DefineOwn(object.StringName("input"), object.Descriptor{Value: object.String(res.Input), Attrs: object.DontEnum})
	return arr
}

func replaceWithRegexp(s string, re *jsregexp.Compiled, replacement string, global bool) (string, error) {
	var results []*jsregexp.MatchResult
	if global {
		all, err := re.MatchAll(s)
		if err != nil {
			return "", err
		}
		results = all
	} else {
		res, err := re.ExecSub(s, 0)
		if err != nil {
			return "", err
		}
		if res != nil {
			results = []*jsregexp.MatchResult{res}
		}
	}
	if len(results) == 0 {
		return s, nil
	}
	runes := []rune(s)
	var b strings.Builder
	last := 0
	for _, res := range results {
		whole := res.Groups[0]
		b.WriteString(string(runes[last:whole.Start]))
		b.WriteString(jsregexp.ExpandReplacement(replacement, s, res))
		last = whole.End
	}
	b.WriteString(string(runes[last:]))
	return b.String(), nil
}
