// Package object implements the script object and prototype model shared by
// compiled and interpreted code: property storage, prototype chains, and
// id-based builtin dispatch.
package object

import (
	"fmt"
	"sync"
)

// Attr is a property attribute flag, as used by built-in and host-defined
// properties.
type Attr uint8

const (
	Empty Attr = 0

	Readonly Attr = 1 << (iota - 1)
	DontEnum
	Permanent
)

func (a Attr) Has(flag Attr) bool { return a&flag != 0 }

// Name is a property key: either a string or a well-known/unique symbol.
type Name struct {
	text     string
	isSymbol bool
	symID    uint64
}

func StringName(s string) Name { return Name{text: s} }

func SymbolName(tag string, id uint64) Name { return Name{text: tag, isSymbol: true, symID: id} }

func (n Name) IsSymbol() bool { return n.isSymbol }

func (n Name) String() string {
	if n.isSymbol {
		return fmt.Sprintf("Symbol(%s)", n.text)
	}
	return n.text
}

// Well-known symbol names used by the RegExp protocols (§4.4, §4.3).
var (
	SymbolMatch    = SymbolName("Symbol.match", 1)
	SymbolMatchAll = SymbolName("Symbol.matchAll", 2)
	SymbolSearch   = SymbolName("Symbol.search", 3)
	SymbolSpecies  = SymbolName("Symbol.species", 4)
	SymbolIterator = SymbolName("Symbol.iterator", 5)
	SymbolToString = SymbolName("Symbol.toStringTag", 6)
)

// Descriptor is a property slot: either a plain value or an accessor pair.
type Descriptor struct {
	Value      Value
	Get, Set   *Object
	Attrs      Attr
}

func (d *Descriptor) IsAccessor() bool { return d.Get != nil || d.Set != nil }

// IDLookup is the fixed, compact id-based dispatch table a builtin
// registers for its instance properties and prototype methods (§4.3, §9
// "Polymorphism over builtins"). Lookup walks instance ids first, then the
// prototype chain's own descriptor maps.
type IDLookup interface {
	// InstanceIDGet returns the value for instance-id i on this object, or
	// (nil, false) if this object does not back that id.
	InstanceIDGet(id int) (Value, bool)
	// InstanceIDSet attempts to set instance-id i; ok is false if this
	// object does not back that id or the slot is read-only.
	InstanceIDSet(id int, v Value) (ok bool)
}

// Object is a property bag with a prototype link. Concurrency: by default a
// single mutex guards the descriptor map; ThreadSafe controls whether that
// mutex is actually taken (see ecmacontext's THREAD_SAFE_OBJECTS flag) — the
// spec asks only for map-operation safety, not higher-level atomicity.
type Object struct {
	mu          sync.Mutex
	threadSafe  bool
	Prototype   *Object
	descriptors map[Name]*Descriptor
	order       []Name // insertion order, for enumeration (§5 ordering guarantees)
	class       string // internal [[Class]], e.g. "Object", "RegExp", "Array"
	extensible  bool
	ids         IDLookup // optional fixed id-table backing, see §4.3
	idResolve   func(Name) (int, bool)
	sealed      bool

	// Native callable payload; nil for plain objects.
	Call func(vm Invoker, this Value, args []Value, isNew bool) (Value, error)
}

// Invoker is the minimal surface the object model needs from the
// interpreter/VM to resolve accessor descriptors and invoke callables
// without importing the interp package (which imports object).
type Invoker interface {
	ThrowTypeError(format string, args ...interface{}) error
}

func New(proto *Object, class string) *Object {
	return &Object{
		Prototype:   proto,
		descriptors: make(map[Name]*Descriptor),
		class:       class,
		extensible:  true,
	}
}

func (o *Object) SetThreadSafe(v bool) { o.threadSafe = v }

func (o *Object) lock() {
	if o.threadSafe {
		o.mu.Lock()
	}
}
func (o *Object) unlock() {
	if o.threadSafe {
		o.mu.Unlock()
	}
}

func (o *Object) Class() string { return o.class }

// GetOwnPropertyDescriptor returns the own descriptor for name, without
// walking the prototype chain and without consulting the id table.
func (o *Object) GetOwnPropertyDescriptor(name Name) (*Descriptor, bool) {
	o.lock()
	defer o.unlock()
	d, ok := o.descriptors[name]
	return d, ok
}

// HasOwnProperty reports whether name is an own property (id-backed
// instance properties count as own).
func (o *Object) HasOwnProperty(name Name) bool {
	if id, ok := o.instanceIDFor(name); ok {
		if _, has := o.ids.InstanceIDGet(id); has {
			return true
		}
	}
	_, ok := o.GetOwnPropertyDescriptor(name)
	return ok
}

func (o *Object) instanceIDFor(name Name) (int, bool) {
	if o.ids == nil || o.idResolve == nil {
		return 0, false
	}
	return o.idResolve(name)
}

// BindInstanceIDs installs the id table and the name->id resolver used by
// HasOwnProperty/GetProperty/SetProperty to reach InstanceIDGet/Set before
// falling back to the plain descriptor map.
func (o *Object) BindInstanceIDs(t IDLookup, resolve func(Name) (int, bool)) {
	o.ids = t
	o.idResolve = resolve
}

// GetProperty walks the prototype chain, consulting id tables first at each
// link, then resolves accessor descriptors via vm.
func (o *Object) GetProperty(name Name, vm Invoker) (Value, error) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if id, ok := cur.instanceIDFor(name); ok {
			if v, has := cur.ids.InstanceIDGet(id); has {
				return v, nil
			}
		}
		if d, ok := cur.GetOwnPropertyDescriptor(name); ok {
			return resolveDescriptor(cur, d, vm)
		}
	}
	return Undefined{}, nil
}

func resolveDescriptor(holder *Object, d *Descriptor, vm Invoker) (Value, error) {
	if d.Get == nil && d.Set == nil {
		return d.Value, nil
	}
	if d.Get == nil {
		return Undefined{}, nil
	}
	if d.Get.Call == nil {
		return nil, vm.ThrowTypeError("getter is not callable")
	}
	return d.Get.Call(vm, holder, nil, false)
}

// SetProperty writes name=value, walking the chain to find an existing
// descriptor (own or inherited accessor); defines a new own data property
// otherwise. A Readonly own descriptor silently ignores the write;
// Permanent alone does not block it.
func (o *Object) SetProperty(name Name, value Value, vm Invoker) error {
	if id, ok := o.instanceIDFor(name); ok {
		if o.ids.InstanceIDSet(id, value) {
			return nil
		}
	}

	for cur := o; cur != nil; cur = cur.Prototype {
		d, ok := cur.GetOwnPropertyDescriptor(name)
		if !ok {
			continue
		}
		if d.IsAccessor() {
			if d.Set == nil {
				return nil // no setter: silent no-op, matches sloppy-mode semantics
			}
			if d.Set.Call == nil {
				return vm.ThrowTypeError("setter is not callable")
			}
			_, err := d.Set.Call(vm, o, []Value{value}, false)
			return err
		}
		if cur == o {
			if d.Attrs.Has(Readonly) {
				return nil
			}
			d.Value = value
			return nil
		}
		break // inherited data property: fall through to defining an own one
	}

	if o.sealed || !o.extensible {
		return nil
	}
	o.DefineOwn(name, Descriptor{Value: value})
	return nil
}

// DefineOwn installs or replaces an own descriptor, tracking insertion
// order the first time name is seen.
func (o *Object) DefineOwn(name Name, d Descriptor) *Descriptor {
	o.lock()
	defer o.unlock()
	if _, existed := o.descriptors[name]; !existed {
		if o.sealed || !o.extensible {
			return nil
		}
		o.order = append(o.order, name)
	}
	dp := new(Descriptor)
	*dp = d
	o.descriptors[name] = dp
	return dp
}

// DefineMethod is a convenience for builtin init: installs name as a
// DontEnum data property pointing at fn.
func (o *Object) DefineMethod(name Name, fn *Object) {
	o.DefineOwn(name, Descriptor{Value: fn, Attrs: DontEnum})
}

func (o *Object) DeleteProperty(name Name) bool {
	if o.sealed {
		return false
	}
	o.lock()
	_, existed := o.descriptors[name]
	if existed {
		delete(o.descriptors, name)
	}
	o.unlock()
	if existed {
		for i, n := range o.order {
			if n == name {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
	}
	return existed
}

// OwnKeys returns own string keys only (numeric-then-insertion order),
// matching the contract Object.getOwnPropertyNames needs (§8-13).
func (o *Object) OwnKeys() []Name {
	o.lock()
	keys := make([]Name, 0, len(o.order))
	o.unlock()
	var numeric, rest []Name
	for _, n := range o.order {
		if n.isSymbol {
			continue
		}
		if isArrayIndexName(n.text) {
			numeric = append(numeric, n)
		} else {
			rest = append(rest, n)
		}
	}
	sortNumericNames(numeric)
	keys = append(keys, numeric...)
	keys = append(keys, rest...)
	return keys
}

func isArrayIndexName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s == "0" || s[0] != '0'
}

func sortNumericNames(names []Name) {
	// insertion sort: these lists are small (object property counts) and
	// this avoids pulling in sort for a handful of comparisons per call.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && numericLess(names[j], names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

func numericLess(a, b Name) bool {
	return len(a.text) < len(b.text) || (len(a.text) == len(b.text) && a.text < b.text)
}

// Seal marks the object non-extensible: SetProperty and DefineOwn no
// longer add new properties and DeleteProperty removes nothing, while
// existing properties can still be written and redefined. Used by
// Object.seal and by InitStandardObjects(scope, sealed=true) (§4.3).
func (o *Object) Seal() { o.sealed = true; o.extensible = false }

func (o *Object) IsSealed() bool { return o.sealed }
