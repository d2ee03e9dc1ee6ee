package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/jsondoc/internal/engine"
)

const (
	moduleName   = "jsondoc"
	docTypeName  = "jsondoc.doc"
	changeFields = 5
)

// installModule registers the jsondoc module, both for require and as a
// global.
func (s *State) installModule() {
	conv := newConverter(s.L)

	mt := s.L.NewTypeMetatable(docTypeName)
	s.L.SetField(mt, "__index", s.L.SetFuncs(s.L.NewTable(), s.docMethods(conv)))
	s.L.SetField(mt, "__tostring", s.L.NewFunction(func(L *lua.LState) int {
		d := checkDoc(L)
		L.Push(lua.LString(d.engine.Data().String()))
		return 1
	}))

	mod := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"new": s.newDoc(conv),
	})
	s.L.SetField(mod, "null", conv.null)

	s.L.PreloadModule(moduleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	s.L.SetGlobal(moduleName, mod)
}

// doc is the Go side of a jsondoc.doc userdata.
type doc struct {
	engine *engine.Engine
}

func checkDoc(L *lua.LState) *doc {
	ud := L.CheckUserData(1)
	d, ok := ud.Value.(*doc)
	if !ok {
		L.ArgError(1, "jsondoc.doc expected")
	}
	return d
}

// raise converts err into a Lua error. It does not return.
func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

// newDoc implements jsondoc.new([tbl]).
func (s *State) newDoc(conv *converter) lua.LGFunction {
	return func(L *lua.LState) int {
		initial, err := conv.fromLua(L.Get(1))
		if err != nil {
			return raise(L, err)
		}

		opts := []engine.Option{
			engine.WithOutput(s.diagnostics),
			engine.WithLogger(s.logger.WithComponent("engine")),
		}
		opts = append(opts, s.engineOpts...)
		e, err := engine.New(initial, opts...)
		if err != nil {
			return raise(L, err)
		}

		ud := L.NewUserData()
		ud.Value = &doc{engine: e}
		L.SetMetatable(ud, L.GetTypeMetatable(docTypeName))
		L.Push(ud)
		return 1
	}
}

func (s *State) docMethods(conv *converter) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"get": func(L *lua.LState) int {
			d := checkDoc(L)
			v, err := d.engine.Get(L.CheckString(2))
			if err != nil {
				return raise(L, err)
			}
			L.Push(conv.toLua(v))
			return 1
		},
		"has": func(L *lua.LState) int {
			d := checkDoc(L)
			L.Push(lua.LBool(d.engine.Has(L.CheckString(2))))
			return 1
		},
		"set": func(L *lua.LState) int {
			d := checkDoc(L)
			path := L.CheckString(2)
			v, err := conv.fromLua(L.Get(3))
			if err != nil {
				return raise(L, err)
			}
			if err := d.engine.Set(path, v); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"delete": func(L *lua.LState) int {
			d := checkDoc(L)
			if err := d.engine.Delete(L.CheckString(2)); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"data": func(L *lua.LState) int {
			d := checkDoc(L)
			L.Push(conv.toLua(d.engine.Data()))
			return 1
		},
		"on_change": func(L *lua.LState) int {
			d := checkDoc(L)
			fn := L.CheckFunction(2)
			var prefixes []string
			for i := 3; i <= L.GetTop(); i++ {
				prefixes = append(prefixes, L.CheckString(i))
			}
			sub, err := d.engine.OnChange(func(c engine.Change) error {
				return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, conv.changeToLua(c))
			}, prefixes...)
			if err != nil {
				return raise(L, err)
			}
			L.Push(lua.LString(sub.ID()))
			return 1
		},
		"off_change": func(L *lua.LState) int {
			d := checkDoc(L)
			sub, ok := d.engine.Subscription(L.CheckString(2))
			if !ok {
				L.Push(lua.LFalse)
				return 1
			}
			var prefixes []string
			for i := 3; i <= L.GetTop(); i++ {
				prefixes = append(prefixes, L.CheckString(i))
			}
			if err := d.engine.OffChange(sub, prefixes...); err != nil {
				return raise(L, err)
			}
			L.Push(lua.LTrue)
			return 1
		},
		"remove_observer": func(L *lua.LState) int {
			d := checkDoc(L)
			sub, ok := d.engine.Subscription(L.CheckString(2))
			if !ok {
				L.Push(lua.LFalse)
				return 1
			}
			if err := d.engine.RemoveObserver(sub); err != nil {
				return raise(L, err)
			}
			L.Push(lua.LTrue)
			return 1
		},
		"undo": func(L *lua.LState) int {
			if err := checkDoc(L).engine.Undo(); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"redo": func(L *lua.LState) int {
			if err := checkDoc(L).engine.Redo(); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"batch": func(L *lua.LState) int {
			d := checkDoc(L)
			fn := L.CheckFunction(2)
			err := d.engine.Batch(func() error {
				return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
			})
			if err != nil {
				return raise(L, err)
			}
			return 0
		},
		"can_undo": func(L *lua.LState) int {
			L.Push(lua.LBool(checkDoc(L).engine.CanUndo()))
			return 1
		},
		"can_redo": func(L *lua.LState) int {
			L.Push(lua.LBool(checkDoc(L).engine.CanRedo()))
			return 1
		},
		"log": func(L *lua.LState) int {
			if err := checkDoc(L).engine.Log(); err != nil {
				return raise(L, err)
			}
			return 0
		},
	}
}

// changeToLua builds the table passed to on_change callbacks:
// {kind, path, old, new} for a leaf and {kind, changes} for a batch.
func (c *converter) changeToLua(ch engine.Change) *lua.LTable {
	t := c.L.CreateTable(0, changeFields)
	t.RawSetString("kind", lua.LString(ch.Kind.String()))
	if ch.Kind == engine.ChangeBatch {
		leaves := c.L.CreateTable(len(ch.Changes), 0)
		for i, leaf := range ch.Changes {
			leaves.RawSetInt(i+1, c.changeToLua(leaf))
		}
		t.RawSetString("changes", leaves)
		return t
	}
	t.RawSetString("path", lua.LString(ch.Path))
	if ch.HasOld() {
		t.RawSetString("old", c.toLuaNested(ch.OldValue))
	}
	if ch.HasNew() {
		t.RawSetString("new", c.toLuaNested(ch.NewValue))
	}
	return t
}
