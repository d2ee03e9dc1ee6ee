package script

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/jsondoc/internal/engine/value"
)

// nullName is the userdata value standing for null inside tables.
const nullName = "null"

// converter converts between document values and Lua values for one state.
type converter struct {
	L    *lua.LState
	null *lua.LUserData
}

func newConverter(L *lua.LState) *converter {
	null := L.NewUserData()
	null.Value = nullName
	return &converter{L: L, null: null}
}

// toLua converts v to a Lua value. A top-level null becomes nil; nulls
// inside containers become the null sentinel so arrays keep their length.
func (c *converter) toLua(v value.Value) lua.LValue {
	if v.IsNull() {
		return lua.LNil
	}
	return c.toLuaNested(v)
}

func (c *converter) toLuaNested(v value.Value) lua.LValue {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case value.KindNumber:
		n, _ := v.AsNumber()
		return lua.LNumber(n)
	case value.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case value.KindArray:
		arr, _ := v.AsArray()
		t := c.L.CreateTable(arr.Len(), 0)
		for i, e := range arr.Values() {
			t.RawSetInt(i+1, c.toLuaNested(e))
		}
		return t
	case value.KindObject:
		obj, _ := v.AsObject()
		t := c.L.CreateTable(0, obj.Len())
		obj.Range(func(key string, e value.Value) bool {
			t.RawSetString(key, c.toLuaNested(e))
			return true
		})
		return t
	default:
		return c.null
	}
}

// fromLua converts a Lua value to a document value.
func (c *converter) fromLua(lv lua.LValue) (value.Value, error) {
	return c.fromLuaVisited(lv, make(map[*lua.LTable]bool))
}

func (c *converter) fromLuaVisited(lv lua.LValue, visited map[*lua.LTable]bool) (value.Value, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return value.Null(), nil
	case lua.LBool:
		return value.Bool(bool(v)), nil
	case lua.LNumber:
		return value.Number(float64(v)), nil
	case lua.LString:
		return value.String(string(v)), nil
	case *lua.LTable:
		if visited[v] {
			return value.Value{}, ErrCyclicTable
		}
		visited[v] = true
		defer delete(visited, v)
		return c.tableFromLua(v, visited)
	case *lua.LUserData:
		if v == c.null {
			return value.Null(), nil
		}
	}
	if lv == nil {
		return value.Null(), nil
	}
	return value.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedValue, lv.Type())
}

// tableFromLua converts a table with keys 1..n to an array and any other
// table to an object. Object keys are sorted so conversion is stable.
func (c *converter) tableFromLua(t *lua.LTable, visited map[*lua.LTable]bool) (value.Value, error) {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && count == n {
		elems := make([]value.Value, n)
		for i := 1; i <= n; i++ {
			ev, err := c.fromLuaVisited(t.RawGetInt(i), visited)
			if err != nil {
				return value.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i-1] = ev
		}
		return value.NewArray(elems...), nil
	}

	entries := make(map[string]lua.LValue, count)
	var keyErr error
	t.ForEach(func(k, v lua.LValue) {
		switch kv := k.(type) {
		case lua.LString:
			entries[string(kv)] = v
		case lua.LNumber:
			entries[formatNumberKey(float64(kv))] = v
		default:
			keyErr = fmt.Errorf("%w: %s key", ErrUnsupportedValue, k.Type())
		}
	})
	if keyErr != nil {
		return value.Value{}, keyErr
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	members := make([]value.Member, 0, len(keys))
	for _, k := range keys {
		ev, err := c.fromLuaVisited(entries[k], visited)
		if err != nil {
			return value.Value{}, fmt.Errorf("key %q: %w", k, err)
		}
		members = append(members, value.Field(k, ev))
	}
	return value.NewObject(members...), nil
}

func formatNumberKey(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
