package engine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/jsondoc/internal/engine/value"
	"github.com/dshills/jsondoc/internal/logging"
)

// ============================================================================
// Helpers
// ============================================================================

func newEngine(t *testing.T, init map[string]any, opts ...Option) *Engine {
	t.Helper()
	e, err := New(value.MustFromGo(init), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func mustSet(t *testing.T, e *Engine, path string, v Value) {
	t.Helper()
	if err := e.Set(path, v); err != nil {
		t.Fatalf("Set(%q) error = %v", path, err)
	}
}

func mustUndo(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
}

func mustRedo(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
}

func mustObserve(t *testing.T, e *Engine, fn Observer, prefixes ...string) *Subscription {
	t.Helper()
	sub, err := e.OnChange(fn, prefixes...)
	if err != nil {
		t.Fatalf("OnChange() error = %v", err)
	}
	return sub
}

func checkData(t *testing.T, e *Engine, want any) {
	t.Helper()
	if diff := cmp.Diff(want, e.Data().ToGo()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

// events records every change an observer receives.
type events struct {
	changes []Change
}

func (ev *events) observe(c Change) error {
	ev.changes = append(ev.changes, c)
	return nil
}

func (ev *events) paths() []string {
	out := make([]string, len(ev.changes))
	for i, c := range ev.changes {
		out[i] = c.Path
	}
	return out
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	checkData(t, e, map[string]any{"a": 1.0})
	if e.CanUndo() || e.CanRedo() {
		t.Error("new engine has history")
	}
}

func TestNew_NullStartsEmpty(t *testing.T) {
	e, err := New(value.Null())
	if err != nil {
		t.Fatal(err)
	}
	checkData(t, e, map[string]any{})
}

func TestNew_InvalidRoot(t *testing.T) {
	if _, err := New(value.String("x")); !errors.Is(err, ErrInvalidRoot) {
		t.Errorf("New(string) error = %v, want ErrInvalidRoot", err)
	}
}

func TestNew_CopiesInitial(t *testing.T) {
	init := value.MustFromGo(map[string]any{"list": []any{1}})
	e, _ := New(init)

	obj, _ := init.AsObject()
	list, _ := obj.Get("list")
	arr, _ := list.AsArray()
	arr.Append(value.Int(2))

	checkData(t, e, map[string]any{"list": []any{1.0}})
}

// ============================================================================
// Read/Write
// ============================================================================

func TestSetGet(t *testing.T) {
	tests := []struct {
		path string
		v    Value
	}{
		{"a", value.Int(2)},
		{"b.c.d", value.String("deep")},
		{"n", value.Null()},
		{"flag", value.Bool(false)},
		{"obj", value.MustFromGo(map[string]any{"x": []any{1, "two", nil}})},
		{"list.0", value.Number(1.5)},
		{"list.1", value.Int(9)},
	}

	e := newEngine(t, map[string]any{"a": 1, "list": []any{0}})
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mustSet(t, e, tt.path, tt.v)
			got, err := e.Get(tt.path)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !value.Equal(got, tt.v) {
				t.Errorf("Get() = %s, want %s", got, tt.v)
			}
		})
	}
}

func TestSetDeleteGet(t *testing.T) {
	for _, path := range []string{"a", "x.y", "x.y.z.w"} {
		e := newEngine(t, map[string]any{"a": 1})
		mustSet(t, e, path, value.Int(5))
		if err := e.Delete(path); err != nil {
			t.Fatalf("Delete(%q) error = %v", path, err)
		}
		if _, err := e.Get(path); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get(%q) after delete error = %v, want ErrKeyNotFound", path, err)
		}
	}
}

func TestGetErrors(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1, "o": map[string]any{}})

	tests := []struct {
		path string
		want error
	}{
		{"", ErrInvalidPath},
		{"a..b", ErrInvalidPath},
		{"missing", ErrKeyNotFound},
		{"o.missing", ErrKeyNotFound},
		{"x.y", ErrMissingSegment},
		{"a.b", ErrNotAnObject},
	}
	for _, tt := range tests {
		if _, err := e.Get(tt.path); !errors.Is(err, tt.want) {
			t.Errorf("Get(%q) error = %v, want %v", tt.path, err, tt.want)
		}
	}
}

func TestDelete_Missing(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	if err := e.Delete("b"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete() error = %v, want ErrKeyNotFound", err)
	}
	if e.CanUndo() {
		t.Error("failed delete was recorded")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	e := newEngine(t, map[string]any{"list": []any{1}})

	v, _ := e.Get("list")
	arr, _ := v.AsArray()
	arr.Append(value.Int(2))

	data := e.Data()
	obj, _ := data.AsObject()
	obj.Set("extra", value.Bool(true))

	checkData(t, e, map[string]any{"list": []any{1.0}})
}

func TestSetStoresCopy(t *testing.T) {
	e := newEngine(t, map[string]any{})
	v := value.NewArray(value.Int(1))
	mustSet(t, e, "list", v)

	arr, _ := v.AsArray()
	arr.Append(value.Int(2))

	checkData(t, e, map[string]any{"list": []any{1.0}})
}

func TestNoPartialMutation(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1, "list": []any{}})

	tests := []struct {
		path string
		want error
	}{
		{"a.b.c", ErrNotAnObject},
		{"list.3.x", ErrIndexOutOfRange},
		{"list.x", ErrInvalidPath},
		{"b..c", ErrInvalidPath},
	}
	for _, tt := range tests {
		if err := e.Set(tt.path, value.Int(1)); !errors.Is(err, tt.want) {
			t.Errorf("Set(%q) error = %v, want %v", tt.path, err, tt.want)
		}
	}

	checkData(t, e, map[string]any{"a": 1.0, "list": []any{}})
	if e.CanUndo() {
		t.Error("failed sets were recorded")
	}
}

func TestArrayPaths(t *testing.T) {
	e := newEngine(t, map[string]any{"list": []any{"a"}})

	mustSet(t, e, "list.1", value.String("b"))
	mustSet(t, e, "list.2.name", value.String("c"))
	if err := e.Set("list.9", value.Int(0)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Set(list.9) error = %v, want ErrIndexOutOfRange", err)
	}
	checkData(t, e, map[string]any{"list": []any{"a", "b", map[string]any{"name": "c"}}})

	if err := e.Delete("list.0"); err != nil {
		t.Fatal(err)
	}
	checkData(t, e, map[string]any{"list": []any{"b", map[string]any{"name": "c"}}})

	mustUndo(t, e)
	checkData(t, e, map[string]any{"list": []any{"a", "b", map[string]any{"name": "c"}}})
}

// ============================================================================
// Idempotence
// ============================================================================

func TestSet_SameValueIsNoop(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var ev events
	mustObserve(t, e, ev.observe)

	mustSet(t, e, "a", value.Int(1))
	mustSet(t, e, "a", value.Int(1))

	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.UndoCount())
	}
	if len(ev.changes) != 1 {
		t.Errorf("notifications = %d, want 1", len(ev.changes))
	}
}

func TestSet_SameValueKeepsRedo(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	mustSet(t, e, "a", value.Int(2))
	mustUndo(t, e)

	mustSet(t, e, "a", value.Int(1))
	if !e.CanRedo() {
		t.Error("no-op set cleared redo")
	}
}

func TestSet_StrictSameValue(t *testing.T) {
	tests := []struct {
		name   string
		first  Value
		second Value
		want   int
	}{
		{"equal numbers", value.Int(1), value.Number(1), 1},
		{"signed zero", value.Number(0), value.Number(negZero()), 2},
		{"string vs number", value.String("1"), value.Int(1), 2},
		{"equal objects", value.NewObject(), value.NewObject(), 1},
		{"reordered elements", value.MustFromGo([]any{1, 2}), value.MustFromGo([]any{2, 1}), 2},
		{"nested signed zero", value.NewArray(value.Number(0)), value.NewArray(value.Number(negZero())), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, map[string]any{})
			mustSet(t, e, "k", tt.first)
			mustSet(t, e, "k", tt.second)
			if e.UndoCount() != tt.want {
				t.Errorf("UndoCount() = %d, want %d", e.UndoCount(), tt.want)
			}
		})
	}
}

func TestSet_SameContainerTwice(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"object", value.MustFromGo(map[string]any{"x": 1, "y": []any{true}})},
		{"array", value.MustFromGo([]any{1, "two", map[string]any{"z": nil}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, map[string]any{})
			var ev events
			mustObserve(t, e, ev.observe)

			mustSet(t, e, "a", tt.v)
			mustSet(t, e, "a", tt.v)

			if e.UndoCount() != 1 || len(ev.changes) != 1 {
				t.Errorf("UndoCount() = %d, notifications = %d, want 1 and 1", e.UndoCount(), len(ev.changes))
			}
		})
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

// ============================================================================
// Undo/Redo
// ============================================================================

func TestUndoRedo_Example(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})

	mustSet(t, e, "b.c.d", value.Int(3))
	checkData(t, e, map[string]any{"a": 1.0, "b": map[string]any{"c": map[string]any{"d": 3.0}}})

	v, err := e.Get("b.c.d")
	if err != nil || !value.Equal(v, value.Int(3)) {
		t.Errorf("Get(b.c.d) = %s, %v", v, err)
	}

	if err := e.Delete("b.c.d"); err != nil {
		t.Fatal(err)
	}
	checkData(t, e, map[string]any{"a": 1.0, "b": map[string]any{"c": map[string]any{}}})

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	checkData(t, e, map[string]any{"a": 1.0, "b": map[string]any{"c": map[string]any{"d": 3.0}}})
}

func TestUndoRedo_AddedKey(t *testing.T) {
	e := newEngine(t, map[string]any{})

	mustSet(t, e, "b", value.Int(2))
	mustUndo(t, e)
	if _, err := e.Get("b"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(b) after undo error = %v, want ErrKeyNotFound", err)
	}

	mustRedo(t, e)
	v, err := e.Get("b")
	if err != nil || !value.Equal(v, value.Int(2)) {
		t.Errorf("Get(b) after redo = %s, %v", v, err)
	}
}

func TestUndoRedo_EmptyIsNoop(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	var ev events
	mustObserve(t, e, ev.observe)

	if err := e.Undo(); err != nil {
		t.Errorf("Undo() error = %v", err)
	}
	if err := e.Redo(); err != nil {
		t.Errorf("Redo() error = %v", err)
	}
	if len(ev.changes) != 0 {
		t.Error("no-op undo/redo dispatched")
	}
}

func TestUndoRedo_Symmetry(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1, "list": []any{1, 2, 3}})

	mustSet(t, e, "a", value.String("x"))
	mustSet(t, e, "b.c", value.Bool(true))
	if err := e.Delete("list.1"); err != nil {
		t.Fatal(err)
	}
	if err := e.Batch(func() error {
		mustSet(t, e, "list.2", value.Int(4))
		mustSet(t, e, "b.d", value.Null())
		return e.Delete("a")
	}); err != nil {
		t.Fatal(err)
	}
	mustSet(t, e, "b", value.Int(0))
	final := e.Data()

	n := 0
	for e.CanUndo() {
		if err := e.Undo(); err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 5 {
		t.Errorf("undo steps = %d, want 5", n)
	}
	checkData(t, e, map[string]any{"a": 1.0, "list": []any{1.0, 2.0, 3.0}, "b": map[string]any{}})

	for i := 0; i < n; i++ {
		if err := e.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(final.ToGo(), e.Data().ToGo()); diff != "" {
		t.Errorf("redo did not reproduce the document (-want +got):\n%s", diff)
	}
}

func TestUndoRedo_Notifications(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	mustSet(t, e, "a", value.Int(2))

	var ev events
	mustObserve(t, e, ev.observe, "a")
	mustUndo(t, e)
	mustRedo(t, e)

	if len(ev.changes) != 2 {
		t.Fatalf("notifications = %d, want 2", len(ev.changes))
	}
	undo, redo := ev.changes[0], ev.changes[1]
	if undo.Kind != ChangeUpdate || !value.Equal(undo.NewValue, value.Int(1)) {
		t.Errorf("undo change = %v", undo)
	}
	if redo.Kind != ChangeUpdate || !value.Equal(redo.NewValue, value.Int(2)) {
		t.Errorf("redo change = %v", redo)
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newEngine(t, map[string]any{})
	mustSet(t, e, "a", value.Int(1))
	mustUndo(t, e)
	mustSet(t, e, "b", value.Int(2))
	if e.CanRedo() {
		t.Error("new edit did not clear redo")
	}
}

func TestHistoryLimit(t *testing.T) {
	e := newEngine(t, map[string]any{}, WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		mustSet(t, e, fmt.Sprintf("k%d", i), value.Int(int64(i)))
	}
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", e.UndoCount())
	}
	info := e.UndoInfo()
	if info[1].Description != "Set k4" {
		t.Errorf("latest entry = %q, want Set k4", info[1].Description)
	}
}

// ============================================================================
// Batches
// ============================================================================

func TestBatch_Atomicity(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	var ev events
	mustObserve(t, e, ev.observe)

	err := e.Batch(func() error {
		mustSet(t, e, "a", value.Int(2))
		mustSet(t, e, "b", value.Int(3))
		if len(ev.changes) != 0 {
			t.Error("change dispatched inside batch")
		}
		return e.Delete("a")
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(ev.changes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(ev.changes))
	}
	batch := ev.changes[0]
	if batch.Kind != ChangeBatch || batch.Path != "" {
		t.Errorf("notification = %v, want batch", batch)
	}
	var got []string
	for _, c := range batch.Changes {
		got = append(got, c.Kind.String()+" "+c.Path)
	}
	if diff := cmp.Diff([]string{"update a", "add b", "delete a"}, got); diff != "" {
		t.Errorf("batch leaves (-want +got):\n%s", diff)
	}

	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.UndoCount())
	}
	mustUndo(t, e)
	checkData(t, e, map[string]any{"a": 1.0})
	if last := ev.changes[len(ev.changes)-1]; last.Kind != ChangeBatch || len(last.Changes) != 3 {
		t.Errorf("undo notification = %v", last)
	}
}

func TestBatch_Empty(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	var ev events
	mustObserve(t, e, ev.observe)

	if err := e.Batch(func() error {
		return e.Set("a", value.Int(1))
	}); err != nil {
		t.Fatal(err)
	}
	if err := e.Batch(nil); err != nil {
		t.Errorf("Batch(nil) error = %v", err)
	}

	if len(ev.changes) != 0 || e.CanUndo() {
		t.Error("empty batch was recorded or dispatched")
	}
}

func TestBatch_Nested(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var ev events
	mustObserve(t, e, ev.observe)

	if err := e.Batch(func() error {
		mustSet(t, e, "a", value.Int(1))
		return e.Batch(func() error {
			if !e.InBatch() {
				t.Error("InBatch() = false inside nested batch")
			}
			return e.Set("b", value.Int(2))
		})
	}); err != nil {
		t.Fatal(err)
	}

	if len(ev.changes) != 1 || len(ev.changes[0].Changes) != 2 {
		t.Errorf("nested batch notifications = %v", ev.changes)
	}
	if e.UndoCount() != 1 || e.InBatch() {
		t.Error("nested batch did not commit as one entry")
	}
}

func TestBatch_ErrorRollsBack(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})
	mustSet(t, e, "z", value.Int(0))
	mustUndo(t, e)

	var ev events
	mustObserve(t, e, ev.observe)
	errStop := errors.New("stop")

	err := e.Batch(func() error {
		mustSet(t, e, "a", value.Int(2))
		mustSet(t, e, "b.c", value.Int(3))
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Batch() error = %v, want errStop", err)
	}

	checkData(t, e, map[string]any{"a": 1.0, "b": map[string]any{}})
	if len(ev.changes) != 0 {
		t.Error("rolled back batch was dispatched")
	}
	if e.UndoCount() != 0 || !e.CanRedo() {
		t.Error("rolled back batch touched history")
	}
	if e.InBatch() {
		t.Error("batch still open after error")
	}
}

func TestBatch_NestedErrorRollsBackInnerOnly(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var ev events
	mustObserve(t, e, ev.observe)

	err := e.Batch(func() error {
		mustSet(t, e, "a", value.Int(1))
		inner := e.Batch(func() error {
			mustSet(t, e, "b", value.Int(2))
			return errors.New("inner")
		})
		if inner == nil {
			t.Error("inner batch error was lost")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	checkData(t, e, map[string]any{"a": 1.0})
	if len(ev.changes) != 1 || len(ev.changes[0].Changes) != 1 {
		t.Errorf("notifications = %v, want one batch of 1", ev.changes)
	}
}

func TestBatch_PanicRollsBack(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1})

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		_ = e.Batch(func() error {
			mustSet(t, e, "a", value.Int(2))
			panic("boom")
		})
	}()

	checkData(t, e, map[string]any{"a": 1.0})
	if e.InBatch() || e.CanUndo() {
		t.Error("panicking batch left state behind")
	}
}

func TestBatch_UndoRedoRejected(t *testing.T) {
	e := newEngine(t, map[string]any{})
	mustSet(t, e, "a", value.Int(1))

	if err := e.Batch(func() error {
		if err := e.Undo(); !errors.Is(err, ErrBatchActive) {
			t.Errorf("Undo() in batch error = %v, want ErrBatchActive", err)
		}
		if err := e.Redo(); !errors.Is(err, ErrBatchActive) {
			t.Errorf("Redo() in batch error = %v, want ErrBatchActive", err)
		}
		if err := e.ClearHistory(); !errors.Is(err, ErrBatchActive) {
			t.Errorf("ClearHistory() in batch error = %v, want ErrBatchActive", err)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

// ============================================================================
// Observers
// ============================================================================

func TestOnChange_Scoping(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var ev events
	sub, err := e.OnChange(ev.observe, "d")
	if err != nil {
		t.Fatal(err)
	}

	mustSet(t, e, "d", value.NewObject())
	mustSet(t, e, "d.k.l", value.Int(1))
	mustSet(t, e, "e", value.Int(1))
	if diff := cmp.Diff([]string{"d", "d.k.l"}, ev.paths()); diff != "" {
		t.Errorf("prefix d (-want +got):\n%s", diff)
	}

	ev.changes = nil
	if err := e.OffChange(sub, "d"); err != nil {
		t.Fatal(err)
	}
	var deep events
	mustObserve(t, e, deep.observe, "d.k.l")
	mustSet(t, e, "d", value.Int(7))
	if diff := cmp.Diff([]string{"d"}, deep.paths()); diff != "" {
		t.Errorf("prefix d.k.l (-want +got):\n%s", diff)
	}
	if len(ev.changes) != 0 {
		t.Error("removed observer was called")
	}
}

func TestOffChange_DefaultPrefix(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var scoped, both events
	scopedSub := mustObserve(t, e, scoped.observe, "a")
	bothSub := mustObserve(t, e, both.observe, "", "a")

	if err := e.OffChange(scopedSub); err != nil {
		t.Fatal(err)
	}
	if err := e.OffChange(bothSub); err != nil {
		t.Fatal(err)
	}
	mustSet(t, e, "a", value.Int(1))
	mustSet(t, e, "b", value.Int(2))

	if diff := cmp.Diff([]string{"a"}, scoped.paths()); diff != "" {
		t.Errorf("observer under a (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, both.paths()); diff != "" {
		t.Errorf("observer under \"\" and a (-want +got):\n%s", diff)
	}
	if e.ObserverCount() != 2 {
		t.Errorf("ObserverCount() = %d, want 2", e.ObserverCount())
	}
}

func TestRemoveObserver(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var ev events
	sub := mustObserve(t, e, ev.observe, "", "a", "b")

	if err := e.RemoveObserver(sub); err != nil {
		t.Fatal(err)
	}
	mustSet(t, e, "a", value.Int(1))

	if len(ev.changes) != 0 || e.ObserverCount() != 0 {
		t.Errorf("removed observer received %v", ev.changes)
	}
	if err := e.RemoveObserver(nil); !errors.Is(err, ErrInvalidListener) {
		t.Errorf("RemoveObserver(nil) error = %v", err)
	}
}

func TestOnChange_InvalidListener(t *testing.T) {
	e := newEngine(t, map[string]any{})
	if _, err := e.OnChange(nil); !errors.Is(err, ErrInvalidListener) {
		t.Errorf("OnChange(nil) error = %v", err)
	}
	if err := e.OffChange(nil); !errors.Is(err, ErrInvalidListener) {
		t.Errorf("OffChange(nil) error = %v", err)
	}
}

func TestOnChange_Lookup(t *testing.T) {
	e := newEngine(t, map[string]any{})
	sub := mustObserve(t, e, func(Change) error { return nil })

	got, ok := e.Subscription(sub.ID())
	if !ok || got != sub {
		t.Error("Subscription() did not find the observer")
	}
	if e.ObserverCount() != 1 {
		t.Errorf("ObserverCount() = %d, want 1", e.ObserverCount())
	}
}

func TestObserverErrorsAreContained(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})
	e := newEngine(t, map[string]any{}, WithLogger(logger))

	mustObserve(t, e, func(Change) error { return errors.New("observer broke") })
	mustObserve(t, e, func(Change) error { panic("observer panicked") })
	var ev events
	mustObserve(t, e, ev.observe)

	if err := e.Set("a", value.Int(1)); err != nil {
		t.Errorf("Set() error = %v, want nil", err)
	}
	if len(ev.changes) != 1 {
		t.Error("later observer was not called")
	}
	if !strings.Contains(buf.String(), "observer broke") || !strings.Contains(buf.String(), "observer panicked") {
		t.Errorf("observer failures not logged: %s", buf.String())
	}
	if _, err := e.Get("a"); err != nil {
		t.Error("observer failure undid the change")
	}
}

func TestObserverReentrancy(t *testing.T) {
	e := newEngine(t, map[string]any{})
	var order []string

	mustObserve(t, e, func(c Change) error {
		order = append(order, "first:"+c.Path)
		if c.Path == "a" {
			return e.Set("b", value.Int(2))
		}
		return nil
	})
	mustObserve(t, e, func(c Change) error {
		order = append(order, "second:"+c.Path)
		return nil
	})

	mustSet(t, e, "a", value.Int(1))

	want := []string{"first:a", "first:b", "second:b", "second:a"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("dispatch order (-want +got):\n%s", diff)
	}
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", e.UndoCount())
	}
}

func TestObserverReceivesCopies(t *testing.T) {
	e := newEngine(t, map[string]any{})
	mustObserve(t, e, func(c Change) error {
		if obj, ok := c.NewValue.AsObject(); ok {
			obj.Set("injected", value.Bool(true))
		}
		return nil
	})

	mustSet(t, e, "o", value.NewObject(value.Field("x", value.Int(1))))
	checkData(t, e, map[string]any{"o": map[string]any{"x": 1.0}})

	mustUndo(t, e)
	mustRedo(t, e)
	checkData(t, e, map[string]any{"o": map[string]any{"x": 1.0}})
}

// ============================================================================
// Read-only and debug output
// ============================================================================

func TestReadOnly(t *testing.T) {
	e := newEngine(t, map[string]any{"a": 1}, WithReadOnly())

	if !e.IsReadOnly() {
		t.Error("IsReadOnly() = false")
	}
	checks := map[string]error{
		"set":    e.Set("a", value.Int(2)),
		"delete": e.Delete("a"),
		"undo":   e.Undo(),
		"redo":   e.Redo(),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrReadOnly) {
			t.Errorf("%s error = %v, want ErrReadOnly", name, err)
		}
	}
	checkData(t, e, map[string]any{"a": 1.0})
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, map[string]any{"a": 1, "b": "two"}, WithOutput(&buf))

	if err := e.Log(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"a": 1`) || !strings.Contains(out, `"b": "two"`) {
		t.Errorf("Log() output = %s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("uncolored log contains escape codes")
	}

	buf.Reset()
	colored := newEngine(t, map[string]any{"a": 1}, WithOutput(&buf), WithColor(true))
	colored.Log()
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("colored log has no escape codes")
	}
}
