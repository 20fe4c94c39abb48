package registry

import (
	"context"
	"testing"

	"bizdash/core/module"
)

func TestRegistry_Register_Resolve(t *testing.T) {
	defer Unregister("testEcho")

	Register("testEcho", func(ctx context.Context, deps *module.Deps, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"echo": args["say"]}, nil
	})

	got, err := Resolve(context.Background(), nil, "testEcho", map[string]interface{}{"say": "ok"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok || m["echo"] != "ok" {
		t.Errorf("got %v, want map[echo:ok]", got)
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	_, err := Resolve(context.Background(), nil, "nonexistent", nil)
	if err == nil {
		t.Fatal("want error for unknown extension")
	}
}

func TestRegistry_Names(t *testing.T) {
	defer Unregister("namesTest")
	Register("namesTest", func(context.Context, *module.Deps, map[string]interface{}) (interface{}, error) { return nil, nil })

	found := false
	for _, n := range Names() {
		if n == "namesTest" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Names() = %v, want to include namesTest", Names())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer Unregister("dup")
	fn := func(context.Context, *module.Deps, map[string]interface{}) (interface{}, error) { return nil, nil }
	Register("dup", fn)
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("dup", fn)
}
