package mal

import (
	"errors"
	"reflect"
	"testing"
)

func Test_Env_ShadowingAndLookup(t *testing.T) {
	root := NewEnv(nil)
	root.Set("x", Int(1))
	root.Set("y", Int(10))
	child := NewEnv(root)
	child.Set("x", Int(2))

	if v, _ := child.Get("x"); !Equal(v, Int(2)) {
		t.Fatalf("child should see its own x, got %s", v)
	}
	if v, _ := child.Get("y"); !Equal(v, Int(10)) {
		t.Fatalf("child should see the outer y, got %s", v)
	}
	if v, _ := root.Get("x"); !Equal(v, Int(1)) {
		t.Fatalf("Set on a child must not touch the parent, got %s", v)
	}
	if child.Find("y") != root || child.Find("x") != child {
		t.Fatalf("Find should return the owning scope")
	}
	if child.Find("nope") != nil {
		t.Fatalf("Find of an unbound name should be nil")
	}
	if child.Outer() != root || root.Outer() != nil {
		t.Fatalf("Outer links are wrong")
	}
}

func Test_Env_GetUnbound(t *testing.T) {
	_, err := NewEnv(NewEnv(nil)).Get("missing")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Fatalf("want ErrSymbolNotFound, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != DiagEval || e.Name != "missing" {
		t.Fatalf("want eval error naming the symbol, got %#v", err)
	}
}

func Test_Env_Bind(t *testing.T) {
	root := NewEnv(nil)
	e, err := Bind(root, []string{"a", "b"}, []Value{Int(1), Int(2)})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if e.Outer() != root {
		t.Fatalf("Bind should create a child of outer")
	}
	if got := e.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names = %v", got)
	}
	if len(root.Names()) != 0 {
		t.Fatalf("Bind must not write into outer")
	}

	_, err = Bind(root, []string{"a"}, nil)
	if k, ok := KindOf(err); !ok || k != DiagArg {
		t.Fatalf("length mismatch should be an argument error, got %v", err)
	}
}
