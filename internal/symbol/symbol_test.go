package symbol

import "testing"

func TestSymbolEquality(t *testing.T) {
	a := New("Exp", Nonterminal)
	b := New("Exp", Nonterminal)
	if a != b {
		t.Fatalf("expected structural equality, got %#v != %#v", a, b)
	}

	c := a.AtLevel(1)
	if c == a {
		t.Fatalf("level-1 symbol must differ from level-0 symbol")
	}
	if !c.IsNonterminal() {
		t.Fatalf("a symbol of level > 0 must always be a nonterminal")
	}
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"Exp":   "Exp",
		"Exp1":  "Exp",
		"Exp23": "Exp",
		"E2E":   "E2E",
		"123":   "123",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTableRegisterMergesCompatible(t *testing.T) {
	tab := NewTable()
	a, err := tab.Register("Integer", 0, IntTerminal)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tab.Register("Integer", 0, IntTerminal)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected merged registration to return the same symbol")
	}
	if len(tab.All()) != 1 {
		t.Fatalf("expected exactly one registered symbol, got %d", len(tab.All()))
	}
}

func TestTableRegisterRejectsIncompatibleKind(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Register("Integer", 0, IntTerminal); err != nil {
		t.Fatal(err)
	}
	_, err := tab.Register("Integer", 0, StringTerminal)
	if err == nil {
		t.Fatalf("expected an error registering an incompatible kind")
	}
	var kindErr *ErrIncompatibleKind
	if !asIncompatibleKind(err, &kindErr) {
		t.Fatalf("expected *ErrIncompatibleKind, got %T", err)
	}
}

func asIncompatibleKind(err error, target **ErrIncompatibleKind) bool {
	e, ok := err.(*ErrIncompatibleKind)
	if !ok {
		return false
	}
	*target = e
	return true
}
