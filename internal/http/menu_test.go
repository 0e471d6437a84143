package http

import "testing"

func TestMenuToggle(t *testing.T) {
	tests := []struct {
		current, click, want Menu
	}{
		{MenuNone, MenuType, MenuType},
		{MenuType, MenuType, MenuNone},
		{MenuType, MenuPeriod, MenuPeriod},
		{MenuCategory, MenuPageSize, MenuPageSize},
	}
	for _, tt := range tests {
		if got := tt.current.Toggle(tt.click); got != tt.want {
			t.Errorf("%q.Toggle(%q) = %q, want %q", tt.current, tt.click, got, tt.want)
		}
	}
}

func TestMenuIsOpen(t *testing.T) {
	m := MenuPeriod
	for _, other := range []Menu{MenuType, MenuCategory, MenuPageSize, MenuNone} {
		if m.IsOpen(other) {
			t.Errorf("only %q should be open, %q reported open", m, other)
		}
	}
	if !m.IsOpen(MenuPeriod) {
		t.Errorf("period menu should be open")
	}
	if ParseMenu("bogus") != MenuNone || ParseMenu("page-size") != MenuPageSize {
		t.Errorf("unexpected ParseMenu result")
	}
}
