package workspace

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		raw  string
		want VirtualPath
	}{
		{`addons\main\config.cpp`, `addons\main\config.cpp`},
		{"addons/main/config.cpp", `addons\main\config.cpp`},
		{`addons\.\main\config.cpp`, `addons\main\config.cpp`},
		{`addons\main\..\other\ui.hpp`, `addons\other\ui.hpp`},
		{`..\..\escape.hpp`, `escape.hpp`},
		{`addons\main\`, `addons\main`},
		{`\x\cba\script_macros.hpp`, `\x\cba\script_macros.hpp`},
		{"/x/cba/script_macros.hpp", `\x\cba\script_macros.hpp`},
		{"", ""},
		{".", ""},
	}

	for _, tc := range cases {
		if got := NormalizePath(tc.raw); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestVirtualPathIsAbs(t *testing.T) {
	if !NormalizePath(`\addons\config.cpp`).IsAbs() {
		t.Error("leading separator should mark the path absolute")
	}
	if NormalizePath(`addons\config.cpp`).IsAbs() {
		t.Error("relative path reported as absolute")
	}
}

func TestVirtualPathEqualIgnoresCase(t *testing.T) {
	a := NormalizePath(`Addons\Main\Config.CPP`)
	b := NormalizePath(`addons\main\config.cpp`)
	if !a.Equal(b) {
		t.Errorf("%q and %q should compare equal", a, b)
	}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}

func TestVirtualPathDirBase(t *testing.T) {
	p := NormalizePath(`addons\main\config.cpp`)
	if got := p.Dir(); got != `addons\main` {
		t.Errorf("Dir() = %q", got)
	}
	if got := p.Base(); got != "config.cpp" {
		t.Errorf("Base() = %q", got)
	}

	if got := VirtualPath("config.cpp").Dir(); got != "" {
		t.Errorf("Dir() of bare name = %q, want empty", got)
	}
	if got := VirtualPath(`\top.hpp`).Dir(); got != VirtualPath(`\`) {
		t.Errorf("Dir() of root-level path = %q", got)
	}
}

func TestVirtualPathJoin(t *testing.T) {
	base := NormalizePath(`addons\main`)

	if got := base.Join("ui.hpp"); got != `addons\main\ui.hpp` {
		t.Errorf("Join relative = %q", got)
	}
	if got := base.Join(`..\other\ui.hpp`); got != `addons\other\ui.hpp` {
		t.Errorf("Join with parent segment = %q", got)
	}
	if got := base.Join(`\x\macros.hpp`); got != `\x\macros.hpp` {
		t.Errorf("Join absolute should replace: %q", got)
	}
	if got := VirtualPath("").Join("ui.hpp"); got != "ui.hpp" {
		t.Errorf("Join from empty base = %q", got)
	}
}
