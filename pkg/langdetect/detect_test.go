package langdetect

import "testing"

func TestClassifyByExtension(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    ContentClass
	}{
		{"config.cpp", "class CfgPatches {};", ClassConfig},
		{"macros.hpp", "#define FOO 1", ClassConfig},
		{"description.ext", "onLoadName = \"Mission\";", ClassConfig},
		{"surface.rvmat", "ambient[] = {1,1,1,1};", ClassConfig},
		{"chatter.bikb", "class Sentences {};", ClassConfig},
		{"fn_init.sqf", "private _x = 1;", ClassScript},
		{"logic.fsm", "init = \"\";", ClassScript},
		{"README.md", "# readme", ClassText},
	}

	for _, tc := range cases {
		if got := Classify(tc.name, []byte(tc.content)); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyCaseAndBackslashPaths(t *testing.T) {
	if got := Classify(`addons\main\Config.CPP`, []byte("class X {};")); got != ClassConfig {
		t.Errorf("backslash path with upper-case extension: got %q", got)
	}
}

func TestClassifyBinary(t *testing.T) {
	payload := append([]byte{0x00, 0x01, 0x02, 0xff}, []byte("texture bytes")...)
	if got := Classify("data.paa", payload); got != ClassBinary {
		t.Errorf("Classify(binary) = %q", got)
	}

	// A config extension wins even over binary-looking bytes; the
	// preprocessor decides what to do with the content.
	if got := Classify("weird.cpp", payload); got != ClassConfig {
		t.Errorf("Classify(binary .cpp) = %q", got)
	}
}

func TestPreprocessable(t *testing.T) {
	if !ClassConfig.Preprocessable() || !ClassScript.Preprocessable() {
		t.Error("config and script classes must be preprocessable")
	}
	if ClassText.Preprocessable() || ClassBinary.Preprocessable() {
		t.Error("text and binary classes must not be preprocessable")
	}
}
