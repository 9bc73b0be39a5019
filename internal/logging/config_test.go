package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig([]Element{
		{Name: "MyButton", ID: 1},
		{Name: "MyDialog", ID: 2, ProtoType: "soy.test.DialogData"},
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	el, ok := cfg.Element("MyDialog")
	if !ok {
		t.Fatal("expected MyDialog to be configured")
	}
	if el.ID != 2 || el.ProtoType != "soy.test.DialogData" {
		t.Errorf("unexpected element: %+v", el)
	}

	if _, ok := cfg.Element("Nope"); ok {
		t.Error("expected lookup of unknown element to fail")
	}
}

func TestNewConfigRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		elements []Element
	}{
		{"duplicate name", []Element{{Name: "A", ID: 1}, {Name: "A", ID: 2}}},
		{"duplicate id", []Element{{Name: "A", ID: 1}, {Name: "B", ID: 1}}},
		{"empty name", []Element{{Name: "", ID: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfig(tt.elements); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	content := `elements:
  - name: MyButton
    id: 1
  - name: MyDialog
    id: 2
    proto_type: soy.test.DialogData
`
	path := filepath.Join(t.TempDir(), "velog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	el, ok := cfg.Element("MyDialog")
	if !ok || el.ProtoType != "soy.test.DialogData" {
		t.Errorf("unexpected element: %+v ok=%v", el, ok)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("elements: {not: a list}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestSuggest(t *testing.T) {
	cfg, err := NewConfig([]Element{
		{Name: "MyButton", ID: 1},
		{Name: "MyDialog", ID: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.Suggest("MyButon"); got != "MyButton" {
		t.Errorf("Suggest(MyButon) = %q, want MyButton", got)
	}
	if got := cfg.Suggest("SomethingElseEntirely"); got != "" {
		t.Errorf("Suggest far-off name = %q, want empty", got)
	}
}

func TestClosestName(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"namee", []string{"name", "age"}, "name"},
		{"colr", []string{"color", "parent"}, "color"},
		// Short names tolerate a single edit only.
		{"ab", []string{"xy"}, ""},
		{"ab", []string{"abc"}, "abc"},
		// Nothing within the proportional threshold.
		{"zzzzzz", []string{"name", "age"}, ""},
		{"name", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClosestName(tt.name, tt.candidates); got != tt.want {
				t.Errorf("ClosestName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
