package markup

import (
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	doc, err := Parse(`<div><h1>Hello World</h1><p>Welcome to our site.</p></div>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	texts := doc.Texts()
	if len(texts) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %v", len(texts), texts)
	}
	if texts[0] != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", texts[0])
	}
	if texts[1] != "Welcome to our site." {
		t.Errorf("Expected 'Welcome to our site.', got %q", texts[1])
	}
}

func TestParse_IgnoredTags(t *testing.T) {
	doc, err := Parse(`<div>
		<p>Translate me</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<code>const x = 1;</code>
		<pre>preformatted</pre>
		<textarea>form input</textarea>
	</div>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	texts := doc.Texts()
	if len(texts) != 1 || texts[0] != "Translate me" {
		t.Errorf("Expected only 'Translate me', got %v", texts)
	}
}

func TestParse_NoTranslateAttributes(t *testing.T) {
	doc, err := Parse(`<p>Yes</p><p data-no-translate>Brand</p><span translate="no">ACME</span>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	texts := doc.Texts()
	if len(texts) != 1 || texts[0] != "Yes" {
		t.Errorf("Expected only 'Yes', got %v", texts)
	}
}

func TestParse_RepeatedTextKeptPerOccurrence(t *testing.T) {
	doc, err := Parse(`<ul><li>Item</li><li>Item</li></ul>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Len() != 2 {
		t.Errorf("Expected 2 segments, got %d", doc.Len())
	}
}

func TestApply_Fragment(t *testing.T) {
	doc, err := Parse(`<p>Hello</p><p><b>World</b></p>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := doc.Apply([]string{"Hallo", "Welt"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if out != `<p>Hallo</p><p><b>Welt</b></p>` {
		t.Errorf("Unexpected output: %s", out)
	}
}

func TestApply_FullDocument(t *testing.T) {
	doc, err := Parse(`<!DOCTYPE html><html><head><title>Home</title></head><body><p>Hi</p></body></html>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := doc.Apply([]string{"Startseite", "Hallo"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	doc.SetLang("de")

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	for _, want := range []string{`<html lang="de">`, "<title>Startseite</title>", "<p>Hallo</p>"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output should contain %q, got: %s", want, out)
		}
	}
}

func TestApply_PreservesWhitespace(t *testing.T) {
	doc, err := Parse("<p>  Hello  </p>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := doc.Apply([]string{" Hola "}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	out, _ := doc.HTML()
	if out != "<p>  Hola  </p>" {
		t.Errorf("Whitespace not preserved: %q", out)
	}
}

func TestApply_CountMismatch(t *testing.T) {
	doc, _ := Parse("<p>a</p><p>b</p>")

	if err := doc.Apply([]string{"x"}); err == nil {
		t.Error("Expected error for mismatched translations")
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		original   string
		translated string
		expected   string
	}{
		{"Hello", "Hola", "Hola"},
		{"  Hello", "Hola", "  Hola"},
		{"Hello  ", "Hola", "Hola  "},
		{"\n\tHello\n", "Hola", "\n\tHola\n"},
	}

	for _, tt := range tests {
		if got := preserveWhitespace(tt.original, tt.translated); got != tt.expected {
			t.Errorf("preserveWhitespace(%q, %q) = %q, want %q", tt.original, tt.translated, got, tt.expected)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse("")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("Expected no segments, got %d", doc.Len())
	}
}
