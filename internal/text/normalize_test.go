package text

import (
	"reflect"
	"strings"
	"testing"
)

func TestMarkup(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "citation stripped",
			input:    "This is known.[12] It works.",
			contains: []string{"This is known. It works."},
			excludes: []string{"[12]"},
		},
		{
			name:     "footnote citation stripped",
			input:    "As shown[^3] before.",
			contains: []string{"As shown before."},
			excludes: []string{"[^3]"},
		},
		{
			name:     "straight quote rewritten",
			input:    `He said "hello."`,
			contains: []string{"He said (quote) hello (end quote)."},
		},
		{
			name:     "curly quote rewritten",
			input:    "She asked “why?” twice",
			contains: []string{"She asked (quote) why (end quote)? twice"},
		},
		{
			name:     "quote without punctuation",
			input:    `the "word" here`,
			contains: []string{"the (quote) word (end quote) here"},
		},
		{
			name:     "unbalanced quote becomes marker",
			input:    `an "open quote`,
			contains: []string{"an  (quote) open quote"},
			excludes: []string{`"open`},
		},
		{
			name:     "markup characters escaped",
			input:    "Tom & Jerry's <show>",
			contains: []string{"Tom &amp; Jerry&apos;s &lt;show&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Markup(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Markup(%q) = %q, want substring %q", tt.input, got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("Markup(%q) = %q, should not contain %q", tt.input, got, unwanted)
				}
			}
		})
	}
}

func TestMarkupEnvelope(t *testing.T) {
	got := NewNormalizer().Markup("Hi")
	want := `<speak><prosody rate="x-fast"><p>Hi</p></prosody></speak>`
	if got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}

	got = NewNormalizer(WithRate("medium")).Markup("Hi")
	if !strings.Contains(got, `rate="medium"`) {
		t.Errorf("expected custom rate in %q", got)
	}
}

func TestMarkupNotIdempotent(t *testing.T) {
	n := NewNormalizer()
	once := n.Markup("a & b")
	twice := n.Markup(once)
	if once == twice {
		t.Fatal("expected a second pass to change the output")
	}
	if !strings.Contains(twice, "&amp;amp;") {
		t.Errorf("expected double escaping, got %q", twice)
	}
}

func TestReflow(t *testing.T) {
	tests := []struct {
		name   string
		reflow bool
		input  string
		want   string
	}{
		{
			name:   "hyphenated break joined",
			reflow: true,
			input:  "hyphen-\nated word.",
			want:   "hyphenated word.",
		},
		{
			name:   "hyphenated CRLF break joined without reflow",
			reflow: false,
			input:  "hyphen-\r\nated",
			want:   "hyphenated",
		},
		{
			name:   "mid-sentence wrap joined",
			reflow: true,
			input:  "a line that\nwraps here.",
			want:   "a line that wraps here.",
		},
		{
			name:   "sentence end kept",
			reflow: true,
			input:  "Done.\nNext one?\nYes!\nOk",
			want:   "Done.\nNext one?\nYes!\nOk",
		},
		{
			name:   "trailing digits swallowed with the break",
			reflow: true,
			input:  "Line1\nLine2",
			want:   "Line Line2",
		},
		{
			name:   "reflow disabled keeps lines",
			reflow: false,
			input:  "Line1\nLine2",
			want:   "Line1\nLine2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(WithReflow(tt.reflow))
			if got := n.Reflow(tt.input); got != tt.want {
				t.Errorf("Reflow(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"blank lines skipped", "Hello\n\n\nWorld", []string{"Hello", "World"}},
		{"whitespace lines skipped", "a\n   \n\t\nb\n", []string{"a", "b"}},
		{"empty document", "", nil},
		{"surrounding space trimmed", "  x  \r\n y", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitAfterReflow(t *testing.T) {
	n := NewNormalizer()
	got := Split(n.Reflow("Hello\n\n\nWorld"))
	want := []string{"Hello", "World"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("It was \"great.\"\nTruly[2]")
	if strings.Contains(got, "[2]") {
		t.Errorf("citation left in %q", got)
	}
	if !strings.Contains(got, "(quote) great (end quote).") {
		t.Errorf("quote not rewritten in %q", got)
	}
	if !strings.HasPrefix(got, "<speak>") {
		t.Errorf("missing envelope in %q", got)
	}
}
