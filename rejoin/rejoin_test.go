package rejoin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Run the engine and return its output
func runRejoin(t *testing.T, input string, cfg Config) string {
	t.Helper()
	var buf bytes.Buffer
	n, err := Rejoin([]byte(input), &buf, cfg)
	if err != nil {
		t.Fatalf("Rejoin failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("Rejoin reported %d bytes, wrote %d", n, buf.Len())
	}
	return buf.String()
}

func TestRejoin(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		cfg      Config
		expected string
	}{
		{
			name:     "single newline joins",
			input:    "a\nb",
			expected: "a b\n",
		},
		{
			name:     "paragraph break kept",
			input:    "a\n\n\nb",
			expected: "a\n\n\nb\n",
		},
		{
			name:     "short line breaks",
			input:    "ab\ncd",
			cfg:      Config{MinLineLength: 5},
			expected: "ab\ncd\n",
		},
		{
			name:     "line exactly at minimum joins",
			input:    "abcde\nf",
			cfg:      Config{MinLineLength: 5},
			expected: "abcde f\n",
		},
		{
			name:     "experimental comma joins",
			input:    "word,\nNext",
			cfg:      Config{Experimental: true},
			expected: "word, Next\n",
		},
		{
			name:     "experimental exclamation breaks",
			input:    "word!\nNext",
			cfg:      Config{Experimental: true},
			expected: "word!\nNext\n",
		},
		{
			name:     "experimental skips trailing blanks",
			input:    "50% \t\nmore",
			cfg:      Config{Experimental: true},
			expected: "50% \t more\n",
		},
		{
			name:     "experimental breaks before any content",
			input:    "\nabc",
			cfg:      Config{Experimental: true},
			expected: "\nabc\n",
		},
		{
			name:     "max newlines caps break",
			input:    "a\n\n\nb",
			cfg:      Config{MaxNewlines: 1},
			expected: "a\nb\n",
		},
		{
			name:     "max newlines above run length",
			input:    "a\n\nb",
			cfg:      Config{MaxNewlines: 5},
			expected: "a\n\nb\n",
		},
		{
			name:     "pagebreaks follow capped run",
			input:    "a\n\n\nb",
			cfg:      Config{MaxNewlines: 2, AddPagebreaks: 2},
			expected: "a\n\n\n\nb\n",
		},
		{
			name:     "pagebreaks not added to joins",
			input:    "a\nb",
			cfg:      Config{AddPagebreaks: 3},
			expected: "a b\n",
		},
		{
			name:     "ignore empty lines widens join",
			input:    "a\n\nb\n\n\nc",
			cfg:      Config{IgnoreEmptyLines: 1},
			expected: "a b\n\n\nc\n",
		},
		{
			name:     "carriage return run",
			input:    "a\r\r\rb\rc",
			expected: "a\n\n\nb c\n",
		},
		{
			name:     "crlf counts lf only",
			input:    "a\r\nb\r\n\r\nc",
			expected: "a b\n\nc\n",
		},
		{
			name:     "lf wins over longer cr count",
			input:    "a\r\r\r\nb",
			expected: "a b\n",
		},
		{
			name:     "join before space adds no space",
			input:    "a\n  b",
			expected: "a  b\n",
		},
		{
			name:     "line length restarts after join",
			input:    "abcdef\nab\ncd",
			cfg:      Config{MinLineLength: 3},
			expected: "abcdef ab\ncd\n",
		},
		{
			name:     "leading run joins with zero minimum",
			input:    "\nab",
			expected: " ab\n",
		},
		{
			name:     "trailing run replaced",
			input:    "a\n\n\n",
			expected: "a\n",
		},
		{
			name:     "no trailing newline",
			input:    "abc",
			expected: "abc\n",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "\n",
		},
		{
			name:     "only newlines",
			input:    "\r\n\n",
			expected: "\n",
		},
		{
			name:     "binary passes through",
			input:    "\x00\xff\n\x7f",
			expected: "\x00\xff \x7f\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRejoin(t, tt.input, tt.cfg)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Rejoin(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestRejoinCollapsesWrappedText(t *testing.T) {
	lines := []string{
		"The quick brown fox",
		"jumps over the lazy",
		"dog, and keeps on",
		"running across the field",
	}
	input := strings.Join(lines, "\n") + "\n"
	expected := strings.Join(lines, " ") + "\n"

	got := runRejoin(t, input, Config{MinLineLength: 10})
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRejoinTrailingNewline(t *testing.T) {
	inputs := []string{"", "x", "x\n", "x\n\n\n\n", "\r", "a\nb\r\n", "a\n\nb \n"}
	configs := []Config{
		{},
		{MinLineLength: 80},
		{MaxNewlines: 1, AddPagebreaks: 2},
		{Experimental: true, IgnoreEmptyLines: 3},
	}

	for _, cfg := range configs {
		for _, in := range inputs {
			got := runRejoin(t, in, cfg)
			if !strings.HasSuffix(got, "\n") || strings.HasSuffix(got, "\n\n") {
				t.Errorf("Rejoin(%q, %+v) = %q, want exactly one trailing newline", in, cfg, got)
			}
		}
	}
}

func TestRejoinIdempotent(t *testing.T) {
	input := "Lorem ipsum\ndolor sit\r\n\r\namet,\nconsectetur\n\n\n\nadipiscing!\nelit\r\rsed\n"
	configs := []Config{
		{},
		{IgnoreEmptyLines: 1},
		{Experimental: true},
		{Experimental: true, IgnoreEmptyLines: 2},
	}

	for _, cfg := range configs {
		once := runRejoin(t, input, cfg)
		twice := runRejoin(t, once, cfg)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("second pass changed output for %+v (-once +twice):\n%s", cfg, diff)
		}
	}
}

func TestRejoinStabilizesAfterCap(t *testing.T) {
	cfg := Config{MaxNewlines: 1}
	first := runRejoin(t, "a\n\n\nb", cfg)
	second := runRejoin(t, first, cfg)
	third := runRejoin(t, second, cfg)

	if first != "a\nb\n" {
		t.Errorf("first pass = %q", first)
	}
	if second != "a b\n" {
		t.Errorf("second pass = %q", second)
	}
	if third != second {
		t.Errorf("third pass = %q, want %q", third, second)
	}
}

func TestRejoinJoinedOutputShrinks(t *testing.T) {
	inputs := []string{
		"a\nb\nc\n",
		"one\r\ntwo\r\nthree\r\n",
		"x\n\ny\n\nz\n",
	}
	cfg := Config{IgnoreEmptyLines: 1}

	for _, in := range inputs {
		got := runRejoin(t, in, cfg)
		if strings.Count(got, "\n") != 1 {
			t.Fatalf("Rejoin(%q) = %q, expected every run to join", in, got)
		}
		if len(got) > len(in) {
			t.Errorf("Rejoin(%q) grew from %d to %d bytes", in, len(in), len(got))
		}
	}
}

func TestRejoinInvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Rejoin([]byte("a"), &buf, Config{MinLineLength: -1}); err == nil {
		t.Error("expected error for negative min line length")
	}
	if _, err := Rejoin([]byte("a"), nil, Config{}); err == nil {
		t.Error("expected error for nil writer")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on error, got %q", buf.String())
	}
}

func TestRejoinTrace(t *testing.T) {
	input := "ab\n\ncd"
	var events []Event
	var buf bytes.Buffer
	_, err := Rejoin([]byte(input), &buf, Config{}, WithTrace(func(ev Event) {
		events = append(events, ev)
	}))
	if err != nil {
		t.Fatalf("Rejoin failed: %v", err)
	}

	if len(events) != len(input) {
		t.Fatalf("got %d events, want %d", len(events), len(input))
	}
	for i, ev := range events {
		if ev.Offset != i || ev.Byte != input[i] {
			t.Errorf("event %d = offset %d byte %q", i, ev.Offset, ev.Byte)
		}
		if (ev.Decision != nil) != (i == 4) {
			t.Errorf("event %d decision = %v", i, ev.Decision)
		}
	}

	d := events[4].Decision
	if d.Kind != Break || d.Newlines != 2 {
		t.Errorf("decision = %v, want break(2+0)", d)
	}
	if got := events[3].State.Run; got != (Run{LF: 2}) {
		t.Errorf("run before resolution = %+v", got)
	}
	if got := events[5].State.LastLineLength; got != 2 {
		t.Errorf("line length after resolution = %d, want 2", got)
	}
}

func TestScannerCarriesStateAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	emit := NewEmitter(&buf, false)
	s := NewScanner(Config{}, emit, nil)
	s.Scan([]byte("ab\n"), 0)
	s.Scan([]byte("cd"), 3)
	if _, err := emit.Finish(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "ab cd\n" {
		t.Errorf("got %q", got)
	}
	if st := s.State(); st.LastLineLength != 2 || st.LastSignificant != 'd' {
		t.Errorf("state = %+v", st)
	}
}
