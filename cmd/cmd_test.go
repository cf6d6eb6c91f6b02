package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/schovi/htmlesc/internal/vterm"
)

func resetFlags() {
	escapeDecimalFlag = false
	escapeNoNamedFlag = false
	escapeStripAnsiFlag = false
	escapeColsFlag = vterm.DefaultColumns
	escapeJsonFlag = false
	unescapeLenientFlag = false
	unescapeJsonFlag = false
	lookupListFlag = false
	lookupJsonFlag = false
	lookupNoColorFlag = false
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEscapeCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"args", "", []string{"escape", `<script>alert("abc")</script>`}, "&lt;script&gt;alert(&quot;abc&quot;)&lt;/script&gt;"},
		{"args joined", "", []string{"escape", "a", "&", "b"}, "a &amp; b"},
		{"stdin kept byte exact", "café\n", []string{"escape"}, "caf&eacute;\n"},
		{"decimal no named", "", []string{"escape", "--decimal", "--no-named", "café"}, "caf&#233;"},
		{"hex no named", "", []string{"escape", "--no-named", "café"}, "caf&#xE9;"},
		{"strip ansi", "\x1b[31m<b>\x1b[0m", []string{"escape", "--strip-ansi"}, "&lt;b&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("%v = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestEscapeCommand_JSON(t *testing.T) {
	got, err := run(t, "", "escape", "--json", "plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res transformResult
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if diff := cmp.Diff(transformResult{Input: "plain", Output: "plain", Changed: false}, res); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapeCommand_NegativeCols(t *testing.T) {
	if _, err := run(t, "", "escape", "--cols", "-1", "x"); err == nil {
		t.Error("expected error for negative --cols")
	}
}

func TestUnescapeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"strict", []string{"unescape", "&lt;b&gt; &amp"}, "<b> &amp"},
		{"lenient", []string{"unescape", "--lenient", "&#65x &amp"}, "Ax &"},
		{"unknown", []string{"unescape", "&foobar;"}, "&foobar;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("%v = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestUnescapeCommand_JSON(t *testing.T) {
	got, err := run(t, "&#x41;", "unescape", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res transformResult
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if diff := cmp.Diff(transformResult{Input: "&#x41;", Output: "A", Changed: true}, res); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupCommand(t *testing.T) {
	got, err := run(t, "", "lookup", "amp", "é")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %q, want 2 lines", got)
	}
	if f := strings.Fields(lines[0]); len(f) != 4 || f[0] != "amp" || f[1] != "&amp;" || f[2] != "U+0026" || f[3] != "&" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if f := strings.Fields(lines[1]); len(f) != 4 || f[0] != "eacute" || f[2] != "U+00E9" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("colored output written to a non-terminal: %q", got)
	}
}

func TestLookupCommand_JSON(t *testing.T) {
	got, err := run(t, "", "lookup", "--json", "&lt;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res []lookupEntry
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	want := []lookupEntry{{Name: "lt", Reference: "&lt;", CodePoint: "U+003C", Character: "<"}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupCommand_List(t *testing.T) {
	got, err := run(t, "", "lookup", "--list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(got, "\n"); n != 252 {
		t.Errorf("--list printed %d lines, want 252", n)
	}
}

func TestLookupCommand_Errors(t *testing.T) {
	if _, err := run(t, "", "lookup", "nosuch"); err == nil || !strings.Contains(err.Error(), "nosuch") {
		t.Errorf("got %v, want unknown reference error", err)
	}
	if _, err := run(t, "", "lookup"); err == nil {
		t.Error("expected error without a query")
	}
	if _, err := run(t, "", "lookup", "--list", "amp"); err == nil {
		t.Error("expected error for --list with a query")
	}
}

func TestMCPCommand(t *testing.T) {
	got, err := run(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"escape","arguments":{"text":"<"}}}`+"\n", "mcp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(got), &resp); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if len(resp.Result.Content) != 1 || resp.Result.Content[0].Text != "&lt;" {
		t.Errorf("mcp output = %q, want escaped text", got)
	}
}

func TestVersionCommand(t *testing.T) {
	got, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "htmlesc ") {
		t.Errorf("version output = %q", got)
	}
}
