package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func serve(t *testing.T, input string) ([]rawResponse, string) {
	t.Helper()
	var out, logs bytes.Buffer
	srv := NewServer(NewToolRegistry(), "test",
		WithIO(strings.NewReader(input), &out),
		WithLogger(log.New(&logs, "", 0)),
	)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resps []rawResponse
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r rawResponse
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad response line %q: %v", sc.Text(), err)
		}
		resps = append(resps, r)
	}
	return resps, logs.String()
}

func TestServer_Initialize(t *testing.T) {
	resps, _ := serve(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`+"\n")
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}
	var got InitializeResult
	if err := json.Unmarshal(resps[0].Result, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      ServerInfo{Name: "htmlesc", Version: "test"},
		Instructions:    "Escape and unescape HTML character references. The lookup tool covers 252 HTML4 named references.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("initialize mismatch (-want +got):\n%s", diff)
	}

	var raw struct {
		Capabilities map[string]any `json:"capabilities"`
	}
	if err := json.Unmarshal(resps[0].Result, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"tools": map[string]any{}}, raw.Capabilities); diff != "" {
		t.Errorf("capabilities mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_NotificationGetsNoReply(t *testing.T) {
	resps, logs := serve(t, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"escape","arguments":{"text":"<"}}}`)
	if len(resps) != 0 {
		t.Errorf("got %d responses for a notification, want 0", len(resps))
	}
	if logs != "" {
		t.Errorf("logs = %q, want none", logs)
	}
}

func TestServer_Session(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"escape","arguments":{"text":"a<b"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"unescape","arguments":{"text":"a&lt;b"}}}`,
		`{"jsonrpc":"2.0","id":5,"method":"ping"}`,
	}, "\n")

	resps, _ := serve(t, input)
	if len(resps) != 5 {
		t.Fatalf("got %d responses, want 5", len(resps))
	}

	var list ToolsListResult
	if err := json.Unmarshal(resps[1].Result, &list); err != nil {
		t.Fatalf("unmarshal tools/list: %v", err)
	}
	if len(list.Tools) != 3 {
		t.Errorf("tools/list returned %d tools, want 3", len(list.Tools))
	}

	for i, want := range map[int]string{2: "a&lt;b", 3: "a<b"} {
		var res CallToolResult
		if err := json.Unmarshal(resps[i].Result, &res); err != nil {
			t.Fatalf("unmarshal tools/call: %v", err)
		}
		if res.IsError || len(res.Content) != 1 || res.Content[0].Text != want {
			t.Errorf("response %d = %+v, want text %q", i, res, want)
		}
	}

	if string(resps[4].ID) != "5" || string(resps[4].Result) != "{}" {
		t.Errorf("ping response = %+v", resps[4])
	}
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode int
	}{
		{"parse error", `{not json`, codeParseError},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"nope"}`, codeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1]}`, codeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resps, _ := serve(t, tt.input)
			if len(resps) != 1 || resps[0].Error == nil {
				t.Fatalf("got %+v, want one error response", resps)
			}
			if resps[0].Error.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", resps[0].Error.Code, tt.wantCode)
			}
		})
	}
}

func TestServer_ToolErrorIsResult(t *testing.T) {
	resps, _ := serve(t, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"lookup","arguments":{"query":"nosuch"}}}`)
	if len(resps) != 1 || resps[0].Error != nil {
		t.Fatalf("got %+v, want one result", resps)
	}
	var res CallToolResult
	if err := json.Unmarshal(resps[0].Result, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res.IsError {
		t.Errorf("IsError = false, want true")
	}
}

func TestServer_UnknownNotificationLogged(t *testing.T) {
	resps, logs := serve(t, `{"jsonrpc":"2.0","method":"notifications/cancelled"}`)
	if len(resps) != 0 {
		t.Errorf("got %d responses for a notification, want 0", len(resps))
	}
	if !strings.Contains(logs, "notifications/cancelled") {
		t.Errorf("logs = %q, want the ignored method", logs)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestServer_ReadError(t *testing.T) {
	srv := NewServer(NewToolRegistry(), "test", WithIO(errReader{}, io.Discard))
	err := srv.Run()
	if err == nil || !strings.Contains(err.Error(), "read: broken pipe") {
		t.Errorf("Run() = %v, want wrapped read error", err)
	}
}

func TestServer_WriteErrorLogged(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(NewToolRegistry(), "test",
		WithIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), errWriter{}),
		WithLogger(log.New(&logs, "", 0)),
	)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(logs.String(), "write response") {
		t.Errorf("logs = %q, want write failure", logs.String())
	}
}
