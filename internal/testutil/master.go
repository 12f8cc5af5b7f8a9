// Package testutil provides reusable test helpers for the CLI
package testutil

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeMaster is an in-process buildbot master speaking just enough XML-RPC
// for tests: getAllBuilders and getLastBuilds. Builders enumerate in the
// order of Builders; a getLastBuilds call for a name missing from Rows
// answers with a fault, like a real master does for an unknown builder.
type FakeMaster struct {
	// Builders is the enumeration order getAllBuilders returns.
	Builders []string

	// Rows holds the raw getLastBuilds rows per builder. Row values may be
	// string, int, int64, float64 or a nested slice, mirroring the types a
	// master puts on the wire.
	Rows map[string][][]interface{}

	// FailRequests makes every request answer 500, simulating an
	// unreachable or broken master.
	FailRequests bool

	mu        sync.Mutex
	lastDepth int
	calls     []string
}

// BuildRow assembles a getLastBuilds row the way masters send them: builder
// name, number, start and end unix seconds (0 for never), branch, revision,
// result, summary lines, reason.
func BuildRow(builder string, number int, startedAt, completedAt int64, branch, revision, result string, summary []string, reason string) []interface{} {
	lines := make([]interface{}, len(summary))
	for i, s := range summary {
		lines[i] = s
	}
	return []interface{}{builder, number, startedAt, completedAt, branch, revision, result, lines, reason}
}

// Start serves the fake master over HTTP and returns its base URL. The
// server shuts down with the test.
func (m *FakeMaster) Start(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(server.Close)
	return server.URL
}

// LastDepth reports the build count requested by the most recent
// getLastBuilds call.
func (m *FakeMaster) LastDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDepth
}

// Calls lists the RPC method names received, in arrival order.
func (m *FakeMaster) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *FakeMaster) handle(w http.ResponseWriter, r *http.Request) {
	if m.FailRequests {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	call, err := parseCall(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.calls = append(m.calls, call.method)
	m.mu.Unlock()

	switch call.method {
	case "getAllBuilders":
		names := make([]interface{}, len(m.Builders))
		for i, name := range m.Builders {
			names[i] = name
		}
		writeResult(w, names)

	case "getLastBuilds":
		if len(call.params) < 2 {
			writeFault(w, 8001, "getLastBuilds takes a builder name and a count")
			return
		}
		name := call.params[0]
		if depth, err := strconv.Atoi(call.params[1]); err == nil {
			m.mu.Lock()
			m.lastDepth = depth
			m.mu.Unlock()
		}

		rows, ok := m.Rows[name]
		if !ok {
			writeFault(w, 8002, fmt.Sprintf("no such builder %q", name))
			return
		}
		values := make([]interface{}, len(rows))
		for i, row := range rows {
			values[i] = row
		}
		writeResult(w, values)

	default:
		writeFault(w, 8003, fmt.Sprintf("unknown method %q", call.method))
	}
}

type rpcCall struct {
	method string
	params []string
}

// parseCall extracts the method name and scalar params from a methodCall
// document. Only the scalar types the client actually sends are handled.
func parseCall(body []byte) (rpcCall, error) {
	var doc struct {
		XMLName xml.Name `xml:"methodCall"`
		Method  string   `xml:"methodName"`
		Params  []struct {
			String *string `xml:"value>string"`
			Int    *string `xml:"value>int"`
			I4     *string `xml:"value>i4"`
		} `xml:"params>param"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil {
		return rpcCall{}, fmt.Errorf("malformed methodCall: %w", err)
	}

	call := rpcCall{method: doc.Method}
	for _, p := range doc.Params {
		switch {
		case p.String != nil:
			call.params = append(call.params, *p.String)
		case p.Int != nil:
			call.params = append(call.params, *p.Int)
		case p.I4 != nil:
			call.params = append(call.params, *p.I4)
		}
	}
	return call, nil
}

func writeResult(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><params><param>%s</param></params></methodResponse>`,
		encodeValue(value))
}

func writeFault(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><fault><value><struct>`+
		`<member><name>faultCode</name><value><int>%d</int></value></member>`+
		`<member><name>faultString</name><value><string>%s</string></value></member>`+
		`</struct></value></fault></methodResponse>`, code, escapeXML(message))
}

// encodeValue renders one <value> element. Nested slices become arrays, so a
// slice of rows renders as an array of arrays like real responses.
func encodeValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return "<value><string>" + escapeXML(t) + "</string></value>"
	case int:
		return fmt.Sprintf("<value><int>%d</int></value>", t)
	case int64:
		return fmt.Sprintf("<value><int>%d</int></value>", t)
	case float64:
		return "<value><double>" + strconv.FormatFloat(t, 'f', -1, 64) + "</double></value>"
	case []interface{}:
		var b strings.Builder
		b.WriteString("<value><array><data>")
		for _, item := range t {
			b.WriteString(encodeValue(item))
		}
		b.WriteString("</data></array></value>")
		return b.String()
	default:
		return "<value><string>" + escapeXML(fmt.Sprintf("%v", t)) + "</string></value>"
	}
}

func escapeXML(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
