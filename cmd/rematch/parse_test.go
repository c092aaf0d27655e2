package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rematch "github.com/SimonDaKappa/go-rematch"
)

const testSchema = `
types:
  - name: Test
    enum:
      - name: A
        patterns: ['^a$']
      - name: B
        positional: [uint]
        patterns: ['b (\d+)']
      - name: C
        fields: [{name: x, type: uint}]
        patterns: ['c = (\d+)']
`

func newTestLineParser(t *testing.T, field string) (*lineParser, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	schema, err := rematch.LoadSchema(strings.NewReader(testSchema), rematch.LoadSchemaOpts{})
	require.NoError(t, err)
	parser, err := schema.Parser("Test", rematch.ParserOpts{
		Registry: rematch.NewPatternRegistry(rematch.PatternRegistryOpts{}),
	})
	require.NoError(t, err)

	var out, logs bytes.Buffer
	return &lineParser{
		parser: parser,
		field:  field,
		out:    &out,
		logger: zerolog.New(&logs),
	}, &out, &logs
}

func TestLineParser_Args(t *testing.T) {
	lp, out, logs := newTestLineParser(t, "")

	stats, err := lp.run(nil, []string{"a", "b 42", "c = 7", "foo"})
	require.NoError(t, err)
	assert.Equal(t, parseStats{Parsed: 3, Failed: 1}, stats)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"type":"Test","variant":"A"}`, lines[0])
	assert.JSONEq(t, `{"type":"Test","variant":"B","fields":[42]}`, lines[1])
	assert.JSONEq(t, `{"type":"Test","variant":"C","fields":{"x":7}}`, lines[2])

	assert.Contains(t, logs.String(), `"input":"foo"`)
	assert.Contains(t, logs.String(), `"line":4`)
}

func TestLineParser_Stdin(t *testing.T) {
	lp, out, logs := newTestLineParser(t, "")

	in := strings.NewReader("b 1\nb 99999999999999999999999\nc = 2\n")
	stats, err := lp.run(in, nil)
	require.NoError(t, err)
	assert.Equal(t, parseStats{Parsed: 2, Failed: 1}, stats)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	assert.Contains(t, logs.String(), `"variant":"B"`)
	assert.Contains(t, logs.String(), `"field":"0"`)
	assert.Contains(t, logs.String(), `"reason":"field conversion"`)
	assert.Contains(t, logs.String(), `"pattern":"Test::B#0"`)
}

func TestLineParser_Field(t *testing.T) {
	lp, out, logs := newTestLineParser(t, "event.msg")

	in := strings.NewReader(strings.Join([]string{
		`{"event":{"msg":"c = 5"}}`,
		`{"event":{"other":"c = 5"}}`,
		`not json`,
		`{"event":{"msg":"b 3"}}`,
	}, "\n"))

	stats, err := lp.run(in, nil)
	require.NoError(t, err)
	assert.Equal(t, parseStats{Parsed: 2, Failed: 2}, stats)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"Test","variant":"C","fields":{"x":5}}`, lines[0])
	assert.JSONEq(t, `{"type":"Test","variant":"B","fields":[3]}`, lines[1])

	assert.Contains(t, logs.String(), "field not found in input")
	assert.Contains(t, logs.String(), "input is not valid JSON")
}

func TestLineParser_SearchTimeout(t *testing.T) {
	schema, err := rematch.LoadSchema(strings.NewReader(`
types:
  - name: Slow
    positional: [string]
    patterns: ['(.+)*\?']
`), rematch.LoadSchemaOpts{})
	require.NoError(t, err)
	parser, err := schema.Parser("Slow", rematch.ParserOpts{
		Registry: rematch.NewPatternRegistry(rematch.PatternRegistryOpts{
			Engine: rematch.Regexp2Engine{Timeout: time.Millisecond},
		}),
	})
	require.NoError(t, err)

	var out, logs bytes.Buffer
	lp := &lineParser{parser: parser, out: &out, logger: zerolog.New(&logs)}

	stats, err := lp.run(nil, []string{"Do you think you found the problem string!"})
	require.NoError(t, err)
	assert.Equal(t, parseStats{Failed: 1}, stats)
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), `"pattern":"Slow#0"`)
	assert.Contains(t, logs.String(), `"reason":"search failed"`)
}
