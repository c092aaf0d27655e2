package rematch

import (
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngines() []Engine {
	return []Engine{NewStdEngine(), NewRegexp2Engine(regexp2.None)}
}

func TestEngines(t *testing.T) {
	for _, engine := range testEngines() {
		t.Run(engine.Name(), func(t *testing.T) {
			t.Run("captures", func(t *testing.T) {
				m, err := engine.Compile(`(\w+)=(\d+)`)
				require.NoError(t, err)
				assert.Equal(t, 2, m.NumGroups())

				caps, ok, err := m.FindCaptures("set x=42 now")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 3, caps.Len())

				whole, ok := caps.Group(0)
				assert.True(t, ok)
				assert.Equal(t, "x=42", whole)

				name, ok := caps.Group(1)
				assert.True(t, ok)
				assert.Equal(t, "x", name)

				value, ok := caps.Group(2)
				assert.True(t, ok)
				assert.Equal(t, "42", value)
			})

			t.Run("leftmost match", func(t *testing.T) {
				m, err := engine.Compile(`(\d+)`)
				require.NoError(t, err)

				caps, ok, err := m.FindCaptures("a1 b22 c333")
				require.NoError(t, err)
				require.True(t, ok)
				text, _ := caps.Group(1)
				assert.Equal(t, "1", text)
			})

			t.Run("no match", func(t *testing.T) {
				m, err := engine.Compile(`^b`)
				require.NoError(t, err)

				_, ok, err := m.FindCaptures("ab")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("optional group absent", func(t *testing.T) {
				m, err := engine.Compile(`(a)(b)?`)
				require.NoError(t, err)

				caps, ok, err := m.FindCaptures("a")
				require.NoError(t, err)
				require.True(t, ok)

				_, ok = caps.Group(1)
				assert.True(t, ok)
				_, ok = caps.Group(2)
				assert.False(t, ok, "non participating group must be absent")
				_, ok = caps.Group(3)
				assert.False(t, ok, "group past the pattern must be absent")
			})

			t.Run("empty group present", func(t *testing.T) {
				m, err := engine.Compile(`x(\d*)`)
				require.NoError(t, err)

				caps, ok, err := m.FindCaptures("x")
				require.NoError(t, err)
				require.True(t, ok)
				text, ok := caps.Group(1)
				assert.True(t, ok)
				assert.Equal(t, "", text)
			})

			t.Run("malformed pattern", func(t *testing.T) {
				m, err := engine.Compile("(")
				assert.Nil(t, m)
				assert.Error(t, err)
			})
		})
	}
}

func TestRegexp2Engine_Lookaround(t *testing.T) {
	m, err := NewRegexp2Engine(regexp2.None).Compile(`(\d+)(?= ms)`)
	require.NoError(t, err)

	caps, ok, err := m.FindCaptures("took 15 ms")
	require.NoError(t, err)
	require.True(t, ok)
	text, _ := caps.Group(1)
	assert.Equal(t, "15", text)

	_, err = NewStdEngine().Compile(`(\d+)(?= ms)`)
	assert.Error(t, err, "RE2 has no look-ahead")
}

func TestRegexp2Engine_GroupOrder(t *testing.T) {
	tests := []struct {
		name    string
		opts    regexp2.RegexOptions
		pattern string
		input   string
		want    []string
	}{
		{"named then unnamed", regexp2.None, `(?<lo>[a-z]+)-([0-9]+)`, "abc-123", []string{"abc", "123"}},
		{"unnamed then named", regexp2.None, `([a-z]+)-(?<hi>[0-9]+)`, "abc-123", []string{"abc", "123"}},
		{"quoted name", regexp2.None, `(?'k'\w+)=(\d+)`, "x=42", []string{"x", "42"}},
		{"python name", regexp2.RE2, `(?P<k>\w+)=(\d+)`, "x=42", []string{"x", "42"}},
		{"nested", regexp2.None, `((?<a>\d)(\d))-(?<b>\d)`, "12-3", []string{"12", "1", "2", "3"}},
		{"escaped and class parens", regexp2.None, `\((?<a>[()]+)\)([a-z])`, "(())x", []string{"()", "x"}},
		{"class with leading bracket", regexp2.None, `(?<a>[]x]+)(\d)`, "]x]7", []string{"]x]", "7"}},
		{"non capturing and look-behind", regexp2.None, `(?:z)(?<=z)(?<a>\d)(?!y)(\d)`, "z12", []string{"1", "2"}},
		{"comment with paren", regexp2.None, `(?#(x)(?<a>\d)(\d)`, "12", []string{"1", "2"}},
		{"explicit capture", regexp2.ExplicitCapture, `(\d)(?<a>\d)`, "12", []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewRegexp2Engine(tt.opts).Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), m.NumGroups())

			caps, ok, err := m.FindCaptures(tt.input)
			require.NoError(t, err)
			require.True(t, ok)

			var got []string
			for i := 1; i < caps.Len(); i++ {
				text, _ := caps.Group(i)
				got = append(got, text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexp2Engine_AmbiguousGroups(t *testing.T) {
	patterns := []string{
		`(?<a>x)|(?<a>y)`,
		`(?n)(x)(?<a>y)`,
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			m, err := NewRegexp2Engine(regexp2.None).Compile(pattern)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrGroupOrder)
		})
	}
}

func TestRegexp2Engine_Timeout(t *testing.T) {
	const (
		pattern = `(.+)*\?`
		input   = "Do you think you found the problem string!"
	)

	m, err := Regexp2Engine{Timeout: time.Millisecond}.Compile(pattern)
	require.NoError(t, err)

	_, ok, err := m.FindCaptures(input)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEngineByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", StdEngineName, false},
		{StdEngineName, StdEngineName, false},
		{Regexp2EngineName, Regexp2EngineName, false},
		{"pcre", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := EngineByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, engine.Name())
		})
	}
}

func TestCaptures_Group(t *testing.T) {
	caps := NewCaptures([]string{"ab", "a", ""}, []bool{true, true, false})

	assert.Equal(t, 3, caps.Len())
	_, ok := caps.Group(-1)
	assert.False(t, ok)
	_, ok = caps.Group(2)
	assert.False(t, ok)

	var empty Captures
	assert.Equal(t, 0, empty.Len())
	_, ok = empty.Group(0)
	assert.False(t, ok)
}
