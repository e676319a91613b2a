package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello there", want: "hello there"},
		{name: "bold tag", in: "hi <b>bob</b>", want: "hi bob"},
		{name: "script", in: `<script>alert("x")</script>ok`, want: `alert("x")ok`},
		{name: "attributes", in: `<a href="http://x">link</a>`, want: "link"},
		{name: "unclosed bracket kept", in: "a < b", want: "a < b"},
		{name: "nested brackets", in: "<<b>b>x", want: "b>x"},
		{name: "only tags", in: "<i></i>", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"hi <b>bob</b>",
		"<<<b>>>",
		"<<b>b>",
		"< <> >",
		"x<y>z<",
		strings.Repeat("<a", 20) + strings.Repeat(">", 20),
		"fine text > with < brackets",
		"<<script>script>alert(1)<</script>/script>",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}
