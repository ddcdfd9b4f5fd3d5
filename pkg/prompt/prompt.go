package prompt

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed tweets_system.txt
var TweetsSystem string

//go:embed tweets_instructions.txt
var TweetsInstructions string

//go:embed server_instructions.txt
var ServerInstructions string

func Render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)

	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
