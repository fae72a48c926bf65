// Package templating parses and previews communication templates.
package templating

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SampleVariables fill a preview when the caller supplies none.
var SampleVariables = map[string]interface{}{
	"FirstName":   "Alex",
	"LastName":    "Morgan",
	"Email":       "alex.morgan@example.com",
	"Program":     "Data Science BSc",
	"Campus":      "North Campus",
	"Counselor":   "Jamie Lee",
	"Deadline":    "June 30",
	"CallbackURL": "https://example.com/callback",
}

type Rendered struct {
	Subject   string   `json:"subject,omitempty"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"`
}

type Renderer struct {
	funcs template.FuncMap
}

// NewRenderer returns a renderer whose title/upper/lower helpers follow the
// casing rules of tag.
func NewRenderer(tag language.Tag) *Renderer {
	title := cases.Title(tag)
	upper := cases.Upper(tag)
	lower := cases.Lower(tag)
	return &Renderer{funcs: template.FuncMap{
		"title": func(s interface{}) string { return title.String(fmt.Sprint(s)) },
		"upper": func(s interface{}) string { return upper.String(fmt.Sprint(s)) },
		"lower": func(s interface{}) string { return lower.String(fmt.Sprint(s)) },
	}}
}

var defaultRenderer = NewRenderer(language.English)

// Parse checks that text is a valid template.
func Parse(text string) error {
	_, err := defaultRenderer.parse("template", text)
	return err
}

func (r *Renderer) parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(r.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return tmpl, nil
}

// Render executes subject and body with vars layered over SampleVariables.
func (r *Renderer) Render(subject, body string, vars map[string]interface{}) (*Rendered, error) {
	data := make(map[string]interface{}, len(SampleVariables)+len(vars))
	for k, v := range SampleVariables {
		data[k] = v
	}
	for k, v := range vars {
		data[k] = v
	}

	out := &Rendered{}
	var err error
	if subject != "" {
		if out.Subject, err = r.execute("subject", subject, data); err != nil {
			return nil, err
		}
	}
	if out.Body, err = r.execute("body", body, data); err != nil {
		return nil, err
	}

	names, err := Variables(subject + body)
	if err != nil {
		return nil, err
	}
	out.Variables = names
	return out, nil
}

func (r *Renderer) execute(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := r.parse(name, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Variables lists the top-level field names referenced by text, sorted.
func Variables(text string) ([]string, error) {
	tmpl, err := defaultRenderer.parse("template", text)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	if tmpl.Tree != nil {
		collect(tmpl.Tree.Root, seen)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func collect(node parse.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collect(child, seen)
		}
	case *parse.ActionNode:
		collect(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			collect(cmd, seen)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			collect(arg, seen)
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			seen[n.Ident[0]] = struct{}{}
		}
	case *parse.IfNode:
		collect(n.Pipe, seen)
		collect(n.List, seen)
		collect(n.ElseList, seen)
	case *parse.RangeNode:
		collect(n.Pipe, seen)
		collect(n.List, seen)
		collect(n.ElseList, seen)
	case *parse.WithNode:
		collect(n.Pipe, seen)
		collect(n.List, seen)
		collect(n.ElseList, seen)
	}
}

// MissingVariables reports declared names that the body never references.
func MissingVariables(declared []string, text string) ([]string, error) {
	used, err := Variables(text)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(used))
	for _, u := range used {
		set[strings.ToLower(u)] = struct{}{}
	}
	var missing []string
	for _, d := range declared {
		if _, ok := set[strings.ToLower(d)]; !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}
