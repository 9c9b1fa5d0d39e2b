// Package mail delivers notification messages to the site owner. A message is
// a subject plus ordered key/value fields, each Mailer decides how to render
// them.
package mail

import (
	"context"
	"fmt"
	"strings"
)

type Field struct {
	Name  string
	Value string
}

type Message struct {
	Subject string
	Fields  []Field
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// PlainText renders the fields one per line, "Name: Value".
func (m *Message) PlainText() string {
	var sb strings.Builder
	for _, f := range m.Fields {
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, f.Value)
	}
	return sb.String()
}
