package mail

import (
	"context"

	Logger "github.com/Luismorlan/blogmux/utils/log"
)

// LogMailer only logs messages, used in development.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	if msg == nil {
		return nil
	}
	Logger.Log.Info("=== mock mail sent: ", msg.Subject, " === \n", msg.PlainText())
	return nil
}
