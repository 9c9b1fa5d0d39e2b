package mail

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// SlackMailer posts messages into a slack channel through an incoming
// webhook instead of sending mail.
type SlackMailer struct {
	webhookUrl string
}

func NewSlackMailer(webhookUrl string) *SlackMailer {
	return &SlackMailer{webhookUrl: webhookUrl}
}

func buildMessageBlocks(msg *Message) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*", msg.Subject), false, false), nil, nil),
	}
	for _, f := range msg.Fields {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s:* %s", f.Name, f.Value), false, false)))
	}
	return blocks
}

func (m *SlackMailer) Send(ctx context.Context, msg *Message) error {
	webhookMsg := &slack.WebhookMessage{
		Text:   msg.Subject,
		Blocks: &slack.Blocks{BlockSet: buildMessageBlocks(msg)},
	}
	return errors.Wrap(slack.PostWebhookContext(ctx, m.webhookUrl, webhookMsg), "fail to post to slack")
}
