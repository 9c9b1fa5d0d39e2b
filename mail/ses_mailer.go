package mail

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/pkg/errors"
)

const charset = "UTF-8"

// SesMailer sends plain text mail through AWS SES from MAIL_FROM to MAIL_TO.
type SesMailer struct {
	svc  *ses.SES
	from string
	to   string
}

func NewSesMailer() (*SesMailer, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "error creating AWS session")
	}
	return &SesMailer{
		svc:  ses.New(sess),
		from: os.Getenv("MAIL_FROM"),
		to:   os.Getenv("MAIL_TO"),
	}, nil
}

func (m *SesMailer) Send(ctx context.Context, msg *Message) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(m.to)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Text: &ses.Content{
					Charset: aws.String(charset),
					Data:    aws.String(msg.PlainText()),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String(charset),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(m.from),
	}
	_, err := m.svc.SendEmailWithContext(ctx, input)
	return errors.Wrap(err, "fail to send mail via SES")
}
