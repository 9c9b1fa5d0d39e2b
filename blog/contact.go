package blog

import (
	"context"
	"strings"

	"github.com/Luismorlan/blogmux/mail"
	"github.com/Luismorlan/blogmux/utils"
	Logger "github.com/Luismorlan/blogmux/utils/log"
)

// Contact forwards a visitor message to the site owner. Delivery failures
// are logged and counted but never reported back to the visitor.
func (s *Service) Contact(ctx context.Context, form ContactForm) error {
	form.Email = normalizeEmail(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validateForm(&form); err != nil {
		return err
	}
	msg := &mail.Message{
		Subject: s.setting.CONTACT_SUBJECT,
		Fields: []mail.Field{
			{Name: "Name", Value: form.Name},
			{Name: "Email", Value: form.Email},
			{Name: "Phone", Value: form.Phone},
			{Name: "Message", Value: form.Message},
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		Logger.Log.WithError(err).Error("fail to deliver contact message from ", form.Email)
		utils.CountEvent("contact.mail_failed")
	}
	return nil
}
