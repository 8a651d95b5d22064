package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	twilio "github.com/kevinburke/twilio-go"
)

// smsSender matches twilio's MessageService.
type smsSender interface {
	SendMessage(from string, to string, body string, mediaURLs []*url.URL) (*twilio.Message, error)
}

// SMSNotifier texts every notification to a fixed list of numbers.
type SMSNotifier struct {
	sender smsSender
	from   string
	to     []string
}

func NewTwilioNotifier(sid, token, from string, to []string) *SMSNotifier {
	client := twilio.NewClient(sid, token, nil)
	return NewSMSNotifier(client.Messages, from, to)
}

func NewSMSNotifier(sender smsSender, from string, to []string) *SMSNotifier {
	return &SMSNotifier{sender: sender, from: from, to: to}
}

func (s *SMSNotifier) Name() string { return "sms" }

func (s *SMSNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, to := range s.to {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.sender.SendMessage(s.from, to, n.Message, nil); err != nil {
			errs = append(errs, fmt.Errorf("error sending SMS(%s): %w", to, err))
		}
	}
	return errors.Join(errs...)
}
