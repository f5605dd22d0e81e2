package services

import (
	"context"
	"fmt"
	"strings"

	"vetclinic-backend/utils"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers the message body by WhatsApp when the owner's phone
// was registered with its country code, and by SMS otherwise.
type TwilioSender struct {
	client       *twilio.RestClient
	from         string
	whatsappFrom string
	countryCode  string
	log          zerolog.Logger
}

// NewTwilioSender builds a sender. countryCode is prefixed to phones stored
// without one, e.g. "52".
func NewTwilioSender(accountSid, authToken, from, whatsappFrom, countryCode string, log zerolog.Logger) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:         from,
		whatsappFrom: whatsappFrom,
		countryCode:  countryCode,
		log:          log,
	}
}

// channelFor picks the channel for a stored phone: E.164 numbers go to
// WhatsApp, local numbers to SMS.
func channelFor(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return "whatsapp"
	}
	return "sms"
}

// route resolves the channel and Twilio destination for phone. WhatsApp
// falls back to SMS when no WhatsApp sender is configured.
func (s *TwilioSender) route(phone string) (channel, to string, err error) {
	channel = channelFor(phone)
	if channel == "whatsapp" && s.whatsappFrom == "" {
		channel = "sms"
	}
	to, ok := utils.ToE164(phone, s.countryCode)
	if !ok {
		return channel, "", fmt.Errorf("phone %q is not a valid E.164 number", phone)
	}
	if channel == "whatsapp" {
		to = "whatsapp:" + to
	}
	return channel, to, nil
}

// Channel names the channel msg goes out on, or "" when it has no phone.
func (s *TwilioSender) Channel(msg Message) string {
	if msg.Phone == "" {
		return ""
	}
	channel, _, _ := s.route(msg.Phone)
	return channel
}

func (s *TwilioSender) Send(_ context.Context, msg Message) error {
	if msg.Phone == "" {
		return nil
	}
	channel, to, err := s.route(msg.Phone)
	if err != nil {
		return fmt.Errorf("twilio %s: %w", channel, err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(msg.Body)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + s.whatsappFrom)
	} else {
		params.SetFrom(s.from)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio %s to %s: %w", channel, msg.Phone, err)
	}
	if resp.Sid != nil {
		s.log.Debug().Str("channel", channel).Str("sid", *resp.Sid).Msg("message sent")
	}
	return nil
}
