package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Message is one outgoing notification. Senders use the address they
// understand and ignore the other.
type Message struct {
	Email   string
	Phone   string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// ChannelNamer is implemented by notifiers that can name the channel a
// message goes out on. An empty name means the message is skipped.
type ChannelNamer interface {
	Channel(msg Message) string
}

// channelOf names the channel n delivers msg through. Notifiers that do not
// implement ChannelNamer are taken to send email.
func channelOf(n Notifier, msg Message) string {
	if cn, ok := n.(ChannelNamer); ok {
		return cn.Channel(msg)
	}
	return "email"
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// NoopNotifier drops every message. Used when no channel is configured.
type NoopNotifier struct {
	Log zerolog.Logger
}

func (NoopNotifier) Channel(Message) string { return "none" }

func (n NoopNotifier) Send(_ context.Context, msg Message) error {
	n.Log.Debug().Str("to", msg.Email).Str("subject", msg.Subject).Msg("notification dropped, no channel configured")
	return nil
}

// Fanout delivers through Primary and reports only its result. Secondary
// channels are best effort; their failures are logged.
type Fanout struct {
	Primary   Notifier
	Secondary []Notifier
	Log       zerolog.Logger
}

// Channel joins the channels of every notifier that handles msg, e.g.
// "email+whatsapp".
func (f *Fanout) Channel(msg Message) string {
	var names []string
	for _, n := range append([]Notifier{f.Primary}, f.Secondary...) {
		if name := channelOf(n, msg); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "+")
}

func (f *Fanout) Send(ctx context.Context, msg Message) error {
	err := f.Primary.Send(ctx, msg)
	for _, n := range f.Secondary {
		if serr := n.Send(ctx, msg); serr != nil {
			f.Log.Warn().Err(serr).Str("phone", msg.Phone).Msg("secondary notification failed")
		}
	}
	return err
}
