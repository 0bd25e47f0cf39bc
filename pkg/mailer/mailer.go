// Package mailer delivers notification messages over a pluggable channel.
package mailer

import (
	"context"
	"errors"
	"net/mail"
)

// ErrNoRecipient is returned for messages without a usable address.
var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single rendered notification addressed to one person.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate() error {
	if m.To.Address == "" {
		return ErrNoRecipient
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("message has no content")
	}
	return nil
}
