package mailer

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererRendersBothVariants(t *testing.T) {
	r, err := NewRenderer("College Notes", "https://notes.example.edu")
	require.NoError(t, err)

	data := struct {
		ID         string
		Title      string
		Subject    string
		Department string
		KindLabel  string
		Path       string
		Semester   int
	}{"n1", "Graphs <intro>", "DSA", "CSE", "note", "notes", 3}

	text, html, err := r.Render(TemplateContentPublished, "Asha", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Hi Asha,")
	assert.Contains(t, text, "Graphs <intro> (DSA)")
	assert.Contains(t, text, "https://notes.example.edu/notes/n1")
	assert.Contains(t, html, "Graphs &lt;intro&gt;")
	assert.Contains(t, html, "College Notes")
}

func TestRendererUnknownTemplate(t *testing.T) {
	r, err := NewRenderer("App", "")
	require.NoError(t, err)
	_, _, err = r.Render("missing", "", nil)
	assert.Error(t, err)
}

func TestLogSenderRecordsMessages(t *testing.T) {
	s := NewLogSender(nil)
	err := s.Send(context.Background(), Message{
		To:      mail.Address{Name: "A", Address: "a@example.edu"},
		Subject: "hello",
		Text:    "body",
	})
	require.NoError(t, err)
	require.Len(t, s.Sent(), 1)

	assert.ErrorIs(t, s.Send(context.Background(), Message{Text: "x"}), ErrNoRecipient)
}

func TestSendgridPrepare(t *testing.T) {
	s := NewSendgridSender("key", "College Notes", "Notes", "no-reply@example.edu")
	m := s.prepare(Message{
		To:      mail.Address{Name: "B", Address: "b@example.edu"},
		Subject: "Published",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[College Notes] Published", m.Personalizations[0].Subject)
	assert.Equal(t, "b@example.edu", m.Personalizations[0].To[0].Address)
	assert.Len(t, m.Content, 2)
	assert.Equal(t, "no-reply@example.edu", m.From.Address)
}
