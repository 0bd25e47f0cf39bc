package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	texttmpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Template names shipped with the service.
const (
	TemplateContentPublished = "content_published"
	TemplateContentRejected  = "content_rejected"
	TemplateEventCreated     = "event_created"
)

var templateNames = []string{TemplateContentPublished, TemplateContentRejected, TemplateEventCreated}

// Context is what every template receives.
type Context struct {
	AppName         string
	FrontendBaseURL string
	RecipientName   string
	Data            interface{}
}

// Renderer turns a named template into text and html bodies.
type Renderer struct {
	appName string
	baseURL string
	text    map[string]*texttmpl.Template
	html    map[string]*htmltmpl.Template
}

// NewRenderer parses the embedded templates once.
func NewRenderer(appName, frontendBaseURL string) (*Renderer, error) {
	r := &Renderer{
		appName: appName,
		baseURL: frontendBaseURL,
		text:    make(map[string]*texttmpl.Template, len(templateNames)),
		html:    make(map[string]*htmltmpl.Template, len(templateNames)),
	}
	for _, name := range templateNames {
		txt, err := texttmpl.ParseFS(templateFS, "templates/_base.txt", "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s.txt: %w", name, err)
		}
		html, err := htmltmpl.ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s.gohtml: %w", name, err)
		}
		r.text[name] = txt.Option("missingkey=error")
		r.html[name] = html.Option("missingkey=error")
	}
	return r, nil
}

// Render executes both variants of a template for one recipient.
func (r *Renderer) Render(name, recipientName string, data interface{}) (string, string, error) {
	txt, ok := r.text[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	ctx := Context{AppName: r.appName, FrontendBaseURL: r.baseURL, RecipientName: recipientName, Data: data}

	var textBuf, htmlBuf bytes.Buffer
	if err := txt.ExecuteTemplate(&textBuf, "_base.txt", ctx); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if err := r.html[name].ExecuteTemplate(&htmlBuf, "_base.gohtml", ctx); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return textBuf.String(), htmlBuf.String(), nil
}
