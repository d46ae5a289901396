// Package mail composes the messages exchanged with customers: the quote
// request a visitor hands to their mail client and the reply an administrator
// sends back. Delivery through an external provider is optional.
package mail

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const gmailComposeURL = "https://mail.google.com/mail/"

// Identity describes the business signing outgoing messages.
type Identity struct {
	Name  string
	Email string
	Phone string
}

// Draft is a message ready to be handed to a mail client or a Sender.
type Draft struct {
	To      string
	Subject string
	Body    string
}

// MailtoURL returns a mailto: link pre-filled with the draft.
func (d Draft) MailtoURL() string {
	return "mailto:" + d.To + "?subject=" + encodeComponent(d.Subject) + "&body=" + encodeComponent(d.Body)
}

// GmailURL returns a Gmail web compose link pre-filled with the draft.
func (d Draft) GmailURL() string {
	return gmailComposeURL + "?view=cm&fs=1&to=" + encodeComponent(d.To) +
		"&su=" + encodeComponent(d.Subject) + "&body=" + encodeComponent(d.Body)
}

// QuoteRequest is the content of the public contact form.
type QuoteRequest struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// ComposeQuoteRequest builds the message a visitor sends to the business.
func ComposeQuoteRequest(business Identity, req QuoteRequest) Draft {
	var body strings.Builder
	fmt.Fprintf(&body, "Nom: %s\n", req.Name)
	fmt.Fprintf(&body, "Email: %s\n", req.Email)
	fmt.Fprintf(&body, "Téléphone: %s\n", req.Phone)
	fmt.Fprintf(&body, "Service souhaité: %s\n\n", req.Service)
	body.WriteString("Message:\n")
	body.WriteString(req.Message)

	return Draft{
		To:      business.Email,
		Subject: "Demande de devis - " + req.Service,
		Body:    body.String(),
	}
}

// Original is the customer message being answered.
type Original struct {
	Name    string
	Email   string
	Service string
	Message string
	SentAt  time.Time
}

// ComposeReply builds the answer to a customer message. The original message
// is quoted below the signature with its date rendered in loc.
func ComposeReply(business Identity, original Original, reply string, loc *time.Location) Draft {
	var body strings.Builder
	fmt.Fprintf(&body, "Bonjour %s,\n\n", original.Name)
	body.WriteString(reply)
	body.WriteString("\n\nCordialement,\n")
	fmt.Fprintf(&body, "L'équipe %s\n", business.Name)
	fmt.Fprintf(&body, "Tél: %s\n", business.Phone)
	fmt.Fprintf(&body, "Email: %s\n\n", business.Email)
	body.WriteString("---\n")
	fmt.Fprintf(&body, "Message original du %s:\n", FormatDateTime(original.SentAt, loc))
	body.WriteString(original.Message)

	return Draft{
		To:      original.Email,
		Subject: fmt.Sprintf("Réponse: %s - %s", original.Service, business.Name),
		Body:    body.String(),
	}
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDateTime renders t as "02 janvier 2006 à 15:04" in loc (UTC when nil).
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return fmt.Sprintf("%02d %s %d à %s", local.Day(), frenchMonths[local.Month()-1], local.Year(), local.Format("15:04"))
}

// encodeComponent escapes s like a URI component: spaces become %20 rather
// than '+', which mail clients would show literally.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
