package whatsapp

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultGreeting is the pre-filled message for the bare contact button.
const DefaultGreeting = "Bonjour, je suis intéressé par votre formation."

var nonDigits = regexp.MustCompile(`\D`)

// Link builds a wa.me deep link for the given contact number and
// message. Every non-digit character is stripped from the number and
// the message is URL-encoded. Opening the link is a one-way handoff:
// there is no way to confirm the message was actually sent.
func Link(number, message string) string {
	cleaned := nonDigits.ReplaceAllString(number, "")
	return "https://wa.me/" + cleaned + "?text=" + url.QueryEscape(message)
}

// RegistrationMessage renders the registration request template.
// The trailing Message line is omitted entirely when message is empty.
func RegistrationMessage(nom, prenom, fullContact string, moduleTitles []string, message string) string {
	lines := []string{
		"Nouvelle demande d'inscription :",
		"Nom: " + nom,
		"Prénom: " + prenom,
		"Contact: " + fullContact,
		"Modules souhaités: " + strings.Join(moduleTitles, ", "),
	}
	if message != "" {
		lines = append(lines, "Message: "+message)
	}
	return strings.Join(lines, "\n")
}

// CommentMessage renders the homepage comment-form template.
func CommentMessage(moduleTitle, comment string) string {
	return strings.Join([]string{
		"Nouveau commentaire via le site :",
		"Module : " + moduleTitle,
		"Message : " + comment,
	}, "\n")
}
