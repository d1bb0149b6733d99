// Package lang holds the report's user-facing strings.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// String keys.
const (
	AffectedUser          = "affected_user"
	EmailMessage          = "email_message"
	EmailSubject          = "email_subject"
	FailedEmailsReport    = "failed_emails_report"
	FailedEmailsSettings  = "failed_emails_settings"
	FailedMailsPerPage    = "failed_mails_per_page"
	FailedMailsPerPageDes = "failed_mails_per_page_desc"
	PluginName            = "pluginname"
	PrivacyMetadata       = "privacy:metadata"
	Date                  = "date"
	SerialNumber          = "s_no"
	Download              = "download"
	DownloadAs            = "downloadas"
	NoRecords             = "nothingtodisplay"
	Page                  = "page"
	Previous              = "previous"
	Next                  = "next"
)

var english = map[string]string{
	AffectedUser:          "Affected user",
	EmailMessage:          "Email message",
	EmailSubject:          "Email subject",
	FailedEmailsReport:    "Failed emails report",
	FailedEmailsSettings:  "Failed emails settings",
	FailedMailsPerPage:    "Failed mails per page",
	FailedMailsPerPageDes: "How many failed emails per page should be shown",
	PluginName:            "Failed emails",
	PrivacyMetadata:       "The failed emails report plugin does not store any personal data.",
	Date:                  "Date",
	SerialNumber:          "S.No.",
	Download:              "Download",
	DownloadAs:            "Download table data as",
	NoRecords:             "Nothing to display",
	Page:                  "Page",
	Previous:              "Previous",
	Next:                  "Next",
}

// Strings resolves keys for one language, falling back to English.
type Strings struct {
	printer *message.Printer
}

var builder = mustCatalog(newCatalog(english))

func newCatalog(messages map[string]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, value := range messages {
		// Values are literal text; escape verbs so the printer does not format them.
		if err := b.SetString(language.English, key, strings.ReplaceAll(value, "%", "%%")); err != nil {
			return nil, fmt.Errorf("failed to register string %q: %w", key, err)
		}
	}
	return b, nil
}

func mustCatalog(b *catalog.Builder, err error) *catalog.Builder {
	if err != nil {
		panic(err)
	}
	return b
}

// New returns the string table for lang (a BCP 47 tag such as "en").
// Unknown tags fall back to English.
func New(lang string) *Strings {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if err != nil {
		tag = language.English
	}

	selected := language.English
	base, _ := tag.Base()
	for _, supported := range builder.Languages() {
		if supportedBase, _ := supported.Base(); supportedBase == base {
			selected = supported
			break
		}
	}

	return &Strings{printer: message.NewPrinter(selected, message.Catalog(builder))}
}

// Get returns the string for key, or the key itself when it is unknown.
func (s *Strings) Get(key string) string {
	if s == nil || s.printer == nil {
		return key
	}
	return s.printer.Sprintf(key)
}
