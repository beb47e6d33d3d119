package presenter_test

import (
	"testing"

	"github.com/goliatone/go-sitecontent/internal/presenter"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"5551234567":       "(555) 123-4567",
		"555-123-4567":     "(555) 123-4567",
		"1 (555) 123 4567": "+1 (555) 123-4567",
		"+44 20 7946 0958": "+44 20 7946 0958",
		"":                 "",
	}
	for in, want := range cases {
		if got := presenter.FormatPhoneNumber(in); got != want {
			t.Fatalf("FormatPhoneNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWhatsAppURL(t *testing.T) {
	got := presenter.WhatsAppURL("+1 (555) 123-4567", "Hello Jane, it's urgent!")
	want := "https://wa.me/15551234567?text=Hello%20Jane%2C%20it's%20urgent!"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := presenter.WhatsAppURL("555 000", ""); got != "https://wa.me/555000" {
		t.Fatalf("unexpected bare link %q", got)
	}
}

func TestMailtoURL(t *testing.T) {
	got := presenter.MailtoURL("jane@firm.test", "Legal Consultation Inquiry", "Dear Jane,\n\nThanks.")
	want := "mailto:jane@firm.test?subject=Legal+Consultation+Inquiry&body=Dear+Jane%2C%0A%0AThanks."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := presenter.MailtoURL("jane@firm.test", "", ""); got != "mailto:jane@firm.test" {
		t.Fatalf("unexpected bare mailto %q", got)
	}
}

func TestValidateSubscription(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"", presenter.MsgEmailRequired},
		{"   ", presenter.MsgEmailRequired},
		{"not-an-email", presenter.MsgEmailInvalid},
		{"jane@firm", presenter.MsgEmailInvalid},
		{"jane@firm.test", ""},
	}
	for _, tc := range cases {
		err := presenter.ValidateSubscription(tc.email)
		switch {
		case tc.want == "" && err != nil:
			t.Fatalf("%q: unexpected error %v", tc.email, err)
		case tc.want != "" && (err == nil || err.Error() != tc.want):
			t.Fatalf("%q: expected %q, got %v", tc.email, tc.want, err)
		}
	}
	if !presenter.IsValidEmail("a@b.co") || presenter.IsValidEmail("a b@c.d") {
		t.Fatalf("unexpected IsValidEmail results")
	}
}

func TestTextHelpers(t *testing.T) {
	if got := presenter.Truncate("Corporate law advisory ", 10); got != "Corporate..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := presenter.Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	if got := presenter.Initials("maria de la cruz"); got != "MD" {
		t.Fatalf("unexpected initials %q", got)
	}
	if got := presenter.Initials("Élodie"); got != "É" {
		t.Fatalf("unexpected single initial %q", got)
	}
	experience := map[string]string{"1": "1 Year", "12": "12+ Years", "8 years": "8+ Years", "Senior": "Senior"}
	for in, want := range experience {
		if got := presenter.FormatExperience(in); got != want {
			t.Fatalf("FormatExperience(%q) = %q, want %q", in, got, want)
		}
	}
}
