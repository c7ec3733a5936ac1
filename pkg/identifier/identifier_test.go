package identifier

import (
	"reflect"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	n := Default()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "+254712345678", want: "+254712345678"},
		{raw: "254712345678", want: "+254712345678"},
		{raw: "0712345678", want: "+254712345678"},
		{raw: "712345678", want: "+254712345678"},
		{raw: "110345678", want: "+254110345678"},
		{raw: "0110 345 678", want: "+254110345678"},
		{raw: "+254 (712) 345-678", want: "+254712345678"},
		// unknown layouts come back untouched
		{raw: "812345678", want: "812345678"},
		{raw: "12345", want: "12345"},
		{raw: "+1 415 555 0100", want: "+1 415 555 0100"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := n.NormalizePhone(tt.raw); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := Default()
	for _, raw := range []string{"0712345678", "254712345678", "712345678", "+254712345678"} {
		once := n.NormalizePhone(raw)
		if twice := n.NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	n := Default()
	if got := n.Normalize(Email("  User@Example.com ")); got != "user@example.com" {
		t.Errorf("Normalize(email) = %q", got)
	}
}

func TestCandidates(t *testing.T) {
	n := Default()
	want := []string{"+254712345678", "254712345678", "0712345678"}

	for _, raw := range []string{"+254712345678", "254712345678", "0712345678", "712345678"} {
		if got := n.Candidates(Phone(raw)); !reflect.DeepEqual(got, want) {
			t.Errorf("Candidates(%q) = %v, want %v", raw, got, want)
		}
	}

	if got := n.Candidates(Phone("12345")); !reflect.DeepEqual(got, []string{"12345"}) {
		t.Errorf("Candidates(unparseable) = %v", got)
	}
	if got := n.Candidates(Email("A@B.co")); !reflect.DeepEqual(got, []string{"a@b.co"}) {
		t.Errorf("Candidates(email) = %v", got)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Phone"); err != nil || k != KindPhone {
		t.Errorf("ParseKind(Phone) = %v, %v", k, err)
	}
	if k, err := ParseKind("email"); err != nil || k != KindEmail {
		t.Errorf("ParseKind(email) = %v, %v", k, err)
	}
	if _, err := ParseKind("sms"); err == nil {
		t.Error("ParseKind(sms) expected error")
	}
}
