package extract

import (
	"reflect"
	"testing"
)

func TestFindEmails(t *testing.T) {
	matches := Find(KindEmail, "contact a@b.com or x@y.org")
	want := []string{"a@b.com", "x@y.org"}
	if !reflect.DeepEqual(matches, want) {
		t.Fatalf("expected %v, got %v", want, matches)
	}
}

func TestFindEmailsNone(t *testing.T) {
	if matches := Find(KindEmail, "no addresses here"); matches != nil {
		t.Fatalf("expected nil, got %v", matches)
	}
}

func TestFindPhones(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "call 89161234567 now", []string{"89161234567"}},
		{"parens", "office: 8(916)1234567", []string{"8(916)1234567"}},
		{"spaces", "mobile 8 916 123 45 67", []string{"8 916 123 45 67"}},
		{"dashes", "try 8-916-123-45-67", []string{"8-916-123-45-67"}},
		{"plus seven", "or +7 916 123 45 67", []string{"+7 916 123 45 67"}},
		{"multiple", "a 89161234567 b 89031112233", []string{"89161234567", "89031112233"}},
		{"none", "nothing to see", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Find(KindPhone, tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFormatNumbered(t *testing.T) {
	got := FormatNumbered([]string{"a@b.com", "x@y.org"})
	want := "1. a@b.com\n2. x@y.org\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPasswordComplexity(t *testing.T) {
	cases := []struct {
		name     string
		password string
		passed   int
	}{
		{"strong", "Abcdefg1!", 5},
		{"lowercase only", "abcdefgh", 2},
		{"short but varied", "Ab1!", 4},
		{"empty", "", 0},
		{"no symbol", "Abcdefg1", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			passed, total := PasswordComplexity(tc.password)
			if total != 5 {
				t.Fatalf("expected 5 checks, got %d", total)
			}
			if passed != tc.passed {
				t.Fatalf("expected %d passed, got %d", tc.passed, passed)
			}
		})
	}
}
