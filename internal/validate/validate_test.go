package validate

import (
	"errors"
	"strings"
	"testing"
)

var forbidden = []string{"spam", "scam", "18+"}

func TestProfileText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"valid", "Вполне нормальная анкета о себе", nil},
		{"empty", "   ", ErrEmpty},
		{"too short", "коротко", ErrTooShort},
		{"too long", strings.Repeat("а", 5001), ErrTooLong},
		{"forbidden lowercase", "тут точно spam и ничего больше", ErrForbidden},
		{"forbidden mixed case", "тут точно SPAM и ничего больше", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProfileText(tt.text, 10, 5000, forbidden)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText("  много\t\tпробелов   и\n\nпереносов  ", false)
	want := "много пробелов и переносов"
	if got != want {
		t.Fatalf("SanitizeText = %q, want %q", got, want)
	}
}

func TestSanitizeTextRedactsURLs(t *testing.T) {
	got := SanitizeText("смотри https://example.com/evil тут", true)
	if strings.Contains(got, "example.com") {
		t.Fatalf("url not redacted: %q", got)
	}
	if !strings.Contains(got, "[ссылка]") {
		t.Fatalf("placeholder missing: %q", got)
	}
}

func TestSanitizeNotePreservesLineBreaks(t *testing.T) {
	got := SanitizeNote("  первая строка\nвторая строка\n\nтретья  ")
	want := "первая строка\nвторая строка\n\nтретья"
	if got != want {
		t.Fatalf("SanitizeNote = %q, want %q", got, want)
	}
}

func TestUsername(t *testing.T) {
	if err := Username("@valid_user"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	if err := Username("abc"); err == nil {
		t.Fatal("short username accepted")
	}
	if err := Username("имя_кириллицей"); err == nil {
		t.Fatal("non-latin username accepted")
	}
}

func TestAge(t *testing.T) {
	if _, err := Age("16"); err != nil {
		t.Fatalf("valid age rejected: %v", err)
	}
	for _, raw := range []string{"9", "121", "шестнадцать", ""} {
		if _, err := Age(raw); err == nil {
			t.Fatalf("age %q accepted", raw)
		}
	}
}

func TestDayCount(t *testing.T) {
	for _, raw := range []string{"1", "7", "14"} {
		if _, err := DayCount(raw); err != nil {
			t.Fatalf("valid day count %q rejected: %v", raw, err)
		}
	}
	for _, raw := range []string{"0", "15", "20", "abc"} {
		if _, err := DayCount(raw); err == nil {
			t.Fatalf("day count %q accepted", raw)
		}
	}
}

func TestIsSpam(t *testing.T) {
	if !IsSpam("!!!КУПИ!!!СЕЙЧАС!!!", 0.5) {
		t.Fatal("shouty text not flagged")
	}
	if IsSpam("обычное спокойное сообщение про жизнь", 0.5) {
		t.Fatal("normal text flagged")
	}
	if IsSpam("ПРИ", 0.5) {
		t.Fatal("very short text must never be flagged")
	}
}
