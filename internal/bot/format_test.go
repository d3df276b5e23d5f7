package bot

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/AlekSi/pointer"

	"github.com/gratefultolord/community_bot/internal/db"
)

func TestProfileCard(t *testing.T) {
	p := &db.Profile{
		Username:  "alice",
		Age:       pointer.ToInt(25),
		Name:      pointer.ToString("Алиса"),
		Country:   pointer.ToString("Россия"),
		City:      pointer.ToString("Казань"),
		Timezone:  pointer.ToString("UTC+3"),
		Languages: pointer.ToString("Русский, Английский"),
		Note:      pointer.ToString("Люблю настолки"),
	}

	card := ProfileCard(p)

	for _, want := range []string{
		"@alice", "Возраст: 25", "Имя: Алиса", "Страна: Россия",
		"Город: Казань", "Часовой пояс: UTC+3", "Языки: Русский, Английский",
		"О себе: Люблю настолки",
	} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing %q:\n%s", want, card)
		}
	}
}

func TestProfileCardSkipsEmptyFields(t *testing.T) {
	card := ProfileCard(&db.Profile{Username: "bob"})

	if card != "👤 @bob" {
		t.Errorf("card = %q, want username only", card)
	}
}

func TestProfileCardTzOffsetFallback(t *testing.T) {
	card := ProfileCard(&db.Profile{Username: "bob", TzOffset: pointer.ToInt(-5)})

	if !strings.Contains(card, "Часовой пояс: UTC-5") {
		t.Errorf("card = %q, want offset fallback", card)
	}
}

func TestTicketID(t *testing.T) {
	now := time.Unix(1700000000, 0)

	if got := TicketID(42, now); got != "R-1700000000-42" {
		t.Errorf("TicketID = %q", got)
	}
}

func TestProfilesCSV(t *testing.T) {
	profiles := []db.Profile{
		{
			ID:       1,
			Username: "alice",
			Age:      pointer.ToInt(25),
			Note:     pointer.ToString("запятая, и \"кавычки\""),
			Status:   db.StatusApproved,
			AddedBy:  "seed",
			AddedAt:  time.Unix(1700000000, 0).UTC(),
		},
		{ID: 2, Username: "bob", Status: db.StatusPending},
	}

	data, err := ProfilesCSV(profiles)
	if err != nil {
		t.Fatalf("ProfilesCSV: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "username" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "alice" || rows[1][2] != "25" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[1][9] != "запятая, и \"кавычки\"" {
		t.Errorf("note round-trip = %q", rows[1][9])
	}
	if rows[2][2] != "" {
		t.Errorf("nil age rendered as %q, want empty", rows[2][2])
	}
}

func TestReportLine(t *testing.T) {
	r := db.Report{
		ID:               7,
		ReporterID:       5,
		ReporterUsername: pointer.ToString("alice"),
		Category:         db.CategoryChat,
		Reason:           "спамит ссылками",
	}

	line := ReportLine(r)
	for _, want := range []string{"#7", "[чат]", "@alice", "спамит ссылками"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}

	r.ReporterUsername = nil
	if line := ReportLine(r); !strings.Contains(line, "от 5") {
		t.Errorf("line without username = %q, want reporter id fallback", line)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("привет", 10); got != "привет" {
		t.Errorf("short text changed: %q", got)
	}
	if got := truncateRunes("привет", 3); got != "при" {
		t.Errorf("truncated = %q, want runes not bytes", got)
	}
}
