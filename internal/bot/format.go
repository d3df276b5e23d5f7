package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/parse"
)

// ProfileCard renders one directory entry the way it is shown in chat.
func ProfileCard(p *db.Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "👤 @%s\n", p.Username)
	if p.Name != nil && *p.Name != "" {
		fmt.Fprintf(&b, "Имя: %s\n", *p.Name)
	}
	if p.Age != nil {
		fmt.Fprintf(&b, "Возраст: %d\n", *p.Age)
	}
	if p.Country != nil && *p.Country != "" {
		fmt.Fprintf(&b, "Страна: %s\n", *p.Country)
	}
	if p.City != nil && *p.City != "" {
		fmt.Fprintf(&b, "Город: %s\n", *p.City)
	}
	if p.Timezone != nil && *p.Timezone != "" {
		fmt.Fprintf(&b, "Часовой пояс: %s\n", *p.Timezone)
	} else if p.TzOffset != nil {
		fmt.Fprintf(&b, "Часовой пояс: UTC%+d\n", *p.TzOffset)
	}
	if p.Languages != nil && *p.Languages != "" {
		fmt.Fprintf(&b, "Языки: %s\n", *p.Languages)
	}
	if p.Note != nil && *p.Note != "" {
		fmt.Fprintf(&b, "О себе: %s\n", *p.Note)
	}

	return strings.TrimRight(b.String(), "\n")
}

// DraftCard renders a submission preview before it is stored.
func DraftCard(f parse.Fields, fallbackUsername string) string {
	p := db.Profile{Username: f.Username}
	if p.Username == "" {
		p.Username = fallbackUsername
	}
	if f.Age > 0 {
		age := f.Age
		p.Age = &age
	}
	setIfNotEmpty(&p.Name, f.Name)
	setIfNotEmpty(&p.Country, f.Country)
	setIfNotEmpty(&p.City, f.City)
	setIfNotEmpty(&p.Timezone, f.Timezone)
	setIfNotEmpty(&p.Languages, f.Languages)
	setIfNotEmpty(&p.Note, f.Note)
	p.TzOffset = f.TzOffset

	return ProfileCard(&p)
}

func setIfNotEmpty(dst **string, v string) {
	if v != "" {
		*dst = &v
	}
}

// ReportLine is one row of the admin reports view.
func ReportLine(r db.Report) string {
	who := strconv.FormatInt(r.ReporterID, 10)
	if r.ReporterUsername != nil && *r.ReporterUsername != "" {
		who = "@" + *r.ReporterUsername
	}

	line := fmt.Sprintf("#%d [%s] от %s: %s", r.ID, categoryTitle(r.Category), who, r.Reason)
	if r.TargetIdentifier != nil && *r.TargetIdentifier != "" {
		line += " (цель: " + *r.TargetIdentifier + ")"
	}
	return line
}

func categoryTitle(category string) string {
	switch category {
	case db.CategoryBot:
		return "бот"
	case db.CategoryChannel:
		return "канал"
	case db.CategoryChat:
		return "чат"
	case db.CategoryAFK:
		return "AFK"
	case db.CategoryAdminApp:
		return "заявка"
	}
	return category
}

// TicketID builds the reference number returned to the reporter.
func TicketID(rowID int64, now time.Time) string {
	return fmt.Sprintf("R-%d-%d", now.Unix(), rowID)
}

// ProfilesCSV renders the full directory as a CSV document for export.
func ProfilesCSV(profiles []db.Profile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "username", "age", "name", "country", "city",
		"timezone", "tz_offset", "languages", "note", "status", "added_by", "added_at"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("ProfilesCSV: %w", err)
	}

	for _, p := range profiles {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.Username,
			intPtrString(p.Age),
			strPtrString(p.Name),
			strPtrString(p.Country),
			strPtrString(p.City),
			strPtrString(p.Timezone),
			intPtrString(p.TzOffset),
			strPtrString(p.Languages),
			strPtrString(p.Note),
			p.Status,
			p.AddedBy,
			p.AddedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("ProfilesCSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ProfilesCSV: %w", err)
	}

	return buf.Bytes(), nil
}

func strPtrString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intPtrString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// ChatInfo is the static community description behind the menu button.
func ChatInfo() string {
	return strings.Join([]string{
		"ℹ️ О чате",
		"",
		"Это сообщество для общения участников со всего мира.",
		"Анкеты участников доступны через «" + MenuUsersInfo + "».",
		"",
		"Правила:",
		"▪️ Уважайте друг друга",
		"▪️ Без спама и рекламы",
		"▪️ Проблемы решаем через «" + MenuReport + "»",
	}, "\n")
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
