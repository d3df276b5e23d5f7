package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/telegram"
	"github.com/gratefultolord/community_bot/internal/validate"
)

const reportReasonLimit = 400

// singleShotReportRe matches "репорт чат: спамит ссылками" style messages
// sent without opening the report menu first. An optional @identifier names
// the reported bot, channel or chat: "репорт канал @spam_channel: реклама".
var singleShotReportRe = regexp.MustCompile(`(?i)^репорт\s+(бот|канал|чат)\s*(@[A-Za-z0-9_]+)?\s*[:—-]\s*(.+)$`)

func parseSingleShotReport(text string) (category, target, reason string, ok bool) {
	m := singleShotReportRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", "", false
	}

	switch strings.ToLower(m[1]) {
	case "бот":
		category = db.CategoryBot
	case "канал":
		category = db.CategoryChannel
	case "чат":
		category = db.CategoryChat
	default:
		return "", "", "", false
	}

	target = m[2]
	reason = strings.TrimSpace(m[3])
	if reason == "" {
		return "", "", "", false
	}
	return category, target, reason, true
}

func (b *Bot) startReportReason(ctx context.Context, userID, chatID int64, category string) {
	switch category {
	case db.CategoryBot, db.CategoryChannel, db.CategoryChat:
	default:
		b.msgr.SendText(ctx, chatID, msgUnknownInput)
		return
	}

	b.sessions.Set(userID, &Session{
		Flow:           FlowReport,
		Step:           StepReportReason,
		ReportCategory: category,
	})
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgReportReasonPrompt, cancelKeyboard())
}

func (b *Bot) handleReportReason(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	reason := validate.SanitizeText(upd.Text, false)
	if reason == "" {
		b.msgr.SendText(ctx, upd.ChatID, "Опишите проблему текстом")
		return
	}

	b.sessions.Clear(upd.UserID)
	b.fileReport(ctx, upd.UserID, upd.ChatID, upd.Username, sess.ReportCategory, "", reason, log)
}

// fileReport stores the report, replies with a ticket number, and fans the
// report out to the admins. Fan-out failures never fail the operation.
func (b *Bot) fileReport(ctx context.Context, userID, chatID int64, username, category, target, reason string, log *zap.Logger) {
	reason = truncateRunes(reason, reportReasonLimit)

	rep := &db.Report{
		ReporterID: userID,
		Category:   category,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if username != "" {
		rep.ReporterUsername = &username
	}
	if target != "" {
		rep.TargetIdentifier = &target
	}

	id, err := b.reports.Create(rep)
	if err != nil {
		log.Error("create report", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	rep.ID = id

	ticket := TicketID(id, time.Now())
	b.msgr.SendTextWithKeyboard(ctx, chatID, fmt.Sprintf(msgReportAccepted, ticket),
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(userID)))

	b.notifier.Broadcast(ctx, b.policy.AdminIDs(),
		"Новый репорт "+ticket+"\n"+ReportLine(*rep))

	log.Info("report filed",
		zap.Int64("report_id", id),
		zap.String("category", category),
		zap.String("ticket", ticket))
}
