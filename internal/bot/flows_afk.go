package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/telegram"
	"github.com/gratefultolord/community_bot/internal/validate"
)

const (
	afkReasonLimit      = 500
	adminAppReasonLimit = 1000
)

// requireProfile checks that the user has a directory entry before letting
// them into the AFK or admin-application flows.
func (b *Bot) requireProfile(ctx context.Context, chatID int64, username string, log *zap.Logger) bool {
	if username == "" {
		b.msgr.SendText(ctx, chatID, msgUsernameRequired)
		return false
	}

	if _, err := b.lookupProfile(ctx, username, log); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.msgr.SendText(ctx, chatID, msgProfileMissing)
			return false
		}
		log.Error("profile requirement check", zap.Error(err), zap.String("username", username))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return false
	}
	return true
}

func inlineCancelKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", data),
		),
	)
}

// --- AFK ---

func (b *Bot) startAFK(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	if !b.requireProfile(ctx, chatID, username, log) {
		return
	}

	b.sessions.Set(userID, &Session{Flow: FlowAFK, Step: StepAFKDays})
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgAFKDaysPrompt, inlineCancelKeyboard("afk:cancel"))
}

func (b *Bot) handleAFKDays(ctx context.Context, upd telegram.TextUpdate, sess *Session) {
	days, err := validate.DayCount(upd.Text)
	if err != nil {
		b.msgr.SendText(ctx, upd.ChatID, msgAFKDaysInvalid)
		return
	}

	sess.AFKDays = days
	sess.Step = StepAFKReason
	b.sessions.Set(upd.UserID, sess)

	b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, msgAFKReasonPrompt, inlineCancelKeyboard("afk:cancel"))
}

func (b *Bot) handleAFKReason(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	reason := validate.SanitizeText(upd.Text, false)
	if reason == "" {
		b.msgr.SendText(ctx, upd.ChatID, "Опишите причину текстом")
		return
	}
	reason = truncateRunes(reason, afkReasonLimit)

	rep := &db.Report{
		ReporterID: upd.UserID,
		Category:   db.CategoryAFK,
		Reason:     fmt.Sprintf("%d дней. %s", sess.AFKDays, reason),
		CreatedAt:  time.Now(),
	}
	if upd.Username != "" {
		rep.ReporterUsername = &upd.Username
	}

	id, err := b.reports.Create(rep)
	if err != nil {
		log.Error("create afk request", zap.Error(err))
		b.msgr.SendText(ctx, upd.ChatID, msgInternalError)
		return
	}
	rep.ID = id

	b.sessions.Clear(upd.UserID)
	b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, msgAFKAccepted,
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(upd.UserID)))

	b.notifier.Broadcast(ctx, b.policy.AdminIDs(), "AFK-запрос\n"+ReportLine(*rep))

	log.Info("afk request filed",
		zap.Int64("report_id", id),
		zap.Int("days", sess.AFKDays))
}

// --- Admin application ---

func (b *Bot) startAdminApplication(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	if !b.requireProfile(ctx, chatID, username, log) {
		return
	}

	b.sessions.Set(userID, &Session{Flow: FlowAdminApp, Step: StepAppText})
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgAdminAppPrompt, inlineCancelKeyboard("admin_app:cancel"))
}

func (b *Bot) handleAdminAppText(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	text := validate.SanitizeText(upd.Text, false)
	if text == "" {
		b.msgr.SendText(ctx, upd.ChatID, "Расскажите о себе текстом")
		return
	}
	text = truncateRunes(text, adminAppReasonLimit)

	rep := &db.Report{
		ReporterID: upd.UserID,
		Category:   db.CategoryAdminApp,
		Reason:     text,
		CreatedAt:  time.Now(),
	}
	if upd.Username != "" {
		rep.ReporterUsername = &upd.Username
	}

	id, err := b.reports.Create(rep)
	if err != nil {
		log.Error("create admin application", zap.Error(err))
		b.msgr.SendText(ctx, upd.ChatID, msgInternalError)
		return
	}
	rep.ID = id

	b.sessions.Clear(upd.UserID)
	b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, msgAdminAppAccepted,
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(upd.UserID)))

	b.notifier.Broadcast(ctx, b.policy.AdminIDs(), "Заявка на админа\n"+ReportLine(*rep))

	log.Info("admin application filed", zap.Int64("report_id", id))
}
