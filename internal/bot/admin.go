package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/moderation"
	"github.com/gratefultolord/community_bot/internal/validate"
)

const recentReportsLimit = 10

func (b *Bot) showAdminPanel(ctx context.Context, userID, chatID int64) {
	if !b.policy.CanOpenAdminPanel(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}
	b.msgr.SendTextWithKeyboard(ctx, chatID, "Админ панель", adminPanelKeyboard())
}

func (b *Bot) handleAdminSection(ctx context.Context, userID, chatID int64, section string, log *zap.Logger) {
	if !b.policy.CanOpenAdminPanel(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}

	switch section {
	case "reports":
		b.showRecentReports(ctx, chatID, log)
	case "clear_reports":
		b.clearReports(ctx, chatID, log)
	case "new_profiles":
		b.showPendingProfiles(ctx, chatID, log)
	case "manage_profiles":
		b.showManageProfiles(ctx, chatID, log)
	case "afk_requests":
		b.showReportCategory(ctx, chatID, db.CategoryAFK, "AFK-запросы", log)
	case "admin_applications":
		b.showReportCategory(ctx, chatID, db.CategoryAdminApp, "Заявки на админа", log)
	}
}

func (b *Bot) showRecentReports(ctx context.Context, chatID int64, log *zap.Logger) {
	reports, err := b.reports.List()
	if err != nil {
		log.Error("list reports", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if len(reports) > recentReportsLimit {
		reports = reports[:recentReportsLimit]
	}
	b.sendReportList(ctx, chatID, "Последние репорты:", reports)
}

func (b *Bot) showReportCategory(ctx context.Context, chatID int64, category, title string, log *zap.Logger) {
	reports, err := b.reports.ListByCategory(category)
	if err != nil {
		log.Error("list reports by category", zap.Error(err), zap.String("category", category))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	b.sendReportList(ctx, chatID, title+":", reports)
}

func (b *Bot) sendReportList(ctx context.Context, chatID int64, title string, reports []db.Report) {
	if len(reports) == 0 {
		b.msgr.SendText(ctx, chatID, msgNoReports)
		return
	}

	lines := make([]string, 0, len(reports)+1)
	lines = append(lines, title)
	for _, r := range reports {
		lines = append(lines, ReportLine(r))
	}
	b.msgr.SendText(ctx, chatID, strings.Join(lines, "\n"))
}

func (b *Bot) clearReports(ctx context.Context, chatID int64, log *zap.Logger) {
	cleared, err := b.reports.ClearAll()
	if err != nil {
		log.Error("clear reports", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if !cleared {
		b.msgr.SendText(ctx, chatID, msgNoReports)
		return
	}
	b.msgr.SendText(ctx, chatID, msgReportsClear)
	log.Info("reports cleared")
}

func (b *Bot) showPendingProfiles(ctx context.Context, chatID int64, log *zap.Logger) {
	pending, err := b.profiles.List(db.StatusPending)
	if err != nil {
		log.Error("list pending profiles", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if len(pending) == 0 {
		b.msgr.SendText(ctx, chatID, msgNoPending)
		return
	}

	// Каждая анкета отдельным сообщением со своими кнопками решения
	for i := range pending {
		p := pending[i]
		card := ProfileCard(&p)
		if p.Note != nil && validate.IsSpam(*p.Note, b.opts.SpamThreshold) {
			card = msgSpamWarning + "\n\n" + card
		}
		b.msgr.SendTextWithKeyboard(ctx, chatID, card, reviewKeyboard(p.ID))
	}
}

func (b *Bot) showManageProfiles(ctx context.Context, chatID int64, log *zap.Logger) {
	profiles, err := b.profiles.List(db.StatusApproved)
	if err != nil {
		log.Error("list profiles for management", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if len(profiles) == 0 {
		b.msgr.SendText(ctx, chatID, msgNoProfiles)
		return
	}

	b.msgr.SendTextWithKeyboard(ctx, chatID, "Выберите анкету:", manageProfilesKeyboard(profiles))
}

// handleReview applies an approve/reject decision. The first decision wins;
// everyone pressing after that gets told the review is already done.
func (b *Bot) handleReview(ctx context.Context, userID, chatID, profileID int64, approve bool, log *zap.Logger) {
	if !b.policy.CanModerate(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}

	var profile *db.Profile
	var err error
	if approve {
		profile, err = b.moderator.Approve(ctx, profileID, userID)
	} else {
		profile, err = b.moderator.Reject(ctx, profileID, userID)
	}

	switch {
	case errors.Is(err, moderation.ErrAlreadyReviewed):
		b.msgr.SendText(ctx, chatID, msgAlreadyReviewed)
		return
	case errors.Is(err, moderation.ErrNotFound):
		b.msgr.SendText(ctx, chatID, "Анкета не найдена. Возможно, она уже проверена")
		return
	case err != nil:
		log.Error("review decision", zap.Error(err), zap.Int64("profile_id", profileID))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	if approve {
		b.msgr.SendText(ctx, chatID, fmt.Sprintf("Анкета @%s одобрена", profile.Username))
	} else {
		b.msgr.SendText(ctx, chatID, fmt.Sprintf("Анкета @%s отклонена и удалена", profile.Username))
	}

	if submitter, ok := submitterID(profile); ok {
		if approve {
			b.notifier.NotifyUser(ctx, submitter, msgProfileApproved)
		} else {
			b.notifier.NotifyUser(ctx, submitter, msgProfileRejected)
		}
	}

	log.Info("review decision applied",
		zap.Int64("profile_id", profileID),
		zap.Bool("approved", approve),
		zap.Int64("reviewer_id", userID))
}

func (b *Bot) askDeleteProfile(ctx context.Context, userID, chatID int64, username string) {
	if !b.policy.CanDeleteProfile(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}
	b.msgr.SendTextWithKeyboard(ctx, chatID,
		fmt.Sprintf(msgDeleteConfirm, username), deleteConfirmKeyboard(username))
}

func (b *Bot) handleDeleteProfile(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	if !b.policy.CanDeleteProfile(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}

	if err := b.moderator.Delete(ctx, username); err != nil {
		if errors.Is(err, moderation.ErrNotFound) {
			b.msgr.SendText(ctx, chatID, "Анкета не найдена")
			return
		}
		log.Error("delete profile", zap.Error(err), zap.String("username", username))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	b.msgr.SendText(ctx, chatID, fmt.Sprintf(msgDeleteDone, username))
	log.Info("profile deleted by admin",
		zap.String("username", username),
		zap.Int64("admin_id", userID))
}
