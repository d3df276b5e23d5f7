package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/access"
	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/parse"
	"github.com/gratefultolord/community_bot/internal/telegram"
)

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard interface{}) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
	AnswerCallback(callbackID string)
}

type ProfileStore interface {
	Create(p *db.Profile) (int64, error)
	GetByID(id int64) (*db.Profile, error)
	GetByUsername(username string) (*db.Profile, error)
	List(status string) ([]db.Profile, error)
	UpdateFields(username string, changes map[string]any) (bool, error)
}

type ReportStore interface {
	Create(rep *db.Report) (int64, error)
	List() ([]db.Report, error)
	ListByCategory(category string) ([]db.Report, error)
	ClearAll() (bool, error)
}

type ProfileCache interface {
	GetByUsername(ctx context.Context, username string) (*db.Profile, bool)
	Set(ctx context.Context, p *db.Profile)
	Invalidate(ctx context.Context, id int64, username string)
}

type Moderator interface {
	Approve(ctx context.Context, id, reviewerID int64) (*db.Profile, error)
	Reject(ctx context.Context, id, reviewerID int64) (*db.Profile, error)
	Delete(ctx context.Context, username string) error
	Supersede(ctx context.Context, username string) error
}

type Limiter interface {
	Allow(ctx context.Context, userID int64) (int64, bool, error)
}

type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []int64, text string)
	BroadcastKeyboard(ctx context.Context, recipients []int64, text string, keyboard interface{})
	NotifyUser(ctx context.Context, userID int64, text string)
}

// Options are the conversation-level knobs from config.
type Options struct {
	MinProfileLength int
	MaxProfileLength int
	ForbiddenWords   []string
	SpamThreshold    float64
}

// Bot routes every incoming update to the right flow. Dispatch order: button
// presses, then the active session step (unless the text is a menu label or a
// cancel), then menu triggers, then content heuristics, then silence.
type Bot struct {
	msgr      Messenger
	profiles  ProfileStore
	reports   ReportStore
	cache     ProfileCache
	moderator Moderator
	limiter   Limiter
	notifier  Broadcaster
	policy    *access.Policy
	sessions  *SessionStore
	opts      Options
	logger    *zap.Logger
}

func New(
	msgr Messenger,
	profiles ProfileStore,
	reports ReportStore,
	cache ProfileCache,
	moderator Moderator,
	limiter Limiter,
	notifier Broadcaster,
	policy *access.Policy,
	opts Options,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		msgr:      msgr,
		profiles:  profiles,
		reports:   reports,
		cache:     cache,
		moderator: moderator,
		limiter:   limiter,
		notifier:  notifier,
		policy:    policy,
		sessions:  NewSessionStore(),
		opts:      opts,
		logger:    logger,
	}
}

// Handlers wires the bot into the transport listen loop.
func (b *Bot) Handlers() telegram.Handlers {
	return telegram.Handlers{
		OnText:     b.HandleText,
		OnCommand:  b.HandleCommand,
		OnCallback: b.HandleCallback,
	}
}

// recoverTo converts a handler panic into an apology and a super-admin alert,
// so one bad update cannot take the polling loop down.
func (b *Bot) recoverTo(ctx context.Context, chatID int64, log *zap.Logger) {
	r := recover()
	if r == nil {
		return
	}

	log.Error("handler panic",
		zap.Any("panic", r),
		zap.String("stack", string(debug.Stack())))

	b.msgr.SendText(ctx, chatID, msgInternalError)
	b.notifier.NotifyUser(ctx, b.policy.SuperAdminID(),
		fmt.Sprintf("Паника в обработчике: %v", r))
}

func (b *Bot) allowed(ctx context.Context, userID, chatID int64, log *zap.Logger) bool {
	retryAfter, ok, err := b.limiter.Allow(ctx, userID)
	if err != nil {
		// Limiter outage must not lock users out.
		log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if !ok {
		b.msgr.SendText(ctx, chatID, fmt.Sprintf(msgRateLimited, retryAfter))
		return false
	}
	return true
}

func (b *Bot) HandleText(ctx context.Context, upd telegram.TextUpdate) {
	log := b.logger.With(
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_id", upd.UserID),
		zap.Int64("chat_id", upd.ChatID))

	defer b.recoverTo(ctx, upd.ChatID, log)

	if !b.allowed(ctx, upd.UserID, upd.ChatID, log) {
		return
	}

	// Отмена прерывает любой активный сценарий
	if upd.Text == ButtonCancel {
		b.cancelSession(ctx, upd.UserID, upd.ChatID)
		return
	}

	// Кнопки меню имеют приоритет над активным сценарием
	if b.isMenuLabel(upd.Text) {
		b.sessions.Clear(upd.UserID)
		b.handleMenu(ctx, upd, log)
		return
	}

	if sess, ok := b.sessions.Get(upd.UserID); ok {
		b.handleSessionText(ctx, upd, sess, log)
		return
	}

	// Эвристики для сообщений вне сценария
	if category, target, reason, ok := parseSingleShotReport(upd.Text); ok {
		b.fileReport(ctx, upd.UserID, upd.ChatID, upd.Username, category, target, reason, log)
		return
	}
	if parse.LooksLikeProfile(upd.Text) {
		b.startProfileFromText(ctx, upd, log)
		return
	}

	// Произвольный текст вне сценария игнорируется без ответа
	log.Debug("unmatched text ignored")
}

func (b *Bot) HandleCommand(ctx context.Context, upd telegram.CommandUpdate) {
	log := b.logger.With(
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_id", upd.UserID),
		zap.String("command", upd.Command))

	defer b.recoverTo(ctx, upd.ChatID, log)

	if !b.allowed(ctx, upd.UserID, upd.ChatID, log) {
		return
	}

	switch upd.Command {
	case "start":
		b.sessions.Clear(upd.UserID)
		b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, msgWelcome,
			mainMenuKeyboard(b.policy.CanOpenAdminPanel(upd.UserID)))
	case "help":
		b.msgr.SendText(ctx, upd.ChatID, msgHelp)
	case "cancel":
		b.cancelSession(ctx, upd.UserID, upd.ChatID)
	case "export_csv":
		b.handleExportCSV(ctx, upd.UserID, upd.ChatID, log)
	default:
		b.msgr.SendText(ctx, upd.ChatID, msgUnknownInput)
	}
}

func (b *Bot) HandleCallback(ctx context.Context, upd telegram.CallbackUpdate) {
	log := b.logger.With(
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_id", upd.UserID),
		zap.String("callback", upd.Data))

	defer b.recoverTo(ctx, upd.ChatID, log)

	b.msgr.AnswerCallback(upd.CallbackID)

	if !b.allowed(ctx, upd.UserID, upd.ChatID, log) {
		return
	}

	intent := DecodeIntent(upd.Data)
	switch intent.Kind {
	case IntentView:
		b.showProfileCard(ctx, upd.UserID, upd.ChatID, intent.Username, log)
	case IntentBack:
		b.showUsersList(ctx, upd.ChatID, log)
	case IntentProfileNew:
		b.startNewProfile(ctx, upd.UserID, upd.ChatID, upd.Username)
	case IntentProfileEdit:
		b.startEditOwnProfile(ctx, upd.UserID, upd.ChatID, upd.Username, log)
	case IntentNewConfirm:
		b.confirmNewProfile(ctx, upd.UserID, upd.ChatID, upd.Username, log)
	case IntentNewCancel, IntentEditCancel, IntentReportCancel,
		IntentAFKCancel, IntentAdminAppCancel:
		b.cancelSession(ctx, upd.UserID, upd.ChatID)
	case IntentEditConfirm:
		b.confirmEdit(ctx, upd.UserID, upd.ChatID, log)
	case IntentReportCategory:
		b.startReportReason(ctx, upd.UserID, upd.ChatID, intent.Category)
	case IntentReview:
		b.handleReview(ctx, upd.UserID, upd.ChatID, intent.ProfileID, intent.Approve, log)
	case IntentDelete, IntentAdminDelete:
		b.askDeleteProfile(ctx, upd.UserID, upd.ChatID, intent.Username)
	case IntentDeleteConfirm:
		b.handleDeleteProfile(ctx, upd.UserID, upd.ChatID, intent.Username, log)
	case IntentAdminEdit:
		b.startEditProfile(ctx, upd.UserID, upd.ChatID, intent.Username, log)
	case IntentAdminSection:
		b.handleAdminSection(ctx, upd.UserID, upd.ChatID, intent.Section, log)
	case IntentAdminProfile:
		b.showProfileCard(ctx, upd.UserID, upd.ChatID, intent.Username, log)
	default:
		log.Debug("unknown callback ignored")
	}
}

func (b *Bot) isMenuLabel(text string) bool {
	switch text {
	case MenuUsersInfo, MenuProfile, MenuReport, MenuAFK,
		MenuAdminApp, MenuChatInfo, MenuAdminPanel:
		return true
	}
	return false
}

func (b *Bot) handleMenu(ctx context.Context, upd telegram.TextUpdate, log *zap.Logger) {
	switch upd.Text {
	case MenuUsersInfo:
		b.showUsersList(ctx, upd.ChatID, log)
	case MenuProfile:
		b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, "Что сделать с анкетой?", profileMenuKeyboard())
	case MenuReport:
		b.msgr.SendTextWithKeyboard(ctx, upd.ChatID, msgReportCategoryPrompt, reportCategoryKeyboard())
	case MenuAFK:
		b.startAFK(ctx, upd.UserID, upd.ChatID, upd.Username, log)
	case MenuAdminApp:
		b.startAdminApplication(ctx, upd.UserID, upd.ChatID, upd.Username, log)
	case MenuChatInfo:
		b.msgr.SendText(ctx, upd.ChatID, ChatInfo())
	case MenuAdminPanel:
		b.showAdminPanel(ctx, upd.UserID, upd.ChatID)
	}
}

// handleSessionText routes free text into the step the user is currently on.
func (b *Bot) handleSessionText(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	switch sess.Step {
	case StepProfileText:
		b.handleProfileText(ctx, upd, sess, log)
	case StepProfileMissing:
		b.handleProfileMissing(ctx, upd, sess, log)
	case StepProfileConfirm, StepEditConfirm:
		// Решение принимается кнопками под превью
		b.msgr.SendText(ctx, upd.ChatID, "Используйте кнопки под анкетой или нажмите «"+ButtonCancel+"»")
	case StepEditNote:
		b.handleEditNote(ctx, upd, sess, log)
	case StepReportReason:
		b.handleReportReason(ctx, upd, sess, log)
	case StepAFKDays:
		b.handleAFKDays(ctx, upd, sess)
	case StepAFKReason:
		b.handleAFKReason(ctx, upd, sess, log)
	case StepAppText:
		b.handleAdminAppText(ctx, upd, sess, log)
	default:
		log.Warn("unknown session step", zap.String("step", string(sess.Step)))
		b.cancelSession(ctx, upd.UserID, upd.ChatID)
	}
}

func (b *Bot) cancelSession(ctx context.Context, userID, chatID int64) {
	b.sessions.Clear(userID)
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgCanceled,
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(userID)))
}

// lookupProfile checks the cache first and falls back to the store, caching
// approved hits on the way out.
func (b *Bot) lookupProfile(ctx context.Context, username string, log *zap.Logger) (*db.Profile, error) {
	if p, ok := b.cache.GetByUsername(ctx, username); ok {
		return p, nil
	}

	p, err := b.profiles.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if p.Status == db.StatusApproved {
		b.cache.Set(ctx, p)
	}
	return p, nil
}

func (b *Bot) showUsersList(ctx context.Context, chatID int64, log *zap.Logger) {
	profiles, err := b.profiles.List(db.StatusApproved)
	if err != nil {
		log.Error("list profiles", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if len(profiles) == 0 {
		b.msgr.SendText(ctx, chatID, msgNoProfiles)
		return
	}

	b.msgr.SendTextWithKeyboard(ctx, chatID,
		fmt.Sprintf("Участники (%d):", len(profiles)), usersListKeyboard(profiles))
}

func (b *Bot) showProfileCard(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	p, err := b.lookupProfile(ctx, username, log)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.msgr.SendText(ctx, chatID, "Анкета не найдена")
			return
		}
		log.Error("get profile", zap.Error(err), zap.String("username", username))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	ownerID := int64(0)
	if p.AddedByID != nil {
		ownerID = *p.AddedByID
	}
	canEdit := b.policy.CanEditProfile(userID, ownerID)
	canDelete := b.policy.CanDeleteProfile(userID)

	b.msgr.SendTextWithKeyboard(ctx, chatID, ProfileCard(p),
		profileCardKeyboard(p.Username, canEdit, canDelete))
}

func (b *Bot) handleExportCSV(ctx context.Context, userID, chatID int64, log *zap.Logger) {
	if !b.policy.CanExportCSV(userID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}

	profiles, err := b.profiles.List("")
	if err != nil {
		log.Error("export csv list", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	data, err := ProfilesCSV(profiles)
	if err != nil {
		log.Error("export csv render", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	if err := b.msgr.SendDocument(ctx, chatID, "profiles.csv", data); err != nil {
		log.Error("export csv send", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
	}
}

// used by moderation flows to address the submitter
func submitterID(p *db.Profile) (int64, bool) {
	if p.AddedByID == nil || *p.AddedByID == 0 {
		return 0, false
	}
	return *p.AddedByID, true
}
