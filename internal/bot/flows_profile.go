package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/parse"
	"github.com/gratefultolord/community_bot/internal/telegram"
	"github.com/gratefultolord/community_bot/internal/validate"
)

const editNoteLimit = 400

func (b *Bot) startNewProfile(ctx context.Context, userID, chatID int64, username string) {
	if username == "" {
		b.msgr.SendText(ctx, chatID, msgUsernameRequired)
		return
	}

	b.sessions.Set(userID, &Session{Flow: FlowNewProfile, Step: StepProfileText})
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgProfilePrompt, cancelKeyboard())
}

// startProfileFromText is the heuristic entry: the user pasted something that
// reads like a profile without pressing any button first.
func (b *Bot) startProfileFromText(ctx context.Context, upd telegram.TextUpdate, log *zap.Logger) {
	if upd.Username == "" {
		b.msgr.SendText(ctx, upd.ChatID, msgUsernameRequired)
		return
	}

	sess := &Session{Flow: FlowNewProfile, Step: StepProfileText}
	b.sessions.Set(upd.UserID, sess)
	b.handleProfileText(ctx, upd, sess, log)
}

func (b *Bot) handleProfileText(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	fields, missing := parse.ProfileText(upd.Text)
	if fields.Username == "" && upd.Username != "" {
		fields.Username = upd.Username
		missing = withoutField(missing, parse.FieldUsername)
	}

	sess.Draft = fields
	sess.RawText = upd.Text
	sess.Missing = missing
	b.sessions.Set(upd.UserID, sess)

	if len(missing) > 0 {
		sess.Step = StepProfileMissing
		b.promptMissingField(ctx, upd.ChatID, missing[0])
		return
	}

	b.previewProfile(ctx, upd.UserID, upd.ChatID, sess)
}

func (b *Bot) promptMissingField(ctx context.Context, chatID int64, field string) {
	switch field {
	case parse.FieldAge:
		b.msgr.SendText(ctx, chatID, msgProfileAgePrompt)
	case parse.FieldUsername:
		b.msgr.SendText(ctx, chatID, msgProfileUsernamePrompt)
	}
}

func (b *Bot) handleProfileMissing(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	if len(sess.Missing) == 0 {
		b.previewProfile(ctx, upd.UserID, upd.ChatID, sess)
		return
	}

	switch sess.Missing[0] {
	case parse.FieldAge:
		age, err := validate.Age(upd.Text)
		if err != nil {
			b.msgr.SendText(ctx, upd.ChatID, "Укажите возраст числом, например: 25")
			return
		}
		sess.Draft.Age = age
	case parse.FieldUsername:
		username := strings.TrimPrefix(strings.TrimSpace(upd.Text), "@")
		if err := validate.Username(username); err != nil {
			b.msgr.SendText(ctx, upd.ChatID, "Укажите username латиницей, например: @my_username")
			return
		}
		sess.Draft.Username = username
	}

	sess.Missing = sess.Missing[1:]
	b.sessions.Set(upd.UserID, sess)

	if len(sess.Missing) > 0 {
		b.promptMissingField(ctx, upd.ChatID, sess.Missing[0])
		return
	}

	b.previewProfile(ctx, upd.UserID, upd.ChatID, sess)
}

func (b *Bot) previewProfile(ctx context.Context, userID, chatID int64, sess *Session) {
	sess.Step = StepProfileConfirm
	b.sessions.Set(userID, sess)

	card := DraftCard(sess.Draft, "")
	b.msgr.SendTextWithKeyboard(ctx, chatID, card+"\n\n"+msgProfileConfirm, confirmKeyboard("new"))
}

func (b *Bot) confirmNewProfile(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	sess, ok := b.sessions.Get(userID)
	if !ok || sess.Flow != FlowNewProfile || sess.Step != StepProfileConfirm {
		b.msgr.SendText(ctx, chatID, msgUnknownInput)
		return
	}

	if err := validate.ProfileText(sess.RawText, b.opts.MinProfileLength,
		b.opts.MaxProfileLength, b.opts.ForbiddenWords); err != nil {
		// Черновик остаётся, пользователь досылает исправленный текст
		sess.Step = StepProfileText
		b.sessions.Set(userID, sess)
		b.msgr.SendText(ctx, chatID, validationMessage(err)+". "+msgProfileResend)
		return
	}

	target := sess.Draft.Username

	existing, err := b.profiles.GetByUsername(target)
	switch {
	case err == nil && existing.Status == db.StatusApproved:
		b.sessions.Clear(userID)
		b.msgr.SendText(ctx, chatID, msgProfileTaken)
		return
	case err == nil:
		// Непроверенный остаток освобождается молча
		if err := b.moderator.Supersede(ctx, target); err != nil {
			log.Error("supersede leftover", zap.Error(err), zap.String("username", target))
			b.msgr.SendText(ctx, chatID, msgInternalError)
			return
		}
	case !errors.Is(err, db.ErrNotFound):
		log.Error("username conflict check", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	profile := draftToProfile(sess.Draft, username, userID)
	id, err := b.profiles.Create(profile)
	if err != nil {
		log.Error("create profile", zap.Error(err))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	profile.ID = id

	b.sessions.Clear(userID)
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgProfileSubmitted,
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(userID)))

	b.notifier.BroadcastKeyboard(ctx, b.policy.AdminIDs(),
		"Новая анкета на проверку:\n\n"+ProfileCard(profile), reviewKeyboard(id))

	log.Info("profile submitted",
		zap.Int64("profile_id", id),
		zap.String("username", profile.Username))
}

func draftToProfile(f parse.Fields, addedBy string, addedByID int64) *db.Profile {
	p := &db.Profile{
		Username:  f.Username,
		AddedBy:   addedBy,
		AddedByID: &addedByID,
		Status:    db.StatusPending,
		AddedAt:   time.Now().UTC(),
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
	setIfNotEmpty(&p.Note, validate.SanitizeText(f.Note, true))
	p.TzOffset = f.TzOffset
	return p
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, validate.ErrTooShort):
		return "Анкета слишком короткая. Расскажите о себе подробнее"
	case errors.Is(err, validate.ErrTooLong):
		return "Анкета слишком длинная. Сократите текст"
	case errors.Is(err, validate.ErrForbidden):
		return "Анкета содержит недопустимые слова"
	case errors.Is(err, validate.ErrEmpty):
		return "Анкета не может быть пустой"
	}
	return msgInternalError
}

func withoutField(fields []string, field string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != field {
			out = append(out, f)
		}
	}
	return out
}

// --- Edit flow ---

func (b *Bot) startEditOwnProfile(ctx context.Context, userID, chatID int64, username string, log *zap.Logger) {
	if username == "" {
		b.msgr.SendText(ctx, chatID, msgUsernameRequired)
		return
	}
	b.startEditProfile(ctx, userID, chatID, username, log)
}

func (b *Bot) startEditProfile(ctx context.Context, userID, chatID int64, target string, log *zap.Logger) {
	p, err := b.lookupProfile(ctx, target, log)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.msgr.SendText(ctx, chatID, msgProfileMissing)
			return
		}
		log.Error("edit lookup", zap.Error(err), zap.String("username", target))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}

	ownerID := int64(0)
	if p.AddedByID != nil {
		ownerID = *p.AddedByID
	}
	if !b.policy.CanEditProfile(userID, ownerID) {
		b.msgr.SendText(ctx, chatID, msgAccessDenied)
		return
	}

	b.sessions.Set(userID, &Session{
		Flow:       FlowEditProfile,
		Step:       StepEditNote,
		EditTarget: p.Username,
	})
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgEditNotePrompt, cancelKeyboard())
}

func (b *Bot) handleEditNote(ctx context.Context, upd telegram.TextUpdate, sess *Session, log *zap.Logger) {
	note := validate.SanitizeNote(upd.Text)
	if note == "" {
		b.msgr.SendText(ctx, upd.ChatID, "Текст не может быть пустым. Попробуйте ещё раз")
		return
	}
	note = truncateRunes(note, editNoteLimit)

	if err := validate.ProfileText(note, 1, editNoteLimit, b.opts.ForbiddenWords); err != nil {
		b.msgr.SendText(ctx, upd.ChatID, validationMessage(err))
		return
	}

	sess.EditNote = note
	sess.Step = StepEditConfirm
	b.sessions.Set(upd.UserID, sess)

	b.msgr.SendTextWithKeyboard(ctx, upd.ChatID,
		"О себе: "+note+"\n\n"+msgEditConfirm, confirmKeyboard("edit"))
}

func (b *Bot) confirmEdit(ctx context.Context, userID, chatID int64, log *zap.Logger) {
	sess, ok := b.sessions.Get(userID)
	if !ok || sess.Flow != FlowEditProfile || sess.Step != StepEditConfirm {
		b.msgr.SendText(ctx, chatID, msgUnknownInput)
		return
	}

	updated, err := b.profiles.UpdateFields(sess.EditTarget, map[string]any{"note": sess.EditNote})
	if err != nil {
		log.Error("update note", zap.Error(err), zap.String("username", sess.EditTarget))
		b.msgr.SendText(ctx, chatID, msgInternalError)
		return
	}
	if !updated {
		b.sessions.Clear(userID)
		b.msgr.SendText(ctx, chatID, msgProfileMissing)
		return
	}

	// Кэш сбрасывается даже если повторное чтение не удалось,
	// иначе до истечения TTL отдаётся устаревшая карточка
	var profileID int64
	if p, err := b.profiles.GetByUsername(sess.EditTarget); err == nil {
		profileID = p.ID
	}
	b.cache.Invalidate(ctx, profileID, sess.EditTarget)

	b.sessions.Clear(userID)
	b.msgr.SendTextWithKeyboard(ctx, chatID, msgEditDone,
		mainMenuKeyboard(b.policy.CanOpenAdminPanel(userID)))

	b.notifier.Broadcast(ctx, b.policy.AdminIDs(),
		fmt.Sprintf("Анкета @%s обновлена", sess.EditTarget))

	log.Info("profile edited", zap.String("username", sess.EditTarget))
}
