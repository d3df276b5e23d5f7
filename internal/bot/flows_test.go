package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/gratefultolord/community_bot/internal/db"
)

// --- New profile ---

const profileSample = "Всем привет! Мне 25 лет, зовут Саша, @sasha_qwerty. " +
	"Живу в России, город Казань, UTC+3. Языки: Русский, Английский. Люблю настолки"

func TestNewProfileFlow(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	if f.msgr.last().text != msgProfilePrompt {
		t.Fatalf("prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "sasha_qwerty", profileSample)
	if !strings.Contains(f.msgr.last().text, msgProfileConfirm) {
		t.Fatalf("preview = %q, want confirm prompt", f.msgr.last().text)
	}
	if !strings.Contains(f.msgr.last().text, "@sasha_qwerty") {
		t.Errorf("preview missing username: %q", f.msgr.last().text)
	}

	f.callback(regularID, "sasha_qwerty", "new:confirm")
	if f.msgr.last().text != msgProfileSubmitted {
		t.Fatalf("confirm reply = %q", f.msgr.last().text)
	}

	stored, err := f.profiles.GetByUsername("sasha_qwerty")
	if err != nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if stored.Status != db.StatusPending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
	if stored.AddedByID == nil || *stored.AddedByID != regularID {
		t.Errorf("submitter id not recorded: %v", stored.AddedByID)
	}
	if stored.AddedAt.IsZero() {
		t.Error("submission timestamp not set")
	}

	if len(f.notifier.withKeyboards) != 1 {
		t.Fatalf("review fan-outs = %d, want 1", len(f.notifier.withKeyboards))
	}
	if !strings.Contains(f.notifier.withKeyboards[0], "@sasha_qwerty") {
		t.Errorf("review notification = %q", f.notifier.withKeyboards[0])
	}
}

func TestNewProfileRequiresUsername(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "", "profile:new_start")

	if f.msgr.last().text != msgUsernameRequired {
		t.Errorf("reply = %q, want username requirement", f.msgr.last().text)
	}
	if _, ok := f.bot.sessions.Get(regularID); ok {
		t.Error("session started without username")
	}
}

func TestNewProfileMissingAgeReprompt(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	f.text(regularID, "sasha_qwerty", "Привет, я Саша из Казани, люблю настолки и долгие прогулки по вечерам")

	if f.msgr.last().text != msgProfileAgePrompt {
		t.Fatalf("reply = %q, want age prompt", f.msgr.last().text)
	}

	f.text(regularID, "sasha_qwerty", "25")
	if !strings.Contains(f.msgr.last().text, msgProfileConfirm) {
		t.Errorf("after age reply = %q, want preview", f.msgr.last().text)
	}
}

func TestNewProfileConflictWithApproved(t *testing.T) {
	f := newFixture(approvedProfile(1, "sasha_qwerty", 77))

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	f.text(regularID, "sasha_qwerty", profileSample)
	f.callback(regularID, "sasha_qwerty", "new:confirm")

	if f.msgr.last().text != msgProfileTaken {
		t.Errorf("reply = %q, want taken notice", f.msgr.last().text)
	}
	if len(f.notifier.withKeyboards) != 0 {
		t.Error("conflicting submission still fanned out")
	}
}

func TestNewProfileSupersedesPendingLeftover(t *testing.T) {
	leftover := &db.Profile{ID: 1, Username: "sasha_qwerty", Status: db.StatusPending}
	f := newFixture(leftover)

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	f.text(regularID, "sasha_qwerty", profileSample)
	f.callback(regularID, "sasha_qwerty", "new:confirm")

	if f.msgr.last().text != msgProfileSubmitted {
		t.Fatalf("reply = %q", f.msgr.last().text)
	}
	if len(f.mod.superseded) != 1 || f.mod.superseded[0] != "sasha_qwerty" {
		t.Errorf("superseded = %v, want [sasha_qwerty]", f.mod.superseded)
	}
}

func TestConfirmValidationKeepsSessionForRetry(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	f.text(regularID, "sasha_qwerty", profileSample+" казино")
	f.callback(regularID, "sasha_qwerty", "new:confirm")

	if !strings.Contains(f.msgr.last().text, msgProfileResend) {
		t.Fatalf("reply = %q, want resend prompt", f.msgr.last().text)
	}
	sess, ok := f.bot.sessions.Get(regularID)
	if !ok || sess.Flow != FlowNewProfile || sess.Step != StepProfileText {
		t.Fatal("flow aborted instead of returning to the text step")
	}

	// исправленный текст доходит до отправки без перезапуска сценария
	f.text(regularID, "sasha_qwerty", profileSample)
	f.callback(regularID, "sasha_qwerty", "new:confirm")
	if f.msgr.last().text != msgProfileSubmitted {
		t.Errorf("corrected reply = %q", f.msgr.last().text)
	}
}

func TestProfileNoteRedactsLinks(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "sasha_qwerty", "profile:new_start")
	f.text(regularID, "sasha_qwerty", profileSample+" Мой блог: https://example.com/blog")
	f.callback(regularID, "sasha_qwerty", "new:confirm")

	stored, err := f.profiles.GetByUsername("sasha_qwerty")
	if err != nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if stored.Note == nil {
		t.Fatal("note not stored")
	}
	if strings.Contains(*stored.Note, "https://") {
		t.Errorf("note kept a raw link: %q", *stored.Note)
	}
	if !strings.Contains(*stored.Note, "[ссылка]") {
		t.Errorf("note = %q, want link placeholder", *stored.Note)
	}
}

func TestProfileHeuristicStartsFlow(t *testing.T) {
	f := newFixture()

	// profile-looking text without any button pressed first
	f.text(regularID, "sasha_qwerty", profileSample)

	sess, ok := f.bot.sessions.Get(regularID)
	if !ok || sess.Flow != FlowNewProfile {
		t.Fatal("heuristic did not start the profile flow")
	}
	if !strings.Contains(f.msgr.last().text, msgProfileConfirm) {
		t.Errorf("reply = %q, want preview", f.msgr.last().text)
	}
}

// --- Edit ---

func TestEditOwnProfile(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", regularID))

	f.callback(regularID, "alice", "profile:edit_start")
	if f.msgr.last().text != msgEditNotePrompt {
		t.Fatalf("prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", "Теперь увлекаюсь горами")
	if !strings.Contains(f.msgr.last().text, msgEditConfirm) {
		t.Fatalf("preview = %q", f.msgr.last().text)
	}

	f.callback(regularID, "alice", "edit:confirm")
	if f.msgr.last().text != msgEditDone {
		t.Fatalf("reply = %q", f.msgr.last().text)
	}

	stored, _ := f.profiles.GetByUsername("alice")
	if stored.Note == nil || *stored.Note != "Теперь увлекаюсь горами" {
		t.Errorf("note = %v", stored.Note)
	}
	if len(f.cache.invalidated) == 0 {
		t.Error("cache not invalidated after edit")
	}
}

func TestEditInvalidatesCacheWhenRereadFails(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", regularID))

	f.callback(regularID, "alice", "profile:edit_start")
	f.text(regularID, "alice", "Теперь увлекаюсь горами")
	f.profiles.getErr = errors.New("connection reset")
	f.callback(regularID, "alice", "edit:confirm")

	if f.msgr.last().text != msgEditDone {
		t.Fatalf("reply = %q", f.msgr.last().text)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "alice" {
		t.Errorf("invalidated = %v, want [alice]", f.cache.invalidated)
	}
}

func TestEditDeniedForStranger(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", 77))

	f.callback(regularID, "bob", "admin:edit:alice")

	if f.msgr.last().text != msgAccessDenied {
		t.Errorf("reply = %q, want access denied", f.msgr.last().text)
	}
}

func TestAdminEditsAnyProfile(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", 77))

	f.callback(adminID, "mod", "admin:edit:alice")

	if f.msgr.last().text != msgEditNotePrompt {
		t.Errorf("reply = %q, want note prompt", f.msgr.last().text)
	}
}

// --- Reports ---

func TestSingleShotReport(t *testing.T) {
	f := newFixture()

	f.text(regularID, "alice", "репорт чат: спамит ссылками")

	if len(f.reports.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(f.reports.reports))
	}
	rep := f.reports.reports[0]
	if rep.Category != db.CategoryChat {
		t.Errorf("category = %q, want chat", rep.Category)
	}
	if rep.Reason != "спамит ссылками" {
		t.Errorf("reason = %q", rep.Reason)
	}
	if !strings.Contains(f.msgr.last().text, "R-") {
		t.Errorf("reply = %q, want ticket id", f.msgr.last().text)
	}
	if len(f.notifier.broadcasts) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(f.notifier.broadcasts))
	}
}

func TestSingleShotReportWithTarget(t *testing.T) {
	f := newFixture()

	f.text(regularID, "alice", "репорт канал @night_deals: сплошная реклама")

	if len(f.reports.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(f.reports.reports))
	}
	rep := f.reports.reports[0]
	if rep.Category != db.CategoryChannel {
		t.Errorf("category = %q, want channel", rep.Category)
	}
	if rep.TargetIdentifier == nil || *rep.TargetIdentifier != "@night_deals" {
		t.Errorf("target = %v, want @night_deals", rep.TargetIdentifier)
	}
	if rep.Reason != "сплошная реклама" {
		t.Errorf("reason = %q", rep.Reason)
	}
}

func TestReportFlowViaKeyboard(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "alice", "report:bot")
	if f.msgr.last().text != msgReportReasonPrompt {
		t.Fatalf("prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", "не отвечает на команды")

	if len(f.reports.reports) != 1 || f.reports.reports[0].Category != db.CategoryBot {
		t.Fatalf("reports = %+v", f.reports.reports)
	}
	if _, ok := f.bot.sessions.Get(regularID); ok {
		t.Error("session survived report submission")
	}
}

func TestReportReasonCapped(t *testing.T) {
	f := newFixture()

	f.callback(regularID, "alice", "report:chat")
	f.text(regularID, "alice", strings.Repeat("о", 600))

	if got := len([]rune(f.reports.reports[0].Reason)); got != reportReasonLimit {
		t.Errorf("reason length = %d, want %d", got, reportReasonLimit)
	}
}

// --- AFK ---

func TestAFKFlow(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", regularID))

	f.text(regularID, "alice", MenuAFK)
	if f.msgr.last().text != msgAFKDaysPrompt {
		t.Fatalf("prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", "20")
	if f.msgr.last().text != msgAFKDaysInvalid {
		t.Fatalf("invalid days reply = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", "7")
	if f.msgr.last().text != msgAFKReasonPrompt {
		t.Fatalf("reason prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", "уезжаю в отпуск")
	if f.msgr.last().text != msgAFKAccepted {
		t.Fatalf("reply = %q", f.msgr.last().text)
	}

	if len(f.reports.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(f.reports.reports))
	}
	rep := f.reports.reports[0]
	if rep.Category != db.CategoryAFK {
		t.Errorf("category = %q, want afk_request", rep.Category)
	}
	if !strings.Contains(rep.Reason, "7 дней") {
		t.Errorf("reason = %q, want embedded day count", rep.Reason)
	}
}

func TestAFKRequiresProfile(t *testing.T) {
	f := newFixture()

	f.text(regularID, "alice", MenuAFK)

	if f.msgr.last().text != msgProfileMissing {
		t.Errorf("reply = %q, want profile requirement", f.msgr.last().text)
	}
	if _, ok := f.bot.sessions.Get(regularID); ok {
		t.Error("session started without a profile")
	}
}

// --- Admin application ---

func TestAdminApplicationFlow(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", regularID))

	f.text(regularID, "alice", MenuAdminApp)
	if f.msgr.last().text != msgAdminAppPrompt {
		t.Fatalf("prompt = %q", f.msgr.last().text)
	}

	f.text(regularID, "alice", strings.Repeat("готов помогать сообществу ", 60))

	if len(f.reports.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(f.reports.reports))
	}
	rep := f.reports.reports[0]
	if rep.Category != db.CategoryAdminApp {
		t.Errorf("category = %q", rep.Category)
	}
	if got := len([]rune(rep.Reason)); got > adminAppReasonLimit {
		t.Errorf("reason length = %d, want <= %d", got, adminAppReasonLimit)
	}
}

// --- Review ---

func TestReviewApproveNotifiesSubmitter(t *testing.T) {
	pending := &db.Profile{ID: 3, Username: "carol", Status: db.StatusPending}
	owner := int64(42)
	pending.AddedByID = &owner
	f := newFixture(pending)

	f.callback(adminID, "mod", "review:3:accept")

	if !strings.Contains(f.msgr.last().text, "одобрена") {
		t.Errorf("reply = %q", f.msgr.last().text)
	}
	if got := f.notifier.userNotices[owner]; len(got) != 1 || got[0] != msgProfileApproved {
		t.Errorf("submitter notices = %v", got)
	}
	stored, _ := f.profiles.GetByID(3)
	if stored.Status != db.StatusApproved {
		t.Errorf("status = %q", stored.Status)
	}
}

func TestReviewAlreadyReviewed(t *testing.T) {
	f := newFixture(&db.Profile{ID: 3, Username: "carol", Status: db.StatusPending})
	f.mod.alreadyReviewed = true

	f.callback(adminID, "mod", "review:3:reject")

	if f.msgr.last().text != msgAlreadyReviewed {
		t.Errorf("reply = %q, want already-reviewed notice", f.msgr.last().text)
	}
}

func TestReviewDeniedForRegularUser(t *testing.T) {
	f := newFixture(&db.Profile{ID: 3, Username: "carol", Status: db.StatusPending})

	f.callback(regularID, "alice", "review:3:accept")

	if f.msgr.last().text != msgAccessDenied {
		t.Errorf("reply = %q, want access denied", f.msgr.last().text)
	}
}

func TestRejectedUserCanResubmit(t *testing.T) {
	owner := int64(42)
	pending := &db.Profile{ID: 3, Username: "carol", Status: db.StatusPending, AddedByID: &owner}
	f := newFixture(pending)

	f.callback(adminID, "mod", "review:3:reject")
	if got := f.notifier.userNotices[owner]; len(got) != 1 || got[0] != msgProfileRejected {
		t.Fatalf("submitter notices = %v", got)
	}

	// username is free again
	f.callback(owner, "carol", "profile:new_start")
	f.text(owner, "carol", "Мне 30 лет, @carol, живу в Грузии, город Тбилиси, люблю книги")
	f.callback(owner, "carol", "new:confirm")

	if f.msgr.last().text != msgProfileSubmitted {
		t.Errorf("resubmission reply = %q", f.msgr.last().text)
	}
}

// --- Delete ---

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", 77))

	f.callback(superAdminID, "boss", "delete:alice")
	if !strings.Contains(f.msgr.last().text, "Удалить анкету @alice") {
		t.Fatalf("reply = %q, want confirmation prompt", f.msgr.last().text)
	}
	if len(f.mod.deleted) != 0 {
		t.Fatal("profile deleted before confirmation")
	}

	f.callback(superAdminID, "boss", "delete_confirm:alice")
	if len(f.mod.deleted) != 1 {
		t.Fatal("profile not deleted after confirmation")
	}
}

func TestDeleteDeniedForRegularUser(t *testing.T) {
	f := newFixture(approvedProfile(1, "alice", 77))

	f.callback(regularID, "bob", "delete_confirm:alice")

	if f.msgr.last().text != msgAccessDenied {
		t.Errorf("reply = %q, want access denied", f.msgr.last().text)
	}
	if len(f.mod.deleted) != 0 {
		t.Error("regular user deleted a profile")
	}
}

// --- Admin panel ---

func TestAdminPanelSuperAdminOnly(t *testing.T) {
	f := newFixture()

	f.text(adminID, "mod", MenuAdminPanel)
	if f.msgr.last().text != msgAccessDenied {
		t.Errorf("admin reply = %q, want access denied", f.msgr.last().text)
	}

	f.text(superAdminID, "boss", MenuAdminPanel)
	if f.msgr.last().text != "Админ панель" {
		t.Errorf("super admin reply = %q", f.msgr.last().text)
	}
}

func TestPendingReviewFlagsSpammyNote(t *testing.T) {
	spam := "!!!КУПИ КУРС!!! СКИДКА 90%!!!"
	calm := "Люблю настолки и горные походы"
	f := newFixture(
		&db.Profile{ID: 2, Username: "dave", Status: db.StatusPending, Note: &spam},
		&db.Profile{ID: 3, Username: "erin", Status: db.StatusPending, Note: &calm},
	)

	f.callback(superAdminID, "boss", "admin:new_profiles")

	if len(f.msgr.sent) != 2 {
		t.Fatalf("sent = %d messages, want 2", len(f.msgr.sent))
	}
	if !strings.Contains(f.msgr.sent[0].text, msgSpamWarning) {
		t.Errorf("spammy card = %q, want warning", f.msgr.sent[0].text)
	}
	if strings.Contains(f.msgr.sent[1].text, msgSpamWarning) {
		t.Errorf("calm card flagged: %q", f.msgr.sent[1].text)
	}
}

func TestAdminPanelSections(t *testing.T) {
	pending := &db.Profile{ID: 2, Username: "dave", Status: db.StatusPending}
	f := newFixture(approvedProfile(1, "alice", 77), pending)

	f.text(regularID, "alice", "репорт бот: завис")
	f.callback(superAdminID, "boss", "admin:reports")
	if !strings.Contains(f.msgr.last().text, "завис") {
		t.Errorf("reports view = %q", f.msgr.last().text)
	}

	f.callback(superAdminID, "boss", "admin:new_profiles")
	if !strings.Contains(f.msgr.last().text, "@dave") {
		t.Errorf("pending view = %q", f.msgr.last().text)
	}

	f.callback(superAdminID, "boss", "admin:manage_profiles")
	if !strings.Contains(f.msgr.last().text, "Выберите анкету") {
		t.Errorf("manage view = %q", f.msgr.last().text)
	}

	f.callback(superAdminID, "boss", "admin:clear_reports")
	if f.msgr.last().text != msgReportsClear {
		t.Errorf("clear reply = %q", f.msgr.last().text)
	}

	f.callback(superAdminID, "boss", "admin:reports")
	if f.msgr.last().text != msgNoReports {
		t.Errorf("empty reports reply = %q", f.msgr.last().text)
	}
}
