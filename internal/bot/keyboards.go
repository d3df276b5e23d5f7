package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/community_bot/internal/db"
)

func mainMenuKeyboard(showAdminPanel bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuUsersInfo),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuProfile),
			tgbotapi.NewKeyboardButton(MenuReport),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuAFK),
			tgbotapi.NewKeyboardButton(MenuAdminApp),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuChatInfo),
		),
	}

	if showAdminPanel {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuAdminPanel),
		))
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)
}

func profileMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Новая анкета", "profile:new_start"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить анкету", "profile:edit_start"),
		),
	)
}

// usersListKeyboard renders one button per approved profile.
func usersListKeyboard(profiles []db.Profile) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("@"+p.Username, "view:"+p.Username),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func profileCardKeyboard(username string, canEdit, canDelete bool) tgbotapi.InlineKeyboardMarkup {
	var actions []tgbotapi.InlineKeyboardButton
	if canEdit {
		actions = append(actions,
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", "admin:edit:"+username))
	}
	if canDelete {
		actions = append(actions,
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", "delete:"+username))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(actions) > 0 {
		rows = append(rows, actions)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "back:users"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func deleteConfirmKeyboard(username string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да, удалить", "delete_confirm:"+username),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "back:users"),
		),
	)
}

func confirmKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", prefix+":confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", prefix+":cancel"),
		),
	)
}

// reviewKeyboard is attached to the admin fan-out on a new submission.
func reviewKeyboard(profileID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принять",
				fmt.Sprintf("review:%d:accept", profileID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить",
				fmt.Sprintf("review:%d:reject", profileID)),
		),
	)
}

func reportCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Бот", "report:"+db.CategoryBot),
			tgbotapi.NewInlineKeyboardButtonData("Канал", "report:"+db.CategoryChannel),
			tgbotapi.NewInlineKeyboardButtonData("Чат", "report:"+db.CategoryChat),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "report:cancel"),
		),
	)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Репорты", "admin:reports"),
			tgbotapi.NewInlineKeyboardButtonData("Очистить репорты", "admin:clear_reports"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Новые анкеты", "admin:new_profiles"),
			tgbotapi.NewInlineKeyboardButtonData("Управление анкетами", "admin:manage_profiles"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("AFK-запросы", "admin:afk_requests"),
			tgbotapi.NewInlineKeyboardButtonData("Заявки на админа", "admin:admin_applications"),
		),
	)
}

func manageProfilesKeyboard(profiles []db.Profile) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("@"+p.Username, "admin:profile:"+p.Username),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
