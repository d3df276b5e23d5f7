package bot

// Меню
const (
	MenuUsersInfo  = "Информация о пользователях"
	MenuProfile    = "Анкета"
	MenuReport     = "Репорт"
	MenuAFK        = "AFK"
	MenuAdminApp   = "Заявка на админа"
	MenuChatInfo   = "Информация о чате"
	MenuAdminPanel = "Админ панель"

	ButtonCancel = "Отмена"
)

const (
	msgWelcome = "Привет! Я бот нашего сообщества.\n\n" +
		"Здесь можно посмотреть анкеты участников, отправить свою анкету, " +
		"пожаловаться на проблему или предупредить, что вас какое-то время не будет.\n\n" +
		"Выберите действие на клавиатуре."

	msgHelp = "Доступные действия:\n" +
		"▪️ " + MenuUsersInfo + " — список анкет участников\n" +
		"▪️ " + MenuProfile + " — отправить или изменить анкету\n" +
		"▪️ " + MenuReport + " — сообщить о проблеме\n" +
		"▪️ " + MenuAFK + " — предупредить об отсутствии\n" +
		"▪️ " + MenuAdminApp + " — подать заявку на админа\n" +
		"▪️ " + MenuChatInfo + " — информация о чате"

	msgInternalError = "Произошла ошибка. Попробуйте позже"
	msgCanceled      = "Действие отменено"
	msgAccessDenied  = "У вас нет прав для этого действия"
	msgUnknownInput  = "Я вас не понял. Выберите действие на клавиатуре или отправьте /help"

	msgUsernameRequired = "Для отправки анкеты нужен username в Telegram. " +
		"Установите его в настройках Telegram и попробуйте снова"
	msgProfilePrompt = "Пришлите текст анкеты одним сообщением.\n\n" +
		"Укажите возраст, @username, имя, страну, город, часовой пояс, языки " +
		"и пару слов о себе"
	msgProfileAgePrompt      = "Не нашёл возраст в анкете. Сколько вам лет?"
	msgProfileUsernamePrompt = "Не нашёл username в анкете. Укажите ваш @username"
	msgProfileConfirm        = "Вот что получилось. Отправить на проверку?"
	msgProfileResend         = "Пришлите исправленный текст анкеты"
	msgProfileSubmitted      = "Анкета отправлена на проверку. После решения администратора вам придёт уведомление"
	msgProfileTaken          = "Анкета с этим username уже есть в каталоге. " +
		"Если это ваша анкета, используйте изменение анкеты"
	msgProfileApproved = "Ваша анкета одобрена и добавлена в каталог"
	msgProfileRejected = "Ваша анкета отклонена. Вы можете отправить новую"
	msgProfileMissing  = "У вас пока нет анкеты. Сначала отправьте анкету"

	msgEditNotePrompt  = "Пришлите новый текст раздела «О себе» одним сообщением"
	msgEditConfirm     = "Заменить текст «О себе» на этот?"
	msgEditDone        = "Анкета обновлена"
	msgAlreadyReviewed = "Эта анкета уже проверена другим администратором"

	msgReportCategoryPrompt = "На что хотите пожаловаться?"
	msgReportReasonPrompt   = "Опишите проблему одним сообщением"
	msgReportAccepted       = "Репорт принят. Номер обращения: %s"

	msgAFKDaysPrompt   = "На сколько дней вы уходите? Укажите число от 1 до 14"
	msgAFKDaysInvalid  = "Нужно число от 1 до 14. Попробуйте ещё раз"
	msgAFKReasonPrompt = "Коротко опишите причину отсутствия"
	msgAFKAccepted     = "Принято! Администраторы предупреждены о вашем отсутствии"

	msgAdminAppPrompt = "Расскажите, почему вы хотите стать администратором, " +
		"одним сообщением"
	msgAdminAppAccepted = "Заявка принята. Администраторы рассмотрят её и свяжутся с вами"

	msgRateLimited = "Слишком много запросов. Попробуйте через %d с"

	msgNoProfiles    = "В каталоге пока нет анкет"
	msgNoReports     = "Репортов нет"
	msgReportsClear  = "Все репорты удалены"
	msgNoPending     = "Новых анкет на проверку нет"
	msgSpamWarning   = "⚠️ Возможный спам"
	msgDeleteConfirm = "Удалить анкету @%s? Это действие необратимо"
	msgDeleteDone    = "Анкета @%s удалена"
)
