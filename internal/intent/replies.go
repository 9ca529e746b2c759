package intent

// Link is an optional URL button attached to a canned reply.
type Link struct {
	Title string
	URL   string
}

// Reply is the static multi-part answer mapped to a non-Unknown intent.
type Reply struct {
	Text  string
	Links []Link
}

var cannedReplies = map[Label]Reply{
	Rules: {
		Text:  "📘 Правила проекта:\nhttps://vk.com/topic-213058175_49087108",
		Links: []Link{{Title: "Открыть правила", URL: "https://vk.com/topic-213058175_49087108"}},
	},
	Media: {
		Text:  "🎥 Набор в Media:\nhttps://vk.com/topic-213058175_48919352",
		Links: []Link{{Title: "Открыть набор", URL: "https://vk.com/topic-213058175_48919352"}},
	},
	Team: {
		Text:  "👥 Набор в Команду:\nhttps://vk.com/topic-213058175_48975272",
		Links: []Link{{Title: "Условия", URL: "https://vk.com/topic-213058175_48975272"}},
	},
	Unlink: {
		Text: "🔓 Отвязка аккаунта:\n" +
			"Отмена привязки сопровождается перманентной блокировкой аккаунта.\n\n" +
			"Если вы согласны на такой исход, напишите сюда:\n" +
			"«я согласен на отмену привязки аккаунта ВАШНИК и его перманентную блокировку».",
	},
	TransferPrivilege: {
		Text: "💎 Перенос привилегии\n" +
			"Переносится только привилегия. Условия:\n" +
			"• инициировать перенос может только владелец аккаунта;\n" +
			"• оба аккаунта не должны иметь активных блокировок.\n" +
			"Если всё подходит — сообщите оператору, он продолжит оформление.",
	},
	TransferBinding: {
		Text:  "🔗 Перенос привязки аккаунта\nЗаполните форму: https://vk.cc/czfKhH",
		Links: []Link{{Title: "Открыть форму", URL: "https://vk.cc/czfKhH"}},
	},
	PasswordReset: {
		Text: "🔐 Сброс / смена пароля\n" +
			"Нажмите кнопку «Сброс пароля» в панели бота VK.\n" +
			"Если панели нет — отправьте команду МоиАккаунты и выберите нужный аккаунт.",
	},
	TOTP: {
		Text:  "🔑 Инструкция по TOTP:\nhttps://vk.com/@cubeworldpro-totp",
		Links: []Link{{Title: "Открыть инструкцию", URL: "https://vk.com/@cubeworldpro-totp"}},
	},
	Refund: {
		Text: "💵 Возврат средств\n" +
			"Нам нужны: получатель (ник/клан), товар, дата и время оплаты,\n" +
			"адрес электронной почты и PDF-квитанция. Возврат возможен только,\n" +
			"если товар ещё не был использован и с момента оплаты прошло не более 14 дней.",
	},
	ItemTransfer: {
		Text: "📦 Перенос товара\n" +
			"Если вы оплатили на неправильный аккаунт — напишите:\n" +
			"1) На кого пришёл товар (ник/клан).\n" +
			"2) На кого нужно перенести.\n" +
			"3) Название товара и количество.\n" +
			"4) Дата и время оплаты.\n" +
			"5) Email и PDF-квитанция.\n\n" +
			"Перенос возможен только если первичный получатель не успел им воспользоваться.",
	},
	PaymentProblem: {
		Text: "🧾 Не пришёл донат / товар\n" +
			"Для решения проблемы нам нужно получить от вас информацию:\n\n" +
			"1. Получатель (игровой никнейм или название клана и т.п.), который был указан при оплате.\n" +
			"2. Название товара и количество (если указывалось).\n" +
			"3. Дата и время оплаты.\n" +
			"4. Адрес электронной почты.\n" +
			"5. Квитанция (справка, чек) об оплате в формате PDF.\n\n" +
			"Квитанцию можно скачать из почты, указанной при оплате, либо в приложении/на сайте банка.\n" +
			"Без квитанции проблему рассматривать не будем.\n\n" +
			"Пример оформления:\n" +
			"1. Получатель Agent\n" +
			"2. Название товара и количество: Ellipse\n" +
			"3. Дата и время оплаты: 01.01.2025 10:00 (МСК)\n" +
			"4. Адрес электронной почты: support@cubeworld.pro\n" +
			"5. Квитанция: приложенный PDF-файл.",
	},
	ForceBind: {
		Text: "🔒 Принудительная привязка\n" +
			"После выполнения привязки отправьте команду /refresh боту VK,\n" +
			"чтобы аккаунт появился среди привязанных.",
	},
	AgentInfo: {
		Text: "👨‍💼 Агенты поддержки — не высшая администрация.\n" +
			"Они передают заявки наверх, и ожидание ответа может занимать до 48 часов.",
	},
	Appeal: {
		Text:  "⚖️ Обжалование блокировок / жалобы\nСообщество для апелляций: https://vk.com/cubeworldj",
		Links: []Link{{Title: "Перейти", URL: "https://vk.com/cubeworldj"}},
	},
	Wipe: {
		Text: "🗑 Вайп\n" +
			"Точные дата и время вайпа заранее не сообщаются.\n" +
			"Следите за новостями в основном сообществе и TG-канале проекта.",
	},
	News: {
		Text: "📰 Новости проекта",
		Links: []Link{
			{Title: "VK", URL: "https://vk.com/cubeworldpro"},
			{Title: "Telegram", URL: "https://t.me/cubeworld_pro"},
		},
	},
	Operator: {
		Text: "📞 Зову оператора. Он подключится, как только освободится.\n" +
			"Пока что можешь дополнительно описать проблему.",
	},
	Hacked: {
		Text: "🚨 Похоже, ваш аккаунт могли скомпрометировать.\n" +
			"Срочно смените пароль и включите двухфакторную защиту.\n" +
			"Опишите проблему подробнее, оператор поможет разобраться.",
	},
}

// CannedReply returns the static reply for the label. Idiotic carries no
// canned text here: the orchestrator answers it with the de-escalation reply.
func CannedReply(label Label) (Reply, bool) {
	reply, ok := cannedReplies[label]
	return reply, ok
}
