// Package intent resolves normalized message text to a closed set of intent
// labels via an ordered rule table. No model, no scoring: the first matching
// rule wins, specific intents sit above generic ones, and no match means
// Unknown.
package intent

import "strings"

// Label is one of the closed intent enumeration values.
type Label string

const (
	Rules             Label = "rules"
	Media             Label = "media"
	Team              Label = "team"
	Unlink            Label = "unlink"
	TransferPrivilege Label = "transfer_privilege"
	TransferBinding   Label = "transfer_binding"
	PasswordReset     Label = "password_reset"
	TOTP              Label = "totp"
	Refund            Label = "refund"
	ItemTransfer      Label = "item_transfer"
	PaymentProblem    Label = "payment_problem"
	ForceBind         Label = "force_bind"
	AgentInfo         Label = "agent_info"
	Appeal            Label = "appeal"
	Wipe              Label = "wipe"
	News              Label = "news"
	Idiotic           Label = "idiotic"
	Operator          Label = "operator"
	Hacked            Label = "hacked"
	Unknown           Label = "unknown"
)

type rule struct {
	label    Label
	keywords []string
}

// Rule order encodes priority: multi-word, high-value intents first so that
// e.g. "перенос привязки" never falls through to the unlink rule and a hacked
// account beats a generic operator request.
var rules = []rule{
	{Hacked, []string{"взлома", "взлом акк", "угнали акк", "украли акк", "меня взломали"}},
	{TransferBinding, []string{"перенос привязки", "перенести привязку"}},
	{TransferPrivilege, []string{"перенос привилегии", "перенести привилегию", "перенос доната на"}},
	{ItemTransfer, []string{"перенос товара", "перенести товар", "оплатил не на тот"}},
	{PaymentProblem, []string{"не пришел донат", "не пришёл донат", "не пришел товар", "не пришёл товар", "донат не пришел", "донат не пришёл", "не зачислил"}},
	{ForceBind, []string{"принудительная привязка", "принудительную привязку"}},
	{PasswordReset, []string{"сброс пароля", "сбросить пароль", "смена пароля", "сменить пароль", "забыл пароль"}},
	{TOTP, []string{"totp", "2fa", "двухфактор", "гугл аутентификатор"}},
	{Unlink, []string{"отвязать акк", "отвязка акк", "отменить привязку", "отмена привязки"}},
	{Refund, []string{"возврат средств", "вернуть деньги", "вернуть средства", "возврат денег"}},
	{Appeal, []string{"обжаловать", "апелляц", "жалоба на", "разбан", "сняли бан несправедливо"}},
	{Wipe, []string{"вайп", "когда вайп"}},
	{News, []string{"новости", "что нового", "анонс"}},
	{Media, []string{"набор в медиа", "в медиа", "ютубер", "стример"}},
	{Team, []string{"набор в команду", "в команду проекта", "стать модератором", "стать хелпером"}},
	{Rules, []string{"правила"}},
	{AgentInfo, []string{"кто такие агенты", "агент поддержки", "агенты поддержки"}},
	{Operator, []string{"оператор", "живой человек", "позовите человека", "соедините с поддержкой"}},
	{Idiotic, []string{"ахах", "кек", "лол", "азаза", "трололо"}},
}

// Detect maps text to an intent label. Matching runs on lowercased,
// whitespace-trimmed text; rule priority is the table order.
func Detect(text string) Label {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Unknown
	}
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(t, keyword) {
				return r.label
			}
		}
	}
	return Unknown
}

// EntersOperatorMode reports whether the intent flips the conversation into
// operator mode with a specialist request.
func EntersOperatorMode(label Label) bool {
	return label == Operator || label == Hacked
}
