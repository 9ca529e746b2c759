package dialogue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/cubeworld/supportbot/internal/embedding"
	"github.com/cubeworld/supportbot/internal/intent"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/moderation"
	"github.com/cubeworld/supportbot/internal/queue"
)

// Keyboard names the reply affordance a platform may render alongside a
// message. Connectors that cannot render keyboards ignore it.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardRemove
	KeyboardOperator      // single "close ticket" button
	KeyboardCloseConfirm  // confirm / cancel pair
	KeyboardOperatorOffer // inline "call an operator" button
)

// SendOptions carries the optional parts of an outbound reply.
type SendOptions struct {
	Links    []intent.Link
	Keyboard Keyboard
}

// Sender delivers a reply to a user on the platform the message came from.
type Sender interface {
	SendMessage(ctx context.Context, userID, text string, opts SendOptions) error
}

// Enqueuer admits a finished turn into the ingestion queue.
type Enqueuer interface {
	Enqueue(item queue.Item) (queue.Item, error)
}

// Message is one inbound platform event, already reduced to the fields the
// pipeline needs. HasPDF is true when the event carries a PDF attachment.
type Message struct {
	Platform string
	UserID   string
	Text     string
	HasPDF   bool
	Raw      json.RawMessage
}

// Commands and button texts recognized verbatim.
const (
	commandStart    = "/start"
	commandOperator = "/operator"

	closeRequestText = "закрыть обращение"
	closeConfirmText = "подтвердить"
	closeCancelText  = "отмена"

	unlinkConfirmPhrase = "я согласен"
)

const (
	greetingReply = "👋 Привет! Я бот умной поддержки CubeWorld.\n" +
		"Напиши свой вопрос — я попробую помочь."

	operatorSummonedReply = "📨 Оператор уведомлён. Опиши проблему как можно подробнее."

	closeConfirmPrompt = "❓ Точно закрываем обращение?\n" +
		"После закрытия продолжить диалог в этом тикете будет нельзя."
	ticketClosedReply = "✅ Обращение закрыто. Если что — напиши ещё раз."
	keepOpenReply     = "👌 Окей, обращение оставляю открытым."

	unlinkAcceptedReply = "✅ Принял согласие на отвязку аккаунта.\n" +
		"Передаю запрос оператору, он продолжит с тобой диалог 👨‍💼"
	paymentAcceptedReply = "✅ Принял данные по оплате. Передаю их оператору.\n" +
		"Он вернётся с ответом, как только проверит информацию 👨‍💼"
	hackedFollowUpReply = "📞 Подключаю оператора, чтобы детально проверить безопасность аккаунта.\n" +
		"Он продолжит с тобой диалог в этом чате."

	deescalationReply = "🔥 Понимаю, эмоции — это сила 😅\n\nДавай спокойно: что случилось?"
	muteNoticeReply   = "⛔ Слишком много сообщений подряд. Давай сделаем небольшую паузу."

	fallbackReply = "🤔 Я не совсем понял запрос.\nХочешь — позову оператора 👇"
)

var floodWarnings = []string{
	"✋ Полегче, бро. Я всё вижу 😄",
	"🤚 Дай чуть подумать...",
	"🧠 Я не успеваю читать, ты слишком быстрый 💨",
}

// Orchestrator sequences one inbound message through moderation, intent
// resolution and the retrieval fallback, owning every context mutation.
type Orchestrator struct {
	contexts *Contexts
	flood    *moderation.FloodGate
	toxicity *moderation.ToxicityFilter
	router   *memory.Router
	queue    Enqueuer
	logger   *slog.Logger
}

func NewOrchestrator(contexts *Contexts, flood *moderation.FloodGate, toxicity *moderation.ToxicityFilter, router *memory.Router, enqueuer Enqueuer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		contexts: contexts,
		flood:    flood,
		toxicity: toxicity,
		router:   router,
		queue:    enqueuer,
		logger:   logger,
	}
}

// HandleMessage runs one full turn. The user's slot lock is held for the whole
// turn, so turns for one user never interleave; replies go through sender, and
// the raw message is forwarded to the queue at the end of every non-muted turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, sender Sender, msg Message) {
	conv, release := o.contexts.Acquire(msg.UserID)
	defer release()

	trimmed := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(trimmed)

	switch lower {
	case commandStart:
		conv.Reset()
		o.send(ctx, sender, msg.UserID, greetingReply, SendOptions{Keyboard: KeyboardRemove})
		o.enqueue(msg, conv, false)
		return
	case commandOperator:
		conv.enterOperator()
		conv.LastIntent = intent.Operator
		o.send(ctx, sender, msg.UserID, operatorSummonedReply, SendOptions{Keyboard: KeyboardOperator})
		o.enqueue(msg, conv, false)
		return
	}

	if conv.State == StateWaitingCloseConfirm {
		switch lower {
		case closeConfirmText:
			conv.Reset()
			o.send(ctx, sender, msg.UserID, ticketClosedReply, SendOptions{Keyboard: KeyboardRemove})
			o.enqueue(msg, conv, true)
			return
		case closeCancelText:
			conv.State = StateOperator
			conv.OperatorMode = true
			o.send(ctx, sender, msg.UserID, keepOpenReply, SendOptions{Keyboard: KeyboardOperator})
			o.enqueue(msg, conv, false)
			return
		}
	}

	if lower == closeRequestText && conv.OperatorMode {
		conv.State = StateWaitingCloseConfirm
		o.send(ctx, sender, msg.UserID, closeConfirmPrompt, SendOptions{Keyboard: KeyboardCloseConfirm})
		o.enqueue(msg, conv, false)
		return
	}

	// A human is engaged: forward without replying.
	if conv.OperatorMode {
		o.enqueue(msg, conv, false)
		return
	}

	if trimmed == "" {
		o.enqueue(msg, conv, false)
		return
	}

	flood := o.flood.Register(msg.UserID)
	switch flood.Verdict {
	case moderation.VerdictMuted:
		return
	case moderation.VerdictMutedNow:
		o.send(ctx, sender, msg.UserID, muteNoticeReply, SendOptions{})
		o.enqueue(msg, conv, false)
		return
	case moderation.VerdictWarn:
		o.send(ctx, sender, msg.UserID, floodWarning(flood.WarnTier), SendOptions{})
	}

	prev := conv.LastUtterance()
	conv.PushHistory(embedding.Normalize(trimmed))

	if o.toxicity.IsToxic(trimmed) {
		o.send(ctx, sender, msg.UserID, deescalationReply, SendOptions{})
		o.enqueue(msg, conv, false)
		return
	}

	prevIntent := conv.LastIntent
	label := intent.Detect(trimmed)
	conv.LastIntent = label

	if prevIntent == intent.Unlink && label == intent.Unknown && strings.Contains(lower, unlinkConfirmPhrase) {
		conv.enterOperator()
		o.send(ctx, sender, msg.UserID, unlinkAcceptedReply, SendOptions{Keyboard: KeyboardOperator})
		o.enqueue(msg, conv, false)
		return
	}
	if prevIntent == intent.PaymentProblem && label == intent.Unknown && looksLikePaymentForm(trimmed, msg.HasPDF) {
		conv.enterOperator()
		o.send(ctx, sender, msg.UserID, paymentAcceptedReply, SendOptions{Keyboard: KeyboardOperator})
		o.enqueue(msg, conv, false)
		return
	}
	if prevIntent == intent.Hacked && label == intent.Unknown {
		conv.enterOperator()
		o.send(ctx, sender, msg.UserID, hackedFollowUpReply, SendOptions{Keyboard: KeyboardOperator})
		o.enqueue(msg, conv, false)
		return
	}

	switch {
	case label == intent.Idiotic:
		o.send(ctx, sender, msg.UserID, deescalationReply, SendOptions{})
	case intent.EntersOperatorMode(label):
		conv.enterOperator()
		if reply, ok := intent.CannedReply(label); ok {
			o.send(ctx, sender, msg.UserID, reply.Text, SendOptions{Links: reply.Links, Keyboard: KeyboardOperator})
		}
	case label != intent.Unknown:
		if reply, ok := intent.CannedReply(label); ok {
			o.send(ctx, sender, msg.UserID, reply.Text, SendOptions{Links: reply.Links})
		}
	default:
		decision := o.router.Route(msg.UserID, trimmed, prev)
		o.logger.Debug("routed", "user_id", msg.UserID, "outcome", decision.Outcome, "confidence", decision.Confidence)
		if decision.Answer != "" {
			o.send(ctx, sender, msg.UserID, decision.Answer, SendOptions{})
		} else {
			o.send(ctx, sender, msg.UserID, fallbackReply, SendOptions{Keyboard: KeyboardOperatorOffer})
		}
	}

	o.enqueue(msg, conv, false)
}

func floodWarning(tier int) string {
	index := tier - 1
	if index < 0 {
		index = 0
	}
	if index >= len(floodWarnings) {
		index = len(floodWarnings) - 1
	}
	return floodWarnings[index]
}

// send dispatches a reply and swallows the error: state already mutated
// stands, a failed delivery never rolls back the turn.
func (o *Orchestrator) send(ctx context.Context, sender Sender, userID, text string, opts SendOptions) {
	if err := sender.SendMessage(ctx, userID, text, opts); err != nil {
		o.logger.Error("send failed", "user_id", userID, "error", err)
	}
}

func (o *Orchestrator) enqueue(msg Message, conv *Context, closeTicket bool) {
	item := queue.Item{
		Platform:    msg.Platform,
		UserID:      msg.UserID,
		Text:        msg.Text,
		Raw:         msg.Raw,
		CloseTicket: closeTicket,
	}
	if conv.NeedSpecialist {
		item.CallSpecialist = true
		conv.NeedSpecialist = false
	}
	if _, err := o.queue.Enqueue(item); err != nil {
		o.logger.Warn("enqueue failed", "platform", msg.Platform, "user_id", msg.UserID, "error", err)
	}
}
