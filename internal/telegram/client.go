package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// api is the slice of tgbotapi.BotAPI the client actually uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TextUpdate is a plain text message from a user.
type TextUpdate struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	Text      string
}

// CommandUpdate is a /command message, with the command name stripped of the
// leading slash.
type CommandUpdate struct {
	UserID   int64
	ChatID   int64
	Username string
	Command  string
	Args     string
}

// CallbackUpdate is a button press on an inline keyboard.
type CallbackUpdate struct {
	UserID     int64
	ChatID     int64
	Username   string
	CallbackID string
	Data       string
	MessageID  int
}

// Handlers routes decoded updates to the bot. Nil handlers drop the update.
type Handlers struct {
	OnText     func(ctx context.Context, upd TextUpdate)
	OnCommand  func(ctx context.Context, upd CommandUpdate)
	OnCallback func(ctx context.Context, upd CallbackUpdate)
}

type Client struct {
	api        api
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration

	// sleep is swapped in tests to skip real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(token string, maxRetries int, backoff time.Duration, logger *zap.Logger) (*Client, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram.New: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("username", botAPI.Self.UserName))
	return newClient(botAPI, maxRetries, backoff, logger), nil
}

func newClient(a api, maxRetries int, backoff time.Duration, logger *zap.Logger) *Client {
	return &Client{
		api:        a,
		logger:     logger,
		maxRetries: maxRetries,
		backoff:    backoff,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// send runs one API call with bounded retry. Throttled responses honor the
// server-requested pause, transient ones back off exponentially, permanent
// ones fail immediately.
func (c *Client) send(ctx context.Context, op string, msg tgbotapi.Chattable) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			pause := c.backoff * time.Duration(1<<(attempt-1))
			if kind, retryAfter := Classify(lastErr); kind == KindThrottled && retryAfter > 0 {
				pause = time.Duration(retryAfter) * time.Second
			}
			if err := c.sleep(ctx, pause); err != nil {
				return fmt.Errorf("telegram.%s: %w", op, err)
			}
		}

		_, err := c.api.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		kind, _ := Classify(err)
		if kind == KindPermanent {
			return fmt.Errorf("telegram.%s: %w", op, err)
		}
		c.logger.Warn("telegram send failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("telegram.%s: %w", op, lastErr)
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	return c.send(ctx, "SendText", msg)
}

func (c *Client) SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return c.send(ctx, "SendTextWithKeyboard", msg)
}

// SendDocument uploads an in-memory file, used for CSV exports.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	return c.send(ctx, "SendDocument", doc)
}

// AnswerCallback acknowledges a button press so the client stops showing a
// spinner. Failures are logged and dropped: the press itself was handled.
func (c *Client) AnswerCallback(callbackID string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		c.logger.Warn("answer callback failed", zap.Error(err))
	}
}

// Listen pulls long-poll updates and dispatches them until ctx is canceled.
func (c *Client) Listen(ctx context.Context, handlers Handlers) error {
	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 60
	updates := c.api.GetUpdatesChan(updCfg)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.dispatch(ctx, handlers, update)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, handlers Handlers, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if handlers.OnCallback == nil {
			return
		}
		upd := CallbackUpdate{
			UserID:     cb.From.ID,
			Username:   cb.From.UserName,
			CallbackID: cb.ID,
			Data:       cb.Data,
		}
		if cb.Message != nil {
			upd.ChatID = cb.Message.Chat.ID
			upd.MessageID = cb.Message.MessageID
		}
		handlers.OnCallback(ctx, upd)

	case update.Message != nil && update.Message.IsCommand():
		if handlers.OnCommand == nil {
			return
		}
		msg := update.Message
		handlers.OnCommand(ctx, CommandUpdate{
			UserID:   msg.From.ID,
			ChatID:   msg.Chat.ID,
			Username: msg.From.UserName,
			Command:  msg.Command(),
			Args:     strings.TrimSpace(msg.CommandArguments()),
		})

	case update.Message != nil && update.Message.Text != "":
		if handlers.OnText == nil {
			return
		}
		msg := update.Message
		handlers.OnText(ctx, TextUpdate{
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			Text:      msg.Text,
		})
	}
}
