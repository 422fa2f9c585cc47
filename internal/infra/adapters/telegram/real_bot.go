package telegram

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-premium-bot/internal/application"
	"telegram-premium-bot/internal/config"
	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/ports/adapter"
	"telegram-premium-bot/internal/infra/metrics"
	red "telegram-premium-bot/internal/infra/redis"
	"telegram-premium-bot/internal/usecase"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter is the gateway: it decodes Telegram updates into
// facade calls and executes the resulting effects. It serves updates from a
// webhook in production and can fall back to long polling.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updates chan tgbotapi.Update
	cancel  context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adapterLog := logger.With().Str("component", "TelegramAdapter").Logger()
	return &RealTelegramBotAdapter{
		bot:         bot,
		cfg:         cfg,
		facade:      facade,
		rateLimiter: rateLimiter,
		log:         &adapterLog,
		updates:     make(chan tgbotapi.Update, 100),
	}, nil
}

// WebhookPath is where the HTTP server mounts the webhook handler. The token
// in the path is what authenticates Telegram's calls.
func (r *RealTelegramBotAdapter) WebhookPath() string {
	return "/telegram/" + r.cfg.Token
}

// WebhookHandler decodes one update per request and queues it for the
// update workers.
func (r *RealTelegramBotAdapter) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		update, err := r.bot.HandleUpdate(req)
		if err != nil {
			r.log.Warn().Err(err).Msg("rejected malformed webhook payload")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		select {
		case r.updates <- *update:
			w.WriteHeader(http.StatusOK)
		case <-req.Context().Done():
		}
	}
}

// Run starts the update workers and, depending on mode, either registers the
// webhook with Telegram or begins long polling. Blocks until ctx is done.
func (r *RealTelegramBotAdapter) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	workers := r.cfg.Workers
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-r.updates:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	if strings.ToLower(r.cfg.Mode) == "polling" {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		polled := r.bot.GetUpdatesChan(u)
		go func() {
			for up := range polled {
				select {
				case r.updates <- up:
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(r.cfg.WebhookURL, "/") + r.WebhookPath())
		if err != nil {
			cancel()
			return err
		}
		if _, err := r.bot.Request(wh); err != nil {
			cancel()
			return err
		}
		r.log.Info().Str("path", r.WebhookPath()).Msg("webhook registered")
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (r *RealTelegramBotAdapter) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		metrics.IncUpdateHandled("callback")
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	msg := update.Message
	from := msg.From

	if msg.IsCommand() {
		metrics.IncUpdateHandled("command")
		return r.handleCommand(ctx, msg)
	}

	metrics.IncUpdateHandled("text")
	if !r.allow(ctx, from.ID, "message") {
		return r.SendMessage(ctx, from.ID, "Rate limit exceeded. Please try again later.")
	}

	effects, err := r.facade.HandleText(ctx, from.ID, from.UserName, from.FirstName, strings.TrimSpace(msg.Text))
	if err != nil {
		return r.reportFailure(ctx, from.ID, err)
	}
	r.dispatch(ctx, effects)
	return nil
}

// Menu taps arrive as callback queries with "menu:<kind>" data.
func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	from := query.From
	if from == nil {
		return nil
	}
	// Acknowledge so the client stops the spinner.
	if _, err := r.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("failed to answer callback query")
	}

	kind := usecase.MenuKind(strings.TrimPrefix(query.Data, "menu:"))
	switch kind {
	case usecase.MenuRedeem, usecase.MenuBuy, usecase.MenuService, usecase.MenuDev:
	default:
		r.log.Debug().Str("data", query.Data).Msg("ignoring unknown callback")
		return nil
	}

	effects, err := r.facade.HandleMenuAction(ctx, from.ID, from.UserName, from.FirstName, kind)
	if err != nil {
		return r.reportFailure(ctx, from.ID, err)
	}
	r.dispatch(ctx, effects)
	return nil
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	if cmd == "start" {
		if !r.allow(ctx, from.ID, "/start") {
			return nil
		}
		text, err := r.facade.HandleStart(ctx, from.ID, from.UserName, from.FirstName)
		if err != nil {
			return r.reportFailure(ctx, from.ID, err)
		}
		return r.SendButtons(ctx, from.ID, text, mainMenuRows())
	}

	// Everything else is admin-only. Unknown senders get no response at all,
	// so the privileged command set is not discoverable.
	if from.ID != r.cfg.AdminID {
		return nil
	}

	switch cmd {
	case "genk":
		days, err := strconv.Atoi(args)
		if err != nil {
			return r.SendMessage(ctx, from.ID, "Usage: /genk <days>")
		}
		text, err := r.facade.HandleGenKey(ctx, days)
		if err != nil {
			return r.reportFailure(ctx, from.ID, err)
		}
		return r.SendMessage(ctx, from.ID, text)

	case "broadcast":
		if args == "" {
			return r.SendMessage(ctx, from.ID, "Usage: /broadcast <message>")
		}
		text, err := r.facade.HandleBroadcast(ctx, args)
		if err != nil {
			return r.reportFailure(ctx, from.ID, err)
		}
		return r.SendMessage(ctx, from.ID, text)

	case "ban", "unban":
		target, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return r.SendMessage(ctx, from.ID, "Usage: /"+cmd+" <user_id>")
		}
		var text string
		if cmd == "ban" {
			text, err = r.facade.HandleBan(ctx, target)
		} else {
			text, err = r.facade.HandleUnban(ctx, target)
		}
		if err != nil {
			return r.reportFailure(ctx, from.ID, err)
		}
		return r.SendMessage(ctx, from.ID, text)
	}
	return nil
}

// dispatch executes effects emitted by the state machine. Delivery is
// fire-and-forget: a failed send is logged and counted, never propagated,
// since the state change behind it already stands.
func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, effects []usecase.Effect) {
	for _, e := range effects {
		var err error
		if e.ShowMenu {
			err = r.SendButtons(ctx, e.TargetID, e.Text, mainMenuRows())
		} else {
			err = r.SendMessage(ctx, e.TargetID, e.Text)
		}
		if err != nil {
			metrics.IncSendFailure()
			r.log.Warn().Err(err).Int64("tg_id", e.TargetID).Msg("effect delivery failed")
		}
	}
}

func (r *RealTelegramBotAdapter) allow(ctx context.Context, tgID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
	if err != nil {
		r.log.Warn().Err(err).Msg("rate limiter error")
		return true
	}
	return allowed
}

// reportFailure surfaces a per-request persistence failure to the user
// without leaking internals. Locked interactions get a softer message.
func (r *RealTelegramBotAdapter) reportFailure(ctx context.Context, tgID int64, err error) error {
	r.log.Error().Err(err).Int64("tg_id", tgID).Msg("interaction failed")
	text := "Something went wrong. Please try again."
	if errors.Is(err, domain.ErrUserLocked) {
		text = "Still working on your previous message, one moment."
	}
	return r.SendMessage(ctx, tgID, text)
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, telegramID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(telegramID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			switch {
			case btn.URL != "":
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			default:
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		kbRows = append(kbRows, btns)
	}

	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

func mainMenuRows() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "Redeem Request", Data: "menu:redeem"}},
		{{Text: "Buy Premium", Data: "menu:buy"}},
		{{Text: "Service", Data: "menu:service"}},
		{{Text: "Dev", Data: "menu:dev"}},
	}
}
