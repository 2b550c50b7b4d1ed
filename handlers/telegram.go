// Package handlers routes Telegram updates to the link-inspection and
// download flows. Handlers keep all state in locals; two concurrent clicks
// never share anything but the download directory, where file names keyed by
// content id and height keep them apart.
package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"mediaBot/services"
	"mediaBot/utils"
)

// Sender is the slice of the Telegram API the handlers use; *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Extractor resolves metadata for a link and downloads a selected format.
type Extractor interface {
	Probe(ctx context.Context, url string) (*services.MediaInfo, error)
	Download(ctx context.Context, req services.DownloadRequest) (*services.DownloadResult, error)
}

const welcomeText = "👋 Hi! Send me a YouTube (or other supported) link, and I'll let you choose the quality."

// Bot dispatches incoming chat events.
type Bot struct {
	api       Sender
	extractor Extractor
	log       zerolog.Logger
}

func NewBot(api Sender, extractor Extractor, log zerolog.Logger) *Bot {
	return &Bot{
		api:       api,
		extractor: extractor,
		log:       log.With().Str("component", "handlers").Logger(),
	}
}

// HandleUpdate routes one update: button presses start a download, /start
// and /help answer with the welcome text, any other text message is treated
// as a link. Everything else is ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleSelection(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleLink(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.send(tgbotapi.NewMessage(msg.Chat.ID, welcomeText))
	}
}

// handleLink probes the URL and answers with the quality menu. The
// "checking" acknowledgment bridges the metadata round-trip, which can take
// seconds; on failure it is edited in place and no menu is ever sent.
func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	url := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID
	log := b.log.With().Int64("chat", chatID).Str("url", url).Logger()

	status, err := b.api.Send(tgbotapi.NewMessage(chatID, "🔍 Checking link..."))
	if err != nil {
		log.Error().Err(err).Msg("send checking message")
		return
	}

	info, err := b.extractor.Probe(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("probe failed")
		b.editStatus(chatID, status.MessageID,
			fmt.Sprintf("❌ Error: %v\nLink might not be supported.", err))
		return
	}

	keyboard := b.menuKeyboard(info)
	caption := fmt.Sprintf("📹 %s\n\nSelect a format:", info.Title)

	if info.Thumbnail != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(info.Thumbnail))
		photo.Caption = caption
		photo.ReplyMarkup = keyboard
		_, err = b.api.Send(photo)
	} else {
		text := tgbotapi.NewMessage(chatID, caption)
		text.ReplyMarkup = keyboard
		_, err = b.api.Send(text)
	}
	if err != nil {
		log.Error().Err(err).Msg("send menu")
		b.editStatus(chatID, status.MessageID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	b.request(tgbotapi.NewDeleteMessage(chatID, status.MessageID))
	log.Info().Str("id", info.ID).Msg("menu sent")
}

func (b *Bot) menuKeyboard(info *services.MediaInfo) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range services.MenuOptions(info) {
		sel := Selection{Kind: opt.Kind, VideoID: info.ID, Height: opt.Height}

		label := "🎵 MP3 / Audio"
		if opt.Kind == services.KindVideo {
			label = fmt.Sprintf("🎬 %dp", opt.Height)
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, sel.Encode()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleSelection downloads the chosen format, uploads it, and cleans up.
// The local file never outlives the click, whether or not the upload worked.
func (b *Bot) handleSelection(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.request(tgbotapi.NewCallback(query.ID, ""))

	sel, err := ParseSelection(query.Data)
	if err != nil {
		b.log.Warn().Err(err).Str("data", query.Data).Msg("ignoring callback")
		return
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	log := b.log.With().Int64("chat", chatID).
		Str("id", sel.VideoID).Str("kind", string(sel.Kind)).Logger()

	// Strip the keyboard so the same menu cannot be clicked twice.
	b.request(tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}))

	status, err := b.api.Send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("⬇️ Downloading %s... This might take a moment.", sel.Kind)))
	if err != nil {
		log.Error().Err(err).Msg("send downloading message")
		return
	}

	result, err := b.extractor.Download(ctx, sel.Request())
	if err != nil {
		log.Error().Err(err).Msg("download failed")
		b.editStatus(chatID, status.MessageID, fmt.Sprintf("❌ Download failed: %v", err))
		return
	}
	defer b.removeFile(result.Path)

	b.editStatus(chatID, status.MessageID, "⬆️ Uploading to Telegram...")

	if err := b.upload(chatID, sel.Kind, result); err != nil {
		log.Error().Err(err).Msg("upload failed")
		b.editStatus(chatID, status.MessageID, fmt.Sprintf("❌ Download failed: %v", err))
		return
	}

	b.request(tgbotapi.NewDeleteMessage(chatID, status.MessageID))
	log.Info().Msg("delivered")
}

func (b *Bot) upload(chatID int64, kind services.Kind, result *services.DownloadResult) error {
	if fi, err := os.Stat(result.Path); err == nil {
		b.log.Info().Str("path", result.Path).
			Str("size", utils.HumanSize(float64(fi.Size()), 2)).Msg("uploading file")
	}

	var err error
	if kind == services.KindAudio {
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(result.Path))
		// Clients name the saved file after the track title.
		audio.Title = utils.SanitizeFilename(result.Title)
		_, err = b.api.Send(audio)
	} else {
		video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(result.Path))
		video.Caption = result.Title
		_, err = b.api.Send(video)
	}
	return err
}

func (b *Bot) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			b.log.Warn().Err(err).Str("path", path).Msg("remove downloaded file")
		}
		return
	}
	b.log.Debug().Str("path", path).Msg("deleted downloaded file")
}

func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Warn().Err(err).Msg("edit status message")
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn().Err(err).Msg("send message")
	}
}

func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		b.log.Warn().Err(err).Msg("telegram request")
	}
}
