package bot

import (
	"fmt"
	"log"
	"strings"

	"anzeigen-bot/internal/database"
	"anzeigen-bot/internal/models"
	"anzeigen-bot/internal/monitor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyLimit = 10

// StatusSource fornece o estado atual do monitoramento
type StatusSource interface {
	Stats() monitor.Stats
	Searches() []models.SearchCriteria
}

// HistorySource fornece as notificações já entregues
type HistorySource interface {
	RecentNotifications(limit int) ([]database.Notification, error)
	CountNotifications() (int, error)
}

// Commands responde aos comandos enviados ao bot
type Commands struct {
	sender  Sender
	chatID  int64
	status  StatusSource
	history HistorySource
}

// NewCommands cria os handlers de comandos. Apenas o chat informado pode usar
// comandos além de /start e /help.
func NewCommands(sender Sender, chatID int64, status StatusSource, history HistorySource) *Commands {
	return &Commands{sender: sender, chatID: chatID, status: status, history: history}
}

// SetupCommands processa as mensagens recebidas até o canal de updates ser fechado
func SetupCommands(bot *tgbotapi.BotAPI, commands *Commands) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		commands.Handle(update.Message)
	}
}

// Handle responde a uma mensagem
func (c *Commands) Handle(message *tgbotapi.Message) {
	text := message.Text
	if text == "" {
		return
	}

	// Extrair comando (remover @botname se presente e pegar apenas o comando)
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	chatID := message.Chat.ID
	isPublicCommand := command == "/start" || command == "/help"
	if !isPublicCommand && chatID != c.chatID {
		c.reply(chatID, "Sie sind nicht berechtigt, diesen Bot zu verwenden.")
		return
	}

	switch command {
	case "/start", "/help":
		c.reply(chatID, helpText)
	case "/searches":
		c.reply(chatID, c.searchesText())
	case "/status":
		c.reply(chatID, c.statusText())
	case "/history":
		c.reply(chatID, c.historyText())
	default:
		c.reply(chatID, "Unbekannter Befehl. Mit /help werden alle Befehle angezeigt.")
	}
}

const helpText = `🤖 <b>Kleinanzeigen Monitor</b>

<b>Befehle:</b>

<b>/searches</b> - Überwachte Suchen anzeigen
<b>/status</b> - Status des Monitors
<b>/history</b> - Zuletzt gemeldete Anzeigen
<b>/help</b> - Diese Hilfe anzeigen
`

func (c *Commands) searchesText() string {
	searches := c.status.Searches()
	if len(searches) == 0 {
		return "📋 Keine Suchen konfiguriert."
	}

	var b strings.Builder
	b.WriteString("📋 <b>Überwachte Suchen:</b>\n\n")
	for i, s := range searches {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeHTML(s.String()))
	}
	return b.String()
}

func (c *Commands) statusText() string {
	s := c.status.Stats()

	var b strings.Builder
	b.WriteString("📊 <b>Status</b>\n\n")
	fmt.Fprintf(&b, "Suchen: %d\n", s.Searches)
	fmt.Fprintf(&b, "Durchläufe: %d\n", s.Passes)
	fmt.Fprintf(&b, "Benachrichtigungen: %d\n", s.Notifications)
	fmt.Fprintf(&b, "Fehler beim Abrufen: %d\n", s.FetchFailures)
	fmt.Fprintf(&b, "Fehler beim Auslesen: %d\n", s.ParseFailures)
	fmt.Fprintf(&b, "Fehler beim Senden: %d\n", s.NotifyFailures)
	fmt.Fprintf(&b, "Bekannte Anzeigen: %d\n", s.Seen)
	if s.LastPass.IsZero() {
		b.WriteString("Letzter Durchlauf: noch keiner\n")
	} else {
		fmt.Fprintf(&b, "Letzter Durchlauf: %s\n", s.LastPass.Format("02.01.2006 15:04:05"))
	}
	return b.String()
}

func (c *Commands) historyText() string {
	if c.history == nil {
		return "❌ Kein Verlauf verfügbar."
	}

	entries, err := c.history.RecentNotifications(historyLimit)
	if err != nil {
		log.Printf("Erro ao buscar histórico: %v", err)
		return fmt.Sprintf("❌ Fehler beim Laden des Verlaufs: %v", escapeHTML(err.Error()))
	}
	if len(entries) == 0 {
		return "📋 Noch keine Anzeigen gemeldet."
	}

	total, err := c.history.CountNotifications()
	if err != nil {
		log.Printf("Erro ao contar notificações: %v", err)
		total = len(entries)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Letzte Anzeigen</b> (%d von %d)\n\n", len(entries), total)
	for _, e := range entries {
		fmt.Fprintf(&b, "🕐 %s\n", e.SentAt.Local().Format("02.01.2006 15:04"))
		fmt.Fprintf(&b, "📦 <a href=\"%s\">%s</a>\n", escapeHTML(e.URL), escapeHTML(e.Title))
		fmt.Fprintf(&b, "💰 %s\n\n", formatPrice(e.Price))
	}
	return b.String()
}

func (c *Commands) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	if _, err := c.sender.Send(msg); err != nil {
		log.Printf("Erro ao enviar mensagem com HTML: %v", err)
		// Tentar enviar sem formatação se houver erro
		msg.ParseMode = ""
		if _, err2 := c.sender.Send(msg); err2 != nil {
			log.Printf("Erro ao enviar mensagem sem formatação: %v", err2)
		}
	}
}
