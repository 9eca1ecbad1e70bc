package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"anzeigen-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Limite de caracteres da legenda de uma foto no Telegram
const maxCaptionLength = 1024

// Notifier envia notificações de novos anúncios para um chat fixo
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier cria um notifier para o chat informado
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// Send entrega a notificação. Com imagem, envia uma foto com legenda; se a foto
// falhar ou não existir, envia apenas o texto.
func (n *Notifier) Send(ctx context.Context, notification models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	caption := RenderCaption(notification)

	// Legenda acima do limite seria recusada; nesse caso vai só o texto
	if image := FullSizeImage(notification.Listing.Image); image != "" && fitsCaption(caption) {
		photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FileURL(image))
		photo.Caption = caption
		photo.ParseMode = "HTML"
		_, err := n.sender.Send(photo)
		if err == nil {
			return nil
		}
		log.Printf("Erro ao enviar foto do anúncio %s (tentando sem foto): %v", notification.Listing.ID, err)
	}

	msg := tgbotapi.NewMessage(n.chatID, caption)
	msg.ParseMode = "HTML"
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	return nil
}

// FullSizeImage troca a miniatura pela versão em alta resolução
func FullSizeImage(image string) string {
	return strings.Replace(image, "$_2.", "$_59.", 1)
}

// RenderCaption monta a mensagem em HTML do anúncio. Quando a mensagem passaria
// do limite do Telegram, encurta a descrição e, se ainda não couber, o título.
func RenderCaption(n models.Notification) string {
	title, description := n.Listing.Title, n.Listing.Description
	if fitsCaption(renderCaption(n, title, description)) {
		return renderCaption(n, title, description)
	}

	description = shorten(description, func(d string) bool {
		return fitsCaption(renderCaption(n, title, d))
	})
	if fitsCaption(renderCaption(n, title, description)) {
		return renderCaption(n, title, description)
	}

	title = shorten(title, func(t string) bool {
		return fitsCaption(renderCaption(n, t, description))
	})
	return renderCaption(n, title, description)
}

func fitsCaption(caption string) bool {
	return utf8.RuneCountInString(caption) <= maxCaptionLength
}

// shorten retorna o maior prefixo do texto, terminado em "…", aceito por fits.
// O tamanho é medido depois do escape, então a busca é feita sobre o texto cru.
// Retorna "" se nenhum prefixo couber.
func shorten(text string, fits func(string) bool) string {
	runes := []rune(text)
	prefix := func(cut int) string {
		if cut == 0 {
			return ""
		}
		return string(runes[:cut]) + "…"
	}

	// Primeiro corte que não cabe; o anterior é o maior que cabe
	cut := sort.Search(len(runes), func(i int) bool {
		return !fits(prefix(i + 1))
	})
	return prefix(cut)
}

func renderCaption(n models.Notification, title, description string) string {
	l := n.Listing

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Neue Anzeige gefunden!</b> %s\n\n", escapeHTML(l.PostedAt))
	fmt.Fprintf(&b, "<b>Titel</b>: %s\n", escapeHTML(title))
	fmt.Fprintf(&b, "<b>Preis</b>: %s", formatPrice(l.Price))
	if l.DiscountPrice != nil {
		fmt.Fprintf(&b, " <s>%s</s>", formatPrice(l.DiscountPrice))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "<b>Ort</b>: %s\n", escapeHTML(l.Location))
	fmt.Fprintf(&b, "<b>Beschreibung</b>: %s\n\n", escapeHTML(description))
	fmt.Fprintf(&b, "<b>Versand möglich</b>: %s\n", yesNo(l.DeliveryAvailable))
	fmt.Fprintf(&b, "<b>VB</b>: %s\n\n", yesNo(l.Negotiable))
	fmt.Fprintf(&b, "<b><a href=\"%s\">Link</a></b>", escapeHTML(n.URL))
	return b.String()
}

func formatPrice(price *int) string {
	if price == nil {
		return "k. A."
	}
	return fmt.Sprintf("%d Euro", *price)
}

func yesNo(v bool) string {
	if v {
		return "Ja"
	}
	return "Nein"
}

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, "\"", "&quot;")
	return text
}
