package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"anzeigen-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	// erros devolvidos em ordem; nil quando a lista acaba
	errs []error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func intPtr(v int) *int {
	return &v
}

func sampleNotification() models.Notification {
	return models.Notification{
		Listing: models.Listing{
			ID:                "123",
			Title:             "iPhone <12> & Hülle",
			URL:               "/s-anzeige/iphone/123",
			Image:             "https://img.kleinanzeigen.de/api/v1/prod-ads/images/aa/1?rule=$_2.AUTO",
			PostedAt:          "Heute, 14:05",
			Location:          "10115 Mitte",
			Description:       "Display gebrochen",
			Price:             intPtr(90),
			DiscountPrice:     intPtr(120),
			Negotiable:        true,
			DeliveryAvailable: false,
		},
		URL: "https://www.kleinanzeigen.de/s-anzeige/iphone/123?a=1&b=2",
	}
}

func TestRenderCaption(t *testing.T) {
	caption := RenderCaption(sampleNotification())

	require.Contains(t, caption, "<b>Neue Anzeige gefunden!</b> Heute, 14:05")
	require.Contains(t, caption, "<b>Titel</b>: iPhone &lt;12&gt; &amp; Hülle")
	require.Contains(t, caption, "<b>Preis</b>: 90 Euro <s>120 Euro</s>")
	require.Contains(t, caption, "<b>Ort</b>: 10115 Mitte")
	require.Contains(t, caption, "<b>Beschreibung</b>: Display gebrochen")
	require.Contains(t, caption, "<b>Versand möglich</b>: Nein")
	require.Contains(t, caption, "<b>VB</b>: Ja")
	require.Contains(t, caption, `<a href="https://www.kleinanzeigen.de/s-anzeige/iphone/123?a=1&amp;b=2">Link</a>`)
}

func TestRenderCaptionWithoutPrice(t *testing.T) {
	n := sampleNotification()
	n.Listing.Price = nil
	n.Listing.DiscountPrice = nil

	caption := RenderCaption(n)
	require.Contains(t, caption, "<b>Preis</b>: k. A.\n")
	require.NotContains(t, caption, "<s>")
}

func TestRenderCaptionShortensLongDescription(t *testing.T) {
	n := sampleNotification()
	n.Listing.Description = strings.Repeat("ä&", 1000)

	caption := RenderCaption(n)
	require.LessOrEqual(t, utf8.RuneCountInString(caption), maxCaptionLength)
	require.Contains(t, caption, "…")
	require.Contains(t, caption, "Link</a>")
}

func TestRenderCaptionShortensHeavilyEscapedDescription(t *testing.T) {
	n := sampleNotification()
	// Cada par vira "&amp;&lt;", mais que o dobro do texto original
	n.Listing.Description = strings.Repeat("&<", 2000)

	caption := RenderCaption(n)
	require.LessOrEqual(t, utf8.RuneCountInString(caption), maxCaptionLength)
	require.Contains(t, caption, "<b>Beschreibung</b>: &amp;&lt;")
	require.Contains(t, caption, "…\n\n<b>Versand möglich</b>")
	// Sem espaço sobrando para mais um caractere
	require.Greater(t, utf8.RuneCountInString(caption), maxCaptionLength-len("&amp;"))
}

func TestRenderCaptionShortensLongTitle(t *testing.T) {
	n := sampleNotification()
	n.Listing.Title = strings.Repeat("x", 2000)

	caption := RenderCaption(n)
	require.LessOrEqual(t, utf8.RuneCountInString(caption), maxCaptionLength)
	require.Contains(t, caption, "<b>Titel</b>: xxx")
	require.Contains(t, caption, "x…\n")
	require.Contains(t, caption, "Link</a>")
}

func TestRenderCaptionKeepsShortText(t *testing.T) {
	caption := RenderCaption(sampleNotification())
	require.NotContains(t, caption, "…")
}

func TestFullSizeImage(t *testing.T) {
	require.Equal(t,
		"https://img.kleinanzeigen.de/api/v1/prod-ads/images/aa/1?rule=$_59.AUTO",
		FullSizeImage("https://img.kleinanzeigen.de/api/v1/prod-ads/images/aa/1?rule=$_2.AUTO"))
	require.Equal(t, "https://i.ebayimg.com/00/s/x/$_59.JPG", FullSizeImage("https://i.ebayimg.com/00/s/x/$_2.JPG"))
	require.Equal(t, "", FullSizeImage(""))
}

func TestNotifierSendsPhoto(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42)

	require.NoError(t, n.Send(context.Background(), sampleNotification()))
	require.Len(t, sender.sent, 1)

	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), photo.ChatID)
	require.Equal(t, "HTML", photo.ParseMode)
	require.Equal(t, tgbotapi.FileURL("https://img.kleinanzeigen.de/api/v1/prod-ads/images/aa/1?rule=$_59.AUTO"), photo.File)
	require.Contains(t, photo.Caption, "Neue Anzeige gefunden!")
}

func TestNotifierWithoutImageSendsText(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42)
	notification := sampleNotification()
	notification.Listing.Image = ""

	require.NoError(t, n.Send(context.Background(), notification))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, "HTML", msg.ParseMode)
	require.Contains(t, msg.Text, "Neue Anzeige gefunden!")
}

func TestNotifierFallsBackToText(t *testing.T) {
	sender := &fakeSender{errs: []error{errors.New("wrong file identifier")}}
	n := NewNotifier(sender, 42)

	require.NoError(t, n.Send(context.Background(), sampleNotification()))
	require.Len(t, sender.sent, 2)
	_, ok := sender.sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
}

func TestNotifierReportsFailure(t *testing.T) {
	sender := &fakeSender{errs: []error{errors.New("photo"), errors.New("text")}}
	n := NewNotifier(sender, 42)

	require.Error(t, n.Send(context.Background(), sampleNotification()))
}

func TestNotifierCanceledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, n.Send(ctx, sampleNotification()))
	require.Empty(t, sender.sent)
}

func TestNotifierSkipsPhotoWhenCaptionCannotFit(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42)
	notification := sampleNotification()
	notification.Listing.PostedAt = strings.Repeat("h", 1100)

	require.NoError(t, n.Send(context.Background(), notification))
	require.Len(t, sender.sent, 1)
	_, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
}
