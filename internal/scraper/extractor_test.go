package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func card(t *testing.T, fragment string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	sel := doc.Find("li").First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestAttribute(t *testing.T) {
	item := card(t, `<li class="ad-listitem is-topad" data-x="1"></li>`)

	require.Equal(t, "ad-listitem is-topad", Attribute("class").Extract(item))
	require.Nil(t, Attribute("data-missing").Extract(item))
	require.Nil(t, Attribute("class").Extract(nil))
}

func TestAttributeByTag(t *testing.T) {
	item := card(t, `<li><article data-adid="42"></article><article data-adid="43"></article></li>`)

	require.Equal(t, "42", AttributeByTag("article", "data-adid").Extract(item))
	require.Nil(t, AttributeByTag("article", "data-href").Extract(item))
	require.Nil(t, AttributeByTag("img", "src").Extract(item))
}

func TestTextIsDirectTextOnly(t *testing.T) {
	item := card(t, `<li>eins <span>nested</span> zwei</li>`)

	require.Equal(t, "eins  zwei", Text().Extract(item))
}

func TestTextByClass(t *testing.T) {
	item := card(t, `<li>
		<div class="other">skip</div>
		<div class="aditem-main--top--left extra">Berlin <b>fett</b></div>
		<div class="aditem-main--top--left">second</div>
	</li>`)

	require.Equal(t, "Berlin ", TextByClass("div", "aditem-main--top--left").Extract(item))
	require.Nil(t, TextByClass("p", "aditem-main--top--left").Extract(item))
	require.Nil(t, TextByClass("div", "aditem-main").Extract(item))
}

func TestTextByClassEmptyTextIsNotAbsent(t *testing.T) {
	item := card(t, `<li><div class="date"></div></li>`)

	require.Equal(t, "", TextByClass("div", "date").Extract(item))
}

func TestNumericTextByClass(t *testing.T) {
	tests := []struct {
		name string
		html string
		want any
	}{
		{name: "decimal comma", html: `<li><p class="price">123,45 €</p></li>`, want: 12345},
		{name: "thousands separator", html: `<li><p class="price">1.250 € VB</p></li>`, want: 1250},
		{name: "no digits", html: `<li><p class="price">Zu verschenken</p></li>`, want: nil},
		{name: "empty", html: `<li><p class="price"></p></li>`, want: nil},
		{name: "missing node", html: `<li><p class="other">10 €</p></li>`, want: nil},
		{name: "overflow", html: `<li><p class="price">99999999999999999999999</p></li>`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumericTextByClass("p", "price").Extract(card(t, tt.html))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSubstringPresentByClass(t *testing.T) {
	rule := SubstringPresentByClass("div", "aditem-main--bottom", "Versand möglich")

	require.Equal(t, true, rule.Extract(card(t, `<li><div class="aditem-main--bottom"> Versand möglich </div></li>`)))
	require.Equal(t, false, rule.Extract(card(t, `<li><div class="aditem-main--bottom">Nur Abholung</div></li>`)))
	require.Equal(t, false, rule.Extract(card(t, `<li><div class="aditem-main--bottom"><span>Versand möglich</span></div></li>`)))
	require.Nil(t, rule.Extract(card(t, `<li><div class="aditem-main--top">Versand möglich</div></li>`)))
}

func TestSubstringPresentInAttribute(t *testing.T) {
	rule := SubstringPresentInAttribute("class", "is-topad")

	require.Equal(t, true, rule.Extract(card(t, `<li class="ad-listitem badge-topad is-topad"></li>`)))
	require.Equal(t, false, rule.Extract(card(t, `<li class="ad-listitem"></li>`)))
	require.Nil(t, rule.Extract(card(t, `<li></li>`)))
}

func TestDigits(t *testing.T) {
	require.Equal(t, 12345, digits("123,45 €"))
	require.Equal(t, 7, digits("abc 7 xyz"))
	require.Nil(t, digits("€"))
}
