package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extractor extrai o valor de um campo a partir do fragmento de um anúncio.
// Um retorno nil significa que o campo não existe no fragmento.
type Extractor interface {
	Extract(item *goquery.Selection) any
}

type locatorKind int

const (
	locateSelf     locatorKind = iota // o próprio fragmento
	locateTag                         // primeiro descendente com a tag
	locateTagClass                    // primeiro descendente com a tag e a classe
)

type sourceKind int

const (
	sourceText      sourceKind = iota // texto direto do nó (sem filhos)
	sourceAttribute                   // valor de um atributo
)

type transformKind int

const (
	transformNone     transformKind = iota
	transformDigits                 // somente dígitos, convertido para int
	transformContains               // true se o marcador aparece no valor
)

// Rule é a descrição declarativa de um extrator: onde procurar, o que ler e
// como transformar o valor lido.
type Rule struct {
	locator   locatorKind
	tag       string
	class     string
	source    sourceKind
	attribute string
	transform transformKind
	marker    string
}

// Attribute lê um atributo do próprio fragmento
func Attribute(attribute string) Rule {
	return Rule{locator: locateSelf, source: sourceAttribute, attribute: attribute}
}

// AttributeByTag lê um atributo do primeiro descendente com a tag informada
func AttributeByTag(tag, attribute string) Rule {
	return Rule{locator: locateTag, tag: tag, source: sourceAttribute, attribute: attribute}
}

// Text lê o texto direto do próprio fragmento
func Text() Rule {
	return Rule{locator: locateSelf, source: sourceText}
}

// TextByClass lê o texto direto do primeiro descendente com a tag e a classe
func TextByClass(tag, class string) Rule {
	return Rule{locator: locateTagClass, tag: tag, class: class, source: sourceText}
}

// NumericTextByClass é como TextByClass, mas mantém apenas os dígitos.
// "123,45 €" resulta em 12345.
func NumericTextByClass(tag, class string) Rule {
	r := TextByClass(tag, class)
	r.transform = transformDigits
	return r
}

// SubstringPresentByClass indica se o marcador aparece no texto localizado
func SubstringPresentByClass(tag, class, marker string) Rule {
	r := TextByClass(tag, class)
	r.transform = transformContains
	r.marker = marker
	return r
}

// SubstringPresentInAttribute indica se o marcador aparece no atributo do fragmento
func SubstringPresentInAttribute(attribute, marker string) Rule {
	r := Attribute(attribute)
	r.transform = transformContains
	r.marker = marker
	return r
}

// Extract aplica a regra ao fragmento
func (r Rule) Extract(item *goquery.Selection) any {
	node := r.locate(item)
	if node == nil {
		return nil
	}

	var raw string
	switch r.source {
	case sourceAttribute:
		val, ok := node.Attr(r.attribute)
		if !ok {
			return nil
		}
		raw = val
	default:
		raw = ownText(node)
	}

	switch r.transform {
	case transformDigits:
		return digits(raw)
	case transformContains:
		return strings.Contains(raw, r.marker)
	default:
		return raw
	}
}

func (r Rule) locate(item *goquery.Selection) *goquery.Selection {
	if item == nil || item.Length() == 0 {
		return nil
	}

	var found *goquery.Selection
	switch r.locator {
	case locateTag:
		found = item.Find(r.tag).First()
	case locateTagClass:
		found = item.Find(r.tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.HasClass(r.class)
		}).First()
	default:
		found = item.First()
	}

	if found.Length() == 0 {
		return nil
	}
	return found
}

// ownText concatena apenas os nós de texto filhos diretos do elemento
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// digits descarta tudo que não for dígito; sem dígitos o valor é ausente
func digits(raw string) any {
	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		// Mais dígitos do que cabem em um int
		return nil
	}
	return n
}
