package scraper

import (
	"fmt"
	"strings"

	"anzeigen-bot/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCardSelector seleciona os cartões de anúncio na página de resultados
const DefaultCardSelector = "li.ad-listitem"

// Record contém um valor para cada campo do registro; nil indica campo ausente
type Record map[string]any

// String retorna o campo como texto, ou "" se ausente
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Int retorna o campo numérico, ou nil se ausente
func (r Record) Int(name string) *int {
	n, ok := r[name].(int)
	if !ok {
		return nil
	}
	return &n
}

// Bool retorna o campo booleano; ausente é tratado como false
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// Listing converte o registro em um models.Listing
func (r Record) Listing() models.Listing {
	return models.Listing{
		ID:                r.String(FieldID),
		Title:             r.String(FieldTitle),
		URL:               r.String(FieldURL),
		Image:             r.String(FieldImage),
		PostedAt:          r.String(FieldPostedAt),
		Location:          r.String(FieldLocation),
		Description:       r.String(FieldDescription),
		Price:             r.Int(FieldPrice),
		DiscountPrice:     r.Int(FieldDiscountPrice),
		Negotiable:        r.Bool(FieldNegotiable),
		DeliveryAvailable: r.Bool(FieldDelivery),
		IsTopAd:           r.Bool(FieldTopAd),
		IsProSeller:       r.Bool(FieldProSeller),
	}
}

// Engine transforma o HTML de uma página de resultados em anúncios
type Engine struct {
	registry     *Registry
	cardSelector string
}

// NewEngine cria um engine com o registro informado
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry, cardSelector: DefaultCardSelector}
}

// ExtractRecords retorna um registro por cartão de anúncio, na ordem da página
func (e *Engine) ExtractRecords(markup string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("erro ao parsear HTML: %w", err)
	}

	fields := e.registry.Fields()
	records := []Record{}
	doc.Find(e.cardSelector).Each(func(_ int, card *goquery.Selection) {
		rec := make(Record, len(fields))
		for _, f := range fields {
			rec[f.Name] = f.Extractor.Extract(card)
		}
		records = append(records, rec)
	})

	normalize(records)
	return records, nil
}

// Extract retorna os anúncios da página, na ordem em que aparecem
func (e *Engine) Extract(markup string) ([]models.Listing, error) {
	records, err := e.ExtractRecords(markup)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, len(records))
	for i, rec := range records {
		listings[i] = rec.Listing()
	}
	return listings, nil
}

var disallowed = strings.NewReplacer("\n", "", "\t", "")

// Clean remove quebras de linha e tabs e apara os espaços das pontas
func Clean(s string) string {
	return strings.TrimSpace(disallowed.Replace(s))
}

// normalize limpa todos os campos de texto de todos os registros
func normalize(records []Record) {
	for _, rec := range records {
		for k, v := range rec {
			if s, ok := v.(string); ok {
				rec[k] = Clean(s)
			}
		}
	}
}
