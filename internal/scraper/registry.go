package scraper

// Nomes dos campos de um anúncio
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldURL           = "url"
	FieldImage         = "image"
	FieldPostedAt      = "posted_at"
	FieldLocation      = "location"
	FieldDescription   = "description"
	FieldPrice         = "price"
	FieldDiscountPrice = "discount_price"
	FieldNegotiable    = "negotiable"
	FieldDelivery      = "delivery_available"
	FieldTopAd         = "is_top_ad"
	FieldProSeller     = "is_pro_seller"
)

// Field associa um nome de campo ao seu extrator
type Field struct {
	Name      string
	Extractor Extractor
}

// Registry mantém, em ordem, os extratores de todos os campos de um anúncio.
// Não é alterado depois de criado e pode ser compartilhado livremente.
type Registry struct {
	fields []Field
}

// NewRegistry cria um registro com os campos informados
func NewRegistry(fields ...Field) *Registry {
	r := &Registry{fields: make([]Field, len(fields))}
	copy(r.fields, fields)
	return r
}

// DefaultRegistry retorna o registro com o layout da página de resultados do Kleinanzeigen
func DefaultRegistry() *Registry {
	return NewRegistry(
		Field{FieldID, AttributeByTag("article", "data-adid")},
		Field{FieldTitle, TextByClass("a", "ellipsis")},
		Field{FieldURL, AttributeByTag("article", "data-href")},
		Field{FieldImage, AttributeByTag("img", "src")},
		Field{FieldPostedAt, TextByClass("div", "aditem-main--top--right")},
		Field{FieldLocation, TextByClass("div", "aditem-main--top--left")},
		Field{FieldDescription, TextByClass("p", "aditem-main--middle--description")},
		Field{FieldPrice, NumericTextByClass("p", "aditem-main--middle--price-shipping--price")},
		Field{FieldDiscountPrice, NumericTextByClass("p", "aditem-main--middle--price-shipping--old-price")},
		Field{FieldNegotiable, SubstringPresentByClass("div", "aditem-main--middle--price-shipping", "VB")},
		Field{FieldDelivery, SubstringPresentByClass("div", "aditem-main--bottom", "Versand möglich")},
		Field{FieldProSeller, SubstringPresentByClass("div", "aditem-main--bottom", "PRO")},
		Field{FieldTopAd, SubstringPresentInAttribute("class", "is-topad")},
	)
}

// Names retorna os nomes dos campos na ordem do registro
func (r *Registry) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Fields retorna uma cópia dos campos registrados
func (r *Registry) Fields() []Field {
	fields := make([]Field, len(r.fields))
	copy(fields, r.fields)
	return fields
}
