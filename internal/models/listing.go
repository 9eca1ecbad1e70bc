package models

// Listing representa um anúncio extraído da página de resultados
type Listing struct {
	ID                string
	Title             string
	URL               string // Caminho relativo à URL base do marketplace
	Image             string // Vazio quando o anúncio não tem foto
	PostedAt          string
	Location          string
	Description       string
	Price             *int
	DiscountPrice     *int // Preço anterior (riscado)
	Negotiable        bool
	DeliveryAvailable bool
	IsTopAd           bool
	IsProSeller       bool
}

// HasID indica se o anúncio possui um identificador utilizável para deduplicação
func (l Listing) HasID() bool {
	return l.ID != ""
}

// IsPromoted indica se o anúncio é pago (top) ou de vendedor profissional
func (l Listing) IsPromoted() bool {
	return l.IsTopAd || l.IsProSeller
}

// Notification contém os dados necessários para notificar um novo anúncio
type Notification struct {
	Listing Listing
	URL     string // URL absoluta do anúncio
	Search  string // Descrição da busca que encontrou o anúncio
}
