package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"anzeigen-bot/internal/dedupe"
	"anzeigen-bot/internal/models"
	"anzeigen-bot/internal/scraper"
)

// Fetcher busca o HTML da primeira página de resultados de uma busca
type Fetcher interface {
	FetchAdsPage(ctx context.Context, criteria models.SearchCriteria) (string, error)
}

// Parser transforma o HTML da página em anúncios
type Parser interface {
	Extract(markup string) ([]models.Listing, error)
}

// Notifier entrega a notificação de um novo anúncio
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

// History registra as notificações entregues
type History interface {
	RecordNotification(recipient string, n models.Notification) error
}

// Options configura o monitor
type Options struct {
	Recipient   string
	BaseURL     string
	Searches    []models.SearchCriteria
	SearchDelay time.Duration // pausa entre uma busca e outra
	IdleDelay   time.Duration // pausa depois de percorrer todas as buscas
	History     History       // opcional
}

// Stats resume a atividade do monitor
type Stats struct {
	Passes         int64     `json:"passes"`
	Notifications  int64     `json:"notifications"`
	FetchFailures  int64     `json:"fetch_failures"`
	ParseFailures  int64     `json:"parse_failures"`
	NotifyFailures int64     `json:"notify_failures"`
	LastPass       time.Time `json:"last_pass"`
	Seen           int       `json:"seen"`
	Searches       int       `json:"searches"`
}

// Monitor gerencia a busca periódica de novos anúncios
type Monitor struct {
	fetcher  Fetcher
	parser   Parser
	notifier Notifier
	seen     *dedupe.Cache
	opts     Options

	mu    sync.Mutex
	stats Stats
}

// New cria uma nova instância do monitor
func New(fetcher Fetcher, parser Parser, notifier Notifier, seen *dedupe.Cache, opts Options) *Monitor {
	searches := make([]models.SearchCriteria, len(opts.Searches))
	copy(searches, opts.Searches)
	opts.Searches = searches

	return &Monitor{
		fetcher:  fetcher,
		parser:   parser,
		notifier: notifier,
		seen:     seen,
		opts:     opts,
	}
}

// Run executa o monitoramento até o contexto ser cancelado
func (m *Monitor) Run(ctx context.Context) error {
	log.Printf("Monitor iniciado com %d buscas. Pausa entre buscas %v, entre ciclos %v",
		len(m.opts.Searches), m.opts.SearchDelay, m.opts.IdleDelay)

	for {
		if err := m.RunOnce(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, m.opts.IdleDelay); err != nil {
			return err
		}
	}
}

// RunOnce percorre todas as buscas uma vez. Só retorna erro se o contexto
// for cancelado; falhas de uma busca não interrompem as demais.
func (m *Monitor) RunOnce(ctx context.Context) error {
	for _, search := range m.opts.Searches {
		if _, err := m.CheckSearch(ctx, search); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Erro na busca %s: %v", search, err)
		}

		// Pequeno delay entre requisições para não sobrecarregar
		if err := sleep(ctx, m.opts.SearchDelay); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.stats.Passes++
	m.stats.LastPass = time.Now()
	m.mu.Unlock()
	return nil
}

// CheckSearch busca a página de resultados e notifica no máximo um anúncio novo.
// Retorna true se uma notificação foi entregue.
func (m *Monitor) CheckSearch(ctx context.Context, search models.SearchCriteria) (bool, error) {
	markup, err := m.fetcher.FetchAdsPage(ctx, search)
	if err != nil {
		m.count(func(s *Stats) { s.FetchFailures++ })
		return false, err
	}

	listings, err := m.parser.Extract(markup)
	if err != nil {
		m.count(func(s *Stats) { s.ParseFailures++ })
		return false, fmt.Errorf("erro ao ler página da busca: %w", err)
	}

	listing, ok := m.nextEligible(listings)
	if !ok {
		return false, nil
	}

	if err := m.notify(ctx, search, listing); err != nil {
		m.count(func(s *Stats) { s.NotifyFailures++ })
		return false, fmt.Errorf("erro ao notificar anúncio %s: %w", listing.ID, err)
	}
	return true, nil
}

// nextEligible retorna o primeiro anúncio, na ordem da página, que ainda não
// foi notificado e não é promovido
func (m *Monitor) nextEligible(listings []models.Listing) (models.Listing, bool) {
	for _, listing := range listings {
		// Sem id não há como deduplicar
		if !listing.HasID() {
			continue
		}
		if m.seen.Seen(m.key(listing)) {
			continue
		}
		if listing.IsPromoted() {
			continue
		}
		return listing, true
	}
	return models.Listing{}, false
}

func (m *Monitor) notify(ctx context.Context, search models.SearchCriteria, listing models.Listing) error {
	link, err := scraper.JoinURL(m.opts.BaseURL, listing.URL)
	if err != nil {
		log.Printf("Erro ao montar URL do anúncio %s: %v", listing.ID, err)
		link = listing.URL
	}

	n := models.Notification{
		Listing: listing,
		URL:     link,
		Search:  search.String(),
	}

	if err := m.notifier.Send(ctx, n); err != nil {
		// Não marca como visto: o anúncio será tentado de novo no próximo ciclo
		return err
	}

	m.seen.Mark(m.key(listing))
	m.count(func(s *Stats) { s.Notifications++ })
	log.Printf("Notificação enviada para anúncio %s (%s)", listing.ID, listing.Title)

	if m.opts.History != nil {
		if err := m.opts.History.RecordNotification(m.opts.Recipient, n); err != nil {
			log.Printf("Erro ao registrar notificação no histórico: %v", err)
		}
	}
	return nil
}

func (m *Monitor) key(listing models.Listing) dedupe.Key {
	return dedupe.Key{Recipient: m.opts.Recipient, ListingID: listing.ID}
}

func (m *Monitor) count(update func(*Stats)) {
	m.mu.Lock()
	update(&m.stats)
	m.mu.Unlock()
}

// Stats retorna um resumo da atividade do monitor
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.Seen = m.seen.Len()
	s.Searches = len(m.opts.Searches)
	return s
}

// Searches retorna as buscas monitoradas
func (m *Monitor) Searches() []models.SearchCriteria {
	searches := make([]models.SearchCriteria, len(m.opts.Searches))
	copy(searches, m.opts.Searches)
	return searches
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
