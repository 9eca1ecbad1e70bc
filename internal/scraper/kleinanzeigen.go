package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anzeigen-bot/internal/models"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://www.kleinanzeigen.de"
	DefaultSearchPath = "/s-suchanfrage.html"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultRadius     = 1
)

// ErrStatus é retornado quando a busca responde com status diferente de 2xx
var ErrStatus = errors.New("status inesperado na busca")

// ClientOptions configura o cliente de busca
type ClientOptions struct {
	BaseURL            string
	SearchPath         string
	UserAgent          string
	Timeout            time.Duration
	MinRequestInterval time.Duration
}

// Client busca páginas de resultados no Kleinanzeigen
type Client struct {
	collector *colly.Collector
	limiter   *rate.Limiter
	searchURL string
}

// NewClient cria uma nova instância do cliente de busca
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.SearchPath == "" {
		opts.SearchPath = DefaultSearchPath
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	searchURL, err := JoinURL(opts.BaseURL, opts.SearchPath)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		// A mesma URL de busca é consultada a cada ciclo
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.Timeout)

	limit := rate.Inf
	if opts.MinRequestInterval > 0 {
		limit = rate.Every(opts.MinRequestInterval)
	}

	return &Client{
		collector: c,
		limiter:   rate.NewLimiter(limit, 1),
		searchURL: searchURL,
	}, nil
}

// SearchURL retorna a URL completa da busca para os critérios informados
func (c *Client) SearchURL(criteria models.SearchCriteria) string {
	return c.searchURL + "?" + SearchParams(criteria).Encode()
}

// FetchAdsPage busca a página de resultados e retorna o HTML
func (c *Client) FetchAdsPage(ctx context.Context, criteria models.SearchCriteria) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var (
		body     []byte
		fetchErr error
	)

	collector := c.collector.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7")
	})
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("%w: %d", ErrStatus, r.StatusCode)
			return
		}
		fetchErr = err
	})

	target := c.SearchURL(criteria)
	if err := collector.Visit(target); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return "", fmt.Errorf("erro ao buscar %s: %w", criteria.Query(), fetchErr)
	}

	return string(body), nil
}

// SearchParams monta os parâmetros da busca. Parâmetros opcionais ausentes
// são enviados vazios, nunca omitidos.
func SearchParams(criteria models.SearchCriteria) url.Values {
	radius := criteria.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	page := criteria.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("keywords", criteria.Query())
	params.Set("categoryId", optional(criteria.CategoryID))
	params.Set("locationStr", "")
	params.Set("radius", strconv.Itoa(radius))
	params.Set("maxPrice", optional(criteria.MaxPrice))
	params.Set("minPrice", optional(criteria.MinPrice))
	params.Set("pageNum", strconv.Itoa(page))
	params.Set("locationId", optional(criteria.LocationID))
	params.Set("sortingField", "SORTING_DATE")
	params.Set("action", "find")
	params.Set("buyNowEnabled", "false")
	params.Set("adType", "")
	params.Set("posterType", "")
	params.Set("shippingCarrier", "")
	return params
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// JoinURL resolve um caminho (relativo ou absoluto) contra a URL base
func JoinURL(base, ref string) (string, error) {
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("URL base inválida: %w", err)
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("URL base inválida: %q", base)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("URL inválida %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
