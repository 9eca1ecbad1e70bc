package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"anzeigen-bot/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrNoSearches é retornado quando o arquivo de buscas não define nenhuma busca
var ErrNoSearches = errors.New("nenhuma busca configurada")

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"true"`

	SearchesFile string `envconfig:"SEARCHES_FILE" default:"searches.yaml"`

	BaseURL            string        `envconfig:"BASE_URL" default:"https://www.kleinanzeigen.de"`
	SearchPath         string        `envconfig:"SEARCH_PATH" default:"/s-suchanfrage.html"`
	UserAgent          string        `envconfig:"USER_AGENT"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MinRequestInterval time.Duration `envconfig:"MIN_REQUEST_INTERVAL" default:"1s"`

	SearchDelay time.Duration `envconfig:"SEARCH_DELAY" default:"1s"`
	IdleDelay   time.Duration `envconfig:"IDLE_DELAY" default:"10s"`

	SeenCapacity int           `envconfig:"SEEN_CAPACITY" default:"10000"`
	SeenTTL      time.Duration `envconfig:"SEEN_TTL" default:"720h"`

	DatabasePath string `envconfig:"DATABASE_PATH" default:"./notifications.db"`

	// Vazio desativa o servidor de status
	HTTPAddr string `envconfig:"HTTP_ADDR"`

	Searches []models.SearchCriteria `ignored:"true"`
}

// Recipient retorna o destinatário das notificações como texto
func (c *Config) Recipient() string {
	return strconv.FormatInt(c.TelegramChatID, 10)
}

// Load carrega as configurações do .env (se existir), das variáveis de ambiente
// e do arquivo de buscas
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Arquivo .env encontrado mas não pôde ser carregado: %v", err)
		} else {
			log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}
	if cfg.SeenCapacity <= 0 {
		return nil, fmt.Errorf("SEEN_CAPACITY deve ser positivo")
	}
	if cfg.SeenTTL <= 0 {
		return nil, fmt.Errorf("SEEN_TTL deve ser positivo")
	}
	if cfg.SearchDelay < 0 || cfg.IdleDelay < 0 {
		return nil, fmt.Errorf("SEARCH_DELAY e IDLE_DELAY não podem ser negativos")
	}

	searches, err := LoadSearches(cfg.SearchesFile)
	if err != nil {
		return nil, err
	}
	cfg.Searches = searches

	return &cfg, nil
}

type searchesFile struct {
	Searches []models.SearchCriteria `yaml:"searches"`
}

// LoadSearches lê e valida a lista de buscas de um arquivo YAML
func LoadSearches(path string) ([]models.SearchCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de buscas: %w", err)
	}

	var file searchesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("erro ao parsear arquivo de buscas %s: %w", path, err)
	}

	if len(file.Searches) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSearches)
	}

	for i, s := range file.Searches {
		if len(s.Keywords) == 0 {
			return nil, fmt.Errorf("busca %d: keywords é obrigatório", i+1)
		}
		if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
			return nil, fmt.Errorf("busca %d: min_price maior que max_price", i+1)
		}
		if s.Radius < 0 || s.Page < 0 {
			return nil, fmt.Errorf("busca %d: radius e page não podem ser negativos", i+1)
		}
	}

	return file.Searches, nil
}
