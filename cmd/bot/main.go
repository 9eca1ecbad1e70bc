package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anzeigen-bot/config"
	"anzeigen-bot/internal/api"
	"anzeigen-bot/internal/bot"
	"anzeigen-bot/internal/database"
	"anzeigen-bot/internal/dedupe"
	"anzeigen-bot/internal/monitor"
	"anzeigen-bot/internal/scraper"
)

func main() {
	// Carregar configurações (.env, variáveis de ambiente e arquivo de buscas)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializar banco de dados do histórico
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Erro ao inicializar banco de dados: %v", err)
	}
	defer db.Close()

	// Inicializar bot do Telegram
	telegramBot, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Erro ao inicializar bot do Telegram: %v", err)
	}

	client, err := scraper.NewClient(scraper.ClientOptions{
		BaseURL:            cfg.BaseURL,
		SearchPath:         cfg.SearchPath,
		UserAgent:          cfg.UserAgent,
		Timeout:            cfg.RequestTimeout,
		MinRequestInterval: cfg.MinRequestInterval,
	})
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente de busca: %v", err)
	}

	monitorInstance := monitor.New(
		client,
		scraper.NewEngine(scraper.DefaultRegistry()),
		bot.NewNotifier(telegramBot, cfg.TelegramChatID),
		dedupe.NewCache(cfg.SeenCapacity, cfg.SeenTTL),
		monitor.Options{
			Recipient:   cfg.Recipient(),
			BaseURL:     cfg.BaseURL,
			Searches:    cfg.Searches,
			SearchDelay: cfg.SearchDelay,
			IdleDelay:   cfg.IdleDelay,
			History:     db,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Iniciar monitoramento em background
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := monitorInstance.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Monitor encerrado: %v", err)
		}
	}()

	// Configurar comandos do bot
	go bot.SetupCommands(telegramBot, bot.NewCommands(telegramBot, cfg.TelegramChatID, monitorInstance, db))

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = api.NewServer(cfg.HTTPAddr, monitorInstance)
		go func() {
			log.Printf("Servidor de status ouvindo em %s", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Servidor de status encerrado: %v", err)
			}
		}()
	}

	// Aguardar sinal de interrupção
	<-ctx.Done()
	log.Println("Encerrando bot...")

	telegramBot.StopReceivingUpdates()
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Erro ao encerrar servidor de status: %v", err)
		}
	}
	<-done
}
