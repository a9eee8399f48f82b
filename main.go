package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"twinhost/pkg/bot"
	"twinhost/pkg/cache"
	"twinhost/pkg/config"
	"twinhost/pkg/directory"
	"twinhost/pkg/gateway"
	"twinhost/pkg/registry"
	"twinhost/pkg/router"
	"twinhost/pkg/session"
	"twinhost/pkg/surreal"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("Missing required environment variable: DISCORD_TOKEN")
	}

	// Twin directory: SurrealDB when configured, otherwise a local JSON file.
	var store directory.Store
	surrealHost := os.Getenv("SURREAL_DB_HOST")
	if surrealHost != "" {
		surrealUser := os.Getenv("SURREAL_DB_USER")
		surrealPass := os.Getenv("SURREAL_DB_PASS")
		surrealNS := os.Getenv("SURREAL_DB_NAMESPACE")
		surrealDB := os.Getenv("SURREAL_DB_DATABASE")

		if surrealUser == "" {
			log.Fatal("Missing required environment variable: SURREAL_DB_USER")
		}
		if surrealPass == "" {
			log.Fatal("Missing required environment variable: SURREAL_DB_PASS")
		}
		if surrealNS == "" {
			surrealNS = "twinhost" // Default
		}
		if surrealDB == "" {
			surrealDB = "directory" // Default
		}

		// Add protocol if missing
		if !strings.HasPrefix(surrealHost, "ws://") && !strings.HasPrefix(surrealHost, "wss://") {
			surrealHost = "wss://" + surrealHost + "/rpc"
		}

		log.Printf("Connecting to SurrealDB at %s (NS: %s, DB: %s)", surrealHost, surrealNS, surrealDB)
		surrealClient, err := surreal.NewClient(surrealHost, surrealUser, surrealPass, surrealNS, surrealDB)
		if err != nil {
			log.Fatalf("Failed to connect to SurrealDB: %v", err)
		}
		defer surrealClient.Close()

		store = directory.NewSurrealStore(surrealClient)
	} else {
		dataDir := os.Getenv("TWINHOST_DATA_DIR")
		if dataDir == "" {
			dataDir = "."
		}
		log.Printf("SURREAL_DB_HOST not set, using file-backed directory in %s", dataDir)
		store = directory.NewFileStore(dataDir)
	}

	// Optional Redis read cache in front of the directory.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := cache.NewRedisCache(redisURL, "twinhost")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		store = directory.NewCachedStore(store, redisCache)
		log.Println("Redis profile cache enabled")
	}

	// Execution contexts: one loop owns session state, workers do network I/O.
	loop := session.NewLoop(cfg.Session.QueueSize)
	pool := session.NewWorkerPool(cfg.Session.Workers, time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second)

	gw := gateway.NewClient(time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second)
	reg := registry.New()

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	discordSession := &bot.DiscordSession{Session: dg}
	notifier := bot.NewChannelNotifier(discordSession)
	channelWorld := bot.NewChannelWorld(discordSession, cfg.World.MaxEntities)

	rt := router.New(store, reg, gw, channelWorld, notifier, loop, pool, cfg.Gateway.ExportBase)
	handler := bot.NewHandler(rt, cfg.Command.Prefix)

	// Register Handlers
	dg.AddHandler(handler.MessageCreate)

	// Open Connection
	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	// Set Bot ID in handler (so it can ignore itself)
	handler.SetBotID(dg.State.User.ID)

	log.Printf("twinhost is running with prefix %q. Press CTRL-C to exit.", cfg.Command.Prefix)

	// Wait for signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	dg.Close()
	pool.Wait()
	loop.Close()
}
