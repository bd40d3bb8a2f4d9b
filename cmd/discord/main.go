// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/cmdtree/datastore"
	"github.com/keshon/cmdtree/internal/app"
	"github.com/keshon/cmdtree/internal/config"
	"github.com/keshon/cmdtree/internal/discord"
	"github.com/keshon/cmdtree/internal/metrics"
	"github.com/keshon/cmdtree/internal/middleware"
	"github.com/keshon/cmdtree/internal/permissions"
	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

func main() {
	log.Println("[INFO] Starting cmdtree bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	ds, err := datastore.NewWithConfig(&datastore.Config{
		FilePath:         cfg.StoragePath,
		AutoSaveInterval: cfg.AutoSaveInterval,
		BackupCount:      3,
		Logger:           log.New(os.Stderr, "[datastore] ", log.LstdFlags),
	})
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	store := storage.NewWithDataStore(ds)
	defer store.Close()

	m := metrics.New(nil)

	bot, err := discord.NewBot(cfg, store, m)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	engine, err := buildEngine(cfg, store, m, discord.NewPermissionsAPI(bot.Session(), bot.AppID))
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	log.Printf("[INFO] Command tree ready: %d command(s)", len(engine.Tree().Commands()))

	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Println("[ERR] Metrics server error:", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx, engine); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
}

// buildEngine assembles the command tree, the interaction router and the
// middleware chains.
func buildEngine(cfg *config.Config, store *storage.Storage, m *metrics.Metrics, api permissions.API) (*cmd.Engine, error) {
	isOwner := func(o middleware.Origin) bool { return cfg.IsOwner(o.UserID()) }

	router := cmd.NewRouter(
		m.InteractionMiddleware(),
		middleware.WithInteractionLogger(),
		middleware.WithInteractionPermission("slash.permissions.", isOwner),
	)
	tree, err := app.Build(store, api, router, cmd.WithIDLedger(store.IDLedger()))
	if err != nil {
		return nil, err
	}

	dispatcher := cmd.NewDispatcher(tree,
		m.Middleware(),
		middleware.WithCommandLogger(store),
		middleware.WithGuildOnly(),
		middleware.WithGroupAccessCheck(store),
		middleware.WithPermissionTag(permissions.OwnersTag, isOwner),
	)
	return cmd.NewEngine(dispatcher, router), nil
}
