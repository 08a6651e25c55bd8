// Command relay runs the ksana nostr relay: a WebSocket server accepting
// EVENT/REQ/CLOSE/AUTH frames, backed by an embedded badger event store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/coder/websocket"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/lzcers/ksana-relay/chk"
	"github.com/lzcers/ksana-relay/config"
	"github.com/lzcers/ksana-relay/hub"
	"github.com/lzcers/ksana-relay/log"
	"github.com/lzcers/ksana-relay/relayinfo"
	"github.com/lzcers/ksana-relay/store/badgerstore"
	"github.com/lzcers/ksana-relay/subscriber"
)

// args are CLI overrides layered on top of config.C's environment values.
type args struct {
	Listen  string `arg:"--listen" help:"network listen address, overrides KSANA_LISTEN"`
	Port    int    `arg:"--port" help:"port to listen on, overrides KSANA_PORT"`
	Profile bool   `arg:"--profile" help:"run with a CPU profiler attached"`
}

func main() {
	cfg, err := config.New()
	if chk.T(err) {
		os.Exit(1)
	}

	var a args
	arg.MustParse(&a)
	if a.Listen != "" {
		cfg.Listen = a.Listen
	}
	if a.Port != 0 {
		cfg.Port = a.Port
	}

	log.I.F("starting %s", cfg.AppName)

	if a.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	db, err := badgerstore.Open(cfg.DatabaseURL)
	if chk.T(err) {
		os.Exit(1)
	}
	defer db.Close()

	h := hub.New(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.Run(gctx)
		return nil
	})

	relayDoc := relayinfo.Document{
		Name:          cfg.AppName,
		Description:   "a nostr relay",
		SupportedNIPs: relayinfo.DefaultSupportedNIPs,
		Software:      "https://github.com/lzcers/ksana-relay",
		Version:       "dev",
	}
	info := relayinfo.Handler(relayDoc)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if relayinfo.WantsRelayInfo(r) {
			info.ServeHTTP(w, r)
			return
		}
		serveWebsocket(gctx, w, r, h, cfg)
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: mux}
	g.Go(func() error {
		<-gctx.Done()
		return srv.Close()
	})
	g.Go(func() error {
		log.I.F("listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if err := g.Wait(); chk.E(err) {
		os.Exit(1)
	}
}

func serveWebsocket(
	ctx context.Context, w http.ResponseWriter, r *http.Request, h *hub.H, cfg *config.C,
) {
	conn, err := websocket.Accept(w, r, nil)
	if chk.E(err) {
		return
	}
	defer conn.CloseNow()

	sub := subscriber.New(conn, r.RemoteAddr, h, subscriber.Config{
		Challenge: cfg.AuthChallenge,
		RelayURL:  cfg.RelayURL,
	})
	sub.Run(ctx)
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
