package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"VectorBoard/internal/board"
	"VectorBoard/internal/config"
	"VectorBoard/internal/logx"
	boardnet "VectorBoard/internal/net"
	"VectorBoard/internal/state"
	"VectorBoard/internal/ui"
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vectorboard", "config.toml")
}

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "TOML settings file")
	find := flag.Bool("find", false, "look for a host on the LAN and view its board")
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logx.ParseLevel(cfg.Log.Level)})))
	log := logx.For("main")
	if cfgErr != nil {
		log.Warn("using default settings", "err", cfgErr)
	}

	switch arg := flag.Arg(0); {
	case boardnet.IsShareLink(cfg.Mirror.Scheme, arg):
		addr, err := boardnet.ParseShareLink(cfg.Mirror.Scheme, arg)
		if err != nil {
			log.Error("cannot open link", "err", err)
			os.Exit(1)
		}
		runViewer(cfg, addr)
	case *find:
		runViewer(cfg, "")
	default:
		runHost(cfg)
	}
}

func runHost(cfg config.Config) {
	log := logx.For("host")
	log.Info("starting as host")
	session := board.NewSession(cfg)
	b := ui.NewBoardWidget(session, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shareLink := ""
	if cfg.Mirror.Enabled {
		mirror := boardnet.NewMirror()
		publishOnChange(session, mirror)
		go func() {
			if err := mirror.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Mirror.Port)); err != nil {
				log.Error("mirror stopped", "err", err)
				b.SetStatus("Sharing unavailable: " + err.Error())
			}
		}()
		if cfg.Mirror.Advertise {
			srv, err := boardnet.Advertise(cfg.Mirror.Port)
			if err != nil {
				log.Warn("not advertised", "err", err)
			} else {
				defer srv.Shutdown()
			}
		}
		ip, err := boardnet.GetOutgoingIP()
		if err != nil {
			log.Warn("no share address", "err", err)
		} else {
			shareLink = boardnet.ShareLink(cfg.Mirror.Scheme, ip, cfg.Mirror.Port)
			log.Info("share link ready", "link", shareLink)
		}
	}
	ui.RunApp("VectorBoard", shareLink, b)
}

// publishOnChange pushes a snapshot to viewers whenever the scene itself
// changed, skipping view-only notifications.
func publishOnChange(session *board.Session, mirror *boardnet.Mirror) {
	refresh := session.OnChange
	var (
		lastScene *state.Scene
		lastRev   uint64
	)
	publish := func() {
		sc := session.Scene()
		if sc == lastScene && sc.Revision() == lastRev {
			return
		}
		lastScene, lastRev = sc, sc.Revision()
		if err := mirror.Publish(sc); err != nil {
			logx.For("host").Warn("snapshot not published", "err", err)
		}
	}
	session.OnChange = func() {
		if refresh != nil {
			refresh()
		}
		publish()
	}
	publish()
}

func runViewer(cfg config.Config, addr string) {
	logx.For("viewer").Info("starting as viewer", "host", addr)
	b := ui.NewBoardWidget(board.NewSession(cfg), true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go connectToHost(ctx, addr, b)
	ui.RunApp("VectorBoard viewer", "", b)
}

func connectToHost(ctx context.Context, addr string, b *ui.BoardWidget) {
	log := logx.For("viewer")
	if addr == "" {
		b.SetStatus("Looking for a host...")
		found := make(chan string, 1)
		err := boardnet.Browse(ctx, 3*time.Second, func(a string) {
			select {
			case found <- a:
			default:
			}
		})
		select {
		case addr = <-found:
		default:
			log.Warn("no host found", "err", err)
			b.SetStatus("No host found on the network")
			return
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	v, err := boardnet.Dial(dialCtx, addr, ui.LoadPixmap)
	cancel()
	if err != nil {
		b.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer v.Close()
	b.SetStatus("Connected to " + addr)

	if err := v.Run(ctx, b.ShowScene); err != nil && ctx.Err() == nil {
		log.Warn("disconnected", "err", err)
		b.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
	}
}
