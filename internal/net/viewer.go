package net

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/url"

	"github.com/gorilla/websocket"

	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
)

// Viewer receives snapshots from a host's Mirror.
type Viewer struct {
	conn  *websocket.Conn
	load  state.PixmapLoader
	clock state.Clock
	log   *slog.Logger
}

// Dial connects to the mirror at addr (host:port). load resolves image
// paths on this machine and may be nil; images it cannot find are shown
// as placeholders.
func Dial(ctx context.Context, addr string, load state.PixmapLoader) (*Viewer, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: MirrorPath}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial mirror %s: %w", addr, err)
	}
	v := &Viewer{conn: conn, log: logx.For("viewer")}
	if load != nil {
		v.load = func(path string) (image.Image, error) {
			img, err := load(path)
			if err != nil {
				v.log.Warn("image unavailable", "path", path, "err", err)
				return nil, nil
			}
			return img, nil
		}
	}
	v.log.Info("connected", "host", addr)
	return v, nil
}

// Next blocks until a snapshot newer than the last one returned arrives.
func (v *Viewer) Next() (*state.Scene, error) {
	for {
		var doc state.Document
		if err := v.conn.ReadJSON(&doc); err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		if doc.Revision <= v.clock.Now() {
			v.log.Debug("stale snapshot dropped", "rev", doc.Revision, "have", v.clock.Now())
			continue
		}
		v.clock.Update(doc.Revision)
		scene, err := state.Import(doc, v.load)
		if err != nil {
			v.log.Warn("bad snapshot", "rev", doc.Revision, "err", err)
			continue
		}
		return scene, nil
	}
}

// Run hands every new snapshot to onScene until the connection drops or
// ctx is done.
func (v *Viewer) Run(ctx context.Context, onScene func(*state.Scene)) error {
	stop := context.AfterFunc(ctx, func() { v.conn.Close() })
	defer stop()
	for {
		scene, err := v.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		onScene(scene)
	}
}

func (v *Viewer) Close() error {
	v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return v.conn.Close()
}
