// Package net shares a board read-only over the LAN: the host pushes scene
// snapshots to viewers over a websocket and advertises itself with mDNS.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"VectorBoard/internal/logx"
	"VectorBoard/internal/state"
)

// MirrorPath is the websocket endpoint viewers connect to.
const MirrorPath = "/board"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 4096
)

// Peer is one connected viewer. send holds at most the newest snapshot.
type Peer struct {
	conn *websocket.Conn
	send chan []byte
}

// offer replaces any snapshot still waiting to be written with data.
func (p *Peer) offer(data []byte) {
	for {
		select {
		case p.send <- data:
			return
		default:
		}
		select {
		case <-p.send:
		default:
		}
	}
}

// Mirror is run by the host to push board snapshots to viewers. Viewers
// are read-only; anything they send is discarded.
type Mirror struct {
	upgrader websocket.Upgrader
	clock    state.Clock
	mu       sync.RWMutex
	peers    map[*Peer]struct{}
	latest   []byte
	closed   bool
	log      *slog.Logger
}

func NewMirror() *Mirror {
	return &Mirror{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// Viewers are native apps on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*Peer]struct{}),
		log:   logx.For("mirror"),
	}
}

// Publish encodes s and queues it for every viewer. Each snapshot carries a
// mirror revision so viewers can drop stale ones, even after the host
// loads a different board.
func (m *Mirror) Publish(s *state.Scene) error {
	doc := state.Export(s)
	doc.Revision = m.clock.Tick()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = data
	for p := range m.peers {
		p.offer(data)
	}
	m.log.Debug("published", "rev", doc.Revision, "bytes", len(data), "peers", len(m.peers))
	return nil
}

// Peers returns the number of connected viewers.
func (m *Mirror) Peers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers)
}

func (m *Mirror) add(p *Peer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.peers[p] = struct{}{}
	if m.latest != nil {
		p.offer(m.latest)
	}
	m.log.Info("viewer connected", "remote", p.conn.RemoteAddr().String(), "peers", len(m.peers))
	return true
}

func (m *Mirror) remove(p *Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.peers[p]; !ok {
		return
	}
	delete(m.peers, p)
	close(p.send)
	m.log.Info("viewer disconnected", "remote", p.conn.RemoteAddr().String(), "peers", len(m.peers))
}

// ServeHTTP upgrades a viewer connection and serves it until it drops.
func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &Peer{conn: conn, send: make(chan []byte, 1)}
	if !m.add(p) {
		conn.Close()
		return
	}
	go m.writePump(p)
	m.readPump(p)
}

// readPump drains the connection so pongs and close frames are handled.
func (m *Mirror) readPump(p *Peer) {
	defer m.remove(p)
	p.conn.SetReadLimit(readLimit)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.Debug("viewer read failed", "remote", p.conn.RemoteAddr().String(), "err", err)
			}
			return
		}
	}
}

func (m *Mirror) writePump(p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "host closed"))
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				m.log.Warn("send failed", "remote", p.conn.RemoteAddr().String(), "err", err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every viewer and refuses new ones.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for p := range m.peers {
		delete(m.peers, p)
		close(p.send)
	}
}

// ListenAndServe serves the mirror on addr until ctx is done.
func (m *Mirror) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(MirrorPath, m)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: writeWait}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	m.log.Info("mirror listening", "addr", addr)

	select {
	case <-ctx.Done():
		m.Close()
		return srv.Close()
	case err := <-errc:
		m.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mirror server: %w", err)
	}
}
