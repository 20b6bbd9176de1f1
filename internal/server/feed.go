package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/koningsdag/internal/storage/cursor"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
	defaultHistoryLimit    = 50
	maxHistoryLimit        = 200
)

// wsFrame is the feed wire envelope.
type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// feedEntry is one transcript line with its feed position.
type feedEntry struct {
	SequenceID int64  `json:"sequence_id"`
	Body       string `json:"body"`
	At         string `json:"at"`
}

type entryEnvelope struct {
	Entry feedEntry `json:"entry"`
}

type stateEnvelope struct {
	State StateDoc `json:"state"`
}

type joinedPayload struct {
	LatestSequenceID int64  `json:"latest_sequence_id"`
	ServerTime       string `json:"server_time"`
}

type historyBeforePayload struct {
	BeforeSequenceID int64  `json:"before_sequence_id,omitempty"`
	Cursor           string `json:"cursor,omitempty"`
	Limit            int    `json:"limit,omitempty"`
}

type ackPayload struct {
	Status     string `json:"status"`
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

// feedPeer serializes frame writes to one connection.
type feedPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newFeedPeer(encoder *json.Encoder) *feedPeer {
	return &feedPeer{encoder: encoder}
}

func (p *feedPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

func writeFeedError(peer *feedPeer, requestID, code, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "feed.error",
		RequestID: requestID,
		Payload:   mustJSON(wsErrorEnvelope{Error: wsError{Code: code, Message: message}}),
	})
}

// feedHub fans transcript lines and state frames out to subscribers
// and keeps the sequence-numbered backlog for history queries.
type feedHub struct {
	mu           sync.Mutex
	nextSequence int64
	entries      []feedEntry
	subscribers  map[*feedPeer]struct{}
	clock        func() time.Time
}

func newFeedHub() *feedHub {
	return &feedHub{
		nextSequence: 1,
		subscribers:  make(map[*feedPeer]struct{}),
		clock:        time.Now,
	}
}

// Append assigns sequence ids to transcript lines and pushes them to
// every subscriber.
func (h *feedHub) Append(lines []string) {
	if len(lines) == 0 {
		return
	}
	h.mu.Lock()
	at := h.clock().UTC().Format(time.RFC3339)
	added := make([]feedEntry, 0, len(lines))
	for _, line := range lines {
		entry := feedEntry{SequenceID: h.nextSequence, Body: line, At: at}
		h.nextSequence++
		h.entries = append(h.entries, entry)
		added = append(added, entry)
	}
	peers := h.peersLocked()
	h.mu.Unlock()

	for _, entry := range added {
		frame := wsFrame{Type: "feed.entry", Payload: mustJSON(entryEnvelope{Entry: entry})}
		for _, peer := range peers {
			_ = peer.writeFrame(frame)
		}
	}
}

// BroadcastState pushes a state snapshot to every subscriber.
func (h *feedHub) BroadcastState(doc StateDoc) {
	h.mu.Lock()
	peers := h.peersLocked()
	h.mu.Unlock()

	frame := wsFrame{Type: "feed.state", Payload: mustJSON(stateEnvelope{State: doc})}
	for _, peer := range peers {
		_ = peer.writeFrame(frame)
	}
}

// Tail returns the last n transcript lines in order.
func (h *feedHub) Tail(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := 0
	if len(h.entries) > n {
		start = len(h.entries) - n
	}
	out := make([]string, 0, len(h.entries)-start)
	for _, entry := range h.entries[start:] {
		out = append(out, entry.Body)
	}
	return out
}

// historyBefore returns up to limit entries older than seq, ascending.
func (h *feedHub) historyBefore(seq int64, limit int) []feedEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	end := len(h.entries)
	for end > 0 && h.entries[end-1].SequenceID >= seq {
		end--
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]feedEntry, end-start)
	copy(out, h.entries[start:end])
	return out
}

// Reset drops the backlog and restarts the sequence. Subscribers stay
// connected.
func (h *feedHub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.nextSequence = 1
}

func (h *feedHub) subscribe(peer *feedPeer) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[peer] = struct{}{}
	return h.nextSequence - 1
}

func (h *feedHub) unsubscribe(peer *feedPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, peer)
}

func (h *feedHub) peersLocked() []*feedPeer {
	peers := make([]*feedPeer, 0, len(h.subscribers))
	for peer := range h.subscribers {
		peers = append(peers, peer)
	}
	return peers
}

// feedHandler upgrades /ws/feed connections.
func (a *API) feedHandler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		serveFeed(conn, a.feed)
	})
}

func serveFeed(conn *websocket.Conn, hub *feedHub) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newFeedPeer(json.NewEncoder(conn))
	joined := false
	defer func() {
		if joined {
			hub.unsubscribe(peer)
		}
	}()

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeFeedError(peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeFeedError(peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "feed.join":
			latest := hub.subscribe(peer)
			joined = true
			_ = peer.writeFrame(wsFrame{
				Type:      "feed.joined",
				RequestID: frame.RequestID,
				Payload: mustJSON(joinedPayload{
					LatestSequenceID: latest,
					ServerTime:       time.Now().UTC().Format(time.RFC3339),
				}),
			})
		case "feed.history.before":
			handleFeedHistory(peer, hub, frame, joined)
		default:
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func handleFeedHistory(peer *feedPeer, hub *feedHub, frame wsFrame, joined bool) {
	if !joined {
		_ = writeFeedError(peer, frame.RequestID, "FAILED_PRECONDITION", "must join the feed before requesting history")
		return
	}
	var payload historyBeforePayload
	if len(frame.Payload) > 0 {
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "invalid history payload")
			return
		}
	}

	before := payload.BeforeSequenceID
	if token := payload.Cursor; token != "" {
		c, err := cursor.Decode(token)
		if err != nil || c.Dir != cursor.DirectionBackward {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "invalid history cursor")
			return
		}
		before = int64(c.Seq)
	}
	if before < 1 {
		_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "before_sequence_id must be >= 1")
		return
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	history := hub.historyBefore(before, limit)
	for _, entry := range history {
		_ = peer.writeFrame(wsFrame{
			Type:    "feed.entry",
			Payload: mustJSON(entryEnvelope{Entry: entry}),
		})
	}

	ack := ackPayload{Status: "ok", Count: len(history)}
	if len(history) > 0 && history[0].SequenceID > 1 {
		token, err := cursor.Encode(cursor.Cursor{
			Seq: uint64(history[0].SequenceID),
			Dir: cursor.DirectionBackward,
		})
		if err == nil {
			ack.NextCursor = token
		}
	}
	_ = peer.writeFrame(wsFrame{Type: "feed.ack", RequestID: frame.RequestID, Payload: mustJSON(ack)})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal ws payload: %v", err))
	}
	return data
}
