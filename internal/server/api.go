package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/koningsdag/internal/catalog"
	apperrors "github.com/louisbranch/koningsdag/internal/errors"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/platform/i18n"
	"github.com/louisbranch/koningsdag/internal/platform/id"
	"github.com/louisbranch/koningsdag/internal/random"
	"github.com/louisbranch/koningsdag/internal/server/httpx"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// API serves the game endpoints. One game session runs at a time; the
// mutex is the lock boundary around the single flow.
type API struct {
	mu     sync.Mutex
	cat    *catalog.Catalog
	store  storage.GameStore
	flow   *game.Flow
	feed   *feedHub
	tracer trace.Tracer
}

// NewAPI creates the API surface over a catalog and an optional store.
func NewAPI(cat *catalog.Catalog, store storage.GameStore) *API {
	return &API{
		cat:    cat,
		store:  store,
		feed:   newFeedHub(),
		tracer: otel.Tracer("koningsdag/server"),
	}
}

// Handler returns the routed and middleware-wrapped handler.
func (a *API) Handler() http.Handler {
	return routes(a)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

type roleEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a *API) handleRoles(w http.ResponseWriter, r *http.Request) {
	tag := i18n.ResolveTag(r)
	roles := a.cat.Roles()
	out := make([]roleEntry, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleEntry{
			ID:   role.ID,
			Name: i18n.RoleName(tag, role.ID, role.Name),
		})
	}
	sortRoleEntries(out)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"roles": out})
}

func sortRoleEntries(entries []roleEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Name < entries[j-1].Name; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

type startRequest struct {
	SelectedRoleIDs []string `json:"selected_role_ids"`
}

func (a *API) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	gameID, err := id.NewID()
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInternal, "generate game id", err))
		return
	}
	g, err := game.NewGame(a.cat, gameID, req.SelectedRoleIDs)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeRoleUnknown, err.Error(), err))
		return
	}
	rng, err := random.NewRand()
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInternal, "seed rng", err))
		return
	}

	a.feed.Reset()
	a.flow = game.NewFlow(a.cat, g, a.store, rng)
	if _, err := a.flow.StartGame(ctx); err != nil {
		httpx.WriteError(w, err)
		return
	}
	a.publishLocked()
	_ = httpx.WriteJSON(w, http.StatusOK, a.stateDocLocked(i18n.ResolveTag(r)))
}

type actionRequest struct {
	Action string            `json:"action"`
	Params game.ActionParams `json:"params"`
}

func (a *API) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	var req actionRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "action is required"))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flow == nil {
		httpx.WriteError(w, apperrors.New(apperrors.CodeGameNotStarted, "Game not started"))
		return
	}

	ctx, span := a.tracer.Start(ctx, "game.action",
		trace.WithAttributes(attribute.String("koningsdag.action", req.Action)))
	_, err := a.flow.Dispatch(ctx, req.Action, req.Params)
	span.End()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	a.publishLocked()
	_ = httpx.WriteJSON(w, http.StatusOK, a.stateDocLocked(i18n.ResolveTag(r)))
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = httpx.WriteJSON(w, http.StatusOK, a.stateDocLocked(i18n.ResolveTag(r)))
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flow != nil {
		if err := a.flow.Reset(ctx); err != nil {
			httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInternal, "reset game", err))
			return
		}
		a.flow = nil
	}
	a.feed.Reset()
	a.feed.BroadcastState(a.stateDocLocked(i18n.Default()))
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

// publishLocked drains the flow transcript into the feed and pushes a
// state frame. Callers hold the API mutex.
func (a *API) publishLocked() {
	if a.flow == nil {
		return
	}
	a.feed.Append(a.flow.ConsumeLogs())
	a.feed.BroadcastState(a.stateDocLocked(i18n.Default()))
}

func decodeBody(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "read request body", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}
