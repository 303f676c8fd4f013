package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack"

	"dealscout/internal/store"
)

// StatusNotifier updates the original card after a triage action.
type StatusNotifier interface {
	UpdateMessage(ctx context.Context, ts, status, user string) error
}

// Handler serves the Slack interactivity webhook: button actions are
// verified, mapped to a status transition, applied to the store, and
// acknowledged on the original message.
type Handler struct {
	store         store.Store
	notifier      StatusNotifier
	signingSecret string
}

func NewHandler(st store.Store, notifier StatusNotifier, signingSecret string) *Handler {
	return &Handler{store: st, notifier: notifier, signingSecret: signingSecret}
}

// Router builds the HTTP routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/slack/interactions", h.handleInteraction)
	return r
}

var actionStatus = map[string]string{
	ActionApprove: store.StatusApproved,
	ActionReject:  store.StatusRejected,
	ActionReview:  store.StatusReviewed,
}

func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.verify(r.Header, body); err != nil {
		slog.Warn("interaction signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(values.Get("payload")), &callback); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if len(callback.ActionCallback.BlockActions) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	action := callback.ActionCallback.BlockActions[0]
	status, ok := actionStatus[action.ActionID]
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	oppID, err := strconv.ParseInt(action.Value, 10, 64)
	if err != nil {
		http.Error(w, "bad opportunity id", http.StatusBadRequest)
		return
	}
	actor := callback.User.Name
	if actor == "" {
		actor = callback.User.ID
	}

	ctx := r.Context()
	if err := h.store.UpdateStatus(ctx, oppID, status, actor); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "unknown opportunity", http.StatusNotFound)
		case errors.Is(err, store.ErrInvalidTransition):
			// Button clicked twice or after expiry; acknowledge quietly.
			slog.Info("stale triage action ignored", "opportunity_id", oppID, "status", status)
			w.WriteHeader(http.StatusOK)
		default:
			slog.Error("status update failed", "opportunity_id", oppID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	slog.Info("opportunity triaged", "opportunity_id", oppID, "status", status, "actor", actor)

	if h.notifier != nil && callback.Message.Timestamp != "" {
		if err := h.notifier.UpdateMessage(ctx, callback.Message.Timestamp, status, callback.User.ID); err != nil {
			slog.Warn("acknowledgment update failed", "ts", callback.Message.Timestamp, "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) verify(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}
