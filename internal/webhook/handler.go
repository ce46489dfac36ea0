// Package webhook starts suite runs from signed HTTP requests, such as a
// GitHub push hook or a CI job.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// SignatureHeader carries "sha256=<hex>" of the request body.
const SignatureHeader = "X-Hub-Signature-256"

// TriggerFunc runs the named suites, or every suite when names is empty.
type TriggerFunc func(ctx context.Context, names []string) error

// Handler accepts trigger requests and runs at most one batch at a time.
type Handler struct {
	ctx     context.Context
	secret  string
	suites  map[string]bool
	trigger TriggerFunc
	busy    atomic.Bool
	running sync.WaitGroup
	done    chan struct{}
}

// NewHandler creates a Handler. Triggered runs use ctx, so cancelling it
// stops them. suites lists the names a request may select.
func NewHandler(ctx context.Context, secret string, suites []string, trigger TriggerFunc) *Handler {
	known := make(map[string]bool, len(suites))
	for _, s := range suites {
		known[s] = true
	}
	return &Handler{
		ctx:     ctx,
		secret:  secret,
		suites:  known,
		trigger: trigger,
		done:    make(chan struct{}, 1),
	}
}

// triggerRequest is the body of a manual trigger.
type triggerRequest struct {
	Suites []string `json:"suites"`
}

// ServeHTTP handles POST /webhook.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	if event == "ping" {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "pong")
		return
	}

	names, err := h.parseRequest(event, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.busy.CompareAndSwap(false, true) {
		http.Error(w, "a triggered run is already in progress", http.StatusConflict)
		return
	}

	h.running.Add(1)
	go func() {
		defer h.running.Done()
		defer h.signalDone()
		defer h.busy.Store(false)
		log.Printf("[webhook] triggered run of %s", describe(names))
		if err := h.trigger(h.ctx, names); err != nil {
			log.Printf("[webhook] triggered run failed: %v", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "accepted run of %s", describe(names))
}

// Wait blocks until every triggered run has finished and been recorded.
func (h *Handler) Wait() {
	h.running.Wait()
}

// Done receives a value each time a triggered run finishes.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) signalDone() {
	select {
	case h.done <- struct{}{}:
	default:
	}
}

// parseRequest returns the suites to run; empty means every suite. GitHub
// push events run every suite and other GitHub events are rejected.
// Requests without a GitHub event header carry a JSON triggerRequest.
func (h *Handler) parseRequest(event string, body []byte) ([]string, error) {
	switch event {
	case "push":
		return nil, nil
	case "":
	default:
		return nil, fmt.Errorf("event %s not supported", event)
	}

	var req triggerRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("invalid trigger body: %w", err)
		}
	}
	for _, name := range req.Suites {
		if !h.suites[name] {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
	}
	return req.Suites, nil
}

// verifySignature checks the HMAC-SHA256 signature of body.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" {
		log.Println("[webhook] no secret configured; rejecting request")
		return false
	}

	prefix := "sha256="
	if !strings.HasPrefix(signature, prefix) {
		return false
	}
	sigHex := signature[len(prefix):]

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(sigHex), []byte(expected))
}

func describe(names []string) string {
	if len(names) == 0 {
		return "all suites"
	}
	return strings.Join(names, ", ")
}
