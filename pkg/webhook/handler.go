package webhook

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize bounds how much of a vote body is read.
const MaxBodySize = 64 << 10

const successBody = "Webhook successfully received"

func (w *Webhook) handleVote(rw http.ResponseWriter, r *http.Request) {
	log := w.logger.With("remote_addr", r.RemoteAddr, "path", r.URL.Path)

	if w.auth != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(w.auth)) != 1 {
		log.Warn("rejected vote: bad authorization")
		w.respond(rw, http.StatusForbidden, "")
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		log.Debug("rejected vote: content type", "content_type", ct)
		w.respond(rw, http.StatusBadRequest, "")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		log.Debug("rejected vote: reading body", "error", err)
		w.respond(rw, http.StatusBadRequest, "")
		return
	}
	if len(body) > MaxBodySize {
		log.Warn("rejected vote: body too large")
		w.respond(rw, http.StatusBadRequest, "")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		log.Debug("rejected vote: empty body")
		w.respond(rw, http.StatusBadRequest, "")
		return
	}

	vote, err := ParseVote(body)
	if err != nil {
		log.Debug("rejected vote: malformed payload", "error", err)
		w.respond(rw, http.StatusBadRequest, "")
		return
	}

	w.metrics.ObserveVote(string(vote.Type))
	delivered := w.voteEvents.Emit(vote)
	log.Info("vote received",
		"bot_id", vote.Bot.String(),
		"user_id", vote.User.String(),
		"type", string(vote.Type),
		"test", vote.IsTest(),
		"subscribers", delivered,
	)

	w.respond(rw, http.StatusOK, successBody)
}

func (w *Webhook) respond(rw http.ResponseWriter, status int, body string) {
	w.metrics.ObserveRequest(status)
	if body == "" {
		rw.WriteHeader(status)
		return
	}
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(status)
	_, _ = io.WriteString(rw, body)
}
