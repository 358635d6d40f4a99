package dashboard

import (
	"net/http"
	"net/url"

	"github.com/leapstack-labs/leapeda/internal/eda"
)

var signalKeys = []string{"mode", "column", "x", "y", "kind"}

func signalFields(s *eda.Signals) []*string {
	return []*string{&s.Mode, &s.Column, &s.X, &s.Y, &s.Kind}
}

// signalsFromQuery reads a selection from the URL. ok is false when the URL
// names none of the controls.
func signalsFromQuery(q url.Values) (sig eda.Signals, ok bool) {
	fields := signalFields(&sig)
	for i, key := range signalKeys {
		if q.Has(key) {
			*fields[i] = q.Get(key)
			ok = true
		}
	}
	return sig, ok
}

// loadSignals reads the last selection from the session. A missing or
// undecodable session yields zero signals, which parse to the defaults.
func (h *Handlers) loadSignals(r *http.Request) eda.Signals {
	var sig eda.Signals
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		h.logger.Debug("ignoring unreadable session", "error", err)
		return sig
	}
	fields := signalFields(&sig)
	for i, key := range signalKeys {
		if v, ok := session.Values[key].(string); ok {
			*fields[i] = v
		}
	}
	return sig
}

// saveSignals stores sig in the session. It must run before the response
// headers are written.
func (h *Handlers) saveSignals(w http.ResponseWriter, r *http.Request, sig eda.Signals) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil && session == nil {
		h.logger.Warn("failed to open session", "error", err)
		return
	}
	fields := signalFields(&sig)
	for i, key := range signalKeys {
		session.Values[key] = *fields[i]
	}
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}
