package coordinator

import (
	"encoding/json"
	"strings"

	"github.com/quietroom/core/pkg/transport"
)

// handleUpdateLanguage implements spec.md §4.9.5: updates the session's
// language, broadcasts nothing, and does not retroactively translate
// prior messages.
func (c *Coordinator) handleUpdateLanguage(sock transport.Socket, raw json.RawMessage) {
	session, err := c.sessions.BySocket(sock.ID())
	if err != nil {
		c.emitError(sock, errNoActiveSession)
		return
	}

	var payload updateLanguagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError(sock, newError(KindInvalidArgument, "malformed update_language payload"))
		return
	}
	if strings.TrimSpace(payload.Language) == "" {
		c.emitError(sock, newError(KindInvalidArgument, "language must not be empty"))
		return
	}

	session.Language = payload.Language
	c.sessions.Add(session) // re-Add: same socket id, updated fields, same room index (registry.Add replaces in place)

	sock.Send(transport.Frame{Type: "language_updated", Payload: languageUpdatedPayload{Language: payload.Language}})
}
