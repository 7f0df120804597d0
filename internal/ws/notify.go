package ws

import (
	"context"
	"encoding/json"

	"shiftmatch/internal/domain/match"

	"github.com/cockroachdb/errors"
)

const typeMatchProposed = "match_proposed"

type MatchProposedMessage struct {
	Type  string              `json:"type"`
	Match match.ProposedEvent `json:"match"`
}

// Notifier pushes proposal events to the proposed worker's open connections.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) PublishMatchProposed(_ context.Context, ev match.ProposedEvent) error {
	b, err := json.Marshal(MatchProposedMessage{Type: typeMatchProposed, Match: ev})
	if err != nil {
		return errors.Wrap(err, "encode ws message")
	}
	if !n.hub.SendTo(ev.WorkerID, b) {
		return errors.New("ws queue full")
	}
	return nil
}
