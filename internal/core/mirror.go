package core

// fanout delivers ev to each distinct client without blocking and returns
// the set of connection ids it targeted. A full or closed client is skipped.
func (h *Hub) fanout(ev *Event, clients []*Client) map[string]struct{} {
	seen := make(map[string]struct{}, len(clients))
	for _, c := range clients {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if !c.Deliver(ev) {
			h.log.Debug().Str("client_id", c.ID).Str("kind", ev.Kind.String()).Msg("dropped event for slow or closed client")
		}
	}
	return seen
}

// mirror copies ev to every observer not already in skip, tagged as mirrored.
func (h *Hub) mirror(ev *Event, skip map[string]struct{}) {
	var copyEv *Event
	for _, c := range h.presence.Observers() {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		if copyEv == nil {
			copyEv = ev.mirrorCopy()
		}
		if !c.Deliver(copyEv) {
			h.log.Debug().Str("client_id", c.ID).Str("kind", ev.Kind.String()).Msg("dropped mirrored event")
		}
	}
}
