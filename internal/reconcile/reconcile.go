// Package reconcile replays the extracted event table as a chronological
// state machine per (client, device) pair to produce the current installed
// component set. Reconciliation is a pure function of the event list: running
// it twice over the same input yields the same snapshot.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"fleetscan/internal/model"
	"fleetscan/internal/vocab"
)

// NoneInstalled is the rendering for an empty installed set. The empty set
// and "no data" must stay visually distinguishable in exports.
const NoneInstalled = "None"

// Key identifies one device within one client's fleet.
type Key struct {
	Client   string
	DeviceID string
}

// DeviceState is the replayed snapshot for one key.
type DeviceState struct {
	Installed     []vocab.Component
	LastEventTime time.Time
}

// Reconcile folds the event records into a per-key snapshot. Records with a
// missing device id, client, component or action, or a zero timestamp, cannot
// participate in ordering and are dropped. Within a key, events replay in
// timestamp order; ties keep input order (stable sort) since the source data
// has no finer-grained sequencing.
func Reconcile(events []model.EventRecord) map[Key]DeviceState {
	valid := make([]model.EventRecord, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.DeviceID) == "" ||
			strings.TrimSpace(ev.Client) == "" ||
			strings.TrimSpace(ev.Component) == "" ||
			strings.TrimSpace(ev.Action) == "" ||
			ev.Timestamp.IsZero() {
			continue
		}
		valid = append(valid, ev)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		if a.Client != b.Client {
			return a.Client < b.Client
		}
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	installed := make(map[Key]map[vocab.Component]bool)
	lastSeen := make(map[Key]time.Time)

	for _, ev := range valid {
		key := Key{Client: ev.Client, DeviceID: ev.DeviceID}
		set, ok := installed[key]
		if !ok {
			set = make(map[vocab.Component]bool)
			installed[key] = set
		}
		comp := vocab.Component(ev.Component)
		switch vocab.Action(ev.Action) {
		case vocab.Installation:
			set[comp] = true
		case vocab.Uninstallation:
			// Removing an absent component is a no-op, not an error.
			delete(set, comp)
		case vocab.Replacement:
			// Present before and after; net effect identical to Installation.
			set[comp] = true
		case vocab.Inspection, vocab.TankMeasurement:
			// Neutral: no state change.
		}
		if ev.Timestamp.After(lastSeen[key]) {
			lastSeen[key] = ev.Timestamp
		}
	}

	out := make(map[Key]DeviceState, len(installed))
	for key, set := range installed {
		comps := make([]vocab.Component, 0, len(set))
		for c := range set {
			comps = append(comps, c)
		}
		sort.Slice(comps, func(i, j int) bool { return comps[i] < comps[j] })
		out[key] = DeviceState{Installed: comps, LastEventTime: lastSeen[key]}
	}
	return out
}

// Table renders the snapshot as export-ready records, sorted by (client,
// device id). Installed sets serialize sorted and comma-joined, with
// NoneInstalled for the empty set; the last event time as an ISO date.
func Table(runID string, states map[Key]DeviceState) []model.DeviceStateRecord {
	keys := make([]Key, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Client != keys[j].Client {
			return keys[i].Client < keys[j].Client
		}
		return keys[i].DeviceID < keys[j].DeviceID
	})

	out := make([]model.DeviceStateRecord, 0, len(keys))
	for _, k := range keys {
		st := states[k]
		out = append(out, model.DeviceStateRecord{
			RunID:               runID,
			Client:              k.Client,
			DeviceID:            k.DeviceID,
			InstalledComponents: renderInstalled(st.Installed),
			LastEventTime:       st.LastEventTime.Format("2006-01-02"),
		})
	}
	return out
}

func renderInstalled(comps []vocab.Component) string {
	if len(comps) == 0 {
		return NoneInstalled
	}
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
