package workspace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Fingerprint identifies the persisted form of a workspace. Two workspaces
// with the same fingerprint produce identical repository writes.
type Fingerprint [32]byte

// EncodedRecord is the repository form of a workspace: settings serialized
// to JSON and each section's content as an opaque string ("" when the
// section has no content). Meta carries the per-section flags that survive a
// reload.
type EncodedRecord struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	RawIdea  string                    `json:"rawIdea"`
	Settings string                    `json:"settings"`
	Sections [plan.SectionCount]string `json:"sections"`
	Meta     string                    `json:"meta"`
}

// sectionMeta is the persisted state of one section besides its content.
// Transient statuses (generating) are never stored.
type sectionMeta struct {
	Status        plan.Status `json:"status,omitempty"`
	Locked        bool        `json:"locked,omitempty"`
	LastGenerated time.Time   `json:"lastGenerated,omitzero"`
}

// EncodeRecord serializes ws for the repository.
func EncodeRecord(ws plan.Workspace) (EncodedRecord, error) {
	settings, err := json.Marshal(ws.Settings)
	if err != nil {
		return EncodedRecord{}, fmt.Errorf("workspace: encode settings: %w", err)
	}
	rec := EncodedRecord{
		ID:       ws.ID,
		Name:     ws.Name,
		RawIdea:  ws.RawIdea,
		Settings: string(settings),
	}

	meta := make(map[plan.SectionKey]sectionMeta)
	for i, sec := range ws.Sections {
		var m sectionMeta
		if sec.HasContent() {
			rec.Sections[i] = string(sec.Content)
			m.Status = sec.Status
		} else if sec.Status == plan.StatusError {
			m.Status = plan.StatusError
		}
		m.Locked = sec.Locked
		m.LastGenerated = sec.LastGenerated.UTC()
		if m != (sectionMeta{}) {
			meta[sec.Key] = m
		}
	}
	if len(meta) > 0 {
		data, err := json.Marshal(meta)
		if err != nil {
			return EncodedRecord{}, fmt.Errorf("workspace: encode section meta: %w", err)
		}
		rec.Meta = string(data)
	}
	return rec, nil
}

// Fingerprint hashes the record with BLAKE3.
func (r EncodedRecord) Fingerprint() Fingerprint {
	data, _ := json.Marshal(r)
	return Fingerprint(blake3.Sum256(data))
}

// Patch converts the record to a full repository update stamped at
// updatedAt. Every field and every section is written.
func (r EncodedRecord) Patch(updatedAt time.Time) ideas.Patch {
	name, raw, settings, meta := r.Name, r.RawIdea, r.Settings, r.Meta
	p := ideas.Patch{
		ID:          r.ID,
		Name:        &name,
		RawIdea:     &raw,
		Settings:    &settings,
		SectionMeta: &meta,
		Sections:    make(map[plan.SectionKey]string, plan.SectionCount),
		UpdatedAt:   updatedAt,
	}
	for i, k := range plan.Keys() {
		p.Sections[k] = r.Sections[i]
	}
	return p
}

// NewIdea returns the repository create input for the record.
func (r EncodedRecord) NewIdea() ideas.NewIdea {
	return ideas.NewIdea{ID: r.ID, Name: r.Name, RawIdea: r.RawIdea, Settings: r.Settings}
}

// DecodeRecord rebuilds a workspace from a stored record. Section content
// comes back byte for byte. Sections with content and no stored flags are
// treated as generated at the record's update time; expand flags take their
// defaults. Section IDs derive from the record ID so they are stable across
// loads.
func DecodeRecord(rec *ideas.Record) (plan.Workspace, error) {
	ws := plan.NewWorkspace(rec.CreatedAt)
	ws.ID = rec.ID
	ws.Name = rec.Name
	ws.RawIdea = rec.RawIdea
	ws.UpdatedAt = rec.UpdatedAt

	if rec.Settings != "" {
		var s plan.Settings
		if err := json.Unmarshal([]byte(rec.Settings), &s); err != nil {
			return plan.Workspace{}, fmt.Errorf("workspace: decode settings of %s: %w", rec.ID, err)
		}
		ws.Settings = s.WithDefaults()
	}

	var meta map[plan.SectionKey]sectionMeta
	if rec.SectionMeta != "" {
		if err := json.Unmarshal([]byte(rec.SectionMeta), &meta); err != nil {
			return plan.Workspace{}, fmt.Errorf("workspace: decode section meta of %s: %w", rec.ID, err)
		}
	}

	for _, k := range plan.Keys() {
		sec := ws.Section(k)
		sec.ID = rec.ID + ":" + string(k)
		m := meta[k]
		sec.Locked = m.Locked

		raw := rec.Sections[k]
		if raw == "" {
			if m.Status == plan.StatusError {
				sec.Status = plan.StatusError
			}
			sec.LastGenerated = m.LastGenerated
			continue
		}
		if !json.Valid([]byte(raw)) {
			return plan.Workspace{}, fmt.Errorf("workspace: decode %s of %s: invalid JSON", k, rec.ID)
		}
		sec.Content = json.RawMessage(raw)
		sec.Status = plan.StatusGenerated
		if m.Status == plan.StatusEdited {
			sec.Status = plan.StatusEdited
		}
		sec.LastGenerated = m.LastGenerated
		if sec.LastGenerated.IsZero() && sec.Status == plan.StatusGenerated {
			sec.LastGenerated = rec.UpdatedAt
		}
	}
	return ws, nil
}
