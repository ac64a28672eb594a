package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// PanelPrefs persists the per-recipient collapse preference of the event
// view, keyed by "eventID-userID". It is a UI side-channel, not part of
// the reconciliation state; drafts themselves are never persisted.
type PanelPrefs struct {
	mu        sync.Mutex
	path      string
	collapsed map[string]bool
}

// OpenPanelPrefs loads the preference map stored at path, starting empty
// when the file does not exist yet.
func OpenPanelPrefs(path string) (*PanelPrefs, error) {
	p := &PanelPrefs{
		path:      path,
		collapsed: make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}

		return nil, fmt.Errorf("reading %v -> %w", path, err)
	}

	if err = json.Unmarshal(data, &p.collapsed); err != nil {
		return nil, fmt.Errorf("parsing %v -> %w", path, err)
	}

	return p, nil
}

// Collapsed reports whether the recipient panel for (eventID, userID) is
// collapsed. Unknown keys default to expanded.
func (p *PanelPrefs) Collapsed(eventID, userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.collapsed[prefKey(eventID, userID)]
}

// SetCollapsed stores the collapse preference and writes it through to
// disk immediately.
func (p *PanelPrefs) SetCollapsed(eventID, userID uint, collapsed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := prefKey(eventID, userID)
	if collapsed {
		p.collapsed[key] = true
	} else {
		delete(p.collapsed, key)
	}

	data, err := json.Marshal(p.collapsed)
	if err != nil {
		return err
	}

	if err = os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %v -> %w", p.path, err)
	}

	return nil
}

func prefKey(eventID, userID uint) string {
	return fmt.Sprintf("%d-%d", eventID, userID)
}
