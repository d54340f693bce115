package client

import (
	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// UnknownPeerName is shown for senders missing from the directory
const UnknownPeerName = "Unknown"

// DirectoryEntry is one registered client as listed by the server
type DirectoryEntry struct {
	Name string
	ID   protocol.ClientID
}

// Directory maps display names to client ids.
// It is rebuilt from scratch on every listing.
type Directory struct {
	byName  map[string]protocol.ClientID
	entries []DirectoryEntry
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{byName: make(map[string]protocol.ClientID)}
}

// Replace discards the current contents and loads records in server order.
// When two records share a name the later one wins the lookup.
func (d *Directory) Replace(records []protocol.ClientRecord) []DirectoryEntry {
	d.byName = make(map[string]protocol.ClientID, len(records))
	d.entries = make([]DirectoryEntry, 0, len(records))

	for _, r := range records {
		d.byName[r.Name] = r.ID
		d.entries = append(d.entries, DirectoryEntry{Name: r.Name, ID: r.ID})
	}

	return d.Entries()
}

// Lookup returns the id registered under name
func (d *Directory) Lookup(name string) (protocol.ClientID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// NameOf finds the display name for id, or UnknownPeerName.
// Entries are scanned from the end so the last listed name mapping to id
// wins; names shadowed by a later record with the same name are skipped.
func (d *Directory) NameOf(id protocol.ClientID) string {
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := d.entries[i]
		if e.ID == id && d.byName[e.Name] == id {
			return e.Name
		}
	}
	return UnknownPeerName
}

// Len returns the number of distinct names
func (d *Directory) Len() int {
	return len(d.byName)
}

// Entries returns a copy of the last listing in server order
func (d *Directory) Entries() []DirectoryEntry {
	out := make([]DirectoryEntry, len(d.entries))
	copy(out, d.entries)
	return out
}
