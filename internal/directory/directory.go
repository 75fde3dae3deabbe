// Package directory wraps the per-request snapshot of known contacts.
// The snapshot is rebuilt for every preparation request from the external
// directory service; the engine keeps no contact state across requests.
package directory

// ContactRecord is a lightweight contact as served by the directory service.
type ContactRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ProposedContact carries the details of a contact the user mentioned but
// the directory does not know. It is created through the contact service
// only when the user accepts it at confirm time.
type ProposedContact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Index is an immutable snapshot of the directory for one request.
type Index struct {
	records []ContactRecord
	byID    map[string]ContactRecord
}

// NewIndex builds a snapshot from an externally supplied contact list.
// Records with an empty id or name are dropped.
func NewIndex(records []ContactRecord) *Index {
	idx := &Index{
		records: make([]ContactRecord, 0, len(records)),
		byID:    make(map[string]ContactRecord, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" || rec.Name == "" {
			continue
		}
		if _, seen := idx.byID[rec.ID]; seen {
			continue
		}
		idx.records = append(idx.records, rec)
		idx.byID[rec.ID] = rec
	}
	return idx
}

// Records returns the snapshot contents in directory order.
func (idx *Index) Records() []ContactRecord {
	return idx.records
}

// ByID looks up a contact by id.
func (idx *Index) ByID(id string) (ContactRecord, bool) {
	rec, ok := idx.byID[id]
	return rec, ok
}

// Len returns the number of contacts in the snapshot.
func (idx *Index) Len() int {
	return len(idx.records)
}
