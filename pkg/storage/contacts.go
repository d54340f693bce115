package storage

import (
	"time"
)

// ===== CONTACT OPERATIONS =====

// SaveContact adds or updates a contact.
// A nil PublicKey keeps the key already cached for that client.
func (db *HistoryDB) SaveContact(contact *Contact) error {
	now := time.Now().Unix()
	if contact.AddedAt == 0 {
		contact.AddedAt = now
	}
	if contact.LastSeen == 0 {
		contact.LastSeen = now
	}

	query := `
		INSERT INTO contacts (client_id, name, public_key, added_at, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			public_key = COALESCE(excluded.public_key, contacts.public_key),
			last_seen = excluded.last_seen
	`

	_, err := db.db.Exec(
		query,
		contact.ClientID,
		contact.Name,
		contact.PublicKey,
		contact.AddedAt,
		contact.LastSeen,
	)

	return err
}

// SaveDirectory upserts a full directory listing in one transaction
func (db *HistoryDB) SaveDirectory(contacts []*Contact) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO contacts (client_id, name, added_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range contacts {
		if _, err := stmt.Exec(c.ClientID, c.Name, now, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAllContacts retrieves all contacts
func (db *HistoryDB) GetAllContacts() ([]*Contact, error) {
	query := `
		SELECT client_id, name, public_key, added_at, last_seen
		FROM contacts
		ORDER BY name ASC
	`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*Contact

	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}

	return contacts, rows.Err()
}

func scanContact(row rowScanner) (*Contact, error) {
	var contact Contact

	err := row.Scan(
		&contact.ClientID,
		&contact.Name,
		&contact.PublicKey,
		&contact.AddedAt,
		&contact.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	return &contact, nil
}
