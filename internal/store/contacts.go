package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ankitsingh4634/taskify/internal/model"
)

// CreateContact inserts a new contact row and returns the assigned id.
func (s *Store) CreateContact(ctx context.Context, c *model.Contact) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO contacts (user_id, full_name, email, phone, address, organization, title, carddav_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.FullName, c.Email, c.Phone, c.Address, c.Organization, c.Title,
		c.CardDAVUID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read contact id: %w", err)
	}
	return id, nil
}

// ContactUID returns the CardDAV UID for a contact owned by the given
// user. Returns ErrNotFound when absent or owned by someone else.
func (s *Store) ContactUID(ctx context.Context, contactID, userID int64) (string, error) {
	var uid string
	err := s.conn.QueryRowContext(ctx,
		`SELECT carddav_uid FROM contacts WHERE id = ? AND user_id = ?`,
		contactID, userID,
	).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query contact uid: %w", err)
	}
	return uid, nil
}

// UpdateContact updates a contact row, scoped to its owner, and reports
// the number of rows affected.
func (s *Store) UpdateContact(ctx context.Context, c *model.Contact) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE contacts
		SET full_name = ?, email = ?, phone = ?, address = ?, organization = ?, title = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		c.FullName, c.Email, c.Phone, c.Address, c.Organization, c.Title,
		formatTime(c.UpdatedAt), c.ID, c.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update contact: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// DeleteContact removes a contact row, scoped to its owner, and reports
// the number of rows affected.
func (s *Store) DeleteContact(ctx context.Context, contactID, userID int64) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND user_id = ?`, contactID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contact: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// ListContacts returns all contacts owned by the given user.
func (s *Store) ListContacts(ctx context.Context, userID int64) ([]model.Contact, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, user_id, full_name, email, phone, address, organization, title, carddav_uid, created_at, updated_at
		FROM contacts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// ContactByUID returns the contact mirrored at the given CardDAV UID,
// regardless of owner. Used by the outbox sweeper.
func (s *Store) ContactByUID(ctx context.Context, uid string) (*model.Contact, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, email, phone, address, organization, title, carddav_uid, created_at, updated_at
		FROM contacts WHERE carddav_uid = ?`, uid)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	var created, updated string
	err := row.Scan(&c.ID, &c.UserID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.Organization, &c.Title, &c.CardDAVUID, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}
