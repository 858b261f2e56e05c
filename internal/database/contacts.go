package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ContactClient exposes the contact accessors of a Client.
type ContactClient struct {
	c *Client
}

// Contacts returns the contact accessors.
func (c *Client) Contacts() *ContactClient {
	return &ContactClient{c: c}
}

// FindMany returns every contact ordered by id.
func (cc *ContactClient) FindMany(ctx context.Context) ([]*Contact, error) {
	rows, err := cc.c.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// FindUnique returns the matching contact, or nil when there is none.
func (cc *ContactClient) FindUnique(ctx context.Context, where WhereUnique) (*Contact, error) {
	return findContact(ctx, cc.c.db, where)
}

func findContact(ctx context.Context, q querier, where WhereUnique) (*Contact, error) {
	cond, args, err := where.clause()
	if err != nil {
		return nil, err
	}
	c, err := scanContact(q.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE `+cond, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// Create inserts a contact, connecting it to in.ConnectAccount when set. The
// account must exist.
func (cc *ContactClient) Create(ctx context.Context, in ContactCreate) (*Contact, error) {
	var created *Contact
	err := cc.c.Transaction(ctx, func(tx *sql.Tx) error {
		var link sql.NullInt64
		if in.ConnectAccount != nil {
			a, err := findAccount(ctx, tx, *in.ConnectAccount)
			if err != nil {
				return err
			}
			if a == nil {
				return fmt.Errorf("connect account %s: %w", in.ConnectAccount, ErrNotFound)
			}
			link = sql.NullInt64{Int64: a.ID, Valid: true}
		}

		c, err := insertContact(ctx, tx, in, link)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Disconnect clears the account link of a contact. The contact must currently
// belong to the given account; the contact row itself is kept.
func (cc *ContactClient) Disconnect(ctx context.Context, contact, account WhereUnique) (*Contact, error) {
	var updated *Contact
	err := cc.c.Transaction(ctx, func(tx *sql.Tx) error {
		a, err := findAccount(ctx, tx, account)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("disconnect from account %s: %w", account, ErrNotFound)
		}

		c, err := findContact(ctx, tx, contact)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("disconnect contact %s: %w", contact, ErrNotFound)
		}
		if !c.AccountID.Valid || c.AccountID.Int64 != a.ID {
			return fmt.Errorf("%w: contact %d is not connected to account %d", ErrInvalidArgument, c.ID, a.ID)
		}

		u, err := scanContact(tx.QueryRowContext(ctx, `
			UPDATE contacts SET account_id = NULL
			WHERE id = $1
			RETURNING `+contactColumns, c.ID))
		if err != nil {
			return fmt.Errorf("failed to disconnect contact: %w", err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ContactOf returns the account a contact is linked to, or nil.
func (cc *ContactClient) ContactOf(ctx context.Context, contactID int64) (*Account, error) {
	a, err := scanAccount(cc.c.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, a.email, a.office_address, a.office_phone
		FROM accounts a
		JOIN contacts c ON c.account_id = a.id
		WHERE c.id = $1
	`, contactID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact account: %w", err)
	}
	return a, nil
}

func insertContact(ctx context.Context, q querier, in ContactCreate, accountID sql.NullInt64) (*Contact, error) {
	c, err := scanContact(q.QueryRowContext(ctx, `
		INSERT INTO contacts (name, email, title, personal_address, personal_phone_number, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+contactColumns,
		ToNullString(in.Name), in.Email, valueOrEmpty(in.Title), valueOrEmpty(in.PersonalAddress),
		valueOrEmpty(in.PersonalPhoneNumber), accountID))
	if err != nil {
		return nil, wrapWriteError("failed to create contact", err)
	}
	return c, nil
}

func collectContacts(rows *sql.Rows) ([]*Contact, error) {
	contacts := []*Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
