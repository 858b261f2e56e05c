package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AccountClient exposes the account accessors of a Client.
type AccountClient struct {
	c *Client
}

// Accounts returns the account accessors.
func (c *Client) Accounts() *AccountClient {
	return &AccountClient{c: c}
}

// FindMany returns every account ordered by id.
func (ac *AccountClient) FindMany(ctx context.Context) ([]*Account, error) {
	rows, err := ac.c.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// FindUnique returns the matching account, or nil when there is none.
func (ac *AccountClient) FindUnique(ctx context.Context, where WhereUnique) (*Account, error) {
	return findAccount(ctx, ac.c.db, where)
}

func findAccount(ctx context.Context, q querier, where WhereUnique) (*Account, error) {
	cond, args, err := where.clause()
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+cond, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// Create inserts an account and its nested contacts in one transaction.
func (ac *AccountClient) Create(ctx context.Context, in AccountCreate) (*Account, error) {
	var created *Account
	err := ac.c.Transaction(ctx, func(tx *sql.Tx) error {
		a, err := scanAccount(tx.QueryRowContext(ctx, `
			INSERT INTO accounts (name, email, office_address, office_phone)
			VALUES ($1, $2, $3, $4)
			RETURNING `+accountColumns,
			ToNullString(in.Name), in.Email, valueOrEmpty(in.OfficeAddress), valueOrEmpty(in.OfficePhone)))
		if err != nil {
			return wrapWriteError("failed to create account", err)
		}

		link := sql.NullInt64{Int64: a.ID, Valid: true}
		for i := range in.Contacts {
			if _, err := insertContact(ctx, tx, in.Contacts[i], link); err != nil {
				return err
			}
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an account and returns its last values. Linked contacts are
// kept and detached.
func (ac *AccountClient) Delete(ctx context.Context, id int64) (*Account, error) {
	var deleted *Account
	err := ac.c.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE contacts SET account_id = NULL
			WHERE account_id = $1
		`, id); err != nil {
			return fmt.Errorf("failed to detach contacts: %w", err)
		}

		a, err := scanAccount(tx.QueryRowContext(ctx, `
			DELETE FROM accounts
			WHERE id = $1
			RETURNING `+accountColumns, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete account %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		deleted = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Contacts returns the contacts linked to an account, ordered by id.
func (ac *AccountClient) Contacts(ctx context.Context, accountID int64) ([]*Contact, error) {
	rows, err := ac.c.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE account_id = $1
		ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}
