package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// Account is a row of the accounts table.
type Account struct {
	ID            int64          `json:"id"`
	Name          sql.NullString `json:"name"`
	Email         string         `json:"email"`
	OfficeAddress string         `json:"officeAddress"`
	OfficePhone   string         `json:"officePhone"`
}

// Contact is a row of the contacts table. AccountID is the contactOf link.
type Contact struct {
	ID                  int64          `json:"id"`
	Name                sql.NullString `json:"name"`
	Email               string         `json:"email"`
	Title               string         `json:"title"`
	PersonalAddress     string         `json:"personalAddress"`
	PersonalPhoneNumber string         `json:"personalPhoneNumber"`
	AccountID           sql.NullInt64  `json:"accountId"`
}

// AccountCreate is the payload of Accounts().Create. Contacts are created in
// the same transaction and linked to the new account.
type AccountCreate struct {
	Name          *string
	Email         string
	OfficeAddress *string
	OfficePhone   *string
	Contacts      []ContactCreate
}

// ContactCreate is the payload of Contacts().Create.
type ContactCreate struct {
	Name                *string
	Email               string
	Title               *string
	PersonalAddress     *string
	PersonalPhoneNumber *string

	// ConnectAccount, when set, links the new contact to an existing account.
	ConnectAccount *WhereUnique
}

// WhereUnique selects a single account or contact by one of its unique
// columns. When both are set both must match.
type WhereUnique struct {
	ID    *int64
	Email *string
}

// ByID is shorthand for a WhereUnique on the primary key.
func ByID(id int64) WhereUnique {
	return WhereUnique{ID: &id}
}

// ByEmail is shorthand for a WhereUnique on the email column.
func ByEmail(email string) WhereUnique {
	return WhereUnique{Email: &email}
}

func (w WhereUnique) clause() (string, []any, error) {
	var conds []string
	var args []any
	if w.ID != nil {
		args = append(args, *w.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if w.Email != nil {
		args = append(args, *w.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil, fmt.Errorf("%w: unique lookup needs an id or an email", ErrInvalidArgument)
	}
	return strings.Join(conds, " AND "), args, nil
}

func (w WhereUnique) String() string {
	switch {
	case w.ID != nil && w.Email != nil:
		return fmt.Sprintf("id=%d email=%q", *w.ID, *w.Email)
	case w.ID != nil:
		return fmt.Sprintf("id=%d", *w.ID)
	case w.Email != nil:
		return fmt.Sprintf("email=%q", *w.Email)
	default:
		return "<empty>"
	}
}

// ToNullString converts an optional string to sql.NullString.
func ToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	accountColumns = "id, name, email, office_address, office_phone"
	contactColumns = "id, name, email, title, personal_address, personal_phone_number, account_id"
)

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.OfficeAddress, &a.OfficePhone); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanContact(row rowScanner) (*Contact, error) {
	var c Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Title, &c.PersonalAddress, &c.PersonalPhoneNumber, &c.AccountID); err != nil {
		return nil, err
	}
	return &c, nil
}
