package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/slgMitch/fidelity-interview/internal/database"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// AccountCreateInput is the input for createAccount.
type AccountCreateInput struct {
	Name          *string
	Email         string
	OfficeAddress *string
	OfficePhone   *string
	Contacts      *[]ContactCreateInput
}

// ContactCreateInput is the input for addContact and for nested contacts.
type ContactCreateInput struct {
	Name                *string
	Email               string
	Title               *string
	PersonalAddress     *string
	PersonalPhoneNumber *string
}

// AccountUniqueInput selects one account.
type AccountUniqueInput struct {
	ID    *int32
	Email *string
}

// ContactUniqueInput selects one contact.
type ContactUniqueInput struct {
	ID    *int32
	Email *string
}

func (in AccountCreateInput) toCreate() database.AccountCreate {
	out := database.AccountCreate{
		Name:          in.Name,
		Email:         in.Email,
		OfficeAddress: in.OfficeAddress,
		OfficePhone:   in.OfficePhone,
	}
	if in.Contacts != nil {
		out.Contacts = make([]database.ContactCreate, len(*in.Contacts))
		for i, c := range *in.Contacts {
			out.Contacts[i] = c.toCreate()
		}
	}
	return out
}

func (in ContactCreateInput) toCreate() database.ContactCreate {
	return database.ContactCreate{
		Name:                in.Name,
		Email:               in.Email,
		Title:               in.Title,
		PersonalAddress:     in.PersonalAddress,
		PersonalPhoneNumber: in.PersonalPhoneNumber,
	}
}

func (in AccountUniqueInput) toWhere() database.WhereUnique {
	return whereUnique(in.ID, in.Email)
}

func (in ContactUniqueInput) toWhere() database.WhereUnique {
	return whereUnique(in.ID, in.Email)
}

func whereUnique(id *int32, email *string) database.WhereUnique {
	var w database.WhereUnique
	if id != nil {
		v := int64(*id)
		w.ID = &v
	}
	w.Email = email
	return w
}

// =============================================================================
// OBJECT TYPES
// =============================================================================

type accountResolver struct {
	r *Resolver
	a *database.Account
}

func (r *Resolver) account(a *database.Account) *accountResolver {
	if a == nil {
		return nil
	}
	return &accountResolver{r: r, a: a}
}

func (ar *accountResolver) ID() (int32, error) {
	return graphID(ar.a.ID)
}

func (ar *accountResolver) Name() *string {
	return nullableString(ar.a.Name.String, ar.a.Name.Valid)
}

func (ar *accountResolver) Email() string {
	return ar.a.Email
}

func (ar *accountResolver) OfficeAddress() string {
	return ar.a.OfficeAddress
}

func (ar *accountResolver) OfficePhone() string {
	return ar.a.OfficePhone
}

// Contacts resolves Account.contacts.
func (ar *accountResolver) Contacts(ctx context.Context) ([]*contactResolver, error) {
	contacts, err := ar.r.client(ctx).Accounts().Contacts(ctx, ar.a.ID)
	if err != nil {
		return nil, err
	}
	return ar.r.contacts(contacts), nil
}

type contactResolver struct {
	r *Resolver
	c *database.Contact
}

func (r *Resolver) contact(c *database.Contact) *contactResolver {
	if c == nil {
		return nil
	}
	return &contactResolver{r: r, c: c}
}

func (r *Resolver) contacts(cs []*database.Contact) []*contactResolver {
	out := make([]*contactResolver, len(cs))
	for i, c := range cs {
		out[i] = r.contact(c)
	}
	return out
}

func (cr *contactResolver) ID() (int32, error) {
	return graphID(cr.c.ID)
}

func (cr *contactResolver) Name() *string {
	return nullableString(cr.c.Name.String, cr.c.Name.Valid)
}

func (cr *contactResolver) Email() string {
	return cr.c.Email
}

func (cr *contactResolver) Title() string {
	return cr.c.Title
}

func (cr *contactResolver) PersonalAddress() string {
	return cr.c.PersonalAddress
}

func (cr *contactResolver) PersonalPhoneNumber() string {
	return cr.c.PersonalPhoneNumber
}

// ContactOf resolves Contact.contactOf.
func (cr *contactResolver) ContactOf(ctx context.Context) (*accountResolver, error) {
	a, err := cr.r.client(ctx).Contacts().ContactOf(ctx, cr.c.ID)
	if err != nil {
		return nil, err
	}
	return cr.r.account(a), nil
}

// graphID narrows a row id to the schema's Int, which is 32-bit.
func graphID(id int64) (int32, error) {
	if id < math.MinInt32 || id > math.MaxInt32 {
		return 0, fmt.Errorf("id %d does not fit in a GraphQL Int", id)
	}
	return int32(id), nil
}

func nullableString(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
