package graph

import (
	"context"
	"fmt"

	"github.com/slgMitch/fidelity-interview/internal/database"
	"github.com/slgMitch/fidelity-interview/internal/logging"
)

// =============================================================================
// QUERY RESOLVERS
// =============================================================================

// Query returns the query resolver.
func (r *Resolver) Query() *queryResolver {
	return &queryResolver{r}
}

type queryResolver struct{ *Resolver }

// AllAccounts returns every account.
func (r *queryResolver) AllAccounts(ctx context.Context) ([]*accountResolver, error) {
	accounts, err := r.client(ctx).Accounts().FindMany(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*accountResolver, len(accounts))
	for i, a := range accounts {
		result[i] = r.account(a)
	}
	return result, nil
}

// AllContacts returns every contact.
func (r *queryResolver) AllContacts(ctx context.Context) ([]*contactResolver, error) {
	contacts, err := r.client(ctx).Contacts().FindMany(ctx)
	if err != nil {
		return nil, err
	}
	return r.contacts(contacts), nil
}

// Account returns a single account by id or email.
func (r *queryResolver) Account(ctx context.Context, args struct{ Where AccountUniqueInput }) (*accountResolver, error) {
	a, err := r.client(ctx).Accounts().FindUnique(ctx, args.Where.toWhere())
	if err != nil {
		return nil, err
	}
	return r.account(a), nil
}

// ContactByID returns a single contact. An omitted id matches nothing.
func (r *queryResolver) ContactByID(ctx context.Context, args struct{ ID *int32 }) (*contactResolver, error) {
	if args.ID == nil {
		return nil, nil
	}
	c, err := r.client(ctx).Contacts().FindUnique(ctx, database.ByID(int64(*args.ID)))
	if err != nil {
		return nil, err
	}
	return r.contact(c), nil
}

// =============================================================================
// MUTATION RESOLVERS
// =============================================================================

// Mutation returns the mutation resolver.
func (r *Resolver) Mutation() *mutationResolver {
	return &mutationResolver{r}
}

type mutationResolver struct{ *Resolver }

// CreateAccount creates an account and its nested contacts.
func (r *mutationResolver) CreateAccount(ctx context.Context, args struct{ Data AccountCreateInput }) (*accountResolver, error) {
	in := args.Data.toCreate()
	a, err := r.client(ctx).Accounts().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	LoggerFor(ctx).WithFields(logging.Fields{
		"account_id": a.ID,
		"contacts":   len(in.Contacts),
	}).Info("Account created")
	return r.account(a), nil
}

// AddContact creates a contact connected to the account with accountEmail.
func (r *mutationResolver) AddContact(ctx context.Context, args struct {
	Data         ContactCreateInput
	AccountEmail string
}) (*contactResolver, error) {
	in := args.Data.toCreate()
	connect := database.ByEmail(args.AccountEmail)
	in.ConnectAccount = &connect

	c, err := r.client(ctx).Contacts().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	LoggerFor(ctx).WithFields(logging.Fields{
		"contact_id":    c.ID,
		"account_email": args.AccountEmail,
	}).Info("Contact added")
	return r.contact(c), nil
}

// RemoveContact detaches a contact from the account with accountEmail.
func (r *mutationResolver) RemoveContact(ctx context.Context, args struct {
	AccountEmail string
	Where        *ContactUniqueInput
}) (*contactResolver, error) {
	if args.Where == nil {
		return nil, fmt.Errorf("%w: removeContact needs where to identify the contact", database.ErrInvalidArgument)
	}

	c, err := r.client(ctx).Contacts().Disconnect(ctx, args.Where.toWhere(), database.ByEmail(args.AccountEmail))
	if err != nil {
		return nil, err
	}
	LoggerFor(ctx).WithFields(logging.Fields{
		"contact_id":    c.ID,
		"account_email": args.AccountEmail,
	}).Info("Contact removed")
	return r.contact(c), nil
}

// DeleteAccount deletes an account and returns its last values.
func (r *mutationResolver) DeleteAccount(ctx context.Context, args struct{ ID int32 }) (*accountResolver, error) {
	a, err := r.client(ctx).Accounts().Delete(ctx, int64(args.ID))
	if err != nil {
		return nil, err
	}
	LoggerFor(ctx).WithField("account_id", a.ID).Info("Account deleted")
	return r.account(a), nil
}
