package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOwners_FailureThenCreate(t *testing.T) {
	personRepo := testutil.NewMockPersonRepository()
	directory := NewOwnerDirectory(personRepo)
	ctx := context.Background()

	personRepo.ListOwnersFn = func(ctx context.Context) ([]*domain.Person, error) {
		return nil, errors.New("relation does not exist")
	}
	owners := directory.ListOwners(ctx)
	assert.NotNil(t, owners)
	assert.Empty(t, owners)
	assert.Empty(t, directory.Owners())

	personRepo.ListOwnersFn = nil
	created, err := directory.CreateOwner(ctx, "  Ali ")
	require.NoError(t, err)
	assert.Equal(t, "Ali", created.Name)

	// creation does not refresh the cached list
	assert.Empty(t, directory.Owners())

	owners = directory.ListOwners(ctx)
	require.Len(t, owners, 1)
	assert.Equal(t, "Ali", owners[0].Name)
	assert.Equal(t, owners, directory.Owners())
}

func TestListSalesmen_FailureDegradesToEmpty(t *testing.T) {
	personRepo := testutil.NewMockPersonRepository()
	personRepo.ListSalesmenFn = func(ctx context.Context) ([]*domain.Person, error) {
		return nil, errors.New("timeout")
	}
	directory := NewOwnerDirectory(personRepo)

	salesmen := directory.ListSalesmen(context.Background())

	assert.NotNil(t, salesmen)
	assert.Empty(t, salesmen)
}

func TestListSalesmen_OrderedByName(t *testing.T) {
	personRepo := testutil.NewMockPersonRepository()
	personRepo.Salesmen = []*domain.Person{{ID: 2, Name: "Zaid"}, {ID: 1, Name: "Budi"}}
	directory := NewOwnerDirectory(personRepo)

	salesmen := directory.ListSalesmen(context.Background())

	require.Len(t, salesmen, 2)
	assert.Equal(t, "Budi", salesmen[0].Name)
	assert.Equal(t, "Zaid", salesmen[1].Name)
}

func TestCreateOwner_Validation(t *testing.T) {
	personRepo := testutil.NewMockPersonRepository()
	called := false
	personRepo.CreateOwnerFn = func(ctx context.Context, name string) (*domain.Person, error) {
		called = true
		return &domain.Person{ID: 1, Name: name}, nil
	}
	directory := NewOwnerDirectory(personRepo)

	_, err := directory.CreateOwner(context.Background(), "   ")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.False(t, called)
}

func TestCreateOwner_BackendFailure(t *testing.T) {
	personRepo := testutil.NewMockPersonRepository()
	personRepo.CreateOwnerFn = func(ctx context.Context, name string) (*domain.Person, error) {
		return nil, domain.ErrAlreadyExists
	}
	directory := NewOwnerDirectory(personRepo)
	publisher := testutil.NewMockEventPublisher()
	directory.SetEventPublisher(publisher, "s")

	_, err := directory.CreateOwner(context.Background(), "Ali")

	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Empty(t, publisher.Types())
	assert.False(t, directory.WritePending())
}

func TestPickerOptionsAndResolveOwner(t *testing.T) {
	salesmen := []domain.Person{{ID: 7, Name: "Budi"}}
	owners := []domain.Person{{ID: 7, Name: "Ali"}}

	options := PickerOptions(salesmen, owners)

	require.Len(t, options, 2)
	assert.Equal(t, PickerOption{Token: "salesman-7", Label: "Budi", Kind: domain.PersonKindSalesman}, options[0])
	assert.Equal(t, PickerOption{Token: "owner-7", Label: "Ali", Kind: domain.PersonKindOwner}, options[1])

	for _, opt := range options {
		ref, err := ResolveOwner(opt.Token)
		require.NoError(t, err)
		assert.Equal(t, opt.Token, ref.Token())
	}

	ref, err := ResolveOwner("")
	require.NoError(t, err)
	assert.False(t, ref.IsSet())

	_, err = ResolveOwner("manager-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
