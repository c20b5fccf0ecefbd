package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

func dataset(contacts, connections int) Dataset {
	var d Dataset
	for i := 0; i < contacts; i++ {
		d.Contacts = append(d.Contacts, ContactInput{ID: fmt.Sprintf("c-%d", i), Name: fmt.Sprintf("Contact %d", i)})
	}
	for i := 0; i < connections; i++ {
		d.Connections = append(d.Connections, ConnectionInput{
			ID:         fmt.Sprintf("k-%d", i),
			ContactAID: fmt.Sprintf("c-%d", i%contacts),
			ContactBID: fmt.Sprintf("c-%d", (i+1)%contacts),
			Strength:   "weak",
		})
	}
	return d
}

func TestBulkIngestor_Ingest(t *testing.T) {
	store := &stubStore{}
	ingestor := NewBulkIngestor(NewNetworkService(store, nil, Options{}), 3)

	require.NoError(t, ingestor.Ingest(context.Background(), dataset(10, 25)))
	assert.Len(t, store.contacts, 10)
	assert.Len(t, store.connections, 25)
}

func TestBulkIngestor_AggregatesErrors(t *testing.T) {
	missing := errors.New("endpoint missing")
	store := &stubStore{connErr: func(c domain.NetworkConnection) error {
		if c.ID == "k-3" || c.ID == "k-7" {
			return missing
		}
		return nil
	}}
	ingestor := NewBulkIngestor(NewNetworkService(store, nil, Options{}), 2)

	err := ingestor.Ingest(context.Background(), dataset(5, 10))
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Len(t, taskErr.Errors, 2)
	assert.ErrorIs(t, err, missing)
	assert.Len(t, store.connections, 8)
}

func TestBulkIngestor_StopsBeforeConnectionsWhenContactsFail(t *testing.T) {
	store := &stubStore{contactErr: errors.New("write refused")}
	ingestor := NewBulkIngestor(NewNetworkService(store, nil, Options{}), 0)

	err := ingestor.Ingest(context.Background(), dataset(3, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest contacts")
	assert.Empty(t, store.connections)
}

func TestBulkIngestor_CancelledContext(t *testing.T) {
	store := &stubStore{}
	ingestor := NewBulkIngestor(NewNetworkService(store, nil, Options{}), 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ingestor.IngestContacts(ctx, dataset(50, 0).Contacts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.contacts)
}

func TestTaskErrorMessage(t *testing.T) {
	assert.Equal(t, "no errors", (&TaskError{}).Error())
	assert.Equal(t, "a", (&TaskError{Errors: []error{errors.New("a")}}).Error())
	assert.Equal(t, "2 errors: a; b;", (&TaskError{Errors: []error{errors.New("a"), errors.New("b")}}).Error())
}
