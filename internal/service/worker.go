package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString(";")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor writes large contact and connection datasets using a worker pool.
type BulkIngestor struct {
	service *NetworkService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *NetworkService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// Ingest writes every contact before any connection, since a connection can
// only be stored once both of its contacts exist. Connection ingestion is
// skipped when contacts fail.
func (bi *BulkIngestor) Ingest(ctx context.Context, data Dataset) error {
	if err := bi.IngestContacts(ctx, data.Contacts); err != nil {
		return fmt.Errorf("ingest contacts: %w", err)
	}
	if err := bi.IngestConnections(ctx, data.Connections); err != nil {
		return fmt.Errorf("ingest connections: %w", err)
	}
	return nil
}

// IngestContacts processes the provided contact inputs concurrently.
func (bi *BulkIngestor) IngestContacts(ctx context.Context, contacts []ContactInput) error {
	return bi.run(ctx, len(contacts), func(idx int) error {
		if err := bi.service.UpsertContact(ctx, contacts[idx]); err != nil {
			return fmt.Errorf("contact %d (%s): %w", idx, contacts[idx].ID, err)
		}
		return nil
	})
}

// IngestConnections processes connection inputs concurrently.
func (bi *BulkIngestor) IngestConnections(ctx context.Context, conns []ConnectionInput) error {
	return bi.run(ctx, len(conns), func(idx int) error {
		if _, err := bi.service.UpsertConnection(ctx, conns[idx]); err != nil {
			return fmt.Errorf("connection %d (%s): %w", idx, conns[idx].ID, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
