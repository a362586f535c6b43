package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
)

const ticketsPath = "tickets"

// DocstoreTicketRepository implements TicketRepository on the document store
type DocstoreTicketRepository struct {
	store docstore.Store
}

var _ TicketRepository = (*DocstoreTicketRepository)(nil)

// NewDocstoreTicketRepository creates a new DocstoreTicketRepository
func NewDocstoreTicketRepository(store docstore.Store) *DocstoreTicketRepository {
	return &DocstoreTicketRepository{store: store}
}

func ticketPath(code string) string {
	return docstore.Join(ticketsPath, code)
}

func (r *DocstoreTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	err := r.store.Transaction(ctx, ticketPath(ticket.CodigoTicket), func(node docstore.TransactionNode) (interface{}, error) {
		var existing *domain.Ticket
		if err := node.Unmarshal(&existing); err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrTicketCodeTaken
		}
		return ticket, nil
	})
	if err != nil {
		if errors.Is(err, ErrTicketCodeTaken) {
			return err
		}
		return fmt.Errorf("failed to create ticket %s: %w", ticket.CodigoTicket, err)
	}
	return nil
}

func (r *DocstoreTicketRepository) Exists(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrTicketNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r *DocstoreTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := r.store.Get(ctx, ticketPath(code), &t); err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket %s: %w", code, err)
	}
	if t.CodigoTicket == "" {
		t.CodigoTicket = code
	}
	return &t, nil
}

func (r *DocstoreTicketRepository) List(ctx context.Context) (map[string]*domain.Ticket, error) {
	all := map[string]*domain.Ticket{}
	if err := r.store.Get(ctx, ticketsPath, &all); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return map[string]*domain.Ticket{}, nil
		}
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	for code, t := range all {
		if t == nil {
			delete(all, code)
			continue
		}
		if t.CodigoTicket == "" {
			t.CodigoTicket = code
		}
	}
	return all, nil
}

// UpdateStatus edits the raw node so fields unknown to Ticket survive
func (r *DocstoreTicketRepository) UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error) {
	var node map[string]interface{}
	err := r.store.Transaction(ctx, ticketPath(code), func(tn docstore.TransactionNode) (interface{}, error) {
		node = nil
		if err := tn.Unmarshal(&node); err != nil {
			return nil, err
		}
		if node == nil {
			return nil, domain.ErrTicketNotFound
		}
		node["estado"] = estado
		return node, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update ticket %s: %w", code, err)
	}

	raw, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	var t domain.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode ticket %s: %w", code, err)
	}
	if t.CodigoTicket == "" {
		t.CodigoTicket = code
	}
	return &t, nil
}
