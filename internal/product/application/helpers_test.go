package application_test

import (
	"context"
	"sync"

	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	writes   int
}

func newMemRepo() *memRepo { return &memRepo{products: map[string]domain.Product{}} }

func (r *memRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	r.writes++
	return nil
}

func (r *memRepo) Update(ctx context.Context, p *domain.Product) error { return r.Create(ctx, p) }

func (r *memRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	p.PriceBrackets = append([]domain.PriceBracket(nil), p.PriceBrackets...)
	return &p, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

type recordingPublisher struct {
	events []envelope.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt envelope.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}
