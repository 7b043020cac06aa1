package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// View is the cart snapshot returned to callers after every mutation.
type View struct {
	SessionID string          `json:"session_id"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

// Service owns the in-progress carts, one per checkout session. All access
// is serialized through one mutex: the POS is a single logical writer, and
// the registry keeps that property when the transport layer is concurrent.
type Service interface {
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity string) (*View, error)
	AddWeighedItem(ctx context.Context, sessionID string, productID uuid.UUID, weight string) (*View, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (*View, error)
	Lines(ctx context.Context, sessionID string) ([]Line, error)
}

type session struct {
	builder Builder
	touched time.Time
}

type service struct {
	mu       sync.Mutex
	sessions map[string]*session
	catalog  productLoader
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds the cart session registry.
func NewService(catalog productLoader, sessionTTL time.Duration) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if sessionTTL <= 0 {
		sessionTTL = 4 * time.Hour
	}
	return &service{
		sessions: map[string]*session{},
		catalog:  catalog,
		ttl:      sessionTTL,
		now:      time.Now,
	}, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity string) (*View, error) {
	qty := decimal.NewFromInt(1)
	if quantity != "" {
		parsed, err := ParseQuantity(quantity)
		if err != nil {
			return nil, err
		}
		qty = parsed
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	if err := sess.builder.AddItem(product, qty); err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

func (s *service) AddWeighedItem(ctx context.Context, sessionID string, productID uuid.UUID, weight string) (*View, error) {
	parsed, err := ParseQuantity(weight)
	if err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	if err := sess.builder.AddWeighedItem(product, parsed); err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID string, index int) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	if err := sess.builder.RemoveLine(index); err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	return s.view(sessionID, sess), nil
}

func (s *service) Lines(ctx context.Context, sessionID string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.builder.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	sess.touched = s.now()
	return sess.builder.Lines(), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeProductNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

// session returns the live session for the id, creating it when absent and
// sweeping expired neighbours while the lock is held.
func (s *service) session(sessionID string) *session {
	now := s.now()
	for id, sess := range s.sessions {
		if id != sessionID && now.Sub(sess.touched) > s.ttl {
			delete(s.sessions, id)
		}
	}

	sess, ok := s.sessions[sessionID]
	if !ok || now.Sub(sess.touched) > s.ttl {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.touched = now
	return sess
}

func (s *service) view(sessionID string, sess *session) *View {
	return &View{
		SessionID: sessionID,
		Lines:     sess.builder.Lines(),
		Total:     sess.builder.Total(),
	}
}
