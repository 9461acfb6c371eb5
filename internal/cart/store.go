package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/gearmart-backend/internal/events"
	"github.com/angelmondragon/gearmart-backend/pkg/db"
	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the single source of truth for the active cart. Every mutation is
// serialized through a single-writer lock and a storage transaction, and each
// successful mutation republishes a fresh Cart snapshot to all observers.
// Failed mutations publish nothing.
type Store struct {
	repo    LineItemRepository
	tx      txRunner
	channel *events.Channel

	writeMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]chan Cart
	nextSub int
}

// NewStore builds the cart store backed by the provided stack.
func NewStore(repo LineItemRepository, tx txRunner, channel *events.Channel) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("line item repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if channel == nil {
		return nil, fmt.Errorf("event channel required")
	}
	return &Store{
		repo:    repo,
		tx:      tx,
		channel: channel,
		subs:    map[int]chan Cart{},
	}, nil
}

// AddProduct inserts a new line item for the product or increments the
// existing one. This is the only entry point for "add to cart"; the
// read-check-then-write runs inside one transaction under the writer lock so
// concurrent adds for the same product never create duplicate rows.
func (s *Store) AddProduct(ctx context.Context, product *models.Product, quantityDelta int) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if quantityDelta <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity delta must be positive")
	}
	if product.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByProductID(ctx, product.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing == nil {
			return repo.Create(ctx, &models.CartLineItem{
				ProductID:      product.ID,
				Name:           product.Name,
				Description:    product.Description,
				UnitPrice:      product.UnitPrice,
				ImageRef:       product.ImageRef,
				Category:       product.Category,
				AvailableStock: product.AvailableStock,
				Quantity:       quantityDelta,
			})
		}
		return repo.UpdateQuantity(ctx, product.ID, existing.Quantity+quantityDelta)
	})
	if err != nil {
		// The writer lock serializes adds in-process; the unique index on
		// product_id catches a racing insert from another instance. The
		// generic match covers both postgres and sqlite message shapes.
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart item already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	s.publishSnapshot(ctx)
	s.channel.Publish(events.ShowMessage(fmt.Sprintf("%s agregado al carrito", product.Name)))
	return nil
}

// SetQuantity overwrites the stored quantity for the product. A quantity of
// zero or less removes the line item. A missing product id is a silent no-op
// so a quantity edit racing a remove does not fail.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByProductID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if quantity <= 0 {
			return repo.Delete(ctx, existing.ProductID)
		}
		return repo.UpdateQuantity(ctx, existing.ProductID, quantity)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart quantity")
	}

	s.publishSnapshot(ctx)
	return nil
}

// Remove deletes the line item unconditionally.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}

	s.publishSnapshot(ctx)
	s.channel.Publish(events.ShowMessage("Producto eliminado del carrito"))
	return nil
}

// EmptyCart clears the cart on an explicit shopper request and announces it.
func (s *Store) EmptyCart(ctx context.Context) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	s.channel.Publish(events.ShowMessage("Carrito vaciado"))
	return nil
}

// Clear deletes every line item. Used by EmptyCart and by checkout after an
// order is finalized; the empty snapshot is published either way.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}

	s.publishSnapshot(ctx)
	return nil
}

// Snapshot reads the current Cart.
func (s *Store) Snapshot(ctx context.Context) (Cart, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart")
	}
	return NewCart(items), nil
}

// CurrentTotal is a convenience read of the snapshot subtotal.
func (s *Store) CurrentTotal(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Total, nil
}

// Observe returns a restartable snapshot stream: the current Cart is
// delivered immediately, then a fresh snapshot after every mutation. Slow
// observers are coalesced to the latest snapshot. The stream ends when ctx
// is cancelled.
func (s *Store) Observe(ctx context.Context) (<-chan Cart, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sub := make(chan Cart, 1)
	sub <- snapshot

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if current, ok := s.subs[id]; ok && current == sub {
			delete(s.subs, id)
			close(sub)
		}
	}()

	return sub, nil
}

func (s *Store) publishSnapshot(ctx context.Context) {
	items, err := s.repo.List(ctx)
	if err != nil {
		// The mutation already committed; observers keep their previous
		// snapshot rather than receiving a partial one.
		return
	}
	snapshot := NewCart(items)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- snapshot:
		default:
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- snapshot:
			default:
			}
		}
	}
}
