package usecase

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// fakeLedger - леджер в памяти для юзкейс-тестов. Мьютекс сериализует
// транзакции так же, как блокировки строк сериализуют их в Postgres;
// ошибка из fn восстанавливает снимок, имитируя откат.
type fakeLedger struct {
	mu sync.Mutex

	properties map[uuid.UUID]domain.Property
	offers     map[uuid.UUID]domain.Offer
	contracts  map[uuid.UUID]domain.Contract
	escrows    map[uuid.UUID]domain.EscrowAccount

	transactions []domain.EscrowTransaction
	disputes     []domain.Dispute
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		properties: make(map[uuid.UUID]domain.Property),
		offers:     make(map[uuid.UUID]domain.Offer),
		contracts:  make(map[uuid.UUID]domain.Contract),
		escrows:    make(map[uuid.UUID]domain.EscrowAccount),
	}
}

func (l *fakeLedger) WithinTx(_ context.Context, fn func(tx port.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	properties := maps.Clone(l.properties)
	offers := maps.Clone(l.offers)
	contracts := maps.Clone(l.contracts)
	escrows := maps.Clone(l.escrows)
	transactions := slices.Clone(l.transactions)
	disputes := slices.Clone(l.disputes)

	if err := fn(&fakeTx{l: l}); err != nil {
		l.properties = properties
		l.offers = offers
		l.contracts = contracts
		l.escrows = escrows
		l.transactions = transactions
		l.disputes = disputes
		return err
	}
	return nil
}

func (l *fakeLedger) GetProperty(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getProperty(id)
}

func (l *fakeLedger) GetOffer(_ context.Context, id uuid.UUID) (*domain.Offer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOffer(id)
}

func (l *fakeLedger) GetContract(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getContract(id)
}

func (l *fakeLedger) GetEscrowAccount(_ context.Context, id uuid.UUID) (*domain.EscrowAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getEscrow(id)
}

func (l *fakeLedger) ListOffersByProperty(_ context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Offer
	for _, o := range l.offers {
		if o.PropertyID == propertyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (l *fakeLedger) ListOffersByBuyer(_ context.Context, buyerID uuid.UUID) ([]domain.Offer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Offer
	for _, o := range l.offers {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (l *fakeLedger) ListEscrowTransactions(_ context.Context, escrowAccountID uuid.UUID) ([]domain.EscrowTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.EscrowTransaction
	for _, t := range l.transactions {
		if t.EscrowAccountID == escrowAccountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *fakeLedger) getProperty(id uuid.UUID) (*domain.Property, error) {
	p, ok := l.properties[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	return &p, nil
}

func (l *fakeLedger) getOffer(id uuid.UUID) (*domain.Offer, error) {
	o, ok := l.offers[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	return &o, nil
}

func (l *fakeLedger) getContract(id uuid.UUID) (*domain.Contract, error) {
	c, ok := l.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return &c, nil
}

func (l *fakeLedger) getEscrow(id uuid.UUID) (*domain.EscrowAccount, error) {
	a, ok := l.escrows[id]
	if !ok {
		return nil, domain.ErrEscrowNotFound
	}
	return &a, nil
}

// fakeTx работает под мьютексом, взятым в WithinTx.
type fakeTx struct {
	l *fakeLedger
}

func (t *fakeTx) InsertProperty(_ context.Context, p *domain.Property) error {
	t.l.properties[p.ID] = *p
	return nil
}

func (t *fakeTx) GetProperty(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	return t.l.getProperty(id)
}

func (t *fakeTx) GetPropertyForUpdate(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	return t.l.getProperty(id)
}

func (t *fakeTx) SetPropertyStatus(_ context.Context, id uuid.UUID, status domain.PropertyStatus) error {
	p, ok := t.l.properties[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	p.Status = status
	t.l.properties[id] = p
	return nil
}

func (t *fakeTx) CountOpenEngagements(_ context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	for _, o := range t.l.offers {
		if o.PropertyID == propertyID && o.Live() {
			count++
		}
	}
	for _, c := range t.l.contracts {
		if c.PropertyID == propertyID && c.Status != domain.ContractCompleted && c.Status != domain.ContractCancelled {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) InsertOffer(_ context.Context, o *domain.Offer) error {
	for _, existing := range t.l.offers {
		if existing.PropertyID == o.PropertyID && existing.BuyerID == o.BuyerID && existing.Live() {
			return domain.ErrDuplicatePendingOffer
		}
	}
	t.l.offers[o.ID] = *o
	return nil
}

func (t *fakeTx) GetOffer(_ context.Context, id uuid.UUID) (*domain.Offer, error) {
	return t.l.getOffer(id)
}

func (t *fakeTx) GetOfferForUpdate(_ context.Context, id uuid.UUID) (*domain.Offer, error) {
	return t.l.getOffer(id)
}

func (t *fakeTx) UpdateOffer(_ context.Context, o *domain.Offer) error {
	if _, ok := t.l.offers[o.ID]; !ok {
		return domain.ErrOfferNotFound
	}
	t.l.offers[o.ID] = *o
	return nil
}

func (t *fakeTx) RejectLiveSiblings(_ context.Context, propertyID, acceptedOfferID uuid.UUID) (int64, error) {
	var affected int64
	for id, o := range t.l.offers {
		if o.PropertyID == propertyID && id != acceptedOfferID && o.Live() {
			o.Status = domain.OfferRejected
			t.l.offers[id] = o
			affected++
		}
	}
	return affected, nil
}

func (t *fakeTx) HasLiveOffer(_ context.Context, propertyID, buyerID uuid.UUID) (bool, error) {
	for _, o := range t.l.offers {
		if o.PropertyID == propertyID && o.BuyerID == buyerID && o.Live() {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) InsertContract(_ context.Context, c *domain.Contract) error {
	t.l.contracts[c.ID] = *c
	return nil
}

func (t *fakeTx) GetContract(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	return t.l.getContract(id)
}

func (t *fakeTx) InsertEscrowAccount(_ context.Context, a *domain.EscrowAccount) error {
	for _, existing := range t.l.escrows {
		if existing.ContractID == a.ContractID {
			return domain.ErrEscrowExists
		}
	}
	t.l.escrows[a.ID] = *a
	return nil
}

func (t *fakeTx) GetEscrowAccountForUpdate(_ context.Context, id uuid.UUID) (*domain.EscrowAccount, error) {
	return t.l.getEscrow(id)
}

func (t *fakeTx) ApplyEscrowDeposit(_ context.Context, id uuid.UUID, amount decimal.Decimal, status domain.EscrowStatus) (bool, error) {
	a, ok := t.l.escrows[id]
	if !ok {
		return false, domain.ErrEscrowNotFound
	}
	if a.DepositedAmount.Add(amount).Cmp(a.TotalAmount) > 0 {
		return false, nil
	}
	a.DepositedAmount = a.DepositedAmount.Add(amount)
	a.Status = status
	t.l.escrows[id] = a
	return true, nil
}

func (t *fakeTx) ApplyEscrowRelease(_ context.Context, id uuid.UUID, amount, fee decimal.Decimal, status domain.EscrowStatus) (bool, error) {
	a, ok := t.l.escrows[id]
	if !ok {
		return false, domain.ErrEscrowNotFound
	}
	if a.ReleasedAmount.Add(amount).Cmp(a.DepositedAmount) > 0 {
		return false, nil
	}
	a.ReleasedAmount = a.ReleasedAmount.Add(amount)
	a.FeeAmount = a.FeeAmount.Add(fee)
	a.Status = status
	t.l.escrows[id] = a
	return true, nil
}

func (t *fakeTx) SetEscrowStatus(_ context.Context, id uuid.UUID, status domain.EscrowStatus) error {
	a, ok := t.l.escrows[id]
	if !ok {
		return domain.ErrEscrowNotFound
	}
	a.Status = status
	t.l.escrows[id] = a
	return nil
}

func (t *fakeTx) InsertEscrowTransaction(_ context.Context, tx *domain.EscrowTransaction) error {
	t.l.transactions = append(t.l.transactions, *tx)
	return nil
}

func (t *fakeTx) InsertDispute(_ context.Context, d *domain.Dispute) error {
	t.l.disputes = append(t.l.disputes, *d)
	return nil
}

// fakeNotifier и fakeAudit накапливают события для проверок.
type fakeNotifier struct {
	mu     sync.Mutex
	events []port.NotificationEvent
}

func (n *fakeNotifier) PublishNotification(_ context.Context, event port.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) byType(eventType string) []port.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []port.NotificationEvent
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeAudit struct {
	mu     sync.Mutex
	events []port.AuditEvent
}

func (a *fakeAudit) RecordAudit(_ context.Context, event port.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}
