package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// LedgerStorePort - порт долговременного хранилища (Ledger Store).
// Все мутации идут через WithinTx: одна операция ядра - одна транзакция,
// частичное применение эффектов не должно быть наблюдаемо снаружи.
type LedgerStorePort interface {
	// WithinTx выполняет fn в одной транзакции. Ошибка из fn откатывает
	// все изменения; nil - коммитит их разом.
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// Чтения вне транзакций (списки, карточки, выписки)
	GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	GetEscrowAccount(ctx context.Context, id uuid.UUID) (*domain.EscrowAccount, error)
	ListOffersByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error)
	ListOffersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Offer, error)
	ListEscrowTransactions(ctx context.Context, escrowAccountID uuid.UUID) ([]domain.EscrowTransaction, error)
}

// LedgerTx - операции, доступные внутри одной транзакции леджера.
type LedgerTx interface {
	PropertyLedger
	OfferLedger
	ContractLedger
	EscrowLedger
}

// PropertyLedger - транзакционные операции над объявлениями.
type PropertyLedger interface {
	InsertProperty(ctx context.Context, p *domain.Property) error

	// GetProperty - чтение без блокировки (для проверок в момент создания предложения).
	GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	// GetPropertyForUpdate берет блокировку строки (SELECT ... FOR UPDATE)
	// на время транзакции. Обязательно при каскаде принятия предложения.
	GetPropertyForUpdate(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	SetPropertyStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error

	// CountOpenEngagements считает живые предложения и действующие контракты
	// по объявлению; удаление объявления блокируется, пока их > 0.
	CountOpenEngagements(ctx context.Context, propertyID uuid.UUID) (int64, error)
}

// OfferLedger - транзакционные операции над предложениями.
type OfferLedger interface {
	InsertOffer(ctx context.Context, o *domain.Offer) error

	// GetOffer - чтение без блокировки (чтобы узнать property_id до того,
	// как брать блокировки в правильном порядке: сначала объявление,
	// затем предложение).
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error)

	GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	UpdateOffer(ctx context.Context, o *domain.Offer) error

	// RejectLiveSiblings переводит все ДРУГИЕ живые предложения по
	// объявлению (pending и countered) в rejected. Возвращает число
	// затронутых строк.
	RejectLiveSiblings(ctx context.Context, propertyID, acceptedOfferID uuid.UUID) (int64, error)

	// HasLiveOffer - есть ли у покупателя незавершенное предложение
	// (pending/countered) по этому объявлению.
	HasLiveOffer(ctx context.Context, propertyID, buyerID uuid.UUID) (bool, error)
}

// ContractLedger - транзакционные операции над контрактами.
type ContractLedger interface {
	InsertContract(ctx context.Context, c *domain.Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
}

// EscrowLedger - транзакционные операции над эскроу-счетами.
type EscrowLedger interface {
	// InsertEscrowAccount возвращает domain.ErrEscrowExists при нарушении
	// уникальности contract_id (1:1 инвариант).
	InsertEscrowAccount(ctx context.Context, a *domain.EscrowAccount) error

	GetEscrowAccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.EscrowAccount, error)

	// ApplyEscrowDeposit - охраняемый инкремент deposited_amount.
	// Возвращает false, если условие deposited + amount <= total не прошло
	// (проигранная гонка или превышение цели).
	ApplyEscrowDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, status domain.EscrowStatus) (bool, error)

	// ApplyEscrowRelease - охраняемый инкремент released_amount и fee_amount.
	// Возвращает false, если amount > deposited - released на момент записи.
	ApplyEscrowRelease(ctx context.Context, id uuid.UUID, amount, fee decimal.Decimal, status domain.EscrowStatus) (bool, error)

	SetEscrowStatus(ctx context.Context, id uuid.UUID, status domain.EscrowStatus) error

	InsertEscrowTransaction(ctx context.Context, t *domain.EscrowTransaction) error
	InsertDispute(ctx context.Context, d *domain.Dispute) error
}
