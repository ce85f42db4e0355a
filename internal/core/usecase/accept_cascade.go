package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// acceptLocked выполняет каскад принятия предложения: само предложение
// становится accepted, все конкурирующие pending-предложения - rejected,
// объявление - sold, и материализуется контракт с эскроу-счетом.
//
// Ключевое свойство корректности: по одному объявлению принятым может стать
// не более одного предложения. Вызывающий обязан до вызова взять блокировки
// строк объявления и предложения в одной транзакции - все записи каскада
// коммитятся разом или не коммитятся вовсе.
func acceptLocked(ctx context.Context, tx port.LedgerTx, offer *domain.Offer, amount decimal.Decimal, materializer *ContractMaterializer, now time.Time) (*domain.Contract, error) {
	offer.Status = domain.OfferAccepted
	offer.UpdatedAt = now
	if err := tx.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to mark offer %s accepted: %w", offer.ID, err)
	}

	// Все остальные живые предложения (pending и countered)
	// единообразно отклоняются, порядок не важен.
	if _, err := tx.RejectLiveSiblings(ctx, offer.PropertyID, offer.ID); err != nil {
		return nil, fmt.Errorf("failed to reject sibling offers for property %s: %w", offer.PropertyID, err)
	}

	if err := tx.SetPropertyStatus(ctx, offer.PropertyID, domain.PropertySold); err != nil {
		return nil, fmt.Errorf("failed to mark property %s sold: %w", offer.PropertyID, err)
	}

	contract, _, err := materializer.Materialize(ctx, tx, offer, amount, now)
	if err != nil {
		return nil, err
	}

	return contract, nil
}
