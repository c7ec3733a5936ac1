package interfaces

import (
	"context"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

// TransferEventPublisher receives committed transfers. Implementations must
// not block the request for long; failures are logged by the caller.
type TransferEventPublisher interface {
	PublishTransferCompleted(ctx context.Context, event *domain.TransferCompleted) error
}

