package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/LivrariumProject/back-end/model"
)

type ChargeReq struct {
	ExternalID string
	Amount     float64
	Method     model.PaymentMethod
}

type ChargeResp struct {
	TransactionID string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeReq) (*ChargeResp, error)
}

// local is the default gateway when no PAYMENT_GATEWAY_URL is configured; it
// only mints a transaction id, approval is decided by the caller.
type local struct{}

func NewLocal() Gateway { return local{} }

func (local) Charge(_ context.Context, _ ChargeReq) (*ChargeResp, error) {
	return &ChargeResp{TransactionID: fmt.Sprintf("TXN_%s", uuid.NewString())}, nil
}
