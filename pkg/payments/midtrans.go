package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/noah-isme/campus-erp-api/pkg/config"
)

// Checkout is a hosted payment page handle returned by the gateway.
type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutInput describes the fee being collected online.
type CheckoutInput struct {
	OrderID      string
	Amount       float64
	ItemName     string
	CustomerName string
	Email        string
	Phone        string
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
}

// MidtransGateway implements Gateway on the Midtrans Snap API.
type MidtransGateway struct {
	client snap.Client
}

func NewMidtransGateway(cfg config.PaymentsConfig) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	g := &MidtransGateway{}
	g.client.New(cfg.ServerKey, env)
	return g
}

func (g *MidtransGateway) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gross := int64(math.Round(in.Amount))
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: in.CustomerName,
			Email: in.Email,
			Phone: in.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    in.OrderID,
				Price: gross,
				Qty:   1,
				Name:  in.ItemName,
			},
		},
	}

	resp, mErr := g.client.CreateTransaction(req)
	if mErr != nil {
		return nil, fmt.Errorf("creating snap transaction: %w", mErr)
	}

	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}
