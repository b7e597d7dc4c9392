package vinted

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/transport"
)

// paymentService implements the PaymentService interface
type paymentService struct {
	client *Client
}

// CreatePurchase starts a purchase for an item
func (s *paymentService) CreatePurchase(ctx context.Context, params *PurchaseParams) (*Purchase, error) {
	if params == nil || params.ItemID == 0 {
		return nil, errors.New("item id is required")
	}

	var result struct {
		Purchase *Purchase `json:"purchase"`
	}

	req := &transport.Request{
		Method: http.MethodPost,
		Path:   "/api/v2/purchases",
		Body:   params,
	}
	resp, err := s.client.execute(ctx, req, &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create purchase")
	}
	if result.Purchase == nil {
		return nil, errors.New("purchase missing from response")
	}

	result.Purchase.RawData = resp.Body
	return result.Purchase, nil
}

// SubmitCheckout advances a purchase one checkout step. The checksum is
// an opaque continuation token from the previous step and is passed
// through verbatim.
func (s *paymentService) SubmitCheckout(ctx context.Context, purchaseID, checksum string) (*Checkout, error) {
	if purchaseID == "" {
		return nil, errors.New("purchase id is required")
	}

	var result struct {
		Checkout *Checkout `json:"checkout"`
	}

	req := &transport.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/v2/purchases/%s/checkout", purchaseID),
		Body: map[string]string{
			"checksum": checksum,
		},
	}
	resp, err := s.client.execute(ctx, req, &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit checkout step")
	}
	if result.Checkout == nil {
		return nil, errors.New("checkout missing from response")
	}

	result.Checkout.RawData = resp.Body
	return result.Checkout, nil
}
