package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/pkg/apperror"
)

type transactionGateway struct {
	client *Client
}

// NewTransactionGateway creates a gateway for transaction mutations
func NewTransactionGateway(client *Client) domainRepo.TransactionGateway {
	return &transactionGateway{client: client}
}

func (g *transactionGateway) Create(ctx context.Context, txType enum.TransactionType, payload *entity.TransactionPayload, idempotencyKey string) (*entity.TransactionResult, error) {
	path := domainRepo.CreateTransactionPath(txType)
	if path == "" {
		return nil, apperror.NewBadRequestError("Unsupported transaction type")
	}

	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}

	raw, err := g.client.do(ctx, request{method: "POST", path: path, body: payload, headers: headers})
	if err != nil {
		return nil, err
	}

	result := &entity.TransactionResult{Raw: raw}
	_ = json.Unmarshal(unwrapData(raw), result)
	if len(result.Invalidates) == 0 {
		// Some deployments put the invalidation hint next to the envelope
		var top struct {
			Invalidates []string `json:"invalidates"`
		}
		if json.Unmarshal(raw, &top) == nil {
			result.Invalidates = top.Invalidates
		}
	}
	return result, nil
}

func (g *transactionGateway) Delete(ctx context.Context, id string) error {
	_, err := g.client.do(ctx, request{method: "DELETE", path: "/api/transactions/" + url.PathEscape(id)})
	return err
}

func (g *transactionGateway) GetWithRelations(ctx context.Context, id string) (json.RawMessage, error) {
	return g.client.do(ctx, request{method: "GET", path: "/api/transactions/" + url.PathEscape(id) + "/relations"})
}
