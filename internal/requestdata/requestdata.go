package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the per-request identity extracted from the access token.
// Every data access downstream is scoped by TenantID.
type RequestData struct {
	TokenString   string
	TenantID      uuid.UUID
	BeneficiaryID uuid.UUID
}
