package services

import (
	"context"
	"fmt"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// AssetResolver turns an asset's content state into bytes. Callers that walk
// many assets must treat a per-asset error as skippable, not abort the whole
// operation.
type AssetResolver interface {
	Resolve(ctx context.Context, content types.Content) ([]byte, error)
}

type assetResolver struct {
	log   *logger.Logger
	blobs *blobs.Store
}

func NewAssetResolver(log *logger.Logger, store *blobs.Store) AssetResolver {
	return &assetResolver{
		log:   log.With("service", "AssetResolver"),
		blobs: store,
	}
}

func (r *assetResolver) Resolve(ctx context.Context, content types.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch c := content.(type) {
	case types.PendingUpload:
		// Fresh upload: the bytes are already in hand.
		return c.Data, nil
	case *types.PendingUpload:
		return c.Data, nil
	case types.ResolvedRef:
		data, _, err := r.blobs.Get(c.Handle)
		if err != nil {
			return nil, fmt.Errorf("fetch blob %s: %w", c.Handle, err)
		}
		return data, nil
	case *types.ResolvedRef:
		data, _, err := r.blobs.Get(c.Handle)
		if err != nil {
			return nil, fmt.Errorf("fetch blob %s: %w", c.Handle, err)
		}
		return data, nil
	case nil:
		return nil, fmt.Errorf("asset has no content")
	default:
		return nil, fmt.Errorf("unknown content state %T", content)
	}
}
