package qdrant

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

func validateSearchInput(collectionName string, vector []float32, topK int) error {
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	if topK <= 0 {
		return fmt.Errorf("topK must be greater than 0")
	}
	return nil
}

// toPointID keeps numeric ids numeric; everything else is sent as a UUID.
func toPointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewID(id)
}

// extractVectorDetails reads the dimension and distance of a single unnamed vector
// configuration. Anything else yields (0, "").
func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}

	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}
	return 0, ""
}

func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}

func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "not found")
}

func isAlreadyExists(err error) bool {
	if status.Code(err) == codes.AlreadyExists {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// mapError translates a missing collection into vectordb.ErrCollectionNotFound and
// keeps the original error in the chain.
func mapError(err error) error {
	if err == nil || errors.Is(err, vectordb.ErrCollectionNotFound) {
		return err
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", vectordb.ErrCollectionNotFound, err)
	}
	return err
}
