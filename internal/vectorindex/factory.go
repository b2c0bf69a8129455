package vectorindex

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
)

// New creates an Index based on the configured provider.
//
//   - "chromem" (default): embedded chromem-go, no external service
//   - "qdrant": external Qdrant server over gRPC
//
// The returned index is not connected; the knowledge pillar calls
// Connect during its Initialize.
func New(cfg config.VectorIndexConfig, logger *zap.Logger) (Index, error) {
	switch cfg.Provider {
	case "chromem", "":
		return NewChromemIndex(ChromemConfig{
			Path:       cfg.Chromem.Path,
			Collection: cfg.Chromem.Collection,
			Compress:   cfg.Chromem.Compress,
			VectorSize: cfg.VectorSize,
		}, logger)
	case "qdrant":
		return NewQdrantIndex(QdrantConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			VectorSize: cfg.VectorSize,
			UseTLS:     cfg.Qdrant.UseTLS,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q (supported: chromem, qdrant)", ErrInvalidConfig, cfg.Provider)
	}
}
