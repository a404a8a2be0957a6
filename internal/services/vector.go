package services

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// VectorService implements the optional semantic-search collaborator (§1,
// §4.4, §4.9): embedding text, persisting it, and scoring cosine similarity
// for hybrid ranking. No vector-embedding library appears anywhere in the
// retrieval pack (no ANN index, no embeddings client) — embeddings here are
// a deterministic, dependency-free hashed bag-of-words vector, good enough
// to exercise the hybrid-ranking pipeline end-to-end without depending on a
// network embeddings API the core (a short-lived CLI invocation) cannot
// call out to anyway.
type VectorService struct {
	engine *Engine
}

// NewVectorService builds a VectorService.
func NewVectorService(e *Engine) *VectorService {
	return &VectorService{engine: e}
}

// embeddingDims is the fixed dimensionality of the hashed embedding space.
const embeddingDims = 64

// Embed computes a deterministic pseudo-embedding for text: each token hashes
// into a dimension bucket, signed by a second hash bit, then the vector is
// L2-normalized. Same text always yields the same vector.
func Embed(text string) []float64 {
	v := make([]float64, embeddingDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := int(sum % uint64(embeddingDims))
		sign := 1.0
		if (sum/uint64(embeddingDims))%2 == 0 {
			sign = -1.0
		}
		v[bucket] += sign
	}
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// CosineSim returns the dot product of two equal-length vectors, which is
// their cosine similarity when both are L2-normalized (as Embed's output
// is); 0 if either is empty or their lengths differ (§9 open question 2: a
// missing embedding folds into the cosine term as 0 rather than being
// excluded or imputed).
func CosineSim(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// IndexNode embeds and upserts a node's title+body into the vector store,
// called from the create/update pipelines' Index stage "if vectors
// available" (§4.4). A no-op, successful result when vectors are disabled
// in config.
func (v *VectorService) IndexNode(ctx context.Context, ex sqlite.Execer, nodeID, title, body string) error {
	if !v.engine.Config.Vector.Enabled {
		return nil
	}
	embedding := Embed(title + " " + body)
	return sqlite.UpsertVector(ctx, ex, nodeID, embedding)
}

// Query returns a node's stored embedding, or nil if none is indexed.
func (v *VectorService) Query(ctx context.Context, nodeID string) ([]float64, error) {
	embedding, err := sqlite.GetVector(ctx, v.engine.Store.DB(), nodeID)
	if err != nil {
		if err == sqlite.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return embedding, nil
}

// Status reports whether the vector store is enabled, for CLI/MCP
// introspection (`ztlctl vector-status`).
func (v *VectorService) Status(ctx context.Context) *result.Result {
	return result.Ok("vector.status", map[string]any{
		"enabled":       v.engine.Config.Vector.Enabled,
		"hybrid_weight": v.engine.Config.Vector.HybridWeight,
	})
}
