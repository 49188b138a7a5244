// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package engine

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/fallback"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/model"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
	"github.com/tomtom215/saveeat/internal/recommend/reranking"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
)

// Bundle is an immutable serving snapshot. Fields are never written after
// construction.
type Bundle struct {
	version     int
	runID       string
	dataVersion string
	loadedAt    time.Time

	graph      *graph.Graph
	emb        *model.Embeddings
	userOK     []bool
	reranker   *reranking.Reranker
	encoder    reranking.Encoder
	modelIssue string

	recipes    []*recommend.Recipe
	catalogue  map[int64]*recommend.Recipe
	popularity map[int64]float64
}

// BundleInfo summarizes a bundle for diagnostics.
type BundleInfo struct {
	Version      int       `json:"version"`
	RunID        string    `json:"run_id,omitempty"`
	DataVersion  string    `json:"data_version,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
	HasModel     bool      `json:"has_model"`
	HasReranker  bool      `json:"has_reranker"`
	ModelIssue   string    `json:"model_issue,omitempty"`
	Users        int       `json:"users"`
	ModelRecipes int       `json:"model_recipes"`
	Catalogue    int       `json:"catalogue"`
}

// BundleInput is the material a bundle is built from.
type BundleInput struct {
	// Checkpoint is optional. Without it the bundle serves fallback only.
	Checkpoint *storage.Checkpoint

	// Recipes and Interactions are the current store contents.
	Recipes      []recommend.Recipe
	Interactions []recommend.Interaction

	// DataVersion fingerprints the store contents.
	DataVersion string
}

// NewBundle builds a serving bundle. A checkpoint that cannot be restored
// is an error; a restored model with non-finite embeddings is kept out of
// serving and reported through Info().ModelIssue.
func NewBundle(in *BundleInput) (*Bundle, error) {
	b := &Bundle{
		dataVersion: in.DataVersion,
		loadedAt:    time.Now().UTC(),
		catalogue:   make(map[int64]*recommend.Recipe, len(in.Recipes)),
		popularity:  fallback.MeanRatings(in.Interactions),
	}
	for i := range in.Recipes {
		r := &in.Recipes[i]
		if _, dup := b.catalogue[r.ID]; dup {
			continue
		}
		b.catalogue[r.ID] = r
		b.recipes = append(b.recipes, r)
	}
	slices.SortFunc(b.recipes, func(x, y *recommend.Recipe) int { return cmp.Compare(x.ID, y.ID) })

	cp := in.Checkpoint
	if cp == nil {
		b.modelIssue = "no checkpoint"
		return b, nil
	}
	b.version = cp.Metadata.Version
	b.runID = cp.Metadata.RunID

	restored, err := cp.Restore()
	if err != nil {
		return nil, fmt.Errorf("restore checkpoint v%d: %w", cp.Metadata.Version, err)
	}
	var text *nn.Matrix
	if cfg := restored.Model.Config(); cfg.UseTextEmbeddings {
		text = model.RecipeTextMatrix(model.DefaultTextEmbedder(cfg), restored.Graph, b.catalogue)
	}
	pass, err := restored.Model.Forward(restored.Graph, text, nil)
	if err != nil {
		return nil, fmt.Errorf("compute embeddings: %w", err)
	}

	b.graph = restored.Graph
	b.reranker = restored.Reranker
	if b.reranker != nil {
		b.encoder = reranking.NewEncoder(b.reranker.ContextDim())
	}
	if !pass.Out.Recipe.AllFinite() {
		b.modelIssue = "non-finite recipe embeddings"
		return b, nil
	}
	b.emb = &pass.Out
	b.userOK = make([]bool, pass.Out.User.Rows)
	for u := range b.userOK {
		b.userOK[u] = allFinite(pass.Out.User.Row(u))
	}
	return b, nil
}

// emptyBundle serves nothing until the first real bundle is swapped in.
func emptyBundle() *Bundle {
	return &Bundle{
		loadedAt:   time.Now().UTC(),
		catalogue:  map[int64]*recommend.Recipe{},
		popularity: map[int64]float64{},
		modelIssue: "not loaded",
	}
}

// Version returns the checkpoint version, 0 without a model.
func (b *Bundle) Version() int {
	return b.version
}

// DataVersion returns the store fingerprint the bundle was built from.
func (b *Bundle) DataVersion() string {
	return b.dataVersion
}

// HasModel reports whether the model path can serve at all.
func (b *Bundle) HasModel() bool {
	return b.emb != nil
}

// IsUsable reports whether userID can be served by the model path: a model
// is present, the user is in its graph, and the user's embedding is finite.
func (b *Bundle) IsUsable(userID int64) bool {
	if b.emb == nil {
		return false
	}
	u, ok := b.graph.Users.Index(userID)
	return ok && b.userOK[u]
}

// Recipe returns a catalogue recipe by ID.
func (b *Bundle) Recipe(id int64) (*recommend.Recipe, bool) {
	r, ok := b.catalogue[id]
	return r, ok
}

// Info summarizes the bundle.
func (b *Bundle) Info() BundleInfo {
	info := BundleInfo{
		Version:     b.version,
		RunID:       b.runID,
		DataVersion: b.dataVersion,
		LoadedAt:    b.loadedAt,
		HasModel:    b.emb != nil,
		HasReranker: b.reranker != nil,
		ModelIssue:  b.modelIssue,
		Catalogue:   len(b.recipes),
	}
	if b.graph != nil {
		info.Users = b.graph.NumUsers()
		info.ModelRecipes = b.graph.NumRecipes()
	}
	return info
}

// modelCandidates scores every catalogue recipe known to the model for
// user index u. The result is sorted and every score is finite.
func (b *Bundle) modelCandidates(u int) ([]recommend.Candidate, int) {
	scores := b.emb.ScoreAll(u)
	out := make([]recommend.Candidate, 0, len(scores))
	coerced := 0
	for r, s := range scores {
		recipe, ok := b.catalogue[b.graph.Recipes.ID(r)]
		if !ok {
			continue
		}
		safe := recommend.SafeScore(s)
		if safe != s {
			coerced++
		}
		out = append(out, recommend.Candidate{Recipe: recipe, Score: safe})
	}
	recommend.SortCandidates(out)
	return out, coerced
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if recommend.SafeScore(x) != x {
			return false
		}
	}
	return true
}
