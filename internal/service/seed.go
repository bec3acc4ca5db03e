package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/corpusdb/corpusdb/internal/store"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	Libraries int
	Documents int
	Chunks    int
}

// sampleSentences feed the seed corpus. Chunk texts are built by joining a
// few of these at random, which gives the embedder realistic variety.
var sampleSentences = []string{
	"the ship sailed past the breakwater at dawn",
	"whales communicate over long distances with low frequency song",
	"the archive holds manuscripts from the fourteenth century",
	"gradient descent converges slowly near flat minima",
	"the lighthouse keeper logged every passing storm",
	"annotated field notes describe the migration of arctic terns",
	"the printing press changed how knowledge circulated",
	"deep ocean currents move heat between the hemispheres",
	"the treaty was signed after a decade of negotiation",
	"telescopes resolved the spiral structure of distant galaxies",
	"the harvest failed twice before the irrigation canal was dug",
	"early navigators estimated longitude with lunar distances",
}

// Seed populates the corpus with fake data through the regular service
// operations, so every chunk is embedded and indexed exactly as API
// writes would be.
func (s *Service) Seed(ctx context.Context, libraries, documentsPerLibrary, chunksPerDocument int) (*SeedResult, error) {
	rng := rand.New(rand.NewSource(rand.Int63()))
	result := &SeedResult{}

	for l := 0; l < libraries; l++ {
		lib, err := s.CreateLibrary(ctx, store.LibraryFields{
			Name:           fmt.Sprintf("library-%d", l+1),
			WrittenBy:      fmt.Sprintf("author-%d", l+1),
			Description:    "seeded library",
			ProductionDate: fmt.Sprintf("%d", 1900+rng.Intn(126)),
		})
		if err != nil {
			return result, err
		}
		result.Libraries++

		for d := 0; d < documentsPerLibrary; d++ {
			doc, err := s.CreateDocument(ctx, lib.ID, fmt.Sprintf("document-%d-%d", l+1, d+1))
			if err != nil {
				return result, err
			}
			result.Documents++

			for c := 0; c < chunksPerDocument; c++ {
				if _, err := s.CreateChunk(ctx, doc.ID, randomText(rng)); err != nil {
					return result, err
				}
				result.Chunks++
			}
		}
	}

	s.log.Info("corpus seeded",
		slog.Int("libraries", result.Libraries),
		slog.Int("documents", result.Documents),
		slog.Int("chunks", result.Chunks))
	return result, nil
}

// randomText joins two or three sample sentences.
func randomText(rng *rand.Rand) string {
	n := 2 + rng.Intn(2)
	text := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			text += " "
		}
		text += sampleSentences[rng.Intn(len(sampleSentences))]
	}
	return text
}
