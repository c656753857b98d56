package database

import (
	"context"
	"fmt"

	"github.com/example/greekbot/pkg/models"
)

// demoWords is a tiny starter vocabulary for local runs
var demoWords = []models.Word{
	{Greek: "κάνω", Russian: "делать", WordType: models.WordTypeVerb},
	{Greek: "Καλημέρα", Russian: "Доброе утро", WordType: models.WordTypePhrase},
	{Greek: "νερό", Russian: "вода", WordType: models.WordTypeNoun},
	{Greek: "καλός", Russian: "хороший", WordType: models.WordTypeAdjective},
	{Greek: "Ευχαριστώ", Russian: "Спасибо", WordType: models.WordTypePhrase},
	{Greek: "σπίτι", Russian: "дом", WordType: models.WordTypeNoun},
	{Greek: "γρήγορα", Russian: "быстро", WordType: models.WordTypeAdverb},
	{Greek: "εγώ", Russian: "я", WordType: models.WordTypePronoun},
}

// SeedDemoWords inserts the starter vocabulary when the words table is empty
func SeedDemoWords(ctx context.Context) error {
	var count int
	if err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		return fmt.Errorf("failed to count words: %w", err)
	}
	if count > 0 {
		return nil
	}

	repo := NewWordRepository()
	for i := range demoWords {
		word := demoWords[i]
		if err := repo.Create(ctx, &word); err != nil {
			return err
		}
	}
	return nil
}
