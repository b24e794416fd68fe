package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJourneyStoreContract runs a suite of tests to verify that a JourneyStore
// implementation adheres to the defined interface contract.
func RunJourneyStoreContract(t *testing.T, store JourneyStore) {
	ctx := context.Background()
	journeyID := "contract-test-journey-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		journey := domain.NewJourney(journeyID)
		journey.Values["name"] = "Ada"
		journey.History = append(journey.History, domain.HistoryEntry{
			Step: "/start",
			Next: "/details",
			Fields: map[string]any{
				"name": "Ada",
			},
		})

		err := store.Save(ctx, journeyID, journey)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, journeyID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Ada", loaded.Values["name"])
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "/start", loaded.History[0].Step)
		assert.Equal(t, "/details", loaded.History[0].Next)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+journeyID)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, journeyID, domain.NewJourney(journeyID))
		require.NoError(t, err)

		err = store.Delete(ctx, journeyID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, journeyID)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound, "Load after Delete should return ErrJourneyNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := journeyID + "-1"
		id2 := journeyID + "-2"
		_ = store.Save(ctx, id1, domain.NewJourney(id1))
		_ = store.Save(ctx, id2, domain.NewJourney(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		journeys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, journeys, id1)
		assert.Contains(t, journeys, id2)
	})

	t.Run("Isolation", func(t *testing.T) {
		journey := domain.NewJourney(journeyID)
		journey.Values["colour"] = "green"
		require.NoError(t, store.Save(ctx, journeyID, journey))

		// Mutating the saved or loaded journey must not leak into the store.
		journey.Values["colour"] = "red"
		loaded, err := store.Load(ctx, journeyID)
		require.NoError(t, err)
		assert.Equal(t, "green", loaded.Values["colour"])
	})
}
