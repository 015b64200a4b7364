package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"TPISync/internal/classifier"
	"TPISync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func news(category, date, text string) model.NewsEntry {
	return model.NewsEntry{Category: category, Date: date, Text: text}
}

func TestIngestBuyingLand(t *testing.T) {
	w := newWorld()
	entry := news("Parcs", "14/03/2025 à 09:30", "Alice viens d'acheter 2 300m² de terrain à Paris pour un agrandissement.")

	event, created, err := w.activitySvc.Ingest(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.ActivityBuyingLand, event.Type)
	assert.Equal(t, model.CategoryPark, event.Category)
	assert.Equal(t, int64(2300), *event.Amount)

	paris, _ := time.LoadLocation("Europe/Paris")
	assert.True(t, event.PostedAt.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, paris)))

	require.NotNil(t, event.PlayerID)
	require.NotNil(t, event.CityID)
	assert.Equal(t, "Alice", w.players.get(*event.PlayerID).Name)
	assert.Equal(t, "Paris", w.cities.get(*event.CityID).Name)
	assert.Nil(t, event.ActorParkID)

	var extracted classifier.Result
	require.NoError(t, json.Unmarshal(event.Extracted, &extracted))
	assert.Equal(t, "Alice", extracted.ActorName)
}

func TestIngestTwiceStoresOnce(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	entry := news("Parcs", "14/03/2025 à 10:00", "Wonderland à Lyon viens d'annoncer l'arrivée d'un Boomerang de Vekoma.")

	first, created, err := w.activitySvc.Ingest(ctx, entry)
	require.NoError(t, err)
	require.True(t, created)
	saves := w.parks.saves

	second, created, err := w.activitySvc.Ingest(ctx, entry)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, w.activities.events, 1)
	assert.Equal(t, saves, w.parks.saves, "重复新闻不会再次触发调和")
}

func TestIngestBuyingRideAttachesRide(t *testing.T) {
	w := newWorld()
	entry := news("Parcs", "14/03/2025 à 10:00", "Wonderland à Lyon viens d'annoncer l'arrivée d'un Boomerang de Vekoma.")

	event, _, err := w.activitySvc.Ingest(context.Background(), entry)
	require.NoError(t, err)
	require.NotNil(t, event.ActorParkID)
	require.NotNil(t, event.RideID)

	ride := w.rides.get(*event.RideID)
	assert.Equal(t, "Boomerang", ride.Name)
	assert.Equal(t, "Vekoma", ride.Brand)
	assert.Equal(t, []uint64{ride.ID}, w.parks.rideIDs(*event.ActorParkID))
	assert.Equal(t, "Lyon", w.cities.get(*event.CityID).Name)
}

func TestIngestBuyingRideFromOther(t *testing.T) {
	w := newWorld()
	entry := news("Parcs", "15/03/2025 à 11:15", "Funland vient d'acheter un Carrousel à Wonderland.")

	event, _, err := w.activitySvc.Ingest(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityBuyingRideFromOther, event.Type)
	require.NotNil(t, event.VictimParkID)

	actor := w.parks.byName("Funland")
	require.NotNil(t, actor)
	assert.Equal(t, []uint64{*event.RideID}, w.parks.rideIDs(actor.ID))
	assert.Empty(t, w.parks.rideIDs(*event.VictimParkID))
}

func TestIngestBuyingParkSetsOwnerAndCity(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	_, err := w.parkSvc.Reconcile(ctx, &model.Park{ExternalID: model.Ptr(int64(9)), Name: "Wonderland", Capital: model.Ptr(int64(10))})
	require.NoError(t, err)

	event, _, err := w.activitySvc.Ingest(ctx, news("Parcs", "16/03/2025 à 08:00",
		"Bob vient d'acquérir des terrains pour implanter Wonderland à Lyon."))
	require.NoError(t, err)
	assert.Equal(t, model.ActivityBuyingPark, event.Type)

	parks := w.parks.all()
	require.Len(t, parks, 1)
	park := parks[0]
	assert.Equal(t, *event.ActorParkID, park.ID)
	assert.Equal(t, "Bob", w.players.get(*park.OwnerID).Name)
	assert.Equal(t, "Lyon", w.cities.get(*park.CityID).Name)
	assert.Equal(t, int64(10), *park.Capital)
}

func TestIngestUnmatchedTextIsNone(t *testing.T) {
	w := newWorld()

	event, created, err := w.activitySvc.Ingest(context.Background(), news("Finances", "14/03/2025 à 10:00", "La bourse est calme."))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.ActivityNone, event.Type)
	assert.Equal(t, model.CategoryOther, event.Category)
	assert.Nil(t, event.PlayerID)
	assert.Nil(t, event.CityID)
	assert.Empty(t, w.players.all())
}

func TestIngestInvalidTimestamp(t *testing.T) {
	w := newWorld()

	_, _, err := w.activitySvc.Ingest(context.Background(), news("Parcs", "hier", "La bourse est calme."))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Empty(t, w.activities.events)
}

func TestIngestAllCounts(t *testing.T) {
	w := newWorld()
	entries := []model.NewsEntry{
		news("Parcs", "14/03/2025 à 09:30", "Alice viens d'acheter 2 300m² de terrain à Paris pour un agrandissement."),
		news("Parcs", "14/03/2025 à 09:30", "Alice viens d'acheter 2 300m² de terrain à Paris pour un agrandissement."),
		news("Parcs", "??", "Alice viens d'acheter 10m² de terrain à Paris pour un agrandissement."),
		news("Finances", "14/03/2025 à 10:00", "La bourse est calme."),
	}

	res, err := w.activitySvc.IngestAll(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Created: 2, Duplicates: 1, Skipped: 1}, res)
}
