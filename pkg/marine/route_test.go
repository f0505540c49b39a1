package marine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/model"
)

func TestBuildRoute(t *testing.T) {
	pois := []model.POI{
		{Name: "Faro di Tino", MarineType: model.MarineLighthouse},
		{Name: "Faro Nord", MarineType: model.MarineLighthouse},
		{Name: "Faro Sud", MarineType: model.MarineLighthouse},
		{Name: "Punta Secca", MarineType: model.MarineDivingSite},
		{Name: "Grotta", MarineType: model.MarineCave},
		{Name: "Secca del Ferale", MarineType: model.MarineReef},
		{Name: "Mohawk Deer", MarineType: model.MarineWreck, DepthM: 32, DepthKnown: true},
		{Name: "KT UJ2216", MarineType: model.MarineWreck, DepthM: 42, DepthKnown: true},
	}

	route := BuildRoute(pois)
	require.NotNil(t, route)
	require.Len(t, route.Waypoints, 6)
	assert.Equal(t, 6*minutesPerWaypoint, route.DurationMinutes)

	names := make([]string, 0, len(route.Waypoints))
	for _, w := range route.Waypoints {
		names = append(names, w.Name)
	}
	// Two lighthouses at most, and only wrecks within recreational depth.
	assert.NotContains(t, names, "Faro Sud")
	assert.Contains(t, names, "Mohawk Deer")
	assert.NotContains(t, names, "KT UJ2216")
}

func TestBuildRoute_TooFewWaypoints(t *testing.T) {
	assert.Nil(t, BuildRoute(nil))
	assert.Nil(t, BuildRoute([]model.POI{
		{Name: "Faro", MarineType: model.MarineLighthouse},
	}))
}
