package marine

import "periplo/pkg/model"

const maxWaypoints = 6

// minutesPerWaypoint covers the stop plus the average transit to the
// next one.
const minutesPerWaypoint = 45

// BuildRoute assembles a day itinerary over the marine POIs: up to two
// lighthouses as navigation landmarks, two diving sites, one reef, and
// one recreational-depth wreck. Nil when fewer than two waypoints exist.
func BuildRoute(pois []model.POI) *model.MarineRoute {
	var lighthouses, divingSites, reefs, wrecks []model.POI
	for _, p := range pois {
		switch p.MarineType {
		case model.MarineLighthouse:
			lighthouses = append(lighthouses, p)
		case model.MarineDivingSite, model.MarineCave:
			divingSites = append(divingSites, p)
		case model.MarineReef:
			reefs = append(reefs, p)
		case model.MarineWreck:
			if p.DepthKnown && p.DepthM < 40 {
				wrecks = append(wrecks, p)
			}
		}
	}

	var waypoints []model.RouteWaypoint
	add := func(pois []model.POI, limit int) {
		for i := 0; i < len(pois) && i < limit && len(waypoints) < maxWaypoints; i++ {
			p := pois[i]
			waypoints = append(waypoints, model.RouteWaypoint{
				Name:       p.Name,
				Lat:        p.Lat,
				Lng:        p.Lng,
				MarineType: p.MarineType,
				DepthM:     p.DepthM,
			})
		}
	}
	add(lighthouses, 2)
	add(divingSites, 2)
	add(reefs, 1)
	add(wrecks, 1)

	if len(waypoints) < 2 {
		return nil
	}
	return &model.MarineRoute{
		Waypoints:       waypoints,
		DurationMinutes: len(waypoints) * minutesPerWaypoint,
	}
}
