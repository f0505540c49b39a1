package overpass

import (
	"fmt"

	"periplo/pkg/geo"
)

// TouristQuery returns the Overpass QL query for land tourist POIs in
// the bounding box.
func TouristQuery(b geo.BoundingBox) string {
	bbox := fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)
	return `[out:json][timeout:50];
(
  node["tourism"~"^(attraction|museum|castle|monument|viewpoint|archaeological_site)$"]` + bbox + `;
  way["tourism"~"^(attraction|museum|castle|monument|viewpoint|archaeological_site)$"]` + bbox + `;

  node["amenity"="place_of_worship"]` + bbox + `;
  way["amenity"="place_of_worship"]` + bbox + `;
  node["building"="church"]` + bbox + `;
  way["building"="church"]` + bbox + `;

  node["historic"~"^(castle|fortress|monument|archaeological_site|ruins|palace|manor)$"]` + bbox + `;
  way["historic"~"^(castle|fortress|monument|archaeological_site|ruins|palace|manor)$"]` + bbox + `;

  node["leisure"~"^(park|garden|nature_reserve)$"]` + bbox + `;
  way["leisure"~"^(park|garden|nature_reserve)$"]` + bbox + `;

  node["amenity"~"^(library|theatre|cinema|arts_centre)$"]` + bbox + `;
  way["amenity"~"^(library|theatre|cinema|arts_centre)$"]` + bbox + `;

  node["natural"~"^(peak|cliff|beach|cape)$"]` + bbox + `;
  way["natural"~"^(peak|cliff|beach|cape)$"]` + bbox + `;
);
out geom;`
}

// MarineQuery returns the Overpass QL query for strictly underwater
// POIs: wrecks, reefs, shoals, obstructions, diving sites, and caves.
// Surface features (ports, lighthouses, marinas) are filtered later
// during extraction.
func MarineQuery(b geo.BoundingBox) string {
	bbox := fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)
	return `[out:json][timeout:50];
(
  node["historic"="wreck"]` + bbox + `;
  way["historic"="wreck"]` + bbox + `;
  node["seamark:type"="wreck"]` + bbox + `;
  node["seamark:wreck:category"]` + bbox + `;
  node["wreck"]` + bbox + `;
  node["site_type"="wreck"]` + bbox + `;
  node["name"~"^(relitto|wreck|shipwreck|naufragio)"]` + bbox + `;
  way["name"~"^(relitto|wreck|shipwreck|naufragio)"]` + bbox + `;

  node["natural"="reef"]` + bbox + `;
  way["natural"="reef"]` + bbox + `;
  node["natural"="shoal"]` + bbox + `;
  way["natural"="shoal"]` + bbox + `;
  node["natural"="bank"]` + bbox + `;
  way["natural"="bank"]` + bbox + `;

  node["seamark:type"="obstruction"]` + bbox + `;
  way["seamark:type"="obstruction"]` + bbox + `;
  node["seamark:obstruction:category"]` + bbox + `;
  node["underwater"="yes"]` + bbox + `;
  way["underwater"="yes"]` + bbox + `;

  node["sport"="diving"]` + bbox + `;
  way["sport"="diving"]` + bbox + `;
  node["leisure"="diving"]` + bbox + `;
  node["scuba_diving"="yes"]` + bbox + `;
  node["diving_site"="yes"]` + bbox + `;
  node["seamark:type"="diving"]` + bbox + `;

  node["natural"="cave"]` + bbox + `;
  way["natural"="cave"]` + bbox + `;
  node["submarine_cave"="yes"]` + bbox + `;

  node["name"~"^(relitto|wreck|shipwreck|naufragio|secca|reef|shoal|scoglio.*sommerso)"]` + bbox + `;
  way["name"~"^(relitto|wreck|shipwreck|naufragio|secca|reef|shoal|scoglio.*sommerso)"]` + bbox + `;
);
out body;`
}

// MunicipalityQuery returns the Overpass QL query for settlements and
// administrative boundaries in the bounding box.
func MunicipalityQuery(b geo.BoundingBox) string {
	bbox := fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)
	return `[out:json][timeout:50];
(
  rel["admin_level"="8"]["place"~"^(city|town|village)$"]` + bbox + `;
  node["place"~"^(city|town|village)$"]` + bbox + `;

  node["place"~"^(hamlet|suburb|neighbourhood|locality)$"]` + bbox + `;

  rel["admin_level"~"^(8|9|10)$"]` + bbox + `;
);
out geom;`
}
