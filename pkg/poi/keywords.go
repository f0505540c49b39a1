package poi

// Keyword tables used by the validator. Mixed Italian/English on
// purpose: providers return both depending on the zone.

var touristKeywords = []string{
	"museo", "church", "castello", "torre", "palazzo", "villa", "giardino",
	"parco", "spiaggia", "porto", "faro", "monastero", "chiesa", "cathedral",
	"monument", "archaeological", "historic", "fortress", "abbey", "sanctuary",
	"viewpoint", "panorama", "belvedere", "acquario", "zoo", "theatre",
	"teatro", "cinema", "gallery", "galleria", "library", "biblioteca",
	"castle", "museum", "lighthouse",
}

var marineKeywords = []string{
	"relitto", "wreck", "shipwreck", "faro", "lighthouse", "boa", "buoy",
	"secca", "reef", "shoal", "immersion", "diving", "subacqueo", "underwater",
}

// prestigeKeywords bump the relevance score when found in a description.
var prestigeKeywords = []string{
	"unesco", "world heritage", "national", "famous", "historic",
}

// surfaceIndicators mark features that sit at or above the waterline.
var surfaceIndicators = []string{
	"port", "harbour", "marina", "lighthouse", "beach", "bay", "cape",
	"island", "city", "town", "coast", "promontory",
}

// underwaterIndicators override a surface match.
var underwaterIndicators = []string{
	"wreck", "shipwreck", "naufragio", "relitto", "reef", "secca",
	"shoal", "underwater", "submerged", "sommerso", "diving", "scuba",
	"cave", "grotta",
}
