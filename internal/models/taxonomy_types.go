package models

// Verticals are the content sections of the site. Categories and articles
// each belong to exactly one.
var Verticals = []string{
	"games",
	"esports",
	"hardware",
	"mobile",
	"retro",
	"tabletop",
	"movies",
	"tv",
	"anime",
	"comics",
	"music",
	"streaming",
	"tech",
	"culture",
	"guides",
	"news",
}

// IsKnownVertical reports whether v is one of Verticals.
func IsKnownVertical(v string) bool {
	for _, known := range Verticals {
		if known == v {
			return true
		}
	}
	return false
}
