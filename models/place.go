package models

type PlaceImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Place is a catalog entry, never modified once created
type Place struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Image       PlaceImage `json:"image"`
	Description string     `json:"description"`
}

// FindPlace returns the place with the given id from a list
func FindPlace(places []Place, id string) (Place, bool) {
	for _, p := range places {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}
