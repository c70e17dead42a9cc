package models

// FavouritePlaces is the ordered list of places a user marked, unique by ID.
// Most recently added is last. None of the methods modify the receiver.
type FavouritePlaces []Place

func (f FavouritePlaces) Contains(id string) bool {
	for _, p := range f {
		if p.ID == id {
			return true
		}
	}
	return false
}

// With returns a copy with place appended, or an unchanged copy if its ID is already there
func (f FavouritePlaces) With(place Place) FavouritePlaces {
	result := f.Clone()
	if f.Contains(place.ID) {
		return result
	}
	return append(result, place)
}

// Without returns a copy with the place removed, the rest keep their relative order
func (f FavouritePlaces) Without(id string) FavouritePlaces {
	result := make(FavouritePlaces, 0, len(f))
	for _, p := range f {
		if p.ID == id {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Clone never returns nil, so an empty list is encoded as [] and not null
func (f FavouritePlaces) Clone() FavouritePlaces {
	result := make(FavouritePlaces, len(f), len(f)+1)
	copy(result, f)
	return result
}

func (f FavouritePlaces) IDs() []string {
	ids := make([]string, 0, len(f))
	for _, p := range f {
		ids = append(ids, p.ID)
	}
	return ids
}
