package station

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/garesbzh/carte/backend-go/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Slug turns a station name into a lower-case ASCII identifier:
// "Saint-Brieuc" -> "saint-brieuc", "Morlaix (Gare)" -> "morlaix-gare".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "station"
	}
	return slug
}

// BuildStations converts data-source records into stations, in order.
// Names are not guaranteed unique, so each station gets a unique ID derived
// from its name; repeats are suffixed "-2", "-3", ...
func BuildStations(records []models.StationRecord) []models.Station {
	stations := make([]models.Station, len(records))
	seen := make(map[string]int, len(records))
	for i := range records {
		r := &records[i]
		id := Slug(r.Name)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = id + "-" + strconv.Itoa(n)
			// a literal name such as "Brest 2" may already own this ID
			for seen[id] > 0 {
				n++
				id = Slug(r.Name) + "-" + strconv.Itoa(n)
			}
			seen[id]++
		}
		stations[i] = models.Station{
			ID:          id,
			Name:        r.Name,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			ImageURL:    r.Image.Ptr(),
			Description: r.ResolveDescription(),
			ImpactNote:  r.Impact.Ptr(),
		}
	}
	return stations
}
