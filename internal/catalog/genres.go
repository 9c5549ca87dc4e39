package catalog

import "strings"

// UnknownGenre labels a title whose genres are all unmapped
const UnknownGenre = "غير محدد"

var genreNames = map[int]string{
	28:    "أكشن",
	35:    "كوميديا",
	18:    "درامـا",
	27:    "رعب",
	10749: "رومانسي",
	16:    "رسوم متحركة",
	36:    "تاريخي",
	12:    "مغامرة",
	14:    "خيال",
	878:   "خيال علمي",
	9648:  "غموض",
	10402: "موسيقى",
	37:    "غرب",
	53:    "إثارة",
	10751: "عائلي",
	10752: "حرب",
}

// GenreName returns the localized name for id, or UnknownGenre
func GenreName(id int) string {
	if name, ok := genreNames[id]; ok {
		return name
	}
	return UnknownGenre
}

// GenreNames joins the names of the known ids with ", ", skipping unknown ids
func GenreNames(ids []int) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// GenreLabel is GenreNames with UnknownGenre when nothing is known
func GenreLabel(ids []int) string {
	if label := GenreNames(ids); label != "" {
		return label
	}
	return UnknownGenre
}
