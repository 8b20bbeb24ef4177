package boothcrawl

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// streetNumberPattern matches a house number followed by a street word,
// e.g. "123 Main" or "12b Rue".
var streetNumberPattern = regexp.MustCompile(`(\d+)[A-Za-z]?\s+(\pL+)`)

// fold removes diacritics. A new transformer is built per call because
// transform chains are not safe for concurrent use.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName returns the matching key for a venue name: diacritics
// folded, lower-cased, punctuation stripped and whitespace collapsed.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range fold(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsPunct(r):
			// dropped so "Joe's" and "Joes" agree
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeCity returns the matching key for a city name.
func NormalizeCity(s string) string {
	return NormalizeName(s)
}

// StreetKey returns the normalized street-number prefix of an address,
// e.g. "123 elm" for "123 Elm St, Springfield". Returns "" when the address
// has no street number.
func StreetKey(address string) string {
	m := streetNumberPattern.FindStringSubmatch(fold(address))
	if m == nil {
		return ""
	}
	return m[1] + " " + strings.ToLower(m[2])
}

// HasStreetNumber reports whether the address contains a street-number
// token: digits followed by whitespace and letters.
func HasStreetNumber(address string) bool {
	return streetNumberPattern.MatchString(address)
}

// InferCity guesses the city from a comma-separated address such as
// "123 Elm St, Springfield, IL 62701". Returns "" when no segment after the
// street looks like a locality.
func InferCity(address string) string {
	parts := strings.Split(address, ",")
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if r := []rune(part)[0]; unicode.IsDigit(r) {
			continue
		}
		return part
	}
	return ""
}

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// ValidCoordinates reports whether lat/lng are within valid ranges.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
