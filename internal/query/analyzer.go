package query

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// Common auto makes for vehicle detection.
//
//nolint:gochecknoglobals // Static lookup table for vehicle detection
var vehicleMakes = map[string]struct{}{
	"ACURA": {}, "ALFA ROMEO": {}, "ASTON MARTIN": {}, "AUDI": {},
	"BENTLEY": {}, "BMW": {}, "BUICK": {}, "CADILLAC": {}, "CHEVROLET": {},
	"CHEVY": {}, "CHRYSLER": {}, "CITROEN": {}, "DACIA": {}, "DAEWOO": {},
	"DAIHATSU": {}, "DATSUN": {}, "DODGE": {}, "EAGLE": {}, "FERRARI": {},
	"FIAT": {}, "FORD": {}, "GENESIS": {}, "GEO": {}, "GMC": {},
	"HONDA": {}, "HUMMER": {}, "HYUNDAI": {}, "INFINITI": {}, "ISUZU": {},
	"JAGUAR": {}, "JEEP": {}, "KIA": {}, "LAMBORGHINI": {}, "LANCIA": {},
	"LAND ROVER": {}, "LEXUS": {}, "LINCOLN": {}, "LOTUS": {},
	"MASERATI": {}, "MAZDA": {}, "MCLAREN": {}, "MERCEDES": {},
	"MERCEDES-BENZ": {}, "MERCURY": {}, "MINI": {}, "MITSUBISHI": {},
	"NISSAN": {}, "OLDSMOBILE": {}, "OPEL": {}, "PEUGEOT": {},
	"PLYMOUTH": {}, "PONTIAC": {}, "PORSCHE": {}, "RAM": {}, "RENAULT": {},
	"ROLLS-ROYCE": {}, "ROVER": {}, "SAAB": {}, "SATURN": {}, "SCION": {},
	"SEAT": {}, "SKODA": {}, "SMART": {}, "SUBARU": {}, "SUZUKI": {},
	"TESLA": {}, "TOYOTA": {}, "TRIUMPH": {}, "VAUXHALL": {},
	"VOLKSWAGEN": {}, "VW": {}, "VOLVO": {},
}

// Part-type keywords that indicate descriptive content, not a part number
// or a model name.
//
//nolint:gochecknoglobals // Static lookup table for query classification
var partKeywords = map[string]struct{}{
	"BRAKE": {}, "BRAKES": {}, "PAD": {}, "PADS": {}, "ROTOR": {},
	"ROTORS": {}, "CALIPER": {}, "ENGINE": {}, "MOUNT": {}, "MOUNTS": {},
	"MOTOR": {}, "TRANSMISSION": {}, "CLUTCH": {}, "SUSPENSION": {},
	"STRUT": {}, "STRUTS": {}, "SHOCK": {}, "SHOCKS": {}, "SPRING": {},
	"SPRINGS": {}, "FILTER": {}, "OIL": {}, "AIR": {}, "FUEL": {},
	"CABIN": {}, "PUMP": {}, "WATER": {}, "ALTERNATOR": {}, "STARTER": {},
	"BATTERY": {}, "IGNITION": {}, "SPARK": {}, "PLUG": {}, "PLUGS": {},
	"BELT": {}, "BELTS": {}, "HOSE": {}, "HOSES": {}, "GASKET": {},
	"GASKETS": {}, "SEAL": {}, "SEALS": {}, "BEARING": {}, "BEARINGS": {},
	"BUSHING": {}, "BUSHINGS": {}, "JOINT": {}, "JOINTS": {}, "SENSOR": {},
	"SWITCH": {}, "VALVE": {}, "THERMOSTAT": {}, "RADIATOR": {},
	"CONDENSER": {}, "HEADLIGHT": {}, "TAILLIGHT": {}, "MIRROR": {},
	"WIPER": {}, "WIPERS": {}, "WHEEL": {}, "TIRE": {}, "TIRES": {},
	"HUB": {}, "AXLE": {}, "CV": {}, "DRIVESHAFT": {}, "EXHAUST": {},
	"MUFFLER": {}, "CATALYTIC": {}, "CONVERTER": {}, "MANIFOLD": {},
	"DOOR": {}, "WINDOW": {}, "FENDER": {}, "BUMPER": {}, "HOOD": {},
	"TRUNK": {}, "LATCH": {}, "CONTROL": {}, "ARM": {}, "ARMS": {},
	"TIE": {}, "ROD": {}, "LINK": {}, "SWAY": {}, "BAR": {},
	"CERAMIC": {}, "ORGANIC": {}, "METALLIC": {}, "SEMI": {},
	"FRONT": {}, "REAR": {}, "LEFT": {}, "RIGHT": {}, "UPPER": {},
	"LOWER": {}, "INNER": {}, "OUTER": {}, "SET": {}, "KIT": {},
	"PAIR": {}, "ASSEMBLY": {},
}

// Connector words that carry no meaning when deciding whether a query is
// purely a part number.
//
//nolint:gochecknoglobals // Static lookup table for query classification
var noiseWords = map[string]struct{}{
	"OR": {}, "AND": {}, "FOR": {}, "THE": {}, "A": {}, "AN": {},
	"OEM": {}, "PART": {}, "PN": {}, "P/N": {}, "#": {}, "NO": {},
	"NUMBER": {},
}

//nolint:gochecknoglobals // Compiled once at package init
var (
	// Model years 1960 through 2039.
	yearPattern = regexp.MustCompile(`\b(19[6-9]\d|20[0-3]\d)\b`)
	// Whole query consists of part-number-ish characters only.
	purePartNumberPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-/\s]*$`)
)

// makesLongestFirst orders the make table longest-first so compound names
// like "LAND ROVER" win over "ROVER".
//
//nolint:gochecknoglobals // Derived lookup table, built once
var makesLongestFirst = sortMakesLongestFirst()

func sortMakesLongestFirst() []string {
	names := make([]string, 0, len(vehicleMakes))
	for name := range vehicleMakes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// Analyze classifies a raw search query and extracts part numbers and any
// vehicle context. Cross references, brands, and the part description are
// filled in later by the interchange layer.
func Analyze(rawQuery string) domain.QueryAnalysis {
	normalized := strings.TrimSpace(strings.ToUpper(rawQuery))
	extracted := ExtractPartNumbers(normalized)
	vehicleHint := detectVehicle(normalized)

	queryType := domain.QueryTypeKeywords
	switch {
	case isPartNumberQuery(normalized, extracted):
		queryType = domain.QueryTypePartNumber
	case vehicleHint != "":
		queryType = domain.QueryTypeVehiclePart
	}

	return domain.QueryAnalysis{
		QueryType:     queryType,
		OriginalQuery: rawQuery,
		PartNumbers:   extracted,
		VehicleHint:   vehicleHint,
	}
}

// detectVehicle extracts a vehicle hint such as "2015 Honda Civic" or
// "Porsche 944" from an uppercased query. Returns "" when no make is found.
func detectVehicle(queryUpper string) string {
	// Year + make, with optional model words after the make.
	if loc := yearPattern.FindStringSubmatchIndex(queryUpper); loc != nil {
		year := queryUpper[loc[2]:loc[3]]
		afterYear := strings.TrimSpace(queryUpper[loc[1]:])
		for _, name := range makesLongestFirst {
			if !strings.HasPrefix(afterYear, name) {
				continue
			}
			vehicle := year + " " + name
			if model := modelWords(afterYear[len(name):]); model != "" {
				vehicle += " " + model
			}
			return titleCase(vehicle)
		}
	}

	// No year. Look for a make anywhere, on a word boundary.
	for _, name := range makesLongestFirst {
		idx := strings.Index(queryUpper, name)
		if idx < 0 {
			continue
		}
		if idx > 0 && letterBefore(queryUpper, idx) {
			continue
		}
		end := idx + len(name)
		if end < len(queryUpper) && letterAt(queryUpper, end) {
			continue
		}
		if model := modelWords(queryUpper[end:]); model != "" {
			return titleCase(name + " " + model)
		}
		return titleCase(name)
	}

	return ""
}

// modelWords collects words up to the first part-description keyword, so
// "CIVIC BRAKE PADS" yields "CIVIC".
func modelWords(s string) string {
	var words []string
	for _, word := range strings.Fields(s) {
		if _, ok := partKeywords[word]; ok {
			break
		}
		words = append(words, word)
	}
	return strings.Join(words, " ")
}

// isPartNumberQuery reports whether the query is essentially a part number
// search: just part numbers plus separators or noise words, not mixed with
// descriptive English.
func isPartNumberQuery(queryUpper string, extracted []string) bool {
	if len(extracted) == 0 {
		return false
	}

	// Remove every extracted part number and see what is left over.
	remaining := queryUpper
	for _, pn := range extracted {
		remaining = strings.ReplaceAll(remaining, pn, "")
	}
	remaining = strings.TrimSpace(strings.Trim(strings.TrimSpace(remaining), "-./,"))
	if remaining == "" {
		return true
	}

	meaningful := false
	for _, word := range strings.Fields(remaining) {
		if _, noise := noiseWords[word]; noise || len(word) <= 1 {
			continue
		}
		meaningful = true
		break
	}
	if !meaningful {
		return true
	}

	// A query made only of part-number-ish characters still counts, unless
	// every word is a known keyword or make.
	if purePartNumberPattern.MatchString(strings.TrimSpace(queryUpper)) {
		for _, word := range strings.Fields(queryUpper) {
			if _, kw := partKeywords[word]; kw {
				continue
			}
			if _, mk := vehicleMakes[word]; mk {
				continue
			}
			return true
		}
		return false
	}

	return false
}

// titleCase uppercases every letter that follows a non-letter and lowercases
// the rest, so "2015 HONDA CIVIC" becomes "2015 Honda Civic" and "328I"
// stays "328I".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}

func letterBefore(s string, idx int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.IsLetter(r)
}

func letterAt(s string, idx int) bool {
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return unicode.IsLetter(r)
}
