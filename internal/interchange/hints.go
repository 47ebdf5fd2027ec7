package interchange

import (
	"regexp"
	"sort"
	"strings"
)

// Known aftermarket and OE brand names seen in provider result titles.
//
//nolint:gochecknoglobals // Static lookup table
var knownBrands = map[string]struct{}{
	"LEMFORDER": {}, "MEYLE": {}, "FEBI": {}, "BILSTEIN": {}, "SACHS": {},
	"BOGE": {}, "MOOG": {}, "TRW": {}, "DELPHI": {}, "BOSCH": {},
	"DENSO": {}, "NGK": {}, "MANN": {}, "MAHLE": {}, "HENGST": {},
	"BREMBO": {}, "ATE": {}, "EBC": {}, "HAWK": {}, "STOPTECH": {},
	"CENTRIC": {}, "GENUINE": {}, "OEM": {}, "OES": {}, "VALEO": {},
	"LUK": {}, "INA": {}, "SKF": {}, "FAG": {}, "GATES": {},
	"CONTINENTAL": {}, "DAYCO": {}, "DORMAN": {}, "STANDARD": {},
	"URO": {}, "REIN": {}, "CORTECO": {}, "ELRING": {}, "AJUSA": {},
	"NISSENS": {}, "BEHR": {}, "HELLA": {}, "OSRAM": {}, "PHILIPS": {},
	"DEPO": {}, "CARDONE": {}, "MOTORCRAFT": {}, "ACDELCO": {},
	"MOPAR": {}, "KAYABA": {}, "KYB": {}, "MONROE": {}, "TOKICO": {},
	"KONI": {}, "ZIMMERMANN": {}, "TEXTAR": {}, "PAGID": {}, "JURID": {},
	"MINTEX": {}, "PIERBURG": {}, "VDO": {}, "SIEMENS": {},
	"VICTOR": {}, "REINZ": {}, "AKEBONO": {}, "TIMKEN": {}, "WIX": {},
}

// Filler words stripped alongside brands when reducing a title to a part
// description.
//
//nolint:gochecknoglobals // Static lookup table
var fillerWords = map[string]struct{}{
	"NEW": {}, "OE": {}, "REPLACEMENT": {}, "PREMIUM": {}, "HD": {},
	"HEAVY": {}, "DUTY": {}, "PERFORMANCE": {}, "STOCK": {},
}

// Part-type words that terminate model-name consumption in titles.
//
//nolint:gochecknoglobals // Static lookup table
var partTypeWords = map[string]struct{}{
	"ENGINE": {}, "MOUNT": {}, "MOUNTS": {}, "MOTOR": {}, "BRAKE": {},
	"BRAKES": {}, "PAD": {}, "PADS": {}, "ROTOR": {}, "ROTORS": {},
	"CALIPER": {}, "CLUTCH": {}, "TRANSMISSION": {}, "SUSPENSION": {},
	"STRUT": {}, "STRUTS": {}, "SHOCK": {}, "SHOCKS": {}, "SPRING": {},
	"SPRINGS": {}, "FILTER": {}, "OIL": {}, "AIR": {}, "FUEL": {},
	"PUMP": {}, "WATER": {}, "ALTERNATOR": {}, "STARTER": {}, "BELT": {},
	"BELTS": {}, "HOSE": {}, "HOSES": {}, "GASKET": {}, "GASKETS": {},
	"SEAL": {}, "SEALS": {}, "BEARING": {}, "BEARINGS": {}, "BUSHING": {},
	"BUSHINGS": {}, "SENSOR": {}, "SWITCH": {}, "VALVE": {},
	"THERMOSTAT": {}, "RADIATOR": {}, "CONDENSER": {}, "EXHAUST": {},
	"MUFFLER": {}, "MANIFOLD": {}, "CONTROL": {}, "ARM": {}, "ARMS": {},
	"ASSEMBLY": {}, "KIT": {}, "HEADLIGHT": {}, "TAILLIGHT": {},
	"MIRROR": {}, "WIPER": {}, "WIPERS": {}, "WHEEL": {}, "AXLE": {},
	"DRIVESHAFT": {}, "DOOR": {}, "WINDOW": {}, "FENDER": {},
	"BUMPER": {}, "HOOD": {}, "TRUNK": {}, "LATCH": {}, "TIMING": {},
	"STEERING": {}, "IGNITION": {}, "SPARK": {}, "PLUG": {}, "PLUGS": {},
	"CATALYTIC": {}, "CONVERTER": {}, "SWAY": {}, "BAR": {}, "LINK": {},
}

// Vehicle makes looked for in provider titles, longest first so compound
// names win.
//
//nolint:gochecknoglobals // Derived lookup table, built once
var titleMakes = buildTitleMakes()

func buildTitleMakes() []string {
	makes := []string{
		"ACURA", "AUDI", "BMW", "CHEVROLET", "CHRYSLER", "DODGE",
		"FERRARI", "FIAT", "FORD", "HONDA", "HYUNDAI", "INFINITI",
		"JAGUAR", "JEEP", "KIA", "LAMBORGHINI", "LAND ROVER", "LEXUS",
		"LINCOLN", "MASERATI", "MAZDA", "MERCEDES", "MERCEDES-BENZ",
		"MINI", "MITSUBISHI", "NISSAN", "PEUGEOT", "PORSCHE", "RAM",
		"RENAULT", "SAAB", "SUBARU", "SUZUKI", "TESLA", "TOYOTA",
		"VOLKSWAGEN", "VW", "VOLVO",
	}
	sort.Slice(makes, func(i, j int) bool {
		if len(makes[i]) != len(makes[j]) {
			return len(makes[i]) > len(makes[j])
		}
		return makes[i] < makes[j]
	})
	return makes
}

//nolint:gochecknoglobals // Compiled once at package init
var titleSplitPattern = regexp.MustCompile(`\s*[-|/]\s*`)

// vehicleFromTitle extracts "Make Model" from a provider result title like
// "Engine Mount - Porsche 944". Returns "" when no make appears.
func vehicleFromTitle(title string) string {
	upper := strings.ToUpper(title)
	for _, make_ := range titleMakes {
		idx := strings.Index(upper, make_)
		if idx < 0 {
			continue
		}
		if idx > 0 && isAlnum(upper[idx-1]) {
			continue
		}
		end := idx + len(make_)
		if end < len(upper) && isAlnum(upper[end]) {
			continue
		}

		var modelWords []string
		for _, word := range strings.Fields(upper[end:]) {
			if word == "-" || word == "|" || word == "/" ||
				word == "FOR" || word == "WITH" || word == "AND" || word == "OR" {
				break
			}
			if _, brand := knownBrands[word]; brand {
				break
			}
			if _, filler := fillerWords[word]; filler {
				break
			}
			if _, part := partTypeWords[word]; part {
				break
			}
			modelWords = append(modelWords, word)
		}

		vehicle := make_
		if len(modelWords) > 0 {
			vehicle += " " + strings.Join(modelWords, " ")
		}
		return titleBrand(vehicle)
	}
	return ""
}

// descriptionFromTitle reduces a provider result title to the part type:
// "Lemforder Engine Mount - Porsche 944" becomes "Engine Mount".
func descriptionFromTitle(title string) string {
	segments := titleSplitPattern.Split(title, -1)
	for _, segment := range segments[:min(len(segments), 2)] {
		var words []string
		for _, word := range strings.Fields(strings.ToUpper(segment)) {
			if _, brand := knownBrands[word]; brand {
				continue
			}
			if _, filler := fillerWords[word]; filler {
				continue
			}
			words = append(words, word)
		}
		desc := strings.Join(words, " ")
		if len(desc) >= 3 {
			return titleBrand(desc)
		}
	}
	return ""
}

func isAlnum(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
