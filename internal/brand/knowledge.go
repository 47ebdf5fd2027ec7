// Package brand holds static knowledge about part manufacturers: quality
// tiers, reputation, and the boosts and comparisons derived from them.
package brand

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier buckets manufacturers by market position.
type Tier string

const (
	TierOEM                Tier = "oem"
	TierPremiumAftermarket Tier = "premium_aftermarket"
	TierEconomy            Tier = "economy"
	TierBudget             Tier = "budget"
	TierUnknown            Tier = "unknown"
)

// tierRank orders tiers for recommendation sorting, higher first.
//
//nolint:gochecknoglobals // Static lookup table
var tierRank = map[Tier]int{
	TierOEM:                4,
	TierPremiumAftermarket: 3,
	TierEconomy:            2,
	TierBudget:             1,
	TierUnknown:            0,
}

// Rank returns the tier's sort rank, higher meaning more recommended.
func (t Tier) Rank() int {
	return tierRank[t]
}

// Profile describes what is known about one manufacturer.
type Profile struct {
	Tier Tier
	// QualityScore is 0-10; it feeds the value-score formula.
	QualityScore float64
	Country      string
	KnownFor     []string
	Description  string
}

// DefaultQualityScore is assumed for manufacturers not in the table, so an
// unknown brand lands mid-range rather than at the bottom.
const DefaultQualityScore = 5.0

// profiles is the static manufacturer table. Quality scores are editorial,
// not derived from data; they only need to be stable and ordered sensibly
// within a tier.
//
//nolint:gochecknoglobals // Static lookup table
var profiles = map[string]Profile{
	// OEM and OE-supplier house brands.
	"GENUINE": {
		Tier: TierOEM, QualityScore: 9.5, Country: "varies",
		Description: "Factory part in factory packaging.",
	},
	"OES": {
		Tier: TierOEM, QualityScore: 9.0, Country: "varies",
		Description: "Original-equipment supplier part without the automaker logo.",
	},
	"MOPAR": {
		Tier: TierOEM, QualityScore: 9.0, Country: "USA",
		Description: "Chrysler/Dodge/Jeep/Ram factory parts.",
	},
	"MOTORCRAFT": {
		Tier: TierOEM, QualityScore: 9.0, Country: "USA",
		Description: "Ford factory parts brand.",
	},
	"ACDELCO": {
		Tier: TierOEM, QualityScore: 8.5, Country: "USA",
		KnownFor:    []string{"electrical", "filters", "brakes"},
		Description: "GM factory parts brand, also sells fits-all lines.",
	},

	// Premium aftermarket.
	"BOSCH": {
		Tier: TierPremiumAftermarket, QualityScore: 9.0, Country: "Germany",
		KnownFor: []string{"fuel injection", "sensors", "ignition", "wipers"},
	},
	"BREMBO": {
		Tier: TierPremiumAftermarket, QualityScore: 9.0, Country: "Italy",
		KnownFor: []string{"brake rotors", "brake pads", "calipers"},
	},
	"BILSTEIN": {
		Tier: TierPremiumAftermarket, QualityScore: 9.0, Country: "Germany",
		KnownFor: []string{"shocks", "struts", "suspension"},
	},
	"SACHS": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Germany",
		KnownFor: []string{"clutches", "shocks", "engine mounts"},
	},
	"LEMFORDER": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Germany",
		KnownFor: []string{"control arms", "tie rods", "bushings"},
	},
	"MAHLE": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Germany",
		KnownFor: []string{"filters", "pistons", "thermostats"},
	},
	"DENSO": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Japan",
		KnownFor: []string{"alternators", "starters", "oxygen sensors", "spark plugs"},
	},
	"AISIN": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Japan",
		KnownFor: []string{"water pumps", "clutches", "transmission parts"},
	},
	"NGK": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Japan",
		KnownFor: []string{"spark plugs", "ignition coils", "oxygen sensors"},
	},
	"ZIMMERMANN": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "Germany",
		KnownFor: []string{"brake rotors", "brake pads"},
	},
	"CORTECO": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "Germany",
		KnownFor: []string{"seals", "engine mounts", "cabin filters"},
	},
	"FEBI": {
		Tier: TierPremiumAftermarket, QualityScore: 7.5, Country: "Germany",
		KnownFor: []string{"suspension", "steering", "cooling"},
	},
	"GATES": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "USA",
		KnownFor: []string{"timing belts", "serpentine belts", "hoses"},
	},
	"KYB": {
		Tier: TierPremiumAftermarket, QualityScore: 7.5, Country: "Japan",
		KnownFor: []string{"shocks", "struts"},
	},
	"TIMKEN": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "USA",
		KnownFor: []string{"bearings", "hub assemblies", "seals"},
	},
	"AKEBONO": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "Japan",
		KnownFor: []string{"ceramic brake pads"},
	},
	"HELLA": {
		Tier: TierPremiumAftermarket, QualityScore: 7.5, Country: "Germany",
		KnownFor: []string{"lighting", "electrical", "sensors"},
	},
	"VICTOR REINZ": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "Germany",
		KnownFor: []string{"gaskets", "head gaskets", "seals"},
	},
	"ELRING": {
		Tier: TierPremiumAftermarket, QualityScore: 8.0, Country: "Germany",
		KnownFor: []string{"gaskets", "seals"},
	},
	"MANN-FILTER": {
		Tier: TierPremiumAftermarket, QualityScore: 8.5, Country: "Germany",
		KnownFor: []string{"oil filters", "air filters", "cabin filters"},
	},
	"WIX": {
		Tier: TierPremiumAftermarket, QualityScore: 7.5, Country: "USA",
		KnownFor: []string{"oil filters", "air filters"},
	},

	// Economy: solid mid-market value.
	"CENTRIC": {
		Tier: TierEconomy, QualityScore: 6.5, Country: "USA",
		KnownFor:    []string{"brake rotors", "brake pads", "hubs"},
		Description: "Broad brake coverage at mid-market prices.",
	},
	"MOOG": {
		Tier: TierEconomy, QualityScore: 7.0, Country: "USA",
		KnownFor:    []string{"ball joints", "control arms", "tie rods"},
		Description: "Workhorse chassis parts, strong availability.",
	},
	"DORMAN": {
		Tier: TierEconomy, QualityScore: 6.0, Country: "USA",
		KnownFor:    []string{"hard-to-find parts", "replacement hardware"},
		Description: "Covers parts the OEM only sells in assemblies.",
	},
	"MONROE": {
		Tier: TierEconomy, QualityScore: 6.0, Country: "USA",
		KnownFor: []string{"shocks", "struts"},
	},
	"BECK/ARNLEY": {
		Tier: TierEconomy, QualityScore: 6.5, Country: "USA",
		Description: "Import-car coverage, often repackaged OE-supplier parts.",
	},
	"URO": {
		Tier: TierEconomy, QualityScore: 5.5, Country: "USA",
		Description: "European-car replacement parts at economy prices.",
	},
	"DURALAST": {
		Tier: TierEconomy, QualityScore: 5.5, Country: "USA",
		Description: "AutoZone house brand with lifetime warranty on many lines.",
	},
	"CARQUEST": {
		Tier: TierEconomy, QualityScore: 5.5, Country: "USA",
		Description: "Advance Auto house brand.",
	},

	// Budget.
	"A-PREMIUM": {
		Tier: TierBudget, QualityScore: 4.0, Country: "China",
		Description: "Marketplace budget brand.",
	},
	"TRQ": {
		Tier: TierBudget, QualityScore: 4.5, Country: "USA",
		Description: "Budget kits sold through marketplaces.",
	},
	"DETROIT AXLE": {
		Tier: TierBudget, QualityScore: 4.0, Country: "USA",
		KnownFor:    []string{"axles", "brake kits"},
		Description: "Volume budget kits.",
	},
	"EVAN FISCHER": {
		Tier: TierBudget, QualityScore: 3.5, Country: "Taiwan",
		Description: "Budget body and trim parts.",
	},
}

// brandFolder strips diacritics so "Lemförder" resolves to the
// LEMFORDER profile, matching the folding the grouper applies to keys.
//
//nolint:gochecknoglobals // Built once, safe for concurrent use via transform.String
var brandFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeBrand maps a free-text brand to a profile key.
func normalizeBrand(name string) string {
	folded, _, err := transform.String(brandFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}

// Lookup returns the profile for a brand name, or nil when unknown.
// Matching is case-insensitive, tolerant of surrounding whitespace, and
// folds diacritics before comparing.
func Lookup(name string) *Profile {
	if name == "" {
		return nil
	}
	if p, ok := profiles[normalizeBrand(name)]; ok {
		return &p
	}
	return nil
}

// QualityScore returns the brand's quality score, or DefaultQualityScore
// when the brand is unknown.
func QualityScore(name string) float64 {
	if p := Lookup(name); p != nil {
		return p.QualityScore
	}
	return DefaultQualityScore
}

// TierOf returns the brand's tier, TierUnknown when not in the table.
func TierOf(name string) Tier {
	if p := Lookup(name); p != nil {
		return p.Tier
	}
	return TierUnknown
}
