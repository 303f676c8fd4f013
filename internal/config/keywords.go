package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Keywords maps a category name to its list of phrases.
type Keywords map[string][]string

// DefaultKeywords returns the built-in taxonomy, focused on Florida
// wholesale real estate.
func DefaultKeywords() Keywords {
	return Keywords{
		"florida_off_market": {
			"florida off market", "FL wholesale", "florida wholesale deal",
			"miami off market", "florida wholesale", "off market florida",
			"florida deals", "FL off market", "south florida wholesale",
			"tampa wholesale", "orlando wholesale", "jacksonville wholesale",
		},
		"deal_types": {
			"motivated seller", "tax lien", "probate", "distressed property",
			"pre-foreclosure", "foreclosure", "bank owned", "REO",
			"short sale", "estate sale", "divorce sale", "vacant property",
			"absentee owner", "code violation", "fire damage", "hoarder house",
			"inherited property", "back taxes", "liens",
		},
		"investor_intent": {
			"looking for deals", "investor network", "off market leads",
			"cash buyer", "need deals", "looking for wholesale",
			"buyer's list", "deal flow", "acquisitions", "dispositions",
			"assignment fee", "double close", "JV deal", "seeking deals",
			"active investor", "cash ready", "proof of funds",
		},
		"wholesaling": {
			"wholesale", "wholesaling", "assignment", "assignment contract",
			"EMD", "earnest money", "title company", "closing cost",
			"ARV", "after repair value", "MAO", "maximum allowable offer",
			"70% rule", "repair estimate", "comps", "deal analysis",
			"skip tracing", "driving for dollars", "D4D", "cold calling",
		},
		"florida_markets": {
			"miami", "south florida", "fort lauderdale", "boca raton",
			"palm beach", "broward", "dade", "tampa", "orlando",
			"jacksonville", "st petersburg", "clearwater", "sarasota",
			"naples", "cape coral", "fort myers", "gainesville", "tallahassee",
			"pensacola", "daytona", "west palm beach", "pompano beach",
		},
		"help_seeking": {
			"need advice", "any tips", "how do I", "what should I",
			"help me understand", "new to wholesaling", "beginner wholesaler",
			"first deal", "getting started", "how to find", "where to find",
			"struggling to find", "can't find deals", "deal sources",
		},
	}
}

// LoadKeywords reads a taxonomy from a YAML file mapping category names
// to phrase lists. An empty path returns the built-in taxonomy.
func LoadKeywords(path string) (Keywords, error) {
	if path == "" {
		return DefaultKeywords(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	var kw Keywords
	if err := yaml.Unmarshal(b, &kw); err != nil {
		return nil, fmt.Errorf("parse keywords file: %w", err)
	}
	if len(kw) == 0 {
		return nil, fmt.Errorf("keywords file %s defines no categories", path)
	}
	return kw, nil
}
