package search

import "sort"

// TrustedSources is the two-tier allow-list of authoritative source domains.
// Searches for a claim are restricted to the claim domain's list plus the
// general government list; off-list results are never requested.
type TrustedSources struct {
	Tier1      map[string][]string
	Government []string
}

// DefaultTrustedSources returns the built-in allow-list.
func DefaultTrustedSources() *TrustedSources {
	return &TrustedSources{
		Tier1: map[string][]string{
			"medical": {
				"who.int", "cdc.gov", "nih.gov", "mohfw.gov.in", "mayoclinic.org",
			},
			"scientific": {
				"nature.com", "science.org", "nasa.gov", "nih.gov",
			},
			"climate": {
				"ipcc.ch", "nasa.gov", "noaa.gov", "wmo.int",
			},
			"political": {
				"reuters.com", "apnews.com", "factcheck.org", "pib.gov.in",
			},
			"general": {
				"reuters.com", "apnews.com", "britannica.com",
			},
		},
		Government: []string{
			"pib.gov.in", "india.gov.in", "usa.gov",
		},
	}
}

// DomainsFor returns the deduplicated allow-list for a claim domain: the
// domain-specific tier-1 sources plus the government list, sorted so query
// construction is deterministic.
func (t *TrustedSources) DomainsFor(domain string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range t.Tier1[domain] {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range t.Government {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
