package model

import "strings"

// stateCodes maps lowercased full state names to USPS codes. Covers the 50
// states, DC, and the territories that appear in federal county datasets.
var stateCodes = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"american samoa":           "AS",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"district of columbia":     "DC",
	"florida":                  "FL",
	"georgia":                  "GA",
	"guam":                     "GU",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"northern mariana islands": "MP",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"puerto rico":              "PR",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virgin islands":           "VI",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
}

// NormalizeState canonicalizes a state field to an uppercase USPS code.
// Accepts full names ("California") and two-letter codes ("ca"). Two-letter
// inputs are passed through uppercased without a membership check: the
// geocode dataset carries codes outside the table (military postal states),
// and an unknown code simply never joins anything.
func NormalizeState(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if code, ok := stateCodes[strings.ToLower(multiSpaceRe.ReplaceAllString(s, " "))]; ok {
		return code, true
	}
	if len(s) == 2 {
		return strings.ToUpper(s), true
	}
	return "", false
}
