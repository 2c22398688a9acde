// Package query holds the pure functions used to validate, categorize,
// filter, sort and aggregate expense records.
package query

import (
	"regexp"
	"strings"
)

type merchantRule struct {
	categoryID string
	patterns   []*regexp.Regexp
}

func rule(categoryID string, patterns ...string) merchantRule {
	r := merchantRule{categoryID: categoryID}
	for _, p := range patterns {
		r.patterns = append(r.patterns, regexp.MustCompile("(?i)"+p))
	}
	return r
}

// merchantRules is scanned in order and the first matching category wins.
var merchantRules = []merchantRule{
	rule("housing", `rent`, `landlord`, `property management`, `mortgage`, `hoa`),
	rule("utilities", `electric`, `power`, `energy`, `water`, `gas company`, `internet`,
		`comcast`, `verizon`, `at&t`, `spectrum`, `xfinity`, `cox`),
	rule("food", `grocery`, `supermarket`, `whole foods`, `trader joe`, `safeway`,
		`kroger`, `walmart`, `costco`, `restaurant`, `cafe`, `coffee`,
		`starbucks`, `dunkin`, `mcdonald`, `burger`, `pizza`, `chipotle`,
		`doordash`, `uber eats`, `grubhub`, `postmates`),
	rule("transportation", `gas station`, `fuel`, `shell`, `chevron`, `bp`, `exxon`, `mobil`,
		`uber`, `lyft`, `taxi`, `transit`, `metro`, `parking`, `toll`,
		`auto insurance`, `car wash`, `jiffy lube`),
	rule("healthcare", `pharmacy`, `cvs`, `walgreens`, `rite aid`, `hospital`, `clinic`,
		`doctor`, `dental`, `vision`, `medical`, `health`),
	rule("entertainment", `netflix`, `hulu`, `disney`, `spotify`, `apple music`, `youtube`,
		`hbo`, `amazon prime`, `movie`, `cinema`, `theater`, `game`,
		`steam`, `playstation`, `xbox`, `nintendo`),
	rule("shopping", `amazon`, `target`, `best buy`, `apple store`, `mall`, `clothing`,
		`fashion`, `nordstrom`, `macy`, `home depot`, `lowe`, `ikea`),
	rule("education", `university`, `college`, `school`, `tuition`, `books`, `coursera`,
		`udemy`, `edx`, `student loan`),
	rule("personal", `gym`, `fitness`, `salon`, `spa`, `haircut`, `barber`, `massage`,
		`yoga`, `pilates`, `laundry`, `dry clean`),
	rule("travel", `airline`, `flight`, `hotel`, `airbnb`, `vrbo`, `expedia`,
		`booking.com`, `kayak`, `travel`),
	rule("insurance", `insurance`, `state farm`, `geico`, `progressive`, `allstate`),
	rule("debt", `credit card`, `loan payment`, `paypal credit`, `affirm`, `afterpay`),
	rule("charity", `church`, `donation`, `charity`, `tithing`, `offering`, `non-profit`),
	rule("pets", `pet`, `vet`, `veterinary`, `petsmart`, `petco`, `chewy`),
}

// SuggestCategory guesses a category id from merchant text. The boolean is
// false when nothing matches or the text is blank.
func SuggestCategory(merchant string) (string, bool) {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return "", false
	}
	for _, r := range merchantRules {
		for _, p := range r.patterns {
			if p.MatchString(merchant) {
				return r.categoryID, true
			}
		}
	}
	return "", false
}
