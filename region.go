package vcbanner

import (
	"fmt"
	"strings"
)

// Locale is one of the region slots of a banner container
type Locale int

// Region slots in the order they appear in the container header
const (
	LocaleJPN Locale = iota
	LocaleUSAEnglish
	LocaleEUREnglish
	LocaleEURFrench
	LocaleEURGerman
	LocaleEURItalian
	LocaleEURSpanish
	LocaleCHN
	LocaleKOR
	LocaleTWN
	LocaleUSAFrench
	LocaleUSASpanish
	LocaleUSAPortuguese
)

var localeCodes = [...]string{
	LocaleJPN:           "JPN",
	LocaleUSAEnglish:    "USA_EN",
	LocaleEUREnglish:    "EUR_EN",
	LocaleEURFrench:     "EUR_FR",
	LocaleEURGerman:     "EUR_GE",
	LocaleEURItalian:    "EUR_IT",
	LocaleEURSpanish:    "EUR_SP",
	LocaleCHN:           "CHN",
	LocaleKOR:           "KOR",
	LocaleTWN:           "TWN",
	LocaleUSAFrench:     "USA_FR",
	LocaleUSASpanish:    "USA_SP",
	LocaleUSAPortuguese: "USA_PO",
}

func (l Locale) String() string {
	if l >= 0 && int(l) < len(localeCodes) {
		return localeCodes[l]
	}
	return fmt.Sprintf("Locale(%d)", int(l))
}

// ParseLocale returns the Locale with the given code, case is ignored
func ParseLocale(s string) (Locale, error) {
	for i, code := range localeCodes {
		if strings.EqualFold(code, s) {
			return Locale(i), nil
		}
	}
	return 0, fmt.Errorf("vcbanner: unknown locale %q", s)
}

// Region is a build target, a code naming it and the template it's built
// from
type Region struct {
	Code string `yaml:"code"`
	// File is the template relative to the template directory
	File string `yaml:"file,omitempty"`
}

func (r Region) template() string {
	if r.File != "" {
		return r.File
	}
	return r.Code + templateExt
}

const templateExt = ".bnr"

// DefaultRegions returns a region for each locale using the template
// <CODE>.bnr
func DefaultRegions() []Region {
	regions := make([]Region, 0, len(localeCodes))
	for _, code := range localeCodes {
		regions = append(regions, Region{Code: code})
	}
	return regions
}
