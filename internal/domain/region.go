package domain

// RegionCode is a canonical short identifier for one of the fixed
// geographic service areas.
type RegionCode string

// List of canonical region codes
const (
	RegionTashkent       RegionCode = "tashkent"
	RegionSamarkand      RegionCode = "samarkand"
	RegionBukhara        RegionCode = "bukhara"
	RegionAndijan        RegionCode = "andijan"
	RegionFergana        RegionCode = "fergana"
	RegionNamangan       RegionCode = "namangan"
	RegionKashkadarya    RegionCode = "kashkadarya"
	RegionSurkhandarya   RegionCode = "surkhandarya"
	RegionJizzakh        RegionCode = "jizzakh"
	RegionSyrdarya       RegionCode = "syrdarya"
	RegionNavoiy         RegionCode = "navoiy"
	RegionKhorezm        RegionCode = "khorezm"
	RegionKarakalpakstan RegionCode = "karakalpakstan"
)

// regionNames maps canonical codes to their native display names.
var regionNames = map[RegionCode]string{
	RegionTashkent:       "Toshkent",
	RegionSamarkand:      "Samarqand",
	RegionBukhara:        "Buxoro",
	RegionAndijan:        "Andijon",
	RegionFergana:        "Fargʻona",
	RegionNamangan:       "Namangan",
	RegionKashkadarya:    "Qashqadaryo",
	RegionSurkhandarya:   "Surxondaryo",
	RegionJizzakh:        "Jizzax",
	RegionSyrdarya:       "Sirdaryo",
	RegionNavoiy:         "Navoiy",
	RegionKhorezm:        "Xorazm",
	RegionKarakalpakstan: "Qoraqalpogʻiston",
}

// regionSpellings maps human-entered locale spellings (checkout form values,
// diacritic variants) to canonical codes.
var regionSpellings = map[string]RegionCode{
	"Toshkent shahri":    RegionTashkent,
	"Toshkent viloyati":  RegionTashkent,
	"Samarqand":          RegionSamarkand,
	"Buxoro":             RegionBukhara,
	"Andijon":            RegionAndijan,
	"Farg'ona":           RegionFergana,
	"Namangan":           RegionNamangan,
	"Sirdaryo":           RegionSyrdarya,
	"Jizzax":             RegionJizzakh,
	"Surxondaryo":        RegionSurkhandarya,
	"Qashqadaryo":        RegionKashkadarya,
	"Navoiy":             RegionNavoiy,
	"Xorazm":             RegionKhorezm,
	"Qoraqalpog'iston":   RegionKarakalpakstan,
}

// ResolveRegion maps a free-form locale string to a canonical region code.
// Total function: unmapped input passes through unchanged, degrading to
// "no couriers found" downstream instead of failing order processing.
func ResolveRegion(freeText string) RegionCode {
	if code, ok := regionSpellings[freeText]; ok {
		return code
	}
	return RegionCode(freeText)
}

// RegionByName maps a native display name back to its code.
// Used by the registration keyboard, where input is button-constrained.
func RegionByName(name string) (RegionCode, bool) {
	for code, display := range regionNames {
		if display == name {
			return code, true
		}
	}
	return "", false
}

// Valid checks if the RegionCode is one of the canonical codes.
func (r RegionCode) Valid() bool {
	_, ok := regionNames[r]
	return ok
}

// DisplayName returns the native display name of the region,
// or the raw code when it is not canonical.
func (r RegionCode) DisplayName() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return string(r)
}

// RegionDisplayNames returns native region names in a stable order,
// for building the registration selection keyboard.
func RegionDisplayNames() []string {
	codes := []RegionCode{
		RegionTashkent, RegionSamarkand, RegionBukhara, RegionAndijan,
		RegionFergana, RegionNamangan, RegionKashkadarya, RegionSurkhandarya,
		RegionJizzakh, RegionSyrdarya, RegionNavoiy, RegionKhorezm,
		RegionKarakalpakstan,
	}
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, regionNames[c])
	}
	return names
}
