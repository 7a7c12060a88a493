package emergency

// Static dialing directories keyed by ISO country code. Unknown countries
// fall back to the EU-wide 112 for general numbers and an empty helpline set.

var emergencyNumbers = map[string]map[string]string{
	"US": {"police": "911", "ambulance": "911", "fire": "911"},
	"UK": {"police": "999", "ambulance": "999", "fire": "999"},
	"AU": {"police": "000", "ambulance": "000", "fire": "000"},
	"IN": {"police": "100", "ambulance": "108", "fire": "101", "women_helpline": "1091"},
	"CA": {"police": "911", "ambulance": "911", "fire": "911"},
	"NZ": {"police": "111", "ambulance": "111", "fire": "111"},
}

var defaultEmergencyNumbers = map[string]string{
	"police": "112", "ambulance": "112", "fire": "112",
}

var womenHelplines = map[string]map[string]string{
	"US": {"domestic_violence": "1-800-799-7233", "sexual_assault": "1-800-656-4673"},
	"UK": {"domestic_violence": "0808 2000 247", "sexual_assault": "0808 802 9999"},
	"IN": {"women_helpline": "1091", "domestic_violence": "181"},
	"AU": {"domestic_violence": "1800 737 732", "sexual_assault": "1800 737 732"},
	"CA": {"domestic_violence": "1-800-363-9010", "sexual_assault": "1-888-933-9007"},
}

func EmergencyNumbers(countryCode string) map[string]string {
	if numbers, ok := emergencyNumbers[countryCode]; ok {
		return numbers
	}
	return defaultEmergencyNumbers
}

func WomenHelplines(countryCode string) map[string]string {
	if helplines, ok := womenHelplines[countryCode]; ok {
		return helplines
	}
	return map[string]string{}
}
