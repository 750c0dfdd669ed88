package intake

import "regexp"

var (
	phonePattern = regexp.MustCompile(`^[0-9-]{10,13}$`)

	// Day marker, slash or hyphen, or an English month name, full or abbreviated.
	dateMarker = regexp.MustCompile(`(?i)日|/|-|\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?(?:\s|\d|,|$)`)
	// Hour marker, an HH:MM shaped tail, or "3pm".
	timeMarker = regexp.MustCompile(`(?i)時|:\d{2}|\d{1,2}\s*(?:am|pm)\b`)
)

// IsValidPhone accepts 10 to 13 characters made of digits and hyphens.
func IsValidPhone(text string) bool {
	return phonePattern.MatchString(text)
}

// IsValidDateTime is a presence heuristic: text must mention both a date and
// a time. It does not parse anything.
func IsValidDateTime(text string) bool {
	return dateMarker.MatchString(text) && timeMarker.MatchString(text)
}
