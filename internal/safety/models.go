package safety

// Recommendation is a single safety tip. Not persisted.
type Recommendation struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

const (
	TypeTime     = "time"
	TypeLocation = "location"
	TypeBehavior = "behavior"
	TypeGeneral  = "general"

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// generalTips rotate hourly; the whole set is returned when no other
// heuristic fired.
var generalTips = []Recommendation{
	{Type: TypeGeneral, Severity: SeverityInfo, Message: "Share your location with a trusted contact when traveling in unfamiliar areas."},
	{Type: TypeGeneral, Severity: SeverityInfo, Message: "Keep your phone charged and easily accessible for emergencies."},
	{Type: TypeGeneral, Severity: SeverityInfo, Message: "Trust your instincts. If a situation feels unsafe, leave immediately."},
	{Type: TypeGeneral, Severity: SeverityInfo, Message: "Stay in well-lit, populated areas, especially at night."},
}
