package cel

// ConditionExpressionExamples are shown by adminctl when a rule expression
// fails to validate.
var ConditionExpressionExamples = map[string]string{
	"source_equals":    `lead.source == "google_ads"`,
	"program_in":       `lead.program in ["DS-BSC", "CS-MSC"]`,
	"priority_at_most": `lead.priority <= 2`,
	"attribute_check":  `has(lead.attributes.country) && lead.attributes.country == "DE"`,
	"combined":         `lead.source == "referral" && lead.priority >= 3`,
	"event_action":     `event.action == "delete"`,
	"event_entity_in":  `event.entity in ["program", "campus"]`,
}
