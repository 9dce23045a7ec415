package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fraud-assessment-service/internal/metrics"
	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/utils"
)

const (
	NoRecordAnswer = "Please analyze a claim first to get specific insights."
	HelpAnswer     = "I can give you precise details. Try asking 'What is the premium?', " +
		"'How much is the claim?', 'Who was contacted?', or 'Why is this a risk?'."
	DocumentsAnswer = "Recommended Documents for verification: 1. Police Report. " +
		"2. Cell Tower Data. 3. Vehicle Maintenance Records."
)

// fieldKeyword routes a question to one record column. Money columns are
// rendered as dollars.
type fieldKeyword struct {
	label   string
	column  string
	money   bool
	phrases []*regexp.Regexp
}

func keyword(label, column string, money bool, phrases ...string) fieldKeyword {
	k := fieldKeyword{label: label, column: column, money: money}
	for _, p := range phrases {
		// anchored at the start of a word only, so plurals still match
		k.phrases = append(k.phrases, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)))
	}
	return k
}

func (k fieldKeyword) matches(question string) bool {
	for _, re := range k.phrases {
		if re.MatchString(question) {
			return true
		}
	}
	return false
}

// Checked in order; the first keyword whose column exists wins.
var fieldKeywords = []fieldKeyword{
	keyword("Premium", "policy_annual_premium", true, "premium"),
	keyword("Deductible", "policy_deductable", true, "deductible", "deductable"),
	keyword("Policy State", "policy_state", false, "policy state"),
	keyword("Months As Customer", "months_as_customer", false, "months as customer"),
	keyword("Age", "age", false, "age"),
	keyword("Incident Date", "incident_date", false, "incident date"),
	keyword("Incident Type", "incident_type", false, "incident type"),
	keyword("Collision Type", "collision_type", false, "collision type"),
	keyword("Severity", "incident_severity", false, "severity"),
	keyword("Authorities", "authorities_contacted", false, "authorities", "contacted"),
	keyword("Incident State", "incident_state", false, "incident state"),
	keyword("Incident City", "incident_city", false, "incident city"),
	keyword("Total Claim", "total_claim_amount", true, "total claim", "how much"),
	keyword("Injury Claim", "injury_claim", true, "injury claim"),
	keyword("Property Claim", "property_claim", true, "property claim"),
	keyword("Vehicle Claim", "vehicle_claim", true, "vehicle claim"),
	keyword("Auto Make", "auto_make", false, "auto make"),
	keyword("Auto Model", "auto_model", false, "auto model"),
	keyword("Auto Year", "auto_year", false, "auto year"),
	keyword("Witnesses", "witnesses", false, "witnesses", "witness"),
	keyword("Police Report", "police_report_available", false, "police report"),
	keyword("Property Damage", "property_damage", false, "property damage"),
	keyword("Umbrella Limit", "umbrella_limit", true, "umbrella limit"),
}

var (
	riskTerms     = []string{"why", "reason", "flag", "risk", "fraud", "score"}
	documentTerms = []string{"document", "proof", "evidence"}
)

// QAResponder answers free-text questions about the current claim from a
// fixed keyword table. It is stateless and never fails.
type QAResponder struct{}

func NewQAResponder() *QAResponder {
	return &QAResponder{}
}

func (q *QAResponder) Respond(question string, record *models.DisplayRecord, probability float64, drivers []models.RiskDriver) string {
	answer, rule := q.respond(question, record, probability, drivers)
	metrics.QuestionsAnswered.WithLabelValues(rule).Inc()
	return answer
}

func (q *QAResponder) respond(question string, record *models.DisplayRecord, probability float64, drivers []models.RiskDriver) (string, string) {
	if record == nil {
		return NoRecordAnswer, "no_record"
	}
	p := strings.ToLower(question)

	for _, k := range fieldKeywords {
		if !k.matches(p) {
			continue
		}
		value, ok := record.Lookup(k.column)
		if !ok {
			continue
		}
		return fmt.Sprintf("The %s for this claim is %s.", k.label, formatAnswerValue(value, k.money)), "field"
	}

	if containsAny(p, riskTerms) {
		return explainRisk(probability, drivers), "risk"
	}
	if containsAny(p, documentTerms) {
		return DocumentsAnswer, "documents"
	}
	return HelpAnswer, "help"
}

func explainRisk(probability float64, drivers []models.RiskDriver) string {
	msg := fmt.Sprintf("This claim is assessed at %s fraud probability. ", utils.FormatPercent(probability))
	if len(drivers) == 0 {
		return msg + "This is based on complex model patterns."
	}
	names := make([]string, len(drivers))
	for i, d := range drivers {
		names[i] = d.Description
	}
	return msg + "Key risk drivers include: " + strings.Join(names, ", ") + "."
}

func formatAnswerValue(value any, money bool) string {
	switch v := value.(type) {
	case float64:
		if money {
			return utils.FormatCurrency(v)
		}
	case int:
		if money {
			return utils.FormatCurrency(float64(v))
		}
	case time.Time:
		return utils.FormatDate(v)
	}
	return utils.FormatValue(value)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
