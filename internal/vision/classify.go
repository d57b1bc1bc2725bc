package vision

import (
	"strings"

	"github.com/spec-kit/civicguard/internal/domain"
)

// Result is the classifier output.
type Result struct {
	IssueClass domain.IssueClass
	Severity   domain.Severity
	Confidence float64
}

// Classifier derives an issue class from an uploaded image. Implementations
// never fail; they degrade to the unknown class.
type Classifier interface {
	Classify(filenameOrURL string) Result
}

// RuleBasedClassifier matches known issue labels against the filename.
type RuleBasedClassifier struct{}

// NewRuleBasedClassifier constructs the classifier.
func NewRuleBasedClassifier() *RuleBasedClassifier {
	return &RuleBasedClassifier{}
}

// Classify checks the lowercased name for each label with underscores
// stripped, e.g. "waterleak" matches water_leak. A hit is medium severity at
// 0.9 confidence; a miss degrades to unknown/medium at 0.6.
func (c *RuleBasedClassifier) Classify(filenameOrURL string) Result {
	name := strings.ToLower(filenameOrURL)
	for _, label := range domain.IssueClasses {
		if strings.Contains(name, strings.ReplaceAll(string(label), "_", "")) {
			return Result{IssueClass: label, Severity: domain.SeverityMedium, Confidence: 0.9}
		}
	}
	return Result{IssueClass: domain.IssueUnknown, Severity: domain.SeverityMedium, Confidence: 0.6}
}
