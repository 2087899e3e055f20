package scoring

import (
	"fmt"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// descriptionExemptLen: descriptions this short are exempt from the
// text-quality check.
const descriptionExemptLen = 5

// PreValidateProject gates a project before it is ever sent to the AI judge.
// The title must read as language; the description too, unless it is short
// enough to be exempt. A rejected project is scored 0 and carries the reason
// verbatim from this stage onward.
func PreValidateProject(p domain.ProjectInput) Validation {
	if v := ValidateText(p.Title); !v.IsValid {
		return Validation{Reason: fmt.Sprintf("project title rejected: %s", v.Reason)}
	}
	if len(p.Description) > descriptionExemptLen {
		if v := ValidateText(p.Description); !v.IsValid {
			return Validation{Reason: fmt.Sprintf("project description rejected: %s", v.Reason)}
		}
	}
	return Validation{IsValid: true}
}

// RejectedEvaluation builds the placeholder evaluation for a project that
// failed pre-validation.
func RejectedEvaluation(p domain.ProjectInput, reason string) domain.ProjectEvaluation {
	return domain.ProjectEvaluation{
		Title:    p.Title,
		IsValid:  false,
		Score:    0,
		Feedback: reason,
	}
}
