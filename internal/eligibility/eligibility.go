// Package eligibility decides whether a selected student earns co-op credit
// for a position. Evaluate is pure and safe for concurrent use.
package eligibility

import (
	"fmt"
	"math"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

// Thresholds applied by Evaluate.
const (
	MinGPA                 = 2.0
	MinWeeks               = 7
	MinTotalHours          = 140
	CreditHoursPerSemester = 15
)

// Evaluate checks the student against every rule and returns all failures in
// rule order. It never errors: malformed numeric inputs simply fail their rule.
func Evaluate(student models.Student, position models.Position) models.EligibilityVerdict {
	reasons := make([]string, 0, 4)

	if math.IsNaN(student.GPA) || student.GPA < MinGPA {
		reasons = append(reasons, fmt.Sprintf("GPA %v is below minimum requirement of 2.0", student.GPA))
	}

	if position.NumberOfWeeks < MinWeeks {
		reasons = append(reasons, fmt.Sprintf("Internship duration of %d weeks is below minimum requirement of %d weeks", position.NumberOfWeeks, MinWeeks))
	}

	if total := position.TotalHours(); total < MinTotalHours {
		reasons = append(reasons, fmt.Sprintf("Total hours %d is below minimum requirement of %d hours", total, MinTotalHours))
	}

	if msg, ok := residency(student); !ok {
		reasons = append(reasons, msg)
	}

	return models.EligibilityVerdict{Eligible: len(reasons) == 0, Reasons: reasons}
}

// EstimatedSemesters approximates completed semesters from earned credit hours.
// Negative inputs yield a negative estimate.
func EstimatedSemesters(creditHours int) int {
	if creditHours < 0 {
		return -1
	}
	return creditHours / CreditHoursPerSemester
}

func residency(student models.Student) (string, bool) {
	semesters := EstimatedSemesters(student.CreditHours)
	if student.IsTransfer {
		if semesters < 1 {
			return "Transfer student must have completed at least one semester at the college", false
		}
		return "", true
	}
	if semesters < 2 {
		return "Non-transfer student must have completed at least two semesters at the college", false
	}
	return "", true
}
