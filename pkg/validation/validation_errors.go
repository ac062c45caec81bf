package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly French labels
var FieldLabels = map[string]string{
	// Agreement fields
	"ApplicationID": "Candidature",
	"MissionText":   "Description du mandat",
	"StartDate":     "Date de début",
	"DurationWeeks": "Durée (semaines)",
	"Location":      "Lieu",
	"Compensation":  "Rémunération",
	"WorkSchedule":  "Horaire de travail",
	"InstructorID":  "Professeur superviseur",

	// Convocation fields
	"ScheduledAt": "Date de convocation",
	"Message":     "Message",

	// Evaluation fields
	"Answers":  "Réponses",
	"Comments": "Commentaires",
	"Summary":  "Appréciation globale",
	"Locale":   "Langue",

	// Application fields
	"CVID":      "CV",
	"StudentID": "Étudiant",
	"OfferID":   "Offre",
}

// ValidationRules contains units for validation messages
var ValidationRules = map[string]map[string]interface{}{
	"DurationWeeks": {"min": 1, "max": 104, "unit": "semaines"},
	"Compensation":  {"min": 0, "unit": "$"},
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins the formatted errors into one line.
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	fieldName := e.Field()
	label := getFieldLabel(fieldName)
	tag := e.Tag()
	param := e.Param()

	switch tag {
	case "required", "not_blank":
		return fmt.Sprintf("%s : champ obligatoire", label)

	case "min", "gte":
		if unit := ruleUnit(fieldName); unit != "" {
			return fmt.Sprintf("%s : minimum %s %s", label, param, unit)
		}
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s : minimum %s caractères", label, param)
		}
		return fmt.Sprintf("%s : minimum %s", label, param)

	case "max":
		if unit := ruleUnit(fieldName); unit != "" {
			return fmt.Sprintf("%s : maximum %s %s", label, param, unit)
		}
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s : maximum %s caractères", label, param)
		}
		return fmt.Sprintf("%s : maximum %s", label, param)

	case "gt":
		return fmt.Sprintf("%s : doit être supérieur à %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s : doit être l'une des valeurs suivantes : %s", label, strings.ReplaceAll(param, " ", ", "))

	case "locale":
		return fmt.Sprintf("%s : langue non supportée (fr ou en)", label)

	case "no_emoji":
		return fmt.Sprintf("%s : les émojis et symboles spéciaux ne sont pas permis", label)

	default:
		return fmt.Sprintf("%s : validation échouée (%s)", label, tag)
	}
}

func ruleUnit(fieldName string) string {
	if rules, ok := ValidationRules[fieldName]; ok {
		if unit, ok := rules["unit"].(string); ok {
			return unit
		}
	}
	return ""
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
