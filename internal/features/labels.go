package features

import (
	"fmt"
	"strings"
)

// displayLabels maps the raw dataset feature identifiers to human-readable
// labels shown in importance reports. Lookup is case-insensitive.
var displayLabels = map[string]string{
	"age":      "Age",
	"sex":      "Sex",
	"cp":       "Chest Pain",
	"trestbps": "Blood Pressure",
	"chol":     "Cholesterol",
	"fbs":      "Fasting Glucose",
	"restecg":  "ECG Result",
	"thalach":  "Heart Rate",
	"exang":    "Angina",
	"oldpeak":  "ST Depression",
	"slope":    "ST Slope",
	"ca":       "Vessel Count",
	"thal":     "Thalassemia",
}

// DisplayLabel resolves a raw feature identifier to its display label.
// Unknown or blank identifiers fall back to a positional placeholder
// rather than failing.
func DisplayLabel(raw string, index int) string {
	if label, ok := displayLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return label
	}
	return fmt.Sprintf("Var_%d", index)
}
