package competitor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/competitor-intel/internal/model"
)

const systemPromptTmpl = `You are a competitive intelligence analyst. Decide which of the listed brands compete with the target company.

Target industry: %s
Target description: %s

Score every listed brand from 0 to 100 for competitive similarity to the target company. Respond with a JSON array containing exactly one entry per listed brand and nothing else:
[{"brand_index": 0, "is_competitor": true, "similarity_score": 85, "description": "what the brand does, max 100 chars", "reasoning": "one sentence"}]

brand_index is the 0-based number shown before each brand.`

const userPromptTmpl = "Brands:\n%s\n\nReturn the JSON array."

func systemPrompt(industry, description string) string {
	if strings.TrimSpace(description) == "" {
		description = "not provided"
	}
	return fmt.Sprintf(systemPromptTmpl, industry, description)
}

// brandList renders one line per brand, numbered from 0 to match brand_index.
func brandList(batch []model.Brand, descMax int) string {
	var b strings.Builder
	for i, brand := range batch {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i, brand.Name)
		if brand.Website != nil && *brand.Website != "" {
			fmt.Fprintf(&b, " (%s)", *brand.Website)
		}
		if brand.Description != nil && *brand.Description != "" {
			b.WriteString(" - ")
			b.WriteString(truncate(*brand.Description, descMax))
		}
	}
	return b.String()
}

func userPrompt(batch []model.Brand, descMax int) string {
	return fmt.Sprintf(userPromptTmpl, brandList(batch, descMax))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
