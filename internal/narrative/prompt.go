package narrative

import (
	"encoding/json"
	"fmt"
)

// BuildFeedbackPrompt 构造两段式点评提示词
func BuildFeedbackPrompt(in Input) (string, error) {
	summary, err := json.Marshal(in.Summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode nutritional summary: %w", err)
	}

	return fmt.Sprintf(`
**Task:** You are a clinical nutritionist. Provide a two-part dietary analysis based on the data below.

**Part 1: Nutritional Analysis**

Compare "total_nutrients" with "rda_targets" in the nutritional summary.

- In a section titled "**Nutritional Analysis**", write a **numbered list** of findings.
- For each nutrient, state whether it is within, above, or below the target. A null target means no RDA target.
- Briefly explain the clinical significance of major deviations.

**Part 2: Personalized Recommendations**

Using Part 1 together with the patient's co-morbidities and diet preferences:

- In a section titled "**Personalized Recommendations**", write a **numbered list** of prioritized dietary suggestions.
- Suggest concrete food choices and meal adjustments.

**Input Data:**

*   **Nutritional Summary:** %s
*   **Patient Co-morbidities:** %s
*   **Diet Preferences:** %s
`, summary, in.CoMorbidities, in.DietPreference), nil
}
