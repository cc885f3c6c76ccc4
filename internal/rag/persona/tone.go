package persona

const MinorAge = 18

type Tone struct {
	Guidance   string `json:"guidance"`
	Complexity string `json:"complexity"`
	Safety     string `json:"safety"`
}

var (
	toneYoung = Tone{
		Guidance:   "Use simple, clear language. Avoid complex metaphors or heavy philosophical concepts. Be extra gentle, supportive, and encouraging. Avoid any violent, explicit, or disturbing content.",
		Complexity: "simple",
		Safety:     "high",
	}
	toneModerate = Tone{
		Guidance:   "Use modern, relatable language. Direct communication is appreciated. You can use contemporary examples and metaphors.",
		Complexity: "moderate",
		Safety:     "moderate",
	}
	toneAdvanced = Tone{
		Guidance:   "Use formal, reflective language. Deeper philosophical and theological concepts are appropriate. You can explore complex spiritual ideas.",
		Complexity: "advanced",
		Safety:     "standard",
	}
)

// ToneFor bands by age. An unknown age (zero or negative) gets the moderate
// band.
func ToneFor(age int) Tone {
	switch {
	case age <= 0:
		return toneModerate
	case age < 16:
		return toneYoung
	case age < 30:
		return toneModerate
	default:
		return toneAdvanced
	}
}

func IsMinor(age int) bool {
	return age > 0 && age < MinorAge
}

const minorSafetyBlock = `SAFETY FOR MINOR (CRITICAL):
This user is under 18 years old. You MUST:
- Avoid all violent, graphic, or disturbing content
- Use gentle, age-appropriate language
- Provide extra support and encouragement
- Simplify complex theological concepts
- Be especially careful with topics of death, suffering, or punishment`

// SafetyBlock is empty for adults and unknown ages.
func SafetyBlock(age int) string {
	if IsMinor(age) {
		return minorSafetyBlock
	}
	return ""
}
