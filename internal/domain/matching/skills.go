package matching

import "strings"

// SkillScore returns the percentage of required tags covered by the worker.
// A tag is covered when any worker tag contains it, or is contained by it,
// ignoring case. Loose on purpose: "Bar" covers "Barista".
func SkillScore(workerSkills, required []string) float64 {
	if len(required) == 0 {
		return 100
	}

	have := make([]string, 0, len(workerSkills))
	for _, s := range workerSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		have = append(have, s)
	}

	matched := 0
	for _, r := range required {
		r = strings.ToLower(strings.TrimSpace(r))
		for _, h := range have {
			if strings.Contains(h, r) || strings.Contains(r, h) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(required)) * 100
}
