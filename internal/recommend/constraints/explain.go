// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package constraints

import (
	"fmt"
	"strings"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// maxListedMissing is how many missing ingredients an explanation names.
const maxListedMissing = 3

// Explain renders a short explanation for one ranked candidate. When the
// candidate carries no ingredient match, the wording depends on source.
func Explain(c *recommend.Candidate, source recommend.Source) string {
	name := recipeName(c.Recipe)
	m := c.Match
	if m == nil || m.RecipeTotal == 0 || m.AvailableTotal == 0 {
		if source == recommend.SourceModel {
			return "Recommended based on your history: " + name
		}
		return "Popular recipe: " + name
	}

	if m.Complete() {
		return fmt.Sprintf("You have all the ingredients (%d/%d): %s", m.Used, m.RecipeTotal, name)
	}
	ratio := m.Ratio()
	if ratio >= 0.5 {
		return fmt.Sprintf("Uses %d/%d ingredients (%d%% of recipe): %s", m.Used, m.RecipeTotal, int(ratio*100), name)
	}

	missing := len(m.Missing)
	listed := m.Missing
	if len(listed) > maxListedMissing {
		listed = listed[:maxListedMissing]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Missing %d ingredient(s) (%d/%d available): %s", missing, m.Used, m.RecipeTotal, name)
	if len(listed) > 0 {
		b.WriteString(". Missing: ")
		b.WriteString(strings.Join(listed, ", "))
		if extra := missing - len(listed); extra > 0 {
			fmt.Fprintf(&b, " (+%d more)", extra)
		}
	}
	return b.String()
}

// ExplainAll renders explanations for candidates in order.
func ExplainAll(candidates []recommend.Candidate, source recommend.Source) []string {
	out := make([]string, len(candidates))
	for i := range candidates {
		out[i] = Explain(&candidates[i], source)
	}
	return out
}

func recipeName(r *recommend.Recipe) string {
	if r == nil {
		return "Unknown recipe"
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Recipe %d", r.ID)
}
