package chunking

import (
	"regexp"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// sectionHeadProbe is how much of a chunk's head is scanned for a section
// heading.
const sectionHeadProbe = 200

type sectionRule struct {
	label   domain.SectionLabel
	pattern *regexp.Regexp
}

// sectionRules are evaluated in order; the first match wins, so the more
// specific front-matter labels come before the catch-alls.
var sectionRules = []sectionRule{
	{domain.SectionAbstract, regexp.MustCompile(`abstract|summary`)},
	{domain.SectionIntroduction, regexp.MustCompile(`introduction|background`)},
	{domain.SectionMethods, regexp.MustCompile(`method|methodology|approach|experiment`)},
	{domain.SectionResults, regexp.MustCompile(`result|finding|outcome|data`)},
	{domain.SectionDiscussion, regexp.MustCompile(`discussion|conclusion|implication`)},
	{domain.SectionReferences, regexp.MustCompile(`reference|bibliography`)},
	{domain.SectionAppendix, regexp.MustCompile(`appendix|supplement`)},
}

// classifySection labels a chunk by probing its leading text for a section
// heading.
func classifySection(content string) domain.SectionLabel {
	head := strings.ToLower(content)
	if runes := []rune(head); len(runes) > sectionHeadProbe {
		head = string(runes[:sectionHeadProbe])
	}
	for _, rule := range sectionRules {
		if rule.pattern.MatchString(head) {
			return rule.label
		}
	}
	return domain.SectionOther
}
