package venue

import (
	"regexp"
	"strings"
)

// Expander 期刊缩写展开器
// 规则按顺序匹配，先命中者生效，保证结果确定
type Expander struct {
	rules []rule
}

type rule struct {
	name     string
	patterns []*regexp.Regexp
}

// NewExpander 创建缩写展开器
func NewExpander() *Expander {
	e := &Expander{}
	e.initPatterns()
	return e
}

// 全局单例
var defaultExpander = NewExpander()

// Expand 使用默认规则展开缩写
func Expand(venue string) (string, bool) {
	return defaultExpander.Expand(venue)
}

// Expand 返回缩写对应的完整刊名（大写），无匹配时返回 false
func (e *Expander) Expand(venue string) (string, bool) {
	venue = cleanVenue(venue)
	if venue == "" {
		return "", false
	}
	for _, r := range e.rules {
		for _, p := range r.patterns {
			if p.MatchString(venue) {
				return r.name, true
			}
		}
	}
	return "", false
}

// cleanVenue 去掉句点、统一横杠，Scholar 的缩写常见 "Nat. Med." 这种写法
func cleanVenue(venue string) string {
	venue = strings.ReplaceAll(venue, "\u00a0", " ")
	venue = strings.ReplaceAll(venue, "–", "-")
	venue = strings.ReplaceAll(venue, "—", "-")
	venue = strings.ReplaceAll(venue, ".", " ")
	return strings.Join(strings.Fields(venue), " ")
}

// tail 缩写后允许出现卷、期、页码
const tail = `(?:\s*[\d(,:;].*)?$`

func (e *Expander) initPatterns() {
	// 刊名 -> 常见缩写模式（卷期页码等尾巴允许存在）
	defs := []struct {
		name     string
		patterns []string
	}{
		// ==================== Multidisciplinary ====================
		{"NATURE COMMUNICATIONS", []string{`nat(?:ure)? commun(?:ications)?`}},
		{"SCIENCE ADVANCES", []string{`sci(?:ence)? adv(?:ances)?`}},
		{"PROCEEDINGS OF THE NATIONAL ACADEMY OF SCIENCES", []string{
			`proc(?:eedings)? natl? acad(?:emy)? sci`,
			`pnas`,
		}},
		{"SCIENTIFIC REPORTS", []string{`sci(?:entific)? rep(?:orts)?`}},
		{"PLOS ONE", []string{`plos one`}},

		// ==================== Medicine ====================
		{"NEW ENGLAND JOURNAL OF MEDICINE", []string{
			`n engl j med`,
			`nejm`,
			`new england j(?:ournal)? (?:of )?med(?:icine)?`,
		}},
		{"NATURE MEDICINE", []string{`nat(?:ure)? med`}},
		{"JAMA - JOURNAL OF THE AMERICAN MEDICAL ASSOCIATION", []string{`jama`, `j am med assoc`}},
		{"BMJ", []string{`bmj`, `br(?:itish)? med(?:ical)? j`}},
		{"LANCET ONCOLOGY", []string{`lancet oncol`}},
		{"ANNALS OF INTERNAL MEDICINE", []string{`ann intern med`}},
		{"JOURNAL OF CLINICAL ONCOLOGY", []string{`j clin oncol`}},

		// ==================== Life sciences ====================
		{"NATURE BIOTECHNOLOGY", []string{`nat(?:ure)? biotechnol`}},
		{"NATURE GENETICS", []string{`nat(?:ure)? genet`}},
		{"NATURE METHODS", []string{`nat(?:ure)? methods`}},
		{"NUCLEIC ACIDS RESEARCH", []string{`nucleic acids res`}},
		{"CELL REPORTS", []string{`cell rep`}},
		{"JOURNAL OF BIOLOGICAL CHEMISTRY", []string{`j biol chem`}},

		// ==================== Physics & Chemistry ====================
		{"PHYSICAL REVIEW LETTERS", []string{`phys(?:ical)? rev(?:iew)? lett(?:ers)?`, `prl`}},
		{"NATURE PHYSICS", []string{`nat(?:ure)? phys`}},
		{"NATURE MATERIALS", []string{`nat(?:ure)? mater`}},
		{"NATURE CHEMISTRY", []string{`nat(?:ure)? chem`}},
		{"JOURNAL OF THE AMERICAN CHEMICAL SOCIETY", []string{`j am chem soc`, `jacs`}},
		{"ANGEWANDTE CHEMIE - INTERNATIONAL EDITION", []string{`angew(?:andte)? chem`}},
		{"ADVANCED MATERIALS", []string{`adv(?:anced)? mater`}},

		// ==================== Computer science ====================
		{"IEEE TRANSACTIONS ON PATTERN ANALYSIS AND MACHINE INTELLIGENCE", []string{
			`ieee trans(?:actions)? pattern anal(?:ysis)? mach(?:ine)? intell`,
			`tpami`,
			`ieee tpami`,
		}},
		{"JOURNAL OF MACHINE LEARNING RESEARCH", []string{`j mach learn res`, `jmlr`}},
		{"NATURE MACHINE INTELLIGENCE", []string{`nat(?:ure)? mach(?:ine)? intell`}},
		{"COMMUNICATIONS OF THE ACM", []string{`commun(?:ications)? acm`, `cacm`}},
	}

	for _, d := range defs {
		r := rule{name: d.name}
		for _, p := range d.patterns {
			r.patterns = append(r.patterns, regexp.MustCompile(`(?i)^`+p+tail))
		}
		e.rules = append(e.rules, r)
	}
}
