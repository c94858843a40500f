// Package safety classifies generated commands with a coarse risk label via
// static pattern inspection.
package safety

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

// Classifier assigns a SafetyLabel to command text. Assess is deterministic
// and side-effect free: the rule set is fixed at construction, every input
// maps to exactly one label, and the highest-severity match wins.
type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	re     *regexp.Regexp
	label  domain.SafetyLabel
	reason string
}

// Rule is one user-declared pattern in the optional rules file.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
	Reason  string `yaml:"reason"`
}

// RulesFile is the YAML schema root of ~/.config/baishify/safety.yaml.
type RulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewClassifier builds a classifier from the built-in rule table plus any
// rules in the given file. A missing file is fine; a malformed file or
// pattern is an error so the caller can fall back to NewClassifier("").
func NewClassifier(rulesPath string) (*Classifier, error) {
	rules, err := compileRules(builtinRules())
	if err != nil {
		return nil, err
	}

	if rulesPath != "" {
		extra, err := loadUserRules(rulesPath)
		if err != nil {
			return nil, err
		}
		compiled, err := compileRules(extra)
		if err != nil {
			return nil, err
		}
		rules = append(rules, compiled...)
	}

	return &Classifier{rules: rules}, nil
}

// Assess implements ports.Classifier.
func (c *Classifier) Assess(command string) domain.SafetyAssessment {
	assessment := domain.SafetyAssessment{Label: domain.SafetySafe}
	for _, rule := range c.rules {
		if !rule.re.MatchString(command) {
			continue
		}
		if domain.MoreSevere(rule.label, assessment.Label) {
			assessment.Label = rule.label
		}
		assessment.Reasons = append(assessment.Reasons, rule.reason)
	}
	return assessment
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		label, ok := domain.ParseSafetyLabel(rule.Label)
		if !ok {
			label = domain.SafetyCaution
		}
		compiled = append(compiled, compiledRule{re: re, label: label, reason: rule.Reason})
	}
	return compiled, nil
}

func loadUserRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

// builtinRules is the fixed classification table. Ordering does not matter;
// the most severe match wins.
func builtinRules() []Rule {
	return []Rule{
		// Destructive, hard to recover from.
		{Pattern: `rm\s+(-\w*r\w*f|-\w*f\w*r)\b`, Label: "risky", Reason: "recursive force delete"},
		{Pattern: `rm\s+-\w*r\w*\s+(/|\*|~|\$HOME)`, Label: "risky", Reason: "recursive delete of a broad path"},
		{Pattern: `mkfs(\.\w+)?\b`, Label: "risky", Reason: "filesystem reformat"},
		{Pattern: `\bdd\s+\S*if=`, Label: "risky", Reason: "raw disk write"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme|hd[a-z])`, Label: "risky", Reason: "writing to a block device"},
		{Pattern: `:\(\)\s*\{\s*:\|:\&\s*\}\s*;:`, Label: "risky", Reason: "fork bomb"},
		{Pattern: `sudo\s+(rm|dd|mkfs|chown|chmod|mv)\b`, Label: "risky", Reason: "privilege escalation with a destructive verb"},
		{Pattern: `(curl|wget)\b[^|]*\|\s*(sudo\s+)?\w*sh\b`, Label: "risky", Reason: "piping remote content to a shell interpreter"},
		{Pattern: `\b(shutdown|reboot|halt|poweroff)\b`, Label: "risky", Reason: "power state change"},
		{Pattern: `\buserdel\b|\bgroupdel\b`, Label: "risky", Reason: "account removal"},

		// Side effects, but recoverable or scoped.
		{Pattern: `\brm\b`, Label: "caution", Reason: "file deletion"},
		{Pattern: `\bsudo\b`, Label: "caution", Reason: "privilege escalation"},
		{Pattern: `\bchmod\s+777\b`, Label: "caution", Reason: "world-writable permissions"},
		{Pattern: `\bchown\b`, Label: "caution", Reason: "ownership change"},
		{Pattern: `\bkill\s+-9\b|\bpkill\b`, Label: "caution", Reason: "forceful process termination"},
		{Pattern: `\bgit\s+push\s+(\S+\s+)*--force\b`, Label: "caution", Reason: "history rewrite on a remote"},
		{Pattern: `\bgit\s+(reset\s+--hard|clean\s+-\w*f)`, Label: "caution", Reason: "discarding local changes"},
		{Pattern: `\bcurl\b.*\s-X\s*(POST|PUT|DELETE|PATCH)\b`, Label: "caution", Reason: "network write"},
		{Pattern: `\btruncate\b|\bshred\b`, Label: "caution", Reason: "destructive file operation"},
		{Pattern: `\bmv\s+\S+\s+/dev/null\b`, Label: "caution", Reason: "discarding a file"},
		{Pattern: `\bcrontab\s+-r\b`, Label: "caution", Reason: "removing all cron jobs"},
		{Pattern: `>\s*/etc/`, Label: "caution", Reason: "overwriting system configuration"},
	}
}

var _ ports.Classifier = (*Classifier)(nil)
