// Package security implements the command denylist gate: advisory
// pattern screening applied to every state-changing command before any
// device is touched. It is defense-in-depth against known-bad input, not
// a sandbox.
package security

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"netmcp/internal/domain"
)

// Rules is the denylist rule set loaded from YAML. All matching is
// case-insensitive.
type Rules struct {
	// DisallowedPatterns are substring matches, checked first. They cover
	// shell metacharacters and chaining operators.
	DisallowedPatterns []string `yaml:"disallowed_patterns"`
	// ExactCommands match the whole command after trimming.
	ExactCommands []string `yaml:"exact_commands"`
	// Keywords match on word boundaries, so "erase" does not fire inside
	// "erased_flag".
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is the built-in rule set used when no denylist file is
// configured or the file is empty.
func DefaultRules() Rules {
	return Rules{
		DisallowedPatterns: []string{";", "&&", "||", "|", ">", "<", "`", "$("},
		ExactCommands: []string{
			"write erase",
			"erase startup-config",
			"reload",
			"request system zeroize",
		},
		Keywords: []string{"erase", "format", "delete", "reload", "shutdown"},
	}
}

// Gate validates commands against the loaded rule set and records every
// rejection in the audit log.
type Gate struct {
	rules     Rules
	keywordRe []*regexp.Regexp
	audit     domain.AuditLogger
	logger    *slog.Logger
}

// NewGate builds a gate from an explicit rule set.
func NewGate(rules Rules, audit domain.AuditLogger, logger *slog.Logger) (*Gate, error) {
	g := &Gate{rules: normalize(rules), audit: audit, logger: logger}
	for _, kw := range g.rules.Keywords {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
		g.keywordRe = append(g.keywordRe, re)
	}
	return g, nil
}

// LoadGate reads the rule file at path. A missing or empty file degrades
// to the built-in defaults with a warning; only a malformed file is an
// error.
func LoadGate(path string, audit domain.AuditLogger, logger *slog.Logger) (*Gate, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn("denylist file not found, using built-in rules", "path", path)
		return NewGate(DefaultRules(), audit, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("read denylist %s: %w", path, err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", path, err)
	}
	if len(rules.DisallowedPatterns) == 0 && len(rules.ExactCommands) == 0 && len(rules.Keywords) == 0 {
		logger.Warn("denylist file is empty, using built-in rules", "path", path)
		return NewGate(DefaultRules(), audit, logger)
	}

	logger.Info("denylist loaded", "path", path,
		"patterns", len(rules.DisallowedPatterns),
		"exact", len(rules.ExactCommands),
		"keywords", len(rules.Keywords))
	return NewGate(rules, audit, logger)
}

// Check validates one command. It returns nil when the command is
// allowed, or a *domain.SecurityViolationError naming the rule and the
// offending fragment. Check order is patterns, then exact commands, then
// keywords; the first hit wins.
func (g *Gate) Check(ctx context.Context, command string) error {
	cmd := strings.ToLower(strings.TrimSpace(command))

	for _, p := range g.rules.DisallowedPatterns {
		if strings.Contains(cmd, p) {
			return g.reject(ctx, command, "disallowed_patterns", p)
		}
	}

	for _, exact := range g.rules.ExactCommands {
		if cmd == exact {
			return g.reject(ctx, command, "exact_commands", exact)
		}
	}

	for i, re := range g.keywordRe {
		if re.MatchString(cmd) {
			return g.reject(ctx, command, "keywords", g.rules.Keywords[i])
		}
	}

	return nil
}

// CheckAll validates a batch of commands, failing fast on the first
// violation so no device sees a partially screened batch.
func (g *Gate) CheckAll(ctx context.Context, commands []string) error {
	for _, cmd := range commands {
		if err := g.Check(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gate) reject(ctx context.Context, command, rule, match string) error {
	g.logger.Warn("command rejected by denylist", "command", command, "rule", rule, "match", match)
	if g.audit != nil {
		if err := g.audit.LogSecurity(ctx, domain.SecurityRecord{
			Command: command,
			Rule:    rule,
			Match:   match,
		}); err != nil {
			g.logger.Error("audit write failed", "err", err)
		}
	}
	return &domain.SecurityViolationError{Command: command, Rule: rule, Match: match}
}

// normalize lowercases every rule so matching stays case-insensitive
// regardless of how the YAML was written.
func normalize(r Rules) Rules {
	out := Rules{
		DisallowedPatterns: lowerAll(r.DisallowedPatterns),
		ExactCommands:      lowerAll(r.ExactCommands),
		Keywords:           lowerAll(r.Keywords),
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
