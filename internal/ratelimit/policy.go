package ratelimit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy bounds one logical action: Ceiling calls per WindowSeconds-long
// fixed window.
type Policy struct {
	WindowSeconds int `yaml:"window_seconds"`
	Ceiling       int `yaml:"ceiling"`
}

// Policies maps action names to their policies, with a default for actions
// not listed.
type Policies struct {
	Default Policy            `yaml:"default"`
	Actions map[string]Policy `yaml:"actions"`
}

// DefaultPolicies is used when no policy file is configured.
func DefaultPolicies() Policies {
	return Policies{
		Default: Policy{WindowSeconds: 60, Ceiling: 60},
		Actions: map[string]Policy{
			ActionGenerateComments: {WindowSeconds: 60, Ceiling: 10},
		},
	}
}

// Well-known action names.
const (
	ActionGenerateComments = "generate_comments"
	ActionValidateHashtags = "validate_hashtags"
	ActionReadJobs         = "read_jobs"
)

// For resolves the policy for an action, falling back to the default. A
// policy with non-positive fields is repaired from the default as well.
func (p Policies) For(action string) Policy {
	policy, ok := p.Actions[action]
	if !ok {
		policy = p.Default
	}
	if policy.WindowSeconds <= 0 {
		policy.WindowSeconds = p.Default.WindowSeconds
	}
	if policy.WindowSeconds <= 0 {
		policy.WindowSeconds = 60
	}
	if policy.Ceiling <= 0 {
		policy.Ceiling = p.Default.Ceiling
	}
	if policy.Ceiling <= 0 {
		policy.Ceiling = 60
	}
	return policy
}

// LoadPolicies reads a YAML policy file. An empty path yields the defaults.
func LoadPolicies(path string) (Policies, error) {
	if path == "" {
		return DefaultPolicies(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policies{}, fmt.Errorf("read policy file: %w", err)
	}
	policies := DefaultPolicies()
	if err := yaml.Unmarshal(data, &policies); err != nil {
		return Policies{}, fmt.Errorf("parse policy file: %w", err)
	}
	return policies, nil
}
