package provider

import (
	"fmt"

	"youcomagents/internal/agents/youcom"
	"youcomagents/internal/config"
	"youcomagents/pkg/gate"
	"youcomagents/pkg/logger"
)

// FromConfig registers one You.com agent per configured identity whose
// enabled_when rule passes. Rules run once here, so listing and dispatch
// always see the same set of agents.
func FromConfig(cfg *config.Config, creds config.Source) (*ChatProvider, error) {
	p := New()
	for i, a := range youcom.FromConfig(cfg, creds) {
		info := a.Info()
		rule, err := gate.Compile(cfg.Agents[i].EnabledWhen)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", info.ID, err)
		}
		env := gate.Env{ID: info.ID, Family: info.Family, Version: info.Version, Configured: a.Configured()}
		if !rule.Enabled(env) {
			logger.Info("Agent disabled by enabled_when", "agent", info.ID, "rule", rule.String())
			continue
		}
		if err := p.Register(a); err != nil {
			return nil, err
		}
	}
	return p, nil
}
