package gate

// Engine evaluates requests against a fixed Config. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	config *Config
}

// NewEngine returns an engine for config. A nil config behaves like NewConfig().
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = NewConfig()
	}
	return &Engine{config: config}
}

// Config returns the configuration the engine evaluates against.
func (e *Engine) Config() *Config {
	return e.config
}

// Evaluate decides whether req may proceed.
func (e *Engine) Evaluate(req RequestDescriptor) (Verdict, error) {
	return Evaluate(e.config, req)
}

// Evaluate runs the gate rules in order and returns the first decision. The
// order matters: reordering the rules changes who gets through.
//
// The returned error is only set for an Authorization header that cannot be
// parsed; the verdict is Deny in that case. Bad base64 or a non-Basic scheme
// is not an error and simply ends in Deny.
func Evaluate(config *Config, req RequestDescriptor) (Verdict, error) {
	if config == nil {
		config = NewConfig()
	}
	if !config.enabled {
		return allow(RuleBypass, ""), nil
	}

	// The domain list selects the hosts the gate protects. Without one, every
	// host is protected.
	hostIsGated := len(config.domainBlockList) == 0 ||
		(req.HostType == HostNameDNS && config.domainBlockList.has(req.Host))
	if !hostIsGated {
		return allow(RuleDomainEscape, ""), nil
	}

	if config.ipAllowList != nil && config.ipAllowList.has(req.ClientAddress) {
		return allow(RuleIPAllowList, MarkerAccessByIP), nil
	}

	if config.userAllowList != nil {
		if !req.HasAuthorization {
			return challengeVerdict, nil
		}
		header, err := ParseAuthorization(req.Authorization)
		if err != nil {
			return denyVerdict, err
		}
		if header.IsBasic() && header.Parameter != "" && config.userExists(header.Parameter) {
			return allow(RuleCredentials, MarkerAccessByCredentials), nil
		}
	}

	return denyVerdict, nil
}

// userExists decodes a Basic parameter and looks it up in the allow-list.
// Undecodable parameters are treated as unknown users.
func (c *Config) userExists(parameter string) bool {
	credentials, err := DecodeBasicCredentials(parameter)
	if err != nil {
		return false
	}
	return c.userAllowList.has(credentials)
}
