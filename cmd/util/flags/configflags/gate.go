package configflags

import (
	"github.com/authorizedtester/testgate/pkg/gate"
)

// GateFlags override the gate settings. List values use the same '|'
// separator as the config file.
var GateFlags = []Definition{
	{
		FlagName:     "gate-enabled",
		DefaultValue: true,
		ConfigPath:   gate.KeyEnabled,
		Description:  `When false every request passes through without a check.`,
	},
	{
		FlagName:     "allow-ips",
		DefaultValue: "",
		ConfigPath:   gate.KeyIPAllowList,
		Description:  `'|' separated client IP addresses that are let through.`,
	},
	{
		FlagName:     "allow-users",
		DefaultValue: "",
		ConfigPath:   gate.KeyUserAllowList,
		Description:  `'|' separated user:password pairs accepted with Basic authentication.`,
	},
	{
		FlagName:     "gated-domains",
		DefaultValue: "",
		ConfigPath:   gate.KeyDomainBlockList,
		Description:  `'|' separated host names the gate applies to. All hosts when unset.`,
	},
}
