package gate

import (
	"fmt"
	"net/http"
)

const (
	// MarkerHeader is the response header naming the rule that let a request through.
	MarkerHeader = "X-TestUser"

	MarkerAccessByIP          = "Access by IP"
	MarkerAccessByCredentials = "Access by credentials"

	// Realm is announced in Basic authentication challenges.
	Realm = "TestEnvironment"
)

// ChallengeHeaderValue is the WWW-Authenticate value sent with a challenge.
var ChallengeHeaderValue = fmt.Sprintf("Basic realm=%q", Realm)

// Outcome is the decision for a request.
type Outcome int

const (
	Allow Outcome = iota
	ChallengeBasicAuth
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case ChallengeBasicAuth:
		return "challenge"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Rule names the rule that produced a verdict.
type Rule string

const (
	RuleBypass             Rule = "bypass"
	RuleDomainEscape       Rule = "domain-escape"
	RuleIPAllowList        Rule = "ip-allow-list"
	RuleCredentials        Rule = "credentials"
	RuleMissingCredentials Rule = "missing-credentials"
	RuleDefaultDeny        Rule = "default-deny"
)

// Verdict is the result of evaluating one request.
type Verdict struct {
	Outcome Outcome
	// Marker is the MarkerHeader value to attach on Allow. Empty means no header.
	Marker string
	Rule   Rule
}

// StatusCode is the response status a verdict implies. Allowed requests
// report 200 although the status is really decided by the application.
func (v Verdict) StatusCode() int {
	switch v.Outcome {
	case Allow:
		return http.StatusOK
	case ChallengeBasicAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

func allow(rule Rule, marker string) Verdict {
	return Verdict{Outcome: Allow, Rule: rule, Marker: marker}
}

var (
	challengeVerdict = Verdict{Outcome: ChallengeBasicAuth, Rule: RuleMissingCredentials}
	denyVerdict      = Verdict{Outcome: Deny, Rule: RuleDefaultDeny}
)
