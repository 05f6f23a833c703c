//go:build unit || !integration

package gate

import (
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func dnsRequest(addr, host string) RequestDescriptor {
	return RequestDescriptor{ClientAddress: addr, Host: host, HostType: HostNameDNS}
}

func withAuthorization(req RequestDescriptor, value string) RequestDescriptor {
	req.Authorization = value
	req.HasAuthorization = true
	return req
}

func basic(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func (s *EngineTestSuite) evaluate(config *Config, req RequestDescriptor) Verdict {
	verdict, err := Evaluate(config, req)
	s.Require().NoError(err)
	return verdict
}

func (s *EngineTestSuite) TestDisabledAllowsEverything() {
	configs := []*Config{
		NewConfig(WithEnabled(false)),
		NewConfig(WithEnabled(false), WithUserAllowList("admin:pw")),
		NewConfig(WithEnabled(false), WithIPAllowList(), WithUserAllowList(), WithDomainBlockList("prod.example.com")),
	}
	requests := []RequestDescriptor{
		dnsRequest("10.0.0.5", "test.example.com"),
		withAuthorization(dnsRequest("10.0.0.5", "prod.example.com"), "Bearer abc"),
		withAuthorization(dnsRequest("10.0.0.5", "prod.example.com"), ""),
		{ClientAddress: "::1", Host: "[::1]", HostType: HostNameIPv6},
	}
	for _, config := range configs {
		for _, req := range requests {
			verdict := s.evaluate(config, req)
			s.Equal(Allow, verdict.Outcome)
			s.Empty(verdict.Marker)
			s.Equal(RuleBypass, verdict.Rule)
		}
	}
}

func (s *EngineTestSuite) TestNoDomainListGatesEveryHost() {
	for _, config := range []*Config{
		NewConfig(),
		NewConfig(WithDomainBlockList()),
	} {
		for _, req := range []RequestDescriptor{
			dnsRequest("10.0.0.5", "anything.example.com"),
			{ClientAddress: "10.0.0.5", Host: "127.0.0.1", HostType: HostNameIPv4},
			{ClientAddress: "10.0.0.5", Host: "", HostType: HostNameUnknown},
		} {
			verdict := s.evaluate(config, req)
			s.NotEqual(RuleDomainEscape, verdict.Rule)
			s.Equal(Deny, verdict.Outcome)
		}
	}
}

func (s *EngineTestSuite) TestDomainEscape() {
	config := NewConfig(
		WithIPAllowList("1.2.3.4"),
		WithDomainBlockList("prod.example.com"),
	)

	verdict := s.evaluate(config, dnsRequest("9.9.9.9", "staging.example.com"))
	s.Equal(Allow, verdict.Outcome)
	s.Empty(verdict.Marker)
	s.Equal(RuleDomainEscape, verdict.Rule)

	// non-DNS hosts are never members of a configured list
	verdict = s.evaluate(config, RequestDescriptor{ClientAddress: "9.9.9.9", Host: "prod.example.com", HostType: HostNameBasic})
	s.Equal(RuleDomainEscape, verdict.Rule)

	verdict = s.evaluate(config, RequestDescriptor{ClientAddress: "9.9.9.9", Host: "10.1.1.1", HostType: HostNameIPv4})
	s.Equal(RuleDomainEscape, verdict.Rule)
}

func (s *EngineTestSuite) TestListedDomainIsGated() {
	config := NewConfig(
		WithIPAllowList("1.2.3.4"),
		WithDomainBlockList("prod.example.com"),
	)

	verdict := s.evaluate(config, dnsRequest("1.2.3.4", "prod.example.com"))
	s.Equal(Allow, verdict.Outcome)
	s.Equal(MarkerAccessByIP, verdict.Marker)

	verdict = s.evaluate(config, dnsRequest("9.9.9.9", "prod.example.com"))
	s.Equal(Deny, verdict.Outcome)
	s.Equal(RuleDefaultDeny, verdict.Rule)
}

func (s *EngineTestSuite) TestIPAllowListIgnoresCredentials() {
	config := NewConfig(
		WithIPAllowList("1.2.3.4", "::1"),
		WithUserAllowList("admin:pw"),
	)
	for _, req := range []RequestDescriptor{
		dnsRequest("1.2.3.4", "test.example.com"),
		withAuthorization(dnsRequest("1.2.3.4", "test.example.com"), basic("nobody:wrong")),
		withAuthorization(dnsRequest("1.2.3.4", "test.example.com"), "Basic !!!not-base64!!!"),
		withAuthorization(dnsRequest("::1", "test.example.com"), "Digest abc"),
	} {
		verdict := s.evaluate(config, req)
		s.Equal(Allow, verdict.Outcome)
		s.Equal(MarkerAccessByIP, verdict.Marker)
		s.Equal(RuleIPAllowList, verdict.Rule)
	}
}

func (s *EngineTestSuite) TestIPMatchIsLiteral() {
	config := NewConfig(WithIPAllowList("10.0.0.0/8", "1.2.3.4"))
	for _, addr := range []string{"10.0.0.5", "1.2.3.4 ", "01.2.3.4", "1.2.3.40"} {
		verdict := s.evaluate(config, dnsRequest(addr, "test.example.com"))
		s.Equal(Deny, verdict.Outcome, addr)
	}
}

func (s *EngineTestSuite) TestEmptyIPAllowListAllowsNobody() {
	config := NewConfig(WithIPAllowList())
	verdict := s.evaluate(config, dnsRequest("", "test.example.com"))
	s.Equal(Deny, verdict.Outcome)
}

func (s *EngineTestSuite) TestMissingAuthorizationChallenges() {
	config := NewConfig(WithUserAllowList("admin:pw"))
	verdict := s.evaluate(config, dnsRequest("10.0.0.5", "test.example.com"))
	s.Equal(ChallengeBasicAuth, verdict.Outcome)
	s.Equal(RuleMissingCredentials, verdict.Rule)
	s.Equal(401, verdict.StatusCode())
}

func (s *EngineTestSuite) TestNoUserAllowListNeverChallenges() {
	config := NewConfig(WithIPAllowList("1.2.3.4"))
	verdict := s.evaluate(config, dnsRequest("10.0.0.5", "test.example.com"))
	s.Equal(Deny, verdict.Outcome)
	s.Equal(403, verdict.StatusCode())

	verdict = s.evaluate(config, withAuthorization(dnsRequest("10.0.0.5", "test.example.com"), basic("admin:pw")))
	s.Equal(Deny, verdict.Outcome)
}

func (s *EngineTestSuite) TestCredentials() {
	config := NewConfig(WithUserAllowList("admin:pw", "alice:secret"))
	req := dnsRequest("10.0.0.5", "test.example.com")

	for _, header := range []string{
		"Basic YWRtaW46cHc=",
		basic("alice:secret"),
		"basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret")),
		"BASIC  YWRtaW46cHc=  ",
	} {
		verdict := s.evaluate(config, withAuthorization(req, header))
		s.Equal(Allow, verdict.Outcome, header)
		s.Equal(MarkerAccessByCredentials, verdict.Marker)
		s.Equal(RuleCredentials, verdict.Rule)
	}
}

func (s *EngineTestSuite) TestRejectedCredentialsDeny() {
	config := NewConfig(WithUserAllowList("admin:pw"))
	req := dnsRequest("10.0.0.5", "test.example.com")

	for _, header := range []string{
		basic("admin:wrong"),
		basic("Admin:pw"),
		basic("admin:pw "),
		"Basic !!!not-base64!!!",
		"Basic YWRtaW46cHc",
		"Basic",
		"Bearer YWRtaW46cHc=",
		"Digest username=admin",
	} {
		verdict, err := Evaluate(config, withAuthorization(req, header))
		s.NoError(err, header)
		s.Equal(Deny, verdict.Outcome, header)
		s.Equal(RuleDefaultDeny, verdict.Rule)
	}
}

func (s *EngineTestSuite) TestMalformedAuthorizationDeniesWithError() {
	config := NewConfig(WithUserAllowList("admin:pw"))
	req := dnsRequest("10.0.0.5", "test.example.com")

	for _, header := range []string{"", "   ", "Bas(ic YWRtaW46cHc=", "\"Basic\" x"} {
		verdict, err := Evaluate(config, withAuthorization(req, header))
		s.ErrorIs(err, ErrMalformedAuthorization, header)
		s.Equal(Deny, verdict.Outcome)
	}
}

func (s *EngineTestSuite) TestLatin1Credentials() {
	config := NewConfig(WithUserAllowList("jürgen:pässwörd"))
	req := dnsRequest("10.0.0.5", "test.example.com")

	header, err := EncodeBasicCredentials("jürgen:pässwörd")
	s.Require().NoError(err)
	verdict := s.evaluate(config, withAuthorization(req, header))
	s.Equal(Allow, verdict.Outcome)

	// UTF-8 bytes decode to different characters under ISO-8859-1
	verdict = s.evaluate(config, withAuthorization(req, basic("jürgen:pässwörd")))
	s.Equal(Deny, verdict.Outcome)
}

func (s *EngineTestSuite) TestScenarios() {
	credentialsOnly := NewConfig(WithUserAllowList("admin:pw"))
	req := dnsRequest("10.0.0.5", "test.example.com")

	verdict := s.evaluate(credentialsOnly, req)
	s.Equal(ChallengeBasicAuth, verdict.Outcome)
	s.Equal(401, verdict.StatusCode())

	verdict = s.evaluate(credentialsOnly, withAuthorization(req, "Basic YWRtaW46cHc="))
	s.Equal(Allow, verdict.Outcome)
	s.Equal(MarkerAccessByCredentials, verdict.Marker)

	escape := NewConfig(WithIPAllowList("1.2.3.4"), WithDomainBlockList("prod.example.com"))
	verdict = s.evaluate(escape, dnsRequest("10.0.0.5", "staging.example.com"))
	s.Equal(Allow, verdict.Outcome)
	s.Empty(verdict.Marker)
}

func (s *EngineTestSuite) TestEngineUsesConfig() {
	config := NewConfig(WithIPAllowList("1.2.3.4"))
	engine := NewEngine(config)
	s.Same(config, engine.Config())

	verdict, err := engine.Evaluate(dnsRequest("1.2.3.4", "test.example.com"))
	s.NoError(err)
	s.Equal(Allow, verdict.Outcome)

	verdict, err = NewEngine(nil).Evaluate(dnsRequest("1.2.3.4", "test.example.com"))
	s.NoError(err)
	s.Equal(Deny, verdict.Outcome)
}

func (s *EngineTestSuite) TestConcurrentEvaluationSharesConfig() {
	engine := NewEngine(NewConfig(
		WithIPAllowList("1.2.3.4"),
		WithUserAllowList("admin:pw", "tester:s3cret"),
	))
	cases := []struct {
		req     RequestDescriptor
		outcome Outcome
	}{
		{req: dnsRequest("1.2.3.4", "test.example.com"), outcome: Allow},
		{req: dnsRequest("10.0.0.5", "test.example.com"), outcome: ChallengeBasicAuth},
		{req: withAuthorization(dnsRequest("10.0.0.5", "test.example.com"), basic("tester:s3cret")), outcome: Allow},
		{req: withAuthorization(dnsRequest("10.0.0.5", "test.example.com"), basic("admin:wrong")), outcome: Deny},
	}

	const workers = 100
	outcomes := make([]Outcome, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var verdict Verdict
			verdict, errs[i] = engine.Evaluate(cases[i%len(cases)].req)
			outcomes[i] = verdict.Outcome
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		s.NoError(errs[i])
		s.Equal(cases[i%len(cases)].outcome, outcomes[i], "worker %d", i)
	}
}
