package check

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/authorizedtester/testgate/cmd/util"
	"github.com/authorizedtester/testgate/cmd/util/flags/cliflags"
	"github.com/authorizedtester/testgate/cmd/util/flags/configflags"
	"github.com/authorizedtester/testgate/cmd/util/output"
	"github.com/authorizedtester/testgate/pkg/gate"
)

const checkLong = `Evaluate the gate for a single request without starting a server.

The gate settings are read the same way as for serve, so check shows what
serve would answer for a client.`

const checkExample = `  # Would a request from the office IP reach staging?
  testgate check --remote-addr 203.0.113.7 --host staging.example.com

  # Try a tester's credentials
  testgate check --remote-addr 198.51.100.1 --host staging.example.com --user 'tester:s3cret'`

type CheckOptions struct {
	RemoteAddr    string
	Host          string
	User          string
	Authorization string
	OutputOpts    output.OutputOptions
}

func NewCheckOptions() *CheckOptions {
	return &CheckOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

// Result is what check prints for the evaluated request.
type Result struct {
	Outcome    string `json:"Outcome"`
	StatusCode int    `json:"StatusCode"`
	Marker     string `json:"Marker,omitempty"`
	Rule       string `json:"Rule"`
	Error      string `json:"Error,omitempty"`
}

var resultColumns = []output.TableColumn[Result]{
	{
		ColumnConfig: table.ColumnConfig{Name: "outcome"},
		Value:        func(r Result) string { return r.Outcome },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "status"},
		Value:        func(r Result) string { return strconv.Itoa(r.StatusCode) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "marker"},
		Value:        func(r Result) string { return r.Marker },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "rule"},
		Value:        func(r Result) string { return r.Rule },
	},
}

func NewCmd() *cobra.Command {
	o := NewCheckOptions()

	checkCmd := &cobra.Command{
		Use:     "check",
		Short:   "Show how the gate answers a request",
		Long:    checkLong,
		Example: checkExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.Run(cmd)
		},
	}

	fset := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fset.StringVar(&o.RemoteAddr, "remote-addr", o.RemoteAddr,
		`Client address of the request, with or without a port.`)
	fset.StringVar(&o.Host, "host", o.Host,
		`Host header of the request, e.g. staging.example.com:443.`)
	fset.StringVar(&o.User, "user", o.User,
		`user:password sent as Basic credentials.`)
	fset.StringVar(&o.Authorization, "authorization", o.Authorization,
		`Raw Authorization header value.`)
	checkCmd.Flags().AddFlagSet(fset)
	checkCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o.OutputOpts))

	if err := configflags.RegisterFlags(checkCmd, map[string][]configflags.Definition{
		"gate": configflags.GateFlags,
	}); err != nil {
		util.Fatal(checkCmd, err, 1)
	}

	_ = checkCmd.MarkFlagRequired("remote-addr")
	_ = checkCmd.MarkFlagRequired("host")
	checkCmd.MarkFlagsMutuallyExclusive("user", "authorization")

	return checkCmd
}

func (o *CheckOptions) Run(cmd *cobra.Command) error {
	req, err := o.request(cmd)
	if err != nil {
		return err
	}

	engine := gate.NewEngine(util.GetConfig(cmd.Context()).Gate())
	verdict, evalErr := engine.Evaluate(gate.DescribeRequest(req))

	result := Result{
		Outcome:    verdict.Outcome.String(),
		StatusCode: verdict.StatusCode(),
		Marker:     verdict.Marker,
		Rule:       string(verdict.Rule),
	}
	if evalErr != nil {
		result.Error = evalErr.Error()
	}
	return output.OutputOne(cmd, resultColumns, o.OutputOpts, result)
}

func (o *CheckOptions) request(cmd *cobra.Command) (*http.Request, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	req.Host = o.Host
	req.RemoteAddr = o.RemoteAddr

	switch {
	case o.User != "":
		value, err := gate.EncodeBasicCredentials(o.User)
		if err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
		req.Header.Set("Authorization", value)
	case cmd.Flags().Changed("authorization"):
		// an explicitly empty header is still a header
		req.Header["Authorization"] = []string{o.Authorization}
	}
	return req, nil
}
