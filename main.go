package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/authorizedtester/testgate/cmd/cli"
	_ "github.com/authorizedtester/testgate/pkg/logger"
	"github.com/authorizedtester/testgate/pkg/version"
)

// Values for version are injected by the build.
var (
	VERSION = ""
)

func main() {
	if VERSION != "" {
		version.GITVERSION = VERSION
	}

	start := time.Now()
	log.Trace().Msgf("Top of execution - %s", start.UTC())
	cli.Execute()
	log.Trace().Msgf("Execution finished - %s", time.Since(start))
}
