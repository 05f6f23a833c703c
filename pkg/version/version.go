package version

import (
	"runtime"
	"strconv"
	"time"

	"github.com/Masterminds/semver"
	"github.com/rs/zerolog/log"

	"github.com/authorizedtester/testgate/pkg/models"
)

const buildDateLayout = "2006-01-02T15:04:05Z"

// These are set at build time with -ldflags "-X".
var (
	GITVERSION = "v0.0.0-dev"
	GITCOMMIT  = ""
	BUILDDATE  = ""
)

// Get returns the version of the running binary. Values that cannot be
// parsed are left empty rather than failing the command.
func Get() *models.BuildVersionInfo {
	versionInfo := &models.BuildVersionInfo{
		GitVersion: GITVERSION,
		GitCommit:  GITCOMMIT,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}

	if s, err := semver.NewVersion(GITVERSION); err != nil {
		log.Debug().Err(err).Msgf("could not parse GITVERSION %q", GITVERSION)
	} else {
		versionInfo.Major = strconv.FormatInt(s.Major(), 10) //nolint:gomnd // base10
		versionInfo.Minor = strconv.FormatInt(s.Minor(), 10) //nolint:gomnd // base10
	}

	if BUILDDATE != "" {
		if buildDate, err := time.Parse(buildDateLayout, BUILDDATE); err != nil {
			log.Debug().Err(err).Msgf("could not parse BUILDDATE %q", BUILDDATE)
		} else {
			versionInfo.BuildDate = buildDate
		}
	}

	return versionInfo
}
