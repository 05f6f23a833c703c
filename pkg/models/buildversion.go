package models

import (
	"time"
)

// BuildVersionInfo describes the testgate binary that is running.
type BuildVersionInfo struct {
	Major      string    `json:"Major,omitempty" yaml:"Major,omitempty"`
	Minor      string    `json:"Minor,omitempty" yaml:"Minor,omitempty"`
	GitVersion string    `json:"GitVersion" yaml:"GitVersion"`
	GitCommit  string    `json:"GitCommit" yaml:"GitCommit"`
	BuildDate  time.Time `json:"BuildDate" yaml:"BuildDate"`
	GOOS       string    `json:"GOOS" yaml:"GOOS"`
	GOARCH     string    `json:"GOARCH" yaml:"GOARCH"`
}
