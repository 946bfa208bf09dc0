package buildinfo

import (
	"github.com/prometheus/common/version"
)

const Graffiti = " ____  ____  _____ \n| __ )|___ \\|_   _|\n|  _ \\  __) | | |  \n| |_) |/ __/  | |  \n|____/|_____| |_|  \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "B2T"
	Time     string = ""
	Revision string = ""
)

func init() {
	version.Version = BuildTag
	version.BuildDate = Time
	version.Revision = Revision
}

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// Print returns the multi-line version banner for the named program.
func (buildinfo) Print(program string) string {
	return version.Print(program)
}

var Info buildinfo
