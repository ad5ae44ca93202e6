package utils

import "runtime/debug"

// BuildVersion is set with -ldflags "-X roombook/internal/utils.BuildVersion=..."
var BuildVersion = ""

func GetVersion() string {
	if BuildVersion != "" {
		return BuildVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.modified" && setting.Value == "true" {
			return info.Main.Version + "-dirty"
		}
	}

	return info.Main.Version
}

// UserAgent is sent with every backend request.
func UserAgent() string {
	return "roombook/" + GetVersion()
}
