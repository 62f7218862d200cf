// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release of petbonk.
const BuildVersion string = "v0.1.0"

type buildInfo struct {
	VcsRevision string
	VcsTime     string
	VcsModified bool
}

// Revision formats the VCS stamp as "<date>-<short hash>[+dirty]".
func (b *buildInfo) Revision() string {
	if len(b.VcsRevision) < 8 {
		return "unknown"
	}

	s := strings.Split(b.VcsTime, "T")[0] + "-" + b.VcsRevision[:8]
	if b.VcsModified {
		s += "+dirty"
	}

	return s
}

func (b *buildInfo) load() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			b.VcsRevision = kv.Value
		case "vcs.time":
			b.VcsTime = kv.Value
		case "vcs.modified":
			b.VcsModified = kv.Value == "true"
		}
	}
}
