package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies a host release by its release name and network protocol number.
// The zero Version is unknown and sorts before every known release.
type Version struct {
	Release  string
	Protocol int32
}

// Known releases the bridge has structural strategies for.
var (
	V1_20_1 = Version{Release: "1.20.1", Protocol: 763}
	V1_20_2 = Version{Release: "1.20.2", Protocol: 764}
	V1_20_4 = Version{Release: "1.20.4", Protocol: 765}
	V1_20_5 = Version{Release: "1.20.5", Protocol: 766}
)

var known = []Version{V1_20_1, V1_20_2, V1_20_4, V1_20_5}

// Compare orders versions by protocol number.
func (v Version) Compare(o Version) int {
	switch {
	case v.Protocol < o.Protocol:
		return -1
	case v.Protocol > o.Protocol:
		return 1
	}
	return 0
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

// Before reports whether v is older than o.
func (v Version) Before(o Version) bool { return v.Compare(o) < 0 }

// IsZero reports whether the version is unknown.
func (v Version) IsZero() bool { return v.Protocol == 0 && v.Release == "" }

func (v Version) String() string {
	if v.IsZero() {
		return "unknown"
	}
	if v.Release == "" {
		return "protocol " + strconv.Itoa(int(v.Protocol))
	}
	return fmt.Sprintf("%s (protocol %d)", v.Release, v.Protocol)
}

// ParseVersion accepts a known release name ("1.20.2") or a bare protocol number ("764").
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	for _, v := range known {
		if v.Release == s {
			return v, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return Version{}, fmt.Errorf("unknown release %q", s)
	}
	for _, v := range known {
		if v.Protocol == int32(n) {
			return v, nil
		}
	}
	return Version{Protocol: int32(n)}, nil
}
