package rtc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

var ErrBadICEURL = errors.New("bad ice server url")

var DefaultICEServers = []string{"stun:stun.l.google.com:19302"}

// TURNCredentials are attached to every turn:/turns: entry.
type TURNCredentials struct {
	Username   string
	Credential string
}

// ICEConfig builds the peer configuration handed to clients. The relay
// never opens a PeerConnection itself.
func ICEConfig(urls []string, turn TURNCredentials) (webrtc.Configuration, error) {
	if len(urls) == 0 {
		urls = DefaultICEServers
	}
	servers := make([]webrtc.ICEServer, 0, len(urls))
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if !hasICEScheme(u) {
			return webrtc.Configuration{}, fmt.Errorf("%w: %q", ErrBadICEURL, raw)
		}
		server := webrtc.ICEServer{URLs: []string{u}}
		if strings.HasPrefix(u, "turn:") || strings.HasPrefix(u, "turns:") {
			if strings.TrimSpace(turn.Username) == "" || strings.TrimSpace(turn.Credential) == "" {
				return webrtc.Configuration{}, fmt.Errorf("%w: %q requires turn username and credential", ErrBadICEURL, u)
			}
			server.Username = strings.TrimSpace(turn.Username)
			server.Credential = turn.Credential
		}
		servers = append(servers, server)
	}
	return webrtc.Configuration{ICEServers: servers}, nil
}

func hasICEScheme(u string) bool {
	switch {
	case strings.HasPrefix(u, "stun:"),
		strings.HasPrefix(u, "stuns:"),
		strings.HasPrefix(u, "turn:"),
		strings.HasPrefix(u, "turns:"):
	default:
		return false
	}
	return len(u) > strings.Index(u, ":")+1
}
