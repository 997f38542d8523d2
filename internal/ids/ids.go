package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id. KSUIDs encode creation time, which keeps
// locally synthesized records ordered next to server-issued ones.
func New() string {
	return ksuid.New().String()
}
