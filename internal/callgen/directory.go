package callgen

import "context"

// ParticipantInfo is what the directory service ("confd") knows about a
// user matched by channel name or uuid.
type ParticipantInfo struct {
	UUID          string
	LineID        int
	Tags          []string
	TenantUUID    string
	MainExtension *Extension // nil if the line has no configured extension
}

// ConfdContext is one dialplan context entry returned by ListContexts.
type ConfdContext struct {
	TenantUUID string
}

// DirectoryClient is the narrow contract the ParticipantsProcessor and
// ensureTenantUuid consume from the external directory service. All three
// methods may fail transiently (network, timeout); callers treat a
// returned error identically to a nil/empty result — "not found" — and
// must honor ctx's deadline.
type DirectoryClient interface {
	FindParticipantByChannel(ctx context.Context, channelName string) (*ParticipantInfo, error)
	FindParticipantByUUID(ctx context.Context, userUUID string) (*ParticipantInfo, error)
	ListContexts(ctx context.Context, name string) ([]ConfdContext, error)
}
