package callgen

import "context"

// directoryCache memoizes directory lookups for the lifetime of one
// ParticipantsProcessor.Process call, i.e. one linked-id group. It is a
// fresh value per call, never shared or promoted to a process-wide cache.
// Lookups are not shared between the groups of one FromCel batch: the same
// channel or uuid appearing in two groups is looked up once per group.
type directoryCache struct {
	client DirectoryClient

	byChannel map[string]*ParticipantInfo
	byUUID    map[string]*ParticipantInfo
}

func newDirectoryCache(client DirectoryClient) *directoryCache {
	return &directoryCache{
		client:    client,
		byChannel: make(map[string]*ParticipantInfo),
		byUUID:    make(map[string]*ParticipantInfo),
	}
}

func (c *directoryCache) findByChannel(ctx context.Context, channelName string) (*ParticipantInfo, error) {
	if info, ok := c.byChannel[channelName]; ok {
		return info, nil
	}
	info, err := c.client.FindParticipantByChannel(ctx, channelName)
	if err != nil {
		// Transient directory failure is treated as "not found" by the
		// caller; don't cache the error, only the (nil) miss, so a
		// one-off network blip doesn't poison the rest of the call.
		return nil, err
	}
	c.byChannel[channelName] = info
	return info, nil
}

func (c *directoryCache) findByUUID(ctx context.Context, userUUID string) (*ParticipantInfo, error) {
	if info, ok := c.byUUID[userUUID]; ok {
		return info, nil
	}
	info, err := c.client.FindParticipantByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	c.byUUID[userUUID] = info
	return info, nil
}
