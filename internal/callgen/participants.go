package callgen

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// ParticipantsProcessor reconciles a RawCallLog's channel-keyed
// RawParticipants and pre-seeded ParticipantsInfo into the final,
// directory-enriched Participants slice. One processor is reused across
// FromCel invocations; it holds no per-call state of its own — a fresh
// directoryCache is created per Process call so lookups never leak or
// grow stale across calls (spec §9).
type ParticipantsProcessor struct {
	directory DirectoryClient
	log       zerolog.Logger
}

func NewParticipantsProcessor(directory DirectoryClient, log zerolog.Logger) *ParticipantsProcessor {
	return &ParticipantsProcessor{directory: directory, log: log}
}

// Process enriches raw in place. Channel-identified participants are
// resolved first (FindParticipantByChannel); any participant seeded
// without a channel, or left over after the channel pass, is resolved by
// uuid (FindParticipantByUUID). A channel whose lookup misses or errors
// contributes no participant; a seeded participant whose uuid lookup
// misses or errors stays in the result without directory enrichment.
// Neither case aborts the call.
func (p *ParticipantsProcessor) Process(ctx context.Context, raw *RawCallLog) {
	cache := newDirectoryCache(p.directory)

	byUUID := make(map[string]*CallLogParticipant, len(raw.Participants)+len(raw.ParticipantsInfo))
	for _, existing := range raw.Participants {
		byUUID[existing.UserUUID] = existing
	}
	for _, seed := range raw.ParticipantsInfo {
		if _, ok := byUUID[seed.UserUUID]; ok {
			continue
		}
		participant := &CallLogParticipant{
			UserUUID: seed.UserUUID,
			Role:     seed.Role,
			Answered: seed.Answered,
		}
		raw.Participants = append(raw.Participants, participant)
		byUUID[seed.UserUUID] = participant
	}

	resolvedByChannel := make(map[string]bool, len(byUUID))

	channels := make([]string, 0, len(raw.RawParticipants))
	for ch := range raw.RawParticipants {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, channelName := range channels {
		attrs := raw.RawParticipants[channelName]

		info, err := cache.findByChannel(ctx, channelName)
		if err != nil {
			p.log.Warn().Err(err).Str("channel", channelName).Msg("directory lookup by channel failed")
			continue
		}
		if info == nil {
			p.log.Debug().Str("channel", channelName).Msg("no participant found for channel")
			continue
		}

		attrs.TenantUUID = info.TenantUUID
		attrs.MainExtension = info.MainExtension

		participant, existed := byUUID[info.UUID]
		if !existed {
			participant = &CallLogParticipant{UserUUID: info.UUID}
			raw.Participants = append(raw.Participants, participant)
			byUUID[info.UUID] = participant
		}
		participant.LineID = info.LineID
		participant.Tags = info.Tags
		participant.Role = attrs.Role
		if attrs.AnsweredSet {
			participant.Answered = attrs.Answered
		}
		resolvedByChannel[info.UUID] = true

		switch attrs.Role {
		case RoleSource:
			raw.SourceUserUUID = info.UUID
		case RoleDestination:
			raw.DestinationUserUUID = info.UUID
		}
	}

	remaining := make([]string, 0, len(byUUID))
	for uuid := range byUUID {
		if !resolvedByChannel[uuid] {
			remaining = append(remaining, uuid)
		}
	}
	sort.Strings(remaining)

	for _, uuid := range remaining {
		participant := byUUID[uuid]

		info, err := cache.findByUUID(ctx, uuid)
		if err != nil {
			p.log.Warn().Err(err).Str("user_uuid", uuid).Msg("directory lookup by uuid failed")
			continue
		}
		if info == nil {
			p.log.Debug().Str("user_uuid", uuid).Msg("no directory entry for participant uuid")
			continue
		}

		participant.LineID = info.LineID
		participant.Tags = info.Tags

		switch uuid {
		case raw.SourceUserUUID:
			participant.Role = RoleSource
		case raw.DestinationUserUUID:
			participant.Role = RoleDestination
		}
	}
}
