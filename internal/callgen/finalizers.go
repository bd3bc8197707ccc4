package callgen

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// removeDuplicateParticipants drops redundant RawParticipants entries for
// the same physical line. A single line can show up as more than one
// channel (e.g. the same interface re-forked on a redirect, differing only
// in its instance suffix); entries are
// grouped by ProtocolInterface and only the lexicographically greatest
// channel name in each group survives, per spec §4.3.
func removeDuplicateParticipants(raw *RawCallLog) {
	groups := make(map[string][]string)
	for channelName := range raw.RawParticipants {
		key := ProtocolInterface(channelName)
		groups[key] = append(groups[key], channelName)
	}

	for _, channelNames := range groups {
		if len(channelNames) < 2 {
			continue
		}
		sort.Strings(channelNames)
		for _, stale := range channelNames[:len(channelNames)-1] {
			delete(raw.RawParticipants, stale)
		}
	}
}

// ensureTenantUuid resolves raw.TenantUUID, per spec §4.5. Participant
// tenants discovered during directory enrichment take priority; a
// contradiction (more than one distinct, non-empty tenant among
// participants) is logged at warn and resolved last-writer-wins in
// sorted-channel order — a known, deliberately unresolved edge case, not
// a defect. Absent any participant tenant, the call's requested context
// is looked up in the directory; absent that, the process-wide service
// tenant is used.
func ensureTenantUuid(ctx context.Context, raw *RawCallLog, directory DirectoryClient, serviceTenantUUID string, log zerolog.Logger) {
	channels := make([]string, 0, len(raw.RawParticipants))
	for ch := range raw.RawParticipants {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	seen := map[string]bool{}
	var distinct []string
	for _, ch := range channels {
		tenantUUID := raw.RawParticipants[ch].TenantUUID
		if tenantUUID == "" {
			continue
		}
		if !seen[tenantUUID] {
			seen[tenantUUID] = true
			distinct = append(distinct, tenantUUID)
		}
		raw.SetTenantUUID(tenantUUID)
	}

	if len(distinct) > 1 {
		log.Warn().
			Strs("tenant_uuids", distinct).
			Str("linked_id", raw.LinkedID).
			Msg("call log participants belong to different tenants, using the last one seen")
	}
	if raw.TenantUUID != "" {
		return
	}

	if raw.RequestedContext != "" {
		contexts, err := directory.ListContexts(ctx, raw.RequestedContext)
		if err != nil {
			log.Warn().Err(err).Str("context", raw.RequestedContext).Msg("directory context lookup failed")
		} else if len(contexts) > 0 && contexts[0].TenantUUID != "" {
			raw.SetTenantUUID(contexts[0].TenantUUID)
			return
		}
	}

	raw.SetTenantUUID(serviceTenantUUID)
}

// fillExtensionsFromParticipants copies each side's directory-reported
// main extension into the call's internal-exten/context fields, per spec
// §4.6. First writer wins within a side so that the earliest (by channel
// name) participant playing that role determines the value.
func fillExtensionsFromParticipants(raw *RawCallLog) {
	channels := make([]string, 0, len(raw.RawParticipants))
	for ch := range raw.RawParticipants {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		attrs := raw.RawParticipants[ch]
		if attrs.MainExtension == nil {
			continue
		}
		switch attrs.Role {
		case RoleSource:
			if raw.SourceInternalExten == "" {
				raw.SourceInternalExten = attrs.MainExtension.Exten
				raw.SourceInternalContext = attrs.MainExtension.Context
			}
		case RoleDestination:
			if raw.DestinationInternalExten == "" {
				raw.DestinationInternalExten = attrs.MainExtension.Exten
				raw.DestinationInternalContext = attrs.MainExtension.Context
			}
			if raw.RequestedInternalExten == "" {
				raw.RequestedInternalExten = attrs.MainExtension.Exten
				raw.RequestedInternalContext = attrs.MainExtension.Context
			}
		}
	}
}

// removeIncompleteRecordings drops any Recording missing either endpoint
// — a MIXMONITOR_START with no matching END, or vice versa — per spec
// §4.7. A recording that never completed isn't archivable.
func removeIncompleteRecordings(raw *RawCallLog, log zerolog.Logger) {
	kept := raw.Recordings[:0]
	for _, rec := range raw.Recordings {
		if rec.StartTime == nil || rec.EndTime == nil {
			log.Debug().Str("path", rec.Path).Msg("dropping incomplete recording")
			continue
		}
		kept = append(kept, rec)
	}
	raw.Recordings = kept
}
