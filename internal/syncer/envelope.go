package syncer

import (
	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
)

// Envelope field names of the versioned-document wire format.
const (
	fieldData      = "data"
	fieldMeta      = "meta"
	fieldUpdatedAt = "updatedAt"

	metaVersion       = "version"
	metaBaseVersion   = "baseVersion"
	metaUpdatedBy     = "updatedBy"
	metaClientCounter = "clientCounter"
	metaUpdatedAt     = "updatedAt"
)

// DocumentData extracts the application payload from an envelope
// snapshot. Legacy documents without an envelope are returned as-is.
func DocumentData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	if payload, ok := data[fieldData].(map[string]any); ok {
		return payload
	}
	return data
}

// DocumentMeta extracts the version metadata from an envelope snapshot.
// ok is false for legacy documents without an envelope, which are
// treated as version 0 with no metadata.
func DocumentMeta(data map[string]any) (Meta, bool) {
	metaMap, isMap := data[fieldMeta].(map[string]any)
	if !isMap {
		return Meta{}, false
	}

	var meta Meta
	if v, ok := docstore.AsInt64(metaMap[metaVersion]); ok {
		meta.Version = v
	}
	if v, ok := docstore.AsInt64(metaMap[metaBaseVersion]); ok {
		meta.BaseVersion = v
	}
	if by, ok := metaMap[metaUpdatedBy].(string); ok {
		meta.UpdatedBy = by
	}
	if v, ok := docstore.AsInt64(metaMap[metaClientCounter]); ok {
		meta.ClientCounter = v
	}
	if at, ok := metaMap[metaUpdatedAt].(string); ok {
		meta.UpdatedAt = at
	}
	return meta, true
}

// observedMeta is the parsed metadata of an incoming snapshot, with
// validity flags for fields that may be absent or malformed.
type observedMeta struct {
	meta      Meta
	hasMeta   bool
	versionOK bool
	counterOK bool
}

func parseObserved(data map[string]any) observedMeta {
	metaMap, isMap := data[fieldMeta].(map[string]any)
	if !isMap {
		return observedMeta{}
	}

	obs := observedMeta{hasMeta: true}
	obs.meta, _ = DocumentMeta(data)
	if _, ok := docstore.AsInt64(metaMap[metaVersion]); ok {
		obs.versionOK = true
	}
	if _, ok := docstore.AsInt64(metaMap[metaClientCounter]); ok {
		obs.counterOK = true
	}
	return obs
}

// buildEnvelope wraps persisted data in the versioned wire format. The
// version field is an atomic server-side increment so it stays strictly
// increasing across all writers.
func buildEnvelope(persisted map[string]any, baseVersion, clientCounter int64, clientID string) map[string]any {
	return map[string]any{
		fieldData:      persisted,
		fieldUpdatedAt: docstore.ServerTimestamp(),
		fieldMeta: map[string]any{
			metaVersion:       docstore.Increment(1),
			metaBaseVersion:   baseVersion,
			metaUpdatedBy:     clientID,
			metaClientCounter: clientCounter,
			metaUpdatedAt:     docstore.ServerTimestamp(),
		},
	}
}
