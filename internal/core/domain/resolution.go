package domain

// ResolutionResult is the total outcome of resolving one mention. Unresolved
// is a first-class outcome, not an error: the normalized text keeps the record
// addressable under a stable bucket until an alias is added.
type ResolutionResult struct {
	Resolved   bool       `json:"resolved"`
	EntityID   string     `json:"entity_id,omitempty"`
	EntityType EntityType `json:"entity_type,omitempty"`
	Text       string     `json:"text"`
}

func Resolved(entityID string, entityType EntityType, normalizedText string) ResolutionResult {
	return ResolutionResult{
		Resolved:   true,
		EntityID:   entityID,
		EntityType: entityType,
		Text:       normalizedText,
	}
}

func Unresolved(normalizedText string) ResolutionResult {
	return ResolutionResult{Text: normalizedText}
}

// BucketKey is the entity component of the canonical identity: the entity id
// when resolved, otherwise the normalized mention under a "~" marker so a
// later alias addition migrates the bucket without losing history.
func (r ResolutionResult) BucketKey() string {
	if r.Resolved {
		return r.EntityID
	}
	if r.Text == "" {
		return "~"
	}
	return "~" + r.Text
}
