package importer

import "fmt"

// IDMap records, for every source asset already imported, the ARN of its
// counterpart in the target account. Cross-references in later assets are
// rewritten through it; a lookup miss means the dependency order is broken
// and is always a bug, so it fails rather than passing the source ARN
// through.
type IDMap struct {
	arns map[string]string
}

// NewIDMap creates an empty identifier map.
func NewIDMap() *IDMap {
	return &IDMap{arns: make(map[string]string)}
}

// Set records the target ARN for a source asset ID.
func (m *IDMap) Set(sourceID, targetARN string) {
	m.arns[sourceID] = targetARN
}

// ARN returns the target ARN for a source asset ID.
func (m *IDMap) ARN(sourceID string) (string, error) {
	arn, ok := m.arns[sourceID]
	if !ok {
		return "", fmt.Errorf("no target ARN recorded for asset %q; dependency was not imported first", sourceID)
	}
	return arn, nil
}

// Has reports whether a target ARN is recorded for the source asset ID.
func (m *IDMap) Has(sourceID string) bool {
	_, ok := m.arns[sourceID]
	return ok
}

// Len returns the number of recorded mappings.
func (m *IDMap) Len() int {
	return len(m.arns)
}
