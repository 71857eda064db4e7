// pkg/registry/schema.go
package registry

// IntentCatalog describes the commands the assistant understands. It is served
// to clients so voice frontends can surface what they may ask for.
type IntentCatalog struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Intents     []IntentEntry `json:"intents"`
}

type IntentEntry struct {
	Name          string   `json:"name"`
	DisplayName   string   `json:"displayName"`
	Description   string   `json:"description"`
	CanonicalForm string   `json:"canonicalForm"`
	RequiredSlots []string `json:"requiredSlots"`
	Examples      []string `json:"examples"`
}
