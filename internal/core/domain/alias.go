package domain

// EntityType categorizes canonical entities in the alias table.
type EntityType string

const (
	EntityPokemon EntityType = "pokemon"
	EntityMove    EntityType = "move"
	EntityEvent   EntityType = "event"
	EntityFeature EntityType = "feature"
	EntityItem    EntityType = "item"
	EntityOther   EntityType = "other"
)

// Alias maps one known surface form to a canonical entity. Many aliases map
// to one entity id; matching is case/whitespace-normalized but otherwise exact.
type Alias struct {
	SurfaceForm string     `yaml:"surface" json:"surface"`
	EntityID    string     `yaml:"entity_id" json:"entity_id"`
	EntityType  EntityType `yaml:"entity_type" json:"entity_type"`
}
