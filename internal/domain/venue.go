package domain

// Venue is a physical location an event can be held at.
type Venue struct {
	Name    string   `yaml:"name" json:"name"`
	Address string   `yaml:"address" json:"address"`
	City    string   `yaml:"city" json:"city"`
	Country string   `yaml:"country" json:"country"`
	MapURL  string   `yaml:"map_url" json:"map_url"`
	Rooms   []string `yaml:"rooms" json:"rooms"`
}

// VenueCatalog lists the venues offered in the event form and the venue view.
type VenueCatalog interface {
	List() []Venue
	ByMapURL(mapURL string) (Venue, bool)
}
