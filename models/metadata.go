package models

// AssetMetadata is the platform-agnostic descriptor handed to a platform
// adapter at mint time. Shape follows the common NFT metadata convention
// (name/description/image plus trait attributes).
type AssetMetadata struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Image           string           `json:"image"`
	ExternalURL     string           `json:"external_url,omitempty"`
	BackgroundColor string           `json:"background_color,omitempty"`
	Attributes      []AssetAttribute `json:"attributes"`
}

// AssetAttribute is one trait/value pair.
type AssetAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}
