package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// MetadataService builds the platform-agnostic asset descriptor for a
// ticket. Output is deterministic for identical inputs; every mint
// attempt regenerates it from scratch since the attempt number and the
// prior error are themselves attributes.
type MetadataService struct {
	// DefaultImageBase is used when the event's config has no base token
	// URI to derive artwork links from.
	DefaultImageBase string
}

func NewMetadataService() *MetadataService {
	return &MetadataService{
		DefaultImageBase: "https://assets.veritix.io",
	}
}

var platformBackground = map[chain.Platform]string{
	chain.PlatformPolygon: "7b3fe4",
	chain.PlatformZora:    "1d1d1d",
}

// Generate builds the descriptor from the ticket, its event and the
// event's minting config. Custom attributes are merged after the base
// set in sorted key order and never displace base attributes.
func (s *MetadataService) Generate(event *models.Event, ticket *models.TicketAsset, cfg *models.MintingConfig, custom map[string]string) *models.AssetMetadata {
	base := cfg.BaseTokenURI
	if base == "" {
		base = s.DefaultImageBase
	}
	base = strings.TrimRight(base, "/")

	meta := &models.AssetMetadata{
		Name:            fmt.Sprintf("%s - Ticket %s", event.Name, shortID(ticket.ID)),
		Description:     fmt.Sprintf("Verified ticket for %s at %s on %s.", event.Name, event.Venue, event.StartTime.UTC().Format("2006-01-02")),
		Image:           fmt.Sprintf("%s/tickets/%s/artwork.png", base, ticket.ID),
		ExternalURL:     fmt.Sprintf("%s/tickets/%s", base, ticket.ID),
		BackgroundColor: platformBackground[chain.Platform(ticket.Platform)],
	}

	meta.Attributes = []models.AssetAttribute{
		{TraitType: "Event", Value: event.Name},
		{TraitType: "Event Date", Value: event.StartTime.UTC().Format("2006-01-02 15:04")},
		{TraitType: "Location", Value: event.Venue},
		{TraitType: "Ticket Tier", Value: tierOrDefault(ticket.Tier)},
		{TraitType: "Platform", Value: ticket.Platform},
		{TraitType: "Price Paid", Value: ticket.PricePaid.String()},
		{TraitType: "Purchaser", Value: ticket.PurchaserName},
		{TraitType: "Status", Value: string(ticket.Status)},
	}

	if ticket.RetryCount > 0 {
		meta.Attributes = append(meta.Attributes,
			models.AssetAttribute{TraitType: "Mint Attempt", Value: fmt.Sprintf("%d", ticket.RetryCount+1)},
		)
		if ticket.ErrorMessage != "" {
			meta.Attributes = append(meta.Attributes,
				models.AssetAttribute{TraitType: "Previous Error", Value: ticket.ErrorMessage},
			)
		}
	}

	if len(custom) > 0 {
		keys := make([]string, 0, len(custom))
		for k := range custom {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			meta.Attributes = append(meta.Attributes, models.AssetAttribute{
				TraitType: k,
				Value:     custom[k],
			})
		}
	}

	return meta
}

// Validate checks the descriptor structurally and returns every problem
// found instead of stopping at the first.
func (s *MetadataService) Validate(meta *models.AssetMetadata) []string {
	var problems []string

	if meta == nil {
		return []string{"metadata is nil"}
	}
	if strings.TrimSpace(meta.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if strings.TrimSpace(meta.Description) == "" {
		problems = append(problems, "description must not be empty")
	}
	if strings.TrimSpace(meta.Image) == "" {
		problems = append(problems, "image must not be empty")
	}
	for i, attr := range meta.Attributes {
		if strings.TrimSpace(attr.TraitType) == "" {
			problems = append(problems, fmt.Sprintf("attribute %d: trait_type must not be empty", i))
		}
		if strings.TrimSpace(attr.Value) == "" {
			problems = append(problems, fmt.Sprintf("attribute %d: value must not be empty", i))
		}
	}

	return problems
}

func shortID(id string) string {
	if len(id) <= 8 {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:8])
}

func tierOrDefault(tier string) string {
	if tier == "" {
		return "General Admission"
	}
	return tier
}
