package model

import (
	"strings"
)

// Column names of the exported result table, in output order.
const (
	ColCompanyName         = "company_name"
	ColFullAddress         = "full_address"
	ColTown                = "town"
	ColPhone               = "Phone"
	ColWebsite             = "Website"
	ColBusinessType        = "Business Type"
	ColProcessed           = "processed"
	ColError               = "error"
	ColOwnerName           = "owner_name"
	ColOwnerTitle          = "owner_title"
	ColConfidence          = "confidence"
	ColConfidenceReasoning = "confidence_reasoning"
	ColDiscoveredEmails    = "discovered_emails"
	ColPotentialEmails     = "potential_emails"
	ColKeyFacts            = "key_facts"
)

// ResultColumns is the fixed column order of every exported table.
var ResultColumns = []string{
	ColCompanyName,
	ColFullAddress,
	ColTown,
	ColPhone,
	ColWebsite,
	ColBusinessType,
	ColProcessed,
	ColError,
	ColOwnerName,
	ColOwnerTitle,
	ColConfidence,
	ColConfidenceReasoning,
	ColDiscoveredEmails,
	ColPotentialEmails,
	ColKeyFacts,
}

// Placeholder fills a missing phone or website.
const Placeholder = "N/A"

// Lead is a business record before enrichment.
type Lead struct {
	CompanyName  string `json:"company_name"`
	FullAddress  string `json:"full_address"`
	Town         string `json:"town"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	BusinessType string `json:"business_type"`
}

// HasWebsite reports whether the lead carries a website worth fetching.
func (l Lead) HasWebsite() bool {
	w := strings.TrimSpace(l.Website)
	return w != "" && !strings.EqualFold(w, Placeholder)
}

// Key is the batch deduplication key.
func (l Lead) Key() [2]string {
	return [2]string{l.CompanyName, l.Website}
}

// EnrichedLead is a Lead plus everything learned about it.
type EnrichedLead struct {
	Lead

	Processed           bool       `json:"processed"`
	Error               string     `json:"error"`
	OwnerName           string     `json:"owner_name"`
	OwnerTitle          string     `json:"owner_title"`
	Confidence          Confidence `json:"confidence"`
	ConfidenceReasoning string     `json:"confidence_reasoning"`
	DiscoveredEmails    []string   `json:"discovered_emails"`
	PotentialEmails     []string   `json:"potential_emails"`
	KeyFacts            []string   `json:"key_facts"`
}

// Unprocessed builds the record returned when a lead could not be enriched.
func Unprocessed(lead Lead, errMsg string) EnrichedLead {
	return EnrichedLead{
		Lead:       CleanLead(lead),
		Processed:  false,
		Confidence: ConfidenceNone,
		Error:      errMsg,
	}
}

// CleanLead trims every field of the lead.
func CleanLead(l Lead) Lead {
	return Lead{
		CompanyName:  strings.TrimSpace(l.CompanyName),
		FullAddress:  strings.TrimSpace(l.FullAddress),
		Town:         strings.TrimSpace(l.Town),
		Phone:        strings.TrimSpace(l.Phone),
		Website:      strings.TrimSpace(l.Website),
		BusinessType: strings.TrimSpace(l.BusinessType),
	}
}

// Row renders the record in ResultColumns order.
func (e EnrichedLead) Row() []string {
	processed := "False"
	if e.Processed {
		processed = "True"
	}
	return []string{
		e.CompanyName,
		e.FullAddress,
		e.Town,
		e.Phone,
		e.Website,
		e.BusinessType,
		processed,
		e.Error,
		e.OwnerName,
		e.OwnerTitle,
		string(e.Confidence),
		e.ConfidenceReasoning,
		JoinList(e.DiscoveredEmails),
		JoinList(e.PotentialEmails),
		JoinList(e.KeyFacts),
	}
}

// EnrichedLeadFromRow is the inverse of Row. Missing trailing cells are
// treated as empty.
func EnrichedLeadFromRow(row []string) EnrichedLead {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return EnrichedLead{
		Lead: Lead{
			CompanyName:  cell(0),
			FullAddress:  cell(1),
			Town:         cell(2),
			Phone:        cell(3),
			Website:      cell(4),
			BusinessType: cell(5),
		},
		Processed:           strings.EqualFold(cell(6), "true"),
		Error:               cell(7),
		OwnerName:           cell(8),
		OwnerTitle:          cell(9),
		Confidence:          Confidence(cell(10)),
		ConfidenceReasoning: cell(11),
		DiscoveredEmails:    SplitList(cell(12)),
		PotentialEmails:     SplitList(cell(13)),
		KeyFacts:            SplitList(cell(14)),
	}
}

const listSep = "; "

// JoinList joins non-empty items with "; ".
func JoinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, listSep)
}

// SplitList reverses JoinList.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
