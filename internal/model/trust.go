package model

// TrustStatus is the tier a domain falls into in the trust table
type TrustStatus string

const (
	TrustTrusted      TrustStatus = "trusted"
	TrustQuestionable TrustStatus = "questionable"
	TrustUnknown      TrustStatus = "unknown"
)

// DomainTrustEntry is one row of the domain trust table
type DomainTrustEntry struct {
	Domain     string      `json:"domain" yaml:"domain" mapstructure:"domain"`
	TrustScore float64     `json:"trustScore" yaml:"trust_score" mapstructure:"trust_score"` // 0..1
	Status     TrustStatus `json:"status" yaml:"status" mapstructure:"status"`
	Reason     string      `json:"reason" yaml:"reason" mapstructure:"reason"`
}

// UnknownDomain returns the entry used for domains missing from the table
func UnknownDomain(domain string) DomainTrustEntry {
	return DomainTrustEntry{
		Domain:     domain,
		TrustScore: 0.5,
		Status:     TrustUnknown,
		Reason:     "Domain not in database",
	}
}
