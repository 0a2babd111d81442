package models

// ScopusConfig represents configuration rows stored in the scopus_config table.
// Rows keyed X-ELS-APIKey, X-ELS-APIKey-<n> or api_key hold Scopus API keys.
type ScopusConfig struct {
	ID    uint    `gorm:"primaryKey;column:id" json:"id"`
	Key   string  `gorm:"column:key" json:"key"`
	Value *string `gorm:"column:value" json:"value,omitempty"`
}

// TableName overrides the table name used by ScopusConfig to `scopus_config`.
func (ScopusConfig) TableName() string {
	return "scopus_config"
}
