package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupplierWildcard marks a template as applicable to every supplier.
const SupplierWildcard = "ALL"

// StringList is a []string stored as a JSONB column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Contains reports whether the list holds s (case-insensitive).
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Performance holds rolling template quality metrics, updated externally.
type Performance struct {
	AccuracyPercent   float64 `json:"accuracy_percent"`
	AvgLatencySeconds float64 `json:"avg_latency_seconds"`
}

// Value implements driver.Valuer for the JSONB performance column.
func (p Performance) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Performance) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = Performance{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into Performance", src)
	}
}

// Template is a versioned, categorized instruction bundle that configures one
// extraction request. Templates are created and edited through an external
// administrative surface; this engine reads them and fires usage increments.
type Template struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	Name               string       `db:"name" json:"name"`
	Category           DocumentType `db:"category" json:"category"`
	Version            string       `db:"version" json:"version"`
	Namespace          PromptSystem `db:"namespace" json:"namespace"`
	Suppliers          StringList   `db:"suppliers" json:"suppliers"`
	TargetUsers        StringList   `db:"target_users" json:"target_users"`
	TargetRoles        StringList   `db:"target_roles" json:"target_roles"`
	ProviderPreference string       `db:"provider_preference" json:"provider_preference"`
	Temperature        float64      `db:"temperature" json:"temperature"`
	MaxOutputTokens    int          `db:"max_output_tokens" json:"max_output_tokens"`
	BodyText           string       `db:"body_text" json:"body_text"`
	IsActive           bool         `db:"is_active" json:"is_active"`
	Performance        Performance  `db:"performance" json:"performance"`
	UsageCount         int64        `db:"usage_count" json:"usage_count"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// User identifies the caller for template targeting and cohort assignment.
type User struct {
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// ExtractionContext bundles the request-scoped routing inputs. It is built
// once per request and treated as immutable.
type ExtractionContext struct {
	DocumentType           DocumentType
	SupplierName           string
	User                   User
	ExplicitPromptOverride PromptSystem
	TestMode               bool
}

// Document is the transient unit of work for one extraction request.
type Document struct {
	RawText        string
	IsScanned      bool
	Bytes          []byte
	SourceFilename string
	MimeType       string
	SizeBytes      int64
}

// SelectionResult reports how a template was chosen, for observability.
type SelectionResult struct {
	Template         *Template `json:"template,omitempty"`
	Score            int       `json:"score"`
	RejectionReasons []string  `json:"rejection_reasons,omitempty"`
}

// ProviderHandle is one entry in the router's ordered failover chain.
type ProviderHandle struct {
	Name         string
	IsConfigured bool
}

// TemplateFilter narrows a catalog read.
type TemplateFilter struct {
	Category  DocumentType
	Namespace PromptSystem
	Active    bool
}

// Key returns the cache key for this filter.
func (f TemplateFilter) Key() string {
	return fmt.Sprintf("%s|%s|%t", f.Category, f.Namespace, f.Active)
}

// UsageEvent is an outbound fire-and-forget usage increment.
type UsageEvent struct {
	TemplateID uuid.UUID
	UserEmail  string
	TestMode   bool
	At         time.Time
}
