package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Base holds the static company facts used for templated answers and for
// grounding the completion persona. It is loaded once at startup and never
// mutated afterwards. Every field is optional: a missing topic degrades to a
// generic sentence instead of breaking the request path.
type Base struct {
	Company       *Company    `json:"company" yaml:"company"`
	Services      *Services   `json:"services" yaml:"services"`
	EssentialSite *Product    `json:"essential_site" yaml:"essential_site"`
	SmartAgent    *Product    `json:"smart_agent" yaml:"smart_agent"`
	Bundle        *Product    `json:"bundle" yaml:"bundle"`
	Statistics    *Statistics `json:"statistics" yaml:"statistics"`
	Extras        []string    `json:"extras" yaml:"extras"`
}

type Company struct {
	Name    string `json:"name" yaml:"name"`
	About   string `json:"about" yaml:"about"`
	Contact string `json:"contact" yaml:"contact"`
}

type Services struct {
	Categories []string `json:"categories" yaml:"categories"`
}

type Product struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Features     []string `json:"features" yaml:"features"`
	Price        string   `json:"price" yaml:"price"`
	DeliveryDays int      `json:"delivery_days" yaml:"delivery_days"`
}

type Statistics struct {
	SmartphoneUsage string `json:"smartphone_usage" yaml:"smartphone_usage"`
	LeadIncrease    string `json:"lead_increase" yaml:"lead_increase"`
	ConversionRate  string `json:"conversion_rate" yaml:"conversion_rate"`
}

// Load reads the knowledge file at path (JSON or YAML by extension). A
// missing or malformed file is a warning, not a failure: the built-in
// defaults keep the bot answerable.
func Load(path string, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("knowledge file unavailable, using built-in defaults", "path", path, "error", err)
		return Default()
	}

	base := &Base{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, base)
	default:
		err = json.Unmarshal(data, base)
	}
	if err != nil {
		logger.Warn("knowledge file malformed, using built-in defaults", "path", path, "error", err)
		return Default()
	}

	logger.Info("knowledge base loaded", "path", path, "topics", base.Topics())
	return base
}

// Default is the hard-coded record used when no knowledge file can be read.
func Default() *Base {
	return &Base{
		Company: &Company{
			Name:    "KiSite",
			About:   "KiSite - Soluções digitais para sua empresa",
			Contact: "Contate-nos em contato@kisite.com.br",
		},
		Services: &Services{
			Categories: []string{"Desenvolvimento Web"},
		},
	}
}

// Topics lists the loaded topic names, used by the knowledge status endpoint.
func (b *Base) Topics() []string {
	var topics []string
	if b.Company != nil {
		topics = append(topics, "company")
	}
	if b.Services != nil {
		topics = append(topics, "services")
	}
	if b.EssentialSite != nil {
		topics = append(topics, "essential_site")
	}
	if b.SmartAgent != nil {
		topics = append(topics, "smart_agent")
	}
	if b.Bundle != nil {
		topics = append(topics, "bundle")
	}
	if b.Statistics != nil {
		topics = append(topics, "statistics")
	}
	if len(b.Extras) > 0 {
		topics = append(topics, "extras")
	}
	return topics
}

// CompanyName returns the configured name or a neutral fallback.
func (b *Base) CompanyName() string {
	if b.Company != nil && strings.TrimSpace(b.Company.Name) != "" {
		return strings.TrimSpace(b.Company.Name)
	}
	return "nossa empresa"
}

func (b *Base) DeliverySentence() string {
	if b.EssentialSite != nil && b.EssentialSite.DeliveryDays > 0 {
		return fmt.Sprintf("A %s entrega seu website profissional em apenas %d dias úteis!", b.CompanyName(), b.EssentialSite.DeliveryDays)
	}
	return fmt.Sprintf("A %s entrega seu website profissional em poucos dias úteis. Fale conosco para um prazo exato.", b.CompanyName())
}
